package repository

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/rally/internal/adapters/ingest"
	"github.com/okian/rally/internal/domain/model"
	"github.com/okian/rally/pkg/logger"
	"github.com/okian/rally/pkg/metrics"
)

// DefaultRecordYears is the record chart's year set.
var DefaultRecordYears = []string{"2017", "2018", "2019", "2020"} //nolint:gochecknoglobals // default year set

// Snapshot is an immutable view of the loaded tables.
type Snapshot struct {
	Roster    []Player
	ByName    map[string]int
	Trends    map[string][]model.TimeSeriesPoint
	Abilities map[string]model.AbilityVector
	Records   map[string][]model.RecordPoint
	LoadedAt  time.Time
}

// MemoryStore serves reads from the current snapshot. Load builds a new
// snapshot and swaps it in, so readers never see a partial roster.
type MemoryStore struct {
	years          []string
	sources        *ingest.Sources
	reloadInterval time.Duration
	log            logger.Logger

	snapshot atomic.Pointer[Snapshot]

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopChan chan struct{}
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store. With a reload interval and
// sources it starts a goroutine that reloads until ctx ends or Close.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		years:    DefaultRecordYears,
		log:      logger.Nop(),
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot.Store(&Snapshot{ByName: map[string]int{}})
	if s.reloadInterval > 0 && s.sources != nil {
		s.startPeriodicReload(ctx)
	}
	return s
}

func (s *MemoryStore) startPeriodicReload(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.reloadInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				if err := s.Reload(ctx); err != nil {
					s.log.Warn(ctx, "reload tables failed, keeping previous roster", logger.Error(err))
				}
			}
		}
	}()
}

// Close stops the reload goroutine.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Reload reads the configured sources and loads them.
func (s *MemoryStore) Reload(ctx context.Context) error {
	if s.sources == nil {
		return ErrNoSource
	}
	tables, err := ingest.ReadAll(ctx, *s.sources)
	if err != nil {
		return err
	}
	s.Load(ctx, tables)
	return nil
}

// Load publishes a snapshot built from tables. The roster comes from the
// rankings table; abilities and records attach by player name.
func (s *MemoryStore) Load(ctx context.Context, tables *ingest.Tables) {
	start := time.Now()
	if tables == nil {
		tables = &ingest.Tables{}
	}
	rankings := ingest.Rankings(tables.Rankings)

	snap := &Snapshot{
		Roster:    make([]Player, 0, len(rankings)),
		ByName:    make(map[string]int, len(rankings)),
		Trends:    make(map[string][]model.TimeSeriesPoint, len(rankings)),
		Abilities: ingest.Abilities(tables.Abilities),
		Records:   ingest.Records(tables.Records, s.years),
		LoadedAt:  start,
	}
	for _, r := range rankings {
		if _, dup := snap.Trends[r.Name]; dup {
			continue
		}
		latest := 0
		if n := len(r.Series); n > 0 {
			latest = r.Series[n-1].Rank
		}
		snap.Roster = append(snap.Roster, Player{Name: r.Name, Country: r.Country, Rank: latest})
		snap.Trends[r.Name] = r.Series
	}
	sortPlayers(snap.Roster)
	for i := range snap.Roster {
		snap.Roster[i].Position = i + 1
		snap.ByName[snap.Roster[i].Name] = i
	}

	s.snapshot.Store(snap)
	metrics.UpdatePlayersLoaded(len(snap.Roster))
	s.log.Info(ctx, "roster loaded",
		logger.Int("players", len(snap.Roster)),
		logger.Int("abilities", len(snap.Abilities)),
		logger.Int("records", len(snap.Records)),
		logger.Duration("took", time.Since(start)))
}

// sortPlayers orders by rank ascending with unranked players last, then
// by name.
func sortPlayers(ps []Player) {
	sort.SliceStable(ps, func(i, j int) bool {
		ri, rj := ps[i].Rank, ps[j].Rank
		if (ri == 0) != (rj == 0) {
			return rj == 0
		}
		if ri != rj {
			return ri < rj
		}
		return ps[i].Name < ps[j].Name
	})
}

// Snapshot returns the current snapshot.
func (s *MemoryStore) Snapshot() *Snapshot { return s.snapshot.Load() }

// Players implements Store.
func (s *MemoryStore) Players(_ context.Context) []Player {
	return append([]Player(nil), s.snapshot.Load().Roster...)
}

// Player implements Store.
func (s *MemoryStore) Player(_ context.Context, name string) (Player, error) {
	snap := s.snapshot.Load()
	i, ok := snap.ByName[name]
	if !ok {
		return Player{}, ErrNotFound
	}
	return snap.Roster[i], nil
}

// Trend implements Store.
func (s *MemoryStore) Trend(_ context.Context, name string) []model.TimeSeriesPoint {
	return append([]model.TimeSeriesPoint(nil), s.snapshot.Load().Trends[name]...)
}

// Ability implements Store.
func (s *MemoryStore) Ability(_ context.Context, name string) model.AbilityVector {
	return s.snapshot.Load().Abilities[name]
}

// Record implements Store. Players absent from the records table get no
// bars at all.
func (s *MemoryStore) Record(_ context.Context, name string) []model.RecordPoint {
	return append([]model.RecordPoint(nil), s.snapshot.Load().Records[name]...)
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	return len(s.snapshot.Load().Roster)
}
