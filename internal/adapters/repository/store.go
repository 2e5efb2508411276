// Package repository holds the player roster and the chart data derived
// from the source tables.
package repository

import (
	"context"

	"github.com/okian/rally/internal/domain/model"
)

// Player is one roster row. Rank is the latest known world rank, 0 when
// the player never ranked. Position is the player's place in the roster
// order, starting at 1.
type Player struct {
	Name     string `json:"name"`
	Country  string `json:"country"`
	Rank     int    `json:"rank"`
	Position int    `json:"position"`
}

// Store provides read access to the roster and per-player chart data.
type Store interface {
	// Players returns the roster ordered by latest rank, unranked players
	// last, ties broken by name.
	Players(ctx context.Context) []Player

	// Player returns one roster row or ErrNotFound.
	Player(ctx context.Context, name string) (Player, error)

	// Trend, Ability and Record return the chart inputs for a player.
	// Unknown players yield empty or zero values.
	Trend(ctx context.Context, name string) []model.TimeSeriesPoint
	Ability(ctx context.Context, name string) model.AbilityVector
	Record(ctx context.Context, name string) []model.RecordPoint

	// Count returns the roster size.
	Count(ctx context.Context) int
}
