package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/rally/internal/domain/model"
	"github.com/okian/rally/pkg/metrics"
)

// Column names shared by every table.
const (
	ColName    = "Name"
	ColCountry = "Country"
)

// Ranking is one roster row of the rankings table.
type Ranking struct {
	Name    string
	Country string
	Series  []model.TimeSeriesPoint
}

// Rankings reads the rankings table. Every column other than Name and
// Country whose header is a month holds that month's rank. Blank or
// non-positive cells are months without a rank and are skipped. Rows
// without a name are ignored.
func Rankings(t *Table) []Ranking {
	type month struct {
		col string
		p   model.TimeSeriesPoint
	}
	var months []month
	if t != nil {
		for _, h := range t.Header {
			if h == ColName || h == ColCountry {
				continue
			}
			if d, ok := model.ParseMonth(h); ok {
				months = append(months, month{col: h, p: model.TimeSeriesPoint{Date: d}})
			}
		}
	}

	out := make([]Ranking, 0, t.Len())
	for row := range t.Len() {
		name := t.Cell(row, ColName)
		if name == "" {
			continue
		}
		r := Ranking{Name: name, Country: t.Cell(row, ColCountry)}
		for _, m := range months {
			rank := model.ParseCount(t.Cell(row, m.col))
			if rank <= 0 {
				continue
			}
			p := m.p
			p.Rank = rank
			r.Series = append(r.Series, p)
		}
		r.Series = model.NormalizeSeries(r.Series)
		out = append(out, r)
	}
	return out
}

// Abilities reads the abilities table into one vector per player name.
// Missing or non-numeric scores are 0.
func Abilities(t *Table) map[string]model.AbilityVector {
	out := make(map[string]model.AbilityVector, t.Len())
	for row := range t.Len() {
		name := t.Cell(row, ColName)
		if name == "" {
			continue
		}
		values := make([]float64, len(model.AbilityLabels))
		for i, label := range model.AbilityLabels {
			values[i] = model.ParseNumber(t.Cell(row, label))
		}
		out[name] = model.NewAbilityVector(values)
	}
	return out
}

// Records reads the win/loss table for the given years, in that order.
// Cells are named <year>_win and <year>_loss; missing or non-numeric
// cells are 0.
func Records(t *Table, years []string) map[string][]model.RecordPoint {
	out := make(map[string][]model.RecordPoint, t.Len())
	for row := range t.Len() {
		name := t.Cell(row, ColName)
		if name == "" {
			continue
		}
		recs := make([]model.RecordPoint, len(years))
		for i, y := range years {
			y = strings.TrimSpace(y)
			recs[i] = model.RecordPoint{
				Year:   y,
				Wins:   model.ParseCount(t.Cell(row, y+"_win")),
				Losses: model.ParseCount(t.Cell(row, y+"_loss")),
			}
		}
		out[name] = recs
	}
	return out
}

// Sources locates the three tables.
type Sources struct {
	Rankings  string
	Abilities string
	Records   string
}

// Tables is one consistent read of all sources.
type Tables struct {
	Rankings  *Table
	Abilities *Table
	Records   *Table
}

// ReadAll loads every source and records row counts.
func ReadAll(ctx context.Context, src Sources) (*Tables, error) {
	var (
		out Tables
		err error
	)
	for _, s := range []struct {
		name string
		path string
		dst  **Table
	}{
		{"rankings", src.Rankings, &out.Rankings},
		{"abilities", src.Abilities, &out.Abilities},
		{"records", src.Records, &out.Records},
	} {
		if *s.dst, err = ReadFile(ctx, s.path); err != nil {
			return nil, fmt.Errorf("%s table: %w", s.name, err)
		}
		metrics.UpdateTableRows(s.name, (*s.dst).Len())
	}
	return &out, nil
}
