// ABOUTME: Per-user statistics over every metric field.
// ABOUTME: Blood pressure yields separate systolic and diastolic entries.
package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/vitals/internal/models"
)

// ErrNoData means the user has no measurements of any kind.
var ErrNoData = errors.New("no measurements recorded")

// Stat is the rendered aggregate of one metric field.
type Stat struct {
	Key     string
	Label   string
	Unit    string
	Count   int
	Average string
	Min     string
	Max     string
}

// StatsReport holds one Stat per field that has data, in dashboard order.
type StatsReport struct {
	Entries []Stat
	ByLabel map[string]Stat
}

// Statistics aggregates every field of every kind for userID. Fields
// without rows are omitted; ErrNoData is returned when nothing is left.
func (s *Service) Statistics(ctx context.Context, userID uuid.UUID) (*StatsReport, error) {
	report := &StatsReport{ByLabel: make(map[string]Stat)}

	for _, k := range models.AllKinds {
		fieldStats, err := s.repo.KindStats(ctx, userID, k)
		if err != nil {
			return nil, s.fail("stats "+string(k), err)
		}

		byField := make(map[string]int, len(fieldStats))
		for i, fs := range fieldStats {
			byField[fs.Field] = i
		}

		for _, def := range models.KindFields(k) {
			i, ok := byField[def.Field]
			if !ok || fieldStats[i].Count == 0 {
				continue
			}
			fs := fieldStats[i]
			st := Stat{
				Key:     def.Key,
				Label:   def.Label,
				Unit:    def.Unit,
				Count:   fs.Count,
				Average: fmt.Sprintf("%.2f", fs.Avg),
				Min:     models.FormatValue(def.Type, fs.Min),
				Max:     models.FormatValue(def.Type, fs.Max),
			}
			report.Entries = append(report.Entries, st)
			report.ByLabel[st.Label] = st
		}
	}

	if len(report.Entries) == 0 {
		return nil, ErrNoData
	}
	return report, nil
}
