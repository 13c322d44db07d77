// ABOUTME: Data migration between vitals storage backends.
// ABOUTME: Copies users, per-kind measurements, and advice from source to destination.

package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/harperreed/vitals/internal/models"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Users        int
	Measurements map[models.Kind]int
	Advice       int
}

// Total returns the number of migrated measurements across kinds.
func (s *MigrateSummary) Total() int {
	n := 0
	for _, c := range s.Measurements {
		n += c
	}
	return n
}

// MigrateData copies all data from src to dst storage.
// Users go first so measurement and advice references resolve in the
// destination. The destination should be empty before calling this function.
func MigrateData(ctx context.Context, src, dst Repository) (*MigrateSummary, error) {
	summary := &MigrateSummary{Measurements: make(map[models.Kind]int)}

	users, err := src.ListUsers(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list source users: %w", err)
	}

	for _, u := range users {
		if err := dst.CreateUser(ctx, u); err != nil {
			return nil, fmt.Errorf("create user %s: %w", u.ID, err)
		}
		summary.Users++

		for _, k := range models.AllKinds {
			ms, err := src.ListMeasurements(ctx, u.ID, k, 0)
			if err != nil {
				return nil, fmt.Errorf("list source %s for %s: %w", k, u.ID, err)
			}
			for _, m := range ms {
				if err := dst.CreateMeasurement(ctx, m); err != nil {
					return nil, fmt.Errorf("create measurement %s: %w", m.ID, err)
				}
				summary.Measurements[k]++
			}
		}
	}

	advice, err := src.ListAdvice(ctx, AdviceFilter{})
	if err != nil {
		return nil, fmt.Errorf("list source advice: %w", err)
	}
	for _, a := range advice {
		if err := dst.CreateAdvice(ctx, a); err != nil {
			return nil, fmt.Errorf("create advice %s: %w", a.ID, err)
		}
		summary.Advice++
	}

	return summary, nil
}

// IsFileNonEmpty reports whether path exists and has content.
// Returns false if the file does not exist.
func IsFileNonEmpty(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %q: %w", path, err)
	}
	return info.Size() > 0, nil
}
