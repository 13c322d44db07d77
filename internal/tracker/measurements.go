// ABOUTME: Measurement submission and read views: dashboard, history, recent feed.
// ABOUTME: Every write is validated first; nothing is stored when any field fails.
package tracker

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/vitals/internal/events"
	"github.com/harperreed/vitals/internal/models"
	"github.com/harperreed/vitals/internal/storage"
	"github.com/harperreed/vitals/internal/validation"
)

// DefaultRecentLimit is the size of the dashboard feed.
const DefaultRecentLimit = 10

// Submit validates raw (keyed by registry key) and stores a measurement of
// kind for userID stamped now. Validation failures are returned as
// validation.Errors.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, kind models.Kind, raw map[string]string) (*models.Measurement, error) {
	return s.SubmitAt(ctx, userID, kind, raw, time.Now())
}

// SubmitAt is Submit with an explicit timestamp.
func (s *Service) SubmitAt(ctx context.Context, userID uuid.UUID, kind models.Kind, raw map[string]string, at time.Time) (*models.Measurement, error) {
	values, errs := validation.ValidateKind(kind, raw)
	if len(errs) > 0 {
		return nil, errs
	}

	m := models.NewMeasurement(userID, kind, values).WithTimestamp(at)
	if err := s.repo.CreateMeasurement(ctx, m); err != nil {
		return nil, s.fail("create measurement", err)
	}
	s.logger.Debug("measurement stored", "kind", kind, "id", m.ID)

	s.publish(ctx, events.Created, m)
	return m, nil
}

// Dashboard returns the latest measurement of every kind. Kinds without
// data map to nil.
func (s *Service) Dashboard(ctx context.Context, userID uuid.UUID) (map[models.Kind]*models.Measurement, error) {
	latest := make(map[models.Kind]*models.Measurement, len(models.AllKinds))
	for _, k := range models.AllKinds {
		m, err := s.repo.LatestMeasurement(ctx, userID, k)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, s.fail("latest "+string(k), err)
		}
		latest[k] = m
	}
	return latest, nil
}

// History returns every kind's measurements newest first. perKindLimit <= 0
// means unbounded.
func (s *Service) History(ctx context.Context, userID uuid.UUID, perKindLimit int) (map[models.Kind][]*models.Measurement, error) {
	history := make(map[models.Kind][]*models.Measurement, len(models.AllKinds))
	for _, k := range models.AllKinds {
		list, err := s.repo.ListMeasurements(ctx, userID, k, perKindLimit)
		if err != nil {
			return nil, s.fail("list "+string(k), err)
		}
		history[k] = list
	}
	return history, nil
}

// KindHistory returns one kind's measurements newest first.
func (s *Service) KindHistory(ctx context.Context, userID uuid.UUID, kind models.Kind, limit int) ([]*models.Measurement, error) {
	list, err := s.repo.ListMeasurements(ctx, userID, kind, limit)
	if err != nil {
		return nil, s.fail("list "+string(kind), err)
	}
	return list, nil
}

// Recent returns the newest measurements across all kinds combined.
// limit <= 0 uses DefaultRecentLimit.
func (s *Service) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Measurement, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	history, err := s.History(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	var all []*models.Measurement
	for _, k := range models.AllKinds {
		all = append(all, history[k]...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.After(all[j].Timestamp)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
