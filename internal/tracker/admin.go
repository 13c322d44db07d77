// ABOUTME: Administrator operations over every account and record.
// ABOUTME: Each call checks the session role before touching storage.
package tracker

import (
	"context"

	"github.com/harperreed/vitals/internal/auth"
	"github.com/harperreed/vitals/internal/events"
	"github.com/harperreed/vitals/internal/models"
	"github.com/harperreed/vitals/internal/validation"
)

// ListUsers returns all users, or those whose name or email contains search.
func (s *Service) ListUsers(ctx context.Context, sess *auth.Session, search string) ([]*models.User, error) {
	if err := auth.RequireRole(models.RoleAdmin, sess); err != nil {
		return nil, err
	}
	users, err := s.repo.ListUsers(ctx, search)
	if err != nil {
		return nil, s.fail("list users", err)
	}
	return users, nil
}

// UserHistory returns a user and their full measurement history.
func (s *Service) UserHistory(ctx context.Context, sess *auth.Session, userID string) (*models.User, map[models.Kind][]*models.Measurement, error) {
	if err := auth.RequireRole(models.RoleAdmin, sess); err != nil {
		return nil, nil, err
	}
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, nil, s.fail("get user", err)
	}
	history, err := s.History(ctx, u.ID, 0)
	if err != nil {
		return nil, nil, err
	}
	return u, history, nil
}

// EditMeasurement re-validates raw and overwrites the values of one record.
// ID, owner and timestamp are left unchanged.
func (s *Service) EditMeasurement(ctx context.Context, sess *auth.Session, kind models.Kind, id string, raw map[string]string) (*models.Measurement, error) {
	if err := auth.RequireRole(models.RoleAdmin, sess); err != nil {
		return nil, err
	}

	m, err := s.repo.GetMeasurement(ctx, kind, id)
	if err != nil {
		return nil, s.fail("get measurement", err)
	}

	values, errs := validation.ValidateKind(kind, raw)
	if len(errs) > 0 {
		return nil, errs
	}

	if err := s.repo.UpdateMeasurement(ctx, kind, m.ID, values); err != nil {
		return nil, s.fail("update measurement", err)
	}
	m.Values = values
	s.logger.Info("measurement edited", "kind", kind, "id", m.ID, "by", sess.Name)

	s.publish(ctx, events.Updated, m)
	return m, nil
}

// DeleteMeasurement removes one record.
func (s *Service) DeleteMeasurement(ctx context.Context, sess *auth.Session, kind models.Kind, id string) (*models.Measurement, error) {
	if err := auth.RequireRole(models.RoleAdmin, sess); err != nil {
		return nil, err
	}

	m, err := s.repo.GetMeasurement(ctx, kind, id)
	if err != nil {
		return nil, s.fail("get measurement", err)
	}
	if err := s.repo.DeleteMeasurement(ctx, kind, m.ID); err != nil {
		return nil, s.fail("delete measurement", err)
	}
	s.logger.Info("measurement deleted", "kind", kind, "id", m.ID, "by", sess.Name)

	s.publish(ctx, events.Deleted, m)
	return m, nil
}

// DeleteUser removes a user and all of their measurements atomically.
func (s *Service) DeleteUser(ctx context.Context, sess *auth.Session, userID string) (*models.User, error) {
	if err := auth.RequireRole(models.RoleAdmin, sess); err != nil {
		return nil, err
	}

	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, s.fail("get user", err)
	}

	// Each row the cascade removes gets a delete event after commit.
	var removed []*models.Measurement
	for _, k := range models.AllKinds {
		ms, err := s.repo.ListMeasurements(ctx, u.ID, k, 0)
		if err != nil {
			return nil, s.fail("list measurements", err)
		}
		removed = append(removed, ms...)
	}

	if err := s.repo.DeleteUser(ctx, u.ID); err != nil {
		return nil, s.fail("delete user", err)
	}
	s.logger.Info("user deleted", "name", u.Name, "measurements", len(removed), "by", sess.Name)

	for _, m := range removed {
		s.publish(ctx, events.Deleted, m)
	}
	return u, nil
}

// PromoteUser grants the admin role. The promoted user's existing sessions
// keep their old role until they log in again.
func (s *Service) PromoteUser(ctx context.Context, sess *auth.Session, userID string) (*models.User, error) {
	if err := auth.RequireRole(models.RoleAdmin, sess); err != nil {
		return nil, err
	}

	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, s.fail("get user", err)
	}
	if err := s.repo.SetUserRole(ctx, u.ID, models.RoleAdmin); err != nil {
		return nil, s.fail("promote user", err)
	}
	u.Role = models.RoleAdmin
	s.logger.Info("user promoted", "name", u.Name, "by", sess.Name)
	return u, nil
}
