// ABOUTME: Tracker service wiring storage, validation, events and images together.
// ABOUTME: Constructed once at startup and passed to the CLI and MCP layers.
package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/harperreed/vitals/internal/auth"
	"github.com/harperreed/vitals/internal/events"
	"github.com/harperreed/vitals/internal/logging"
	"github.com/harperreed/vitals/internal/models"
	"github.com/harperreed/vitals/internal/storage"
	"github.com/harperreed/vitals/internal/uploads"
)

var (
	// ErrPersistence wraps any storage failure that was rolled back.
	ErrPersistence = errors.New("could not save changes")
	// ErrInvalidInput is returned for missing required fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrImagesDisabled is returned when an image is supplied but no image
	// store is configured.
	ErrImagesDisabled = errors.New("image storage is not configured")
)

// Options carries the optional collaborators of a Service.
type Options struct {
	Logger    *log.Logger
	Publisher events.Publisher
	Images    uploads.ImageStore
	Issuer    *auth.Issuer
}

// Service is the entry point for every vitals operation.
type Service struct {
	repo      storage.Repository
	logger    *log.Logger
	publisher events.Publisher
	images    uploads.ImageStore
	issuer    *auth.Issuer
}

// New creates a Service over repo. Missing options fall back to a silent
// logger and a no-op publisher.
func New(repo storage.Repository, opts Options) *Service {
	s := &Service{
		repo:      repo,
		logger:    opts.Logger,
		publisher: opts.Publisher,
		images:    opts.Images,
		issuer:    opts.Issuer,
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	return s
}

// Repository exposes the underlying store for export and migration.
func (s *Service) Repository() storage.Repository {
	return s.repo
}

// Close releases the publisher and the repository.
func (s *Service) Close() error {
	pubErr := s.publisher.Close()
	repoErr := s.repo.Close()
	return errors.Join(pubErr, repoErr)
}

// fail logs storage errors and wraps them in ErrPersistence. Lookup and
// uniqueness errors pass through unchanged.
func (s *Service) fail(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, storage.ErrAmbiguousID),
		errors.Is(err, storage.ErrDuplicateName),
		errors.Is(err, storage.ErrDuplicateEmail),
		errors.Is(err, context.Canceled):
		return err
	}
	s.logger.Error("persistence failure", "op", op, "err", err)
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

// publish sends a measurement event. The write has already committed, so
// failures are only logged.
func (s *Service) publish(ctx context.Context, action events.Action, m *models.Measurement) {
	if err := s.publisher.Publish(ctx, events.NewMeasurementEvent(action, m)); err != nil {
		s.logger.Warn("publish measurement event", "action", action, "kind", m.Kind, "id", m.ID, "err", err)
		return
	}
	s.logger.Debug("published measurement event", "action", action, "kind", m.Kind, "id", m.ID)
}
