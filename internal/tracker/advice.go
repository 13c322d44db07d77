// ABOUTME: Advice feed: public listing plus admin create, edit and delete.
// ABOUTME: Images go through the image store; only the returned reference is kept.
package tracker

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/harperreed/vitals/internal/auth"
	"github.com/harperreed/vitals/internal/models"
	"github.com/harperreed/vitals/internal/storage"
)

// AdviceInput is the editable content of an advice entry. Image is
// optional; ImageName supplies its original filename.
type AdviceInput struct {
	Title     string
	Body      string
	Topic     string
	Image     io.Reader
	ImageName string
}

// ListAdvice returns advice newest first, filtered by a case-insensitive
// title/body query and a topic ("todos" or empty means all).
func (s *Service) ListAdvice(ctx context.Context, query, topic string) ([]*models.Advice, error) {
	list, err := s.repo.ListAdvice(ctx, storage.AdviceFilter{Query: strings.TrimSpace(query), Topic: topic})
	if err != nil {
		return nil, s.fail("list advice", err)
	}
	return list, nil
}

// GetAdvice returns one advice entry by ID or prefix.
func (s *Service) GetAdvice(ctx context.Context, id string) (*models.Advice, error) {
	a, err := s.repo.GetAdvice(ctx, id)
	if err != nil {
		return nil, s.fail("get advice", err)
	}
	return a, nil
}

// Topics returns the predefined topics followed by any other topic in use.
func (s *Service) Topics(ctx context.Context) ([]string, error) {
	used, err := s.repo.ListTopics(ctx)
	if err != nil {
		return nil, s.fail("list topics", err)
	}

	seen := make(map[string]bool, len(models.Topics))
	topics := append([]string(nil), models.Topics...)
	for _, t := range models.Topics {
		seen[t] = true
	}
	var extra []string
	for _, t := range used {
		if t != "" && !seen[t] {
			seen[t] = true
			extra = append(extra, t)
		}
	}
	sort.Strings(extra)
	return append(topics, extra...), nil
}

// ImageURL resolves the stored image reference of a to a displayable URL.
func (s *Service) ImageURL(a *models.Advice) string {
	if a == nil || a.ImageURL == nil {
		return ""
	}
	if s.images == nil {
		return *a.ImageURL
	}
	return s.images.URL(*a.ImageURL)
}

// CreateAdvice stores a new advice entry authored by the session user.
func (s *Service) CreateAdvice(ctx context.Context, sess *auth.Session, in AdviceInput) (*models.Advice, error) {
	if err := auth.RequireRole(models.RoleAdmin, sess); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Body) == "" {
		return nil, fmt.Errorf("title and body are required: %w", ErrInvalidInput)
	}

	topic := in.Topic
	if topic == "" {
		topic = "General"
	}
	a := models.NewAdvice(sess.UserID, strings.TrimSpace(in.Title), in.Body, topic)

	ref, err := s.saveImage(ctx, in)
	if err != nil {
		return nil, err
	}
	if ref != "" {
		a.WithImage(ref)
	}

	if err := s.repo.CreateAdvice(ctx, a); err != nil {
		s.removeImage(ctx, ref)
		return nil, s.fail("create advice", err)
	}
	s.logger.Info("advice created", "title", a.Title, "by", sess.Name)
	return a, nil
}

// UpdateAdvice overwrites the non-empty fields of an advice entry. A new
// image replaces the previous one, which is removed after the update commits.
func (s *Service) UpdateAdvice(ctx context.Context, sess *auth.Session, id string, in AdviceInput) (*models.Advice, error) {
	if err := auth.RequireRole(models.RoleAdmin, sess); err != nil {
		return nil, err
	}

	a, err := s.repo.GetAdvice(ctx, id)
	if err != nil {
		return nil, s.fail("get advice", err)
	}
	if t := strings.TrimSpace(in.Title); t != "" {
		a.Title = t
	}
	if in.Body != "" {
		a.Body = in.Body
	}
	if in.Topic != "" {
		a.Topic = in.Topic
	}

	ref, err := s.saveImage(ctx, in)
	if err != nil {
		return nil, err
	}
	var old string
	if ref != "" {
		if a.ImageURL != nil {
			old = *a.ImageURL
		}
		a.WithImage(ref)
	}

	if err := s.repo.UpdateAdvice(ctx, a); err != nil {
		s.removeImage(ctx, ref)
		return nil, s.fail("update advice", err)
	}
	s.removeImage(ctx, old)
	s.logger.Info("advice updated", "title", a.Title, "by", sess.Name)
	return a, nil
}

// DeleteAdvice removes an advice entry and its image.
func (s *Service) DeleteAdvice(ctx context.Context, sess *auth.Session, id string) (*models.Advice, error) {
	if err := auth.RequireRole(models.RoleAdmin, sess); err != nil {
		return nil, err
	}

	a, err := s.repo.GetAdvice(ctx, id)
	if err != nil {
		return nil, s.fail("get advice", err)
	}
	if err := s.repo.DeleteAdvice(ctx, a.ID); err != nil {
		return nil, s.fail("delete advice", err)
	}
	if a.ImageURL != nil {
		s.removeImage(ctx, *a.ImageURL)
	}
	s.logger.Info("advice deleted", "title", a.Title, "by", sess.Name)
	return a, nil
}

func (s *Service) saveImage(ctx context.Context, in AdviceInput) (string, error) {
	if in.Image == nil {
		return "", nil
	}
	if s.images == nil {
		return "", ErrImagesDisabled
	}
	ref, err := s.images.Save(ctx, in.Image, in.ImageName)
	if err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return ref, nil
}

// removeImage deletes ref from the image store, logging failures.
func (s *Service) removeImage(ctx context.Context, ref string) {
	if ref == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, ref); err != nil {
		s.logger.Warn("remove image", "ref", ref, "err", err)
	}
}
