// ABOUTME: Export and import of one user's vitals data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats over any Repository.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/vitals/internal/models"
	"github.com/harperreed/vitals/internal/validation"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format for one user.
type ExportData struct {
	Version      string                `json:"version" yaml:"version"`
	ExportedAt   time.Time             `json:"exported_at" yaml:"exported_at"`
	Tool         string                `json:"tool" yaml:"tool"`
	User         *models.User          `json:"user" yaml:"user"`
	Measurements []*models.Measurement `json:"measurements" yaml:"measurements"`
}

// ImportSummary counts what ImportData wrote.
type ImportSummary struct {
	UserCreated  bool
	Measurements int
	Skipped      int
}

// GetUserData retrieves every measurement of every kind owned by userID.
func GetUserData(ctx context.Context, repo Repository, userID uuid.UUID) (*ExportData, error) {
	user, err := repo.GetUser(ctx, userID.String())
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	var all []*models.Measurement
	for _, k := range models.AllKinds {
		ms, err := repo.ListMeasurements(ctx, userID, k, 0)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", k, err)
		}
		all = append(all, ms...)
	}

	return &ExportData{
		Version:      "1.0",
		ExportedAt:   time.Now(),
		Tool:         "vitals",
		User:         user,
		Measurements: all,
	}, nil
}

// ImportData writes an export into repo. Every measurement is checked
// against the registry first; if any record is invalid nothing is written
// and the collected validation.Errors are returned. The user is created
// when absent and measurements whose ID already exists are skipped, all in
// one transaction.
func ImportData(ctx context.Context, repo Repository, data *ExportData) (*ImportSummary, error) {
	if data.User == nil {
		return nil, errors.New("export has no user")
	}
	if data.User.ID == uuid.Nil {
		return nil, errors.New("export user has no id")
	}

	var errs validation.Errors
	for _, m := range data.Measurements {
		if m == nil {
			return nil, errors.New("export contains an empty measurement")
		}
		errs = append(errs, validation.ValidateMeasurement(m)...)
		m.UserID = data.User.ID
	}
	if len(errs) > 0 {
		return nil, errs
	}

	return repo.ImportRecords(ctx, data.User, data.Measurements)
}

// ExportJSON exports a user's data as JSON.
func ExportJSON(ctx context.Context, repo Repository, userID uuid.UUID) ([]byte, error) {
	data, err := GetUserData(ctx, repo, userID)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ImportJSON imports data from JSON bytes.
func ImportJSON(ctx context.Context, repo Repository, raw []byte) (*ImportSummary, error) {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	return ImportData(ctx, repo, &data)
}

// ExportYAML exports a user's data as YAML with measurements grouped by kind.
func ExportYAML(ctx context.Context, repo Repository, userID uuid.UUID) ([]byte, error) {
	data, err := GetUserData(ctx, repo, userID)
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version      string                       `yaml:"version"`
		ExportedAt   string                       `yaml:"exported_at"`
		Tool         string                       `yaml:"tool"`
		User         string                       `yaml:"user"`
		Measurements map[string][]yamlMeasurement `yaml:"measurements"`
	}{
		Version:      data.Version,
		ExportedAt:   data.ExportedAt.Format(time.RFC3339),
		Tool:         data.Tool,
		User:         data.User.Name,
		Measurements: make(map[string][]yamlMeasurement),
	}

	for _, m := range data.Measurements {
		yamlData.Measurements[string(m.Kind)] = append(yamlData.Measurements[string(m.Kind)], yamlMeasurement{
			ID:         m.ID.String()[:8],
			Values:     m.Values,
			Display:    m.Display(),
			RecordedAt: m.Timestamp.Format(time.RFC3339),
		})
	}

	return yaml.Marshal(yamlData)
}

type yamlMeasurement struct {
	ID         string             `yaml:"id"`
	Values     map[string]float64 `yaml:"values"`
	Display    string             `yaml:"display"`
	RecordedAt string             `yaml:"recorded_at"`
}

// ExportMarkdown renders a user's history as one table per kind.
// A nil since exports everything.
func ExportMarkdown(ctx context.Context, repo Repository, userID uuid.UUID, since *time.Time) (string, error) {
	data, err := GetUserData(ctx, repo, userID)
	if err != nil {
		return "", err
	}

	grouped := make(map[models.Kind][]*models.Measurement)
	for _, m := range data.Measurements {
		if since != nil && m.Timestamp.Before(*since) {
			continue
		}
		grouped[m.Kind] = append(grouped[m.Kind], m)
	}

	var kinds []models.Kind
	for k := range grouped {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	var sb strings.Builder
	now := time.Now()
	sb.WriteString(fmt.Sprintf("# Vitals Export - %s\n\n", data.User.Name))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	for _, k := range kinds {
		sb.WriteString(fmt.Sprintf("## %s\n\n", k.Title()))
		sb.WriteString("| Date | Value |\n")
		sb.WriteString("|------|-------|\n")
		for _, m := range grouped[k] {
			sb.WriteString(fmt.Sprintf("| %s | %s |\n", m.Timestamp.Local().Format("2006-01-02 15:04"), m.Display()))
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}
