// ABOUTME: Tests for export and import functionality.
// ABOUTME: Verifies JSON, YAML, and Markdown export formats and idempotent import.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/vitals/internal/models"
	"github.com/harperreed/vitals/internal/validation"
	"gopkg.in/yaml.v3"
)

func TestExportJSON(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "ana")
	other := createTestUser(t, db, "beto")

	createTestMeasurement(t, db, u.ID, models.KindWeight, weight(70), time.Now())
	createTestMeasurement(t, db, u.ID, models.KindBloodPressure, pressure(120, 80), time.Now())
	createTestMeasurement(t, db, other.ID, models.KindWeight, weight(90), time.Now())

	data, err := ExportJSON(ctx, db, u.ID)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	var export ExportData
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if export.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", export.Version)
	}
	if export.Tool != "vitals" {
		t.Errorf("Expected tool vitals, got %s", export.Tool)
	}
	if export.User == nil || export.User.ID != u.ID {
		t.Fatalf("Expected user %s in export", u.ID)
	}
	if len(export.Measurements) != 2 {
		t.Errorf("Expected 2 measurements, got %d", len(export.Measurements))
	}
}

func TestExportYAML(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "ana")
	createTestMeasurement(t, db, u.ID, models.KindWeight, weight(70.5), time.Now())

	data, err := ExportYAML(context.Background(), db, u.ID)
	if err != nil {
		t.Fatalf("ExportYAML failed: %v", err)
	}

	var yamlData map[string]interface{}
	if err := yaml.Unmarshal(data, &yamlData); err != nil {
		t.Fatalf("Failed to parse YAML: %v", err)
	}

	if yamlData["version"] != "1.0" {
		t.Errorf("Expected version 1.0, got %v", yamlData["version"])
	}
	if yamlData["user"] != "ana" {
		t.Errorf("Expected user ana, got %v", yamlData["user"])
	}
	measurements, ok := yamlData["measurements"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected measurements map, got %T", yamlData["measurements"])
	}
	if _, ok := measurements[string(models.KindWeight)]; !ok {
		t.Errorf("Expected %s group in YAML export", models.KindWeight)
	}
}

func TestExportMarkdown(t *testing.T) {
	db := setupTestDB(t)
	u := createTestUser(t, db, "ana")
	now := time.Now()
	createTestMeasurement(t, db, u.ID, models.KindBloodPressure, pressure(120, 80), now)
	createTestMeasurement(t, db, u.ID, models.KindWeight, weight(70), now.Add(-48*time.Hour))

	md, err := ExportMarkdown(context.Background(), db, u.ID, nil)
	if err != nil {
		t.Fatalf("ExportMarkdown failed: %v", err)
	}
	if !strings.Contains(md, "# Vitals Export - ana") {
		t.Error("Expected header in markdown")
	}
	if !strings.Contains(md, "120/80 mmHg") {
		t.Error("Expected blood pressure row in markdown")
	}
	if !strings.Contains(md, "70.0 kg") {
		t.Error("Expected weight row in markdown")
	}

	since := now.Add(-time.Hour)
	recent, err := ExportMarkdown(context.Background(), db, u.ID, &since)
	if err != nil {
		t.Fatalf("ExportMarkdown with since failed: %v", err)
	}
	if strings.Contains(recent, "70.0 kg") {
		t.Error("Expected old weight row to be filtered out")
	}
}

func TestImportJSONIntoFreshStore(t *testing.T) {
	src := setupTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, src, "ana")
	createTestMeasurement(t, src, u.ID, models.KindWeight, weight(70), time.Now())
	createTestMeasurement(t, src, u.ID, models.KindHeight, weight(175), time.Now())

	data, err := ExportJSON(ctx, src, u.ID)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	dst := setupTestDB(t)
	summary, err := ImportJSON(ctx, dst, data)
	if err != nil {
		t.Fatalf("ImportJSON failed: %v", err)
	}
	if !summary.UserCreated {
		t.Error("Expected user to be created")
	}
	if summary.Measurements != 2 {
		t.Errorf("Expected 2 imported measurements, got %d", summary.Measurements)
	}

	latest, err := dst.LatestMeasurement(ctx, u.ID, models.KindHeight)
	if err != nil {
		t.Fatalf("LatestMeasurement failed: %v", err)
	}
	if latest.Value() != 175 {
		t.Errorf("Expected height 175, got %v", latest.Value())
	}

	// A second import of the same data writes nothing new.
	again, err := ImportJSON(ctx, dst, data)
	if err != nil {
		t.Fatalf("second ImportJSON failed: %v", err)
	}
	if again.UserCreated || again.Measurements != 0 || again.Skipped != 2 {
		t.Errorf("Expected idempotent import, got %+v", again)
	}
}

func TestImportJSONInvalid(t *testing.T) {
	db := setupTestDB(t)
	if _, err := ImportJSON(context.Background(), db, []byte("{not json")); err == nil {
		t.Error("Expected error for invalid JSON")
	}
	if _, err := ImportJSON(context.Background(), db, []byte(`{"version":"1.0"}`)); err == nil {
		t.Error("Expected error for export without user")
	}
}

func TestImportRejectsInvalidRecords(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		u := models.NewUser("ana", "ana@example.com")
		u.PasswordHash = "hash"

		good := models.NewMeasurement(u.ID, models.KindWeight, weight(70))
		data := &ExportData{
			User: u,
			Measurements: []*models.Measurement{
				good,
				models.NewMeasurement(u.ID, models.KindHeartRate, weight(5000.5)),
				models.NewMeasurement(u.ID, models.KindHeight, weight(0)),
				{Kind: models.KindWeight, Values: weight(70)},
				models.NewMeasurement(u.ID, models.KindBloodPressure, map[string]float64{models.FieldSystolic: 120}),
			},
		}

		summary, err := ImportData(ctx, repo, data)
		if err == nil {
			t.Fatalf("expected validation errors, got summary %+v", summary)
		}
		var errs validation.Errors
		if !errors.As(err, &errs) {
			t.Fatalf("expected validation.Errors, got %T (%v)", err, err)
		}

		byKey := map[string]int{}
		for _, e := range errs {
			byKey[e.Key]++
		}
		for _, key := range []string{"ritmo_cardiaco", "altura", "id", "timestamp", models.KeyDiastolic} {
			if byKey[key] == 0 {
				t.Errorf("expected an error for %s, got %v", key, errs.Messages())
			}
		}

		if _, err := repo.GetUser(ctx, u.ID.String()); !errors.Is(err, ErrNotFound) {
			t.Errorf("user must not be created on a rejected import, got %v", err)
		}
		if _, err := repo.GetMeasurement(ctx, models.KindWeight, good.ID.String()); !errors.Is(err, ErrNotFound) {
			t.Errorf("valid record must not be written on a rejected import, got %v", err)
		}
	})
}

func TestImportRollsBackOnWriteFailure(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		execRaw(t, repo, `CREATE TRIGGER block_height_insert BEFORE INSERT ON `+models.KindHeight.Table()+`
			BEGIN SELECT RAISE(ABORT, 'blocked'); END;`)

		u := models.NewUser("ana", "ana@example.com")
		u.PasswordHash = "hash"
		first := models.NewMeasurement(u.ID, models.KindWeight, weight(70))
		data := &ExportData{
			User: u,
			Measurements: []*models.Measurement{
				first,
				models.NewMeasurement(u.ID, models.KindHeight, weight(170)),
			},
		}

		if _, err := ImportData(ctx, repo, data); err == nil {
			t.Fatal("expected import to fail")
		}
		if _, err := repo.GetUser(ctx, u.ID.String()); !errors.Is(err, ErrNotFound) {
			t.Errorf("user must be rolled back, got %v", err)
		}
		if _, err := repo.GetMeasurement(ctx, models.KindWeight, first.ID.String()); !errors.Is(err, ErrNotFound) {
			t.Errorf("first record must be rolled back, got %v", err)
		}
	})
}
