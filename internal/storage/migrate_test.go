// ABOUTME: Tests for data migration between storage backends.
// ABOUTME: Covers sqlite-to-gorm migration and the file emptiness check.
package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/vitals/internal/models"
)

func TestMigrateDataSQLiteToGorm(t *testing.T) {
	ctx := context.Background()
	src := setupTestDB(t)

	ana := createTestUser(t, src, "ana")
	beto := createTestUser(t, src, "beto")
	now := time.Now()
	createTestMeasurement(t, src, ana.ID, models.KindWeight, weight(70), now)
	createTestMeasurement(t, src, ana.ID, models.KindWeight, weight(71), now.Add(-time.Hour))
	createTestMeasurement(t, src, beto.ID, models.KindBloodPressure, pressure(118, 76), now)

	advice := models.NewAdvice(ana.ID, "Camina", "Treinta minutos", "Ejercicio")
	if err := src.CreateAdvice(ctx, advice); err != nil {
		t.Fatalf("CreateAdvice failed: %v", err)
	}

	dst := setupGormStore(t)
	summary, err := MigrateData(ctx, src, dst)
	if err != nil {
		t.Fatalf("MigrateData failed: %v", err)
	}

	if summary.Users != 2 {
		t.Errorf("Expected 2 users migrated, got %d", summary.Users)
	}
	if summary.Measurements[models.KindWeight] != 2 {
		t.Errorf("Expected 2 weight rows migrated, got %d", summary.Measurements[models.KindWeight])
	}
	if summary.Total() != 3 {
		t.Errorf("Expected 3 measurements migrated, got %d", summary.Total())
	}
	if summary.Advice != 1 {
		t.Errorf("Expected 1 advice migrated, got %d", summary.Advice)
	}

	bp, err := dst.LatestMeasurement(ctx, beto.ID, models.KindBloodPressure)
	if err != nil {
		t.Fatalf("LatestMeasurement in destination failed: %v", err)
	}
	if bp.Systolic() != 118 || bp.Diastolic() != 76 {
		t.Errorf("Expected 118/76, got %v/%v", bp.Systolic(), bp.Diastolic())
	}

	got, err := dst.GetAdvice(ctx, advice.ID.String())
	if err != nil {
		t.Fatalf("GetAdvice in destination failed: %v", err)
	}
	if got.AuthorID == nil || *got.AuthorID != ana.ID {
		t.Errorf("Expected author %s, got %v", ana.ID, got.AuthorID)
	}
}

func TestMigrateDataIntoNonEmptyDestinationFails(t *testing.T) {
	ctx := context.Background()
	src := setupTestDB(t)
	createTestUser(t, src, "ana")

	dst := setupTestDB(t)
	createTestUser(t, dst, "ana")

	if _, err := MigrateData(ctx, src, dst); err == nil {
		t.Error("Expected duplicate user error migrating into a populated store")
	}
}

func TestIsFileNonEmpty(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing.db")
	ok, err := IsFileNonEmpty(missing)
	if err != nil || ok {
		t.Errorf("missing file: got %v, %v", ok, err)
	}

	empty := filepath.Join(dir, "empty.db")
	if err := os.WriteFile(empty, nil, 0600); err != nil {
		t.Fatal(err)
	}
	ok, err = IsFileNonEmpty(empty)
	if err != nil || ok {
		t.Errorf("empty file: got %v, %v", ok, err)
	}

	full := filepath.Join(dir, "full.db")
	if err := os.WriteFile(full, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	ok, err = IsFileNonEmpty(full)
	if err != nil || !ok {
		t.Errorf("full file: got %v, %v", ok, err)
	}
}
