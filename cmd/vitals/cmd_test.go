// ABOUTME: Tests for CLI helper functions and command execution.
// ABOUTME: Runs full register, login, record, and admin flows against a temp SQLite store.
package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/vitals/internal/auth"
	"github.com/harperreed/vitals/internal/models"
	"github.com/harperreed/vitals/internal/storage"
	"github.com/harperreed/vitals/internal/validation"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "date and time with space", input: "2025-01-31 08:30"},
		{name: "date and time with T", input: "2025-01-31T08:30"},
		{name: "date only", input: "2025-01-31"},
		{name: "RFC3339", input: "2025-01-31T08:30:00Z"},
		{name: "RFC3339 with offset", input: "2025-01-31T08:30:00+05:00"},
		{name: "invalid format", input: "31-01-2025", wantErr: true},
		{name: "invalid random string", input: "not a date", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseTime(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Errorf("parseTime(%q) expected error, got nil", tt.input)
				}
				return
			}

			if err != nil {
				t.Errorf("parseTime(%q) unexpected error: %v", tt.input, err)
				return
			}
			if result.IsZero() {
				t.Errorf("parseTime(%q) returned zero time", tt.input)
			}
		})
	}
}

func TestParseTimeValues(t *testing.T) {
	result, err := parseTime("2025-06-15 07:45")
	if err != nil {
		t.Fatalf("parseTime failed: %v", err)
	}
	if result.Year() != 2025 || result.Month() != time.June || result.Day() != 15 || result.Hour() != 7 {
		t.Errorf("parseTime returned wrong time: got %v", result)
	}
	if result.Location() != time.Local {
		t.Errorf("expected local time, got %v", result.Location())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"hola", 10, "hola"},
		{"hola", 4, "hola"},
		{"consejo de salud muy largo", 10, "consejo..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input  string
		length int
		want   string
	}{
		{"peso", 6, "peso  "},
		{"peso", 4, "peso"},
		{"peso", 0, "peso"},
		{"", 3, "   "},
	}
	for _, tt := range tests {
		if got := padRight(tt.input, tt.length); got != tt.want {
			t.Errorf("padRight(%q, %d) = %q, want %q", tt.input, tt.length, got, tt.want)
		}
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID = %q", got)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "env", "default"); got != "env" {
		t.Errorf("firstNonEmpty = %q", got)
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("firstNonEmpty = %q", got)
	}
}

func TestRootCmdFlags(t *testing.T) {
	if rootCmd.Use != "vitals" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "vitals")
	}
	if rootCmd.Short == "" {
		t.Error("Expected rootCmd.Short to be non-empty")
	}
	if rootCmd.PersistentFlags().Lookup("verbose") == nil {
		t.Error("Expected --verbose persistent flag")
	}
}

func TestAddCmdFlags(t *testing.T) {
	if addCmd.Flags().Lookup("at") == nil {
		t.Error("Expected --at flag on add command")
	}
	found := false
	for _, alias := range addCmd.Aliases {
		if alias == "a" {
			found = true
		}
	}
	if !found {
		t.Error("Expected 'a' alias for addCmd")
	}
}

func TestListCmdFlags(t *testing.T) {
	if listCmd.Flags().Lookup("kind") == nil {
		t.Error("Expected --kind flag on list command")
	}
	limitFlag := listCmd.Flags().Lookup("limit")
	if limitFlag == nil {
		t.Fatal("Expected --limit flag on list command")
	}
	if limitFlag.DefValue != "10" {
		t.Errorf("Expected default limit 10, got %s", limitFlag.DefValue)
	}
}

func TestSubcommands(t *testing.T) {
	tests := []struct {
		parent *cobra.Command
		want   []string
	}{
		{userCmd, []string{"register", "login", "logout", "whoami"}},
		{adminCmd, []string{"users", "records", "edit", "delete", "delete-user", "promote", "bootstrap"}},
		{adviceCmd, []string{"list", "show", "topics", "add", "edit", "delete"}},
		{backupCmd, []string{"push", "list", "pull", "delete"}},
	}
	for _, tt := range tests {
		names := make(map[string]bool)
		for _, c := range tt.parent.Commands() {
			names[c.Name()] = true
		}
		for _, want := range tt.want {
			if !names[want] {
				t.Errorf("Expected %s subcommand %q", tt.parent.Name(), want)
			}
		}
	}
}

func TestTopLevelCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"add", "list", "history", "dashboard", "stats", "bmi", "export", "import", "migrate", "mcp"} {
		if !names[want] {
			t.Errorf("Expected command %q to be registered", want)
		}
	}
}

func TestExportCmdValidArgs(t *testing.T) {
	expected := map[string]bool{"json": false, "yaml": false, "markdown": false}
	for _, arg := range exportCmd.ValidArgs {
		expected[arg] = true
	}
	for arg, found := range expected {
		if !found {
			t.Errorf("Expected valid arg %q for exportCmd", arg)
		}
	}
}

// setupTestCLI points config, session and data at temp directories.
func setupTestCLI(t *testing.T) string {
	t.Helper()
	dataHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", dataHome)
	for _, v := range []string{"VITALS_BACKEND", "VITALS_DSN", "VITALS_DATA_DIR", "VITALS_SECRET", "VITALS_AMQP_URL", "VITALS_IMAGES_DRIVER", "VITALS_IMAGES_DIR"} {
		t.Setenv(v, "")
	}
	return filepath.Join(dataHome, "vitals", "vitals.db")
}

// runCLI executes args with every flag reset to its default.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	return Execute()
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func mustRun(t *testing.T, args ...string) {
	t.Helper()
	if err := runCLI(t, args...); err != nil {
		t.Fatalf("vitals %v: %v", args, err)
	}
}

func openTestDB(t *testing.T, path string) *storage.DB {
	t.Helper()
	db, err := storage.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func registerAndLogin(t *testing.T, name string) {
	t.Helper()
	mustRun(t, "user", "register", "--name", name, "--email", name+"@example.com", "--password", "secreto", "--age", "34")
	mustRun(t, "user", "login", name, "--password", "secreto")
}

func TestRecordFlow(t *testing.T) {
	dbPath := setupTestCLI(t)

	if err := runCLI(t, "add", "peso", "70"); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized before login, got %v", err)
	}

	registerAndLogin(t, "ana")
	mustRun(t, "add", "peso", "70.5")
	mustRun(t, "add", "altura", "175", "--at", "2025-01-31 08:30")
	mustRun(t, "add", "bp", "120", "80")

	err := runCLI(t, "add", "bp", "300", "80")
	var verrs validation.Errors
	if !errors.As(err, &verrs) || len(verrs) != 1 {
		t.Fatalf("expected one validation error, got %v", err)
	}
	if err := runCLI(t, "add", "bp", "120"); err == nil {
		t.Error("expected error for missing diastolic value")
	}
	if err := runCLI(t, "add", "glucosa", "90"); err == nil {
		t.Error("expected error for unknown kind")
	}

	for _, args := range [][]string{
		{"list"},
		{"list", "--kind", "bp", "-n", "5"},
		{"history"},
		{"dashboard"},
		{"stats"},
		{"bmi"},
		{"user", "whoami"},
	} {
		mustRun(t, args...)
	}

	db := openTestDB(t, dbPath)
	u, err := db.GetUserByName(t.Context(), "ana")
	if err != nil {
		t.Fatalf("GetUserByName: %v", err)
	}
	if u.Age == nil || *u.Age != 34 {
		t.Errorf("Age = %v, want 34", u.Age)
	}

	weights, err := db.ListMeasurements(t.Context(), u.ID, models.KindWeight, 0)
	if err != nil || len(weights) != 1 || weights[0].Value() != 70.5 {
		t.Fatalf("weights = %v, err %v", weights, err)
	}
	heights, _ := db.ListMeasurements(t.Context(), u.ID, models.KindHeight, 0)
	if len(heights) != 1 || heights[0].Timestamp.Local().Format("2006-01-02 15:04") != "2025-01-31 08:30" {
		t.Errorf("heights = %v", heights)
	}
	bp, _ := db.ListMeasurements(t.Context(), u.ID, models.KindBloodPressure, 0)
	if len(bp) != 1 || bp[0].Systolic() != 120 || bp[0].Diastolic() != 80 {
		t.Errorf("blood pressure = %v", bp)
	}

	mustRun(t, "user", "logout")
	if err := runCLI(t, "dashboard"); !errors.Is(err, auth.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized after logout, got %v", err)
	}
}

func TestStatsWithoutDataIsInformational(t *testing.T) {
	setupTestCLI(t)
	registerAndLogin(t, "luis")

	if err := runCLI(t, "stats"); err != nil {
		t.Errorf("stats without data should not fail: %v", err)
	}
	if err := runCLI(t, "bmi"); err != nil {
		t.Errorf("bmi without data should not fail: %v", err)
	}
}

func TestRegisterDuplicateName(t *testing.T) {
	setupTestCLI(t)
	mustRun(t, "user", "register", "--name", "ana", "--email", "ana@example.com", "--password", "x")

	err := runCLI(t, "user", "register", "--name", "ana", "--email", "otra@example.com", "--password", "x")
	if !errors.Is(err, storage.ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
	if err := runCLI(t, "user", "login", "ana", "--password", "mal"); !errors.Is(err, auth.ErrBadCredentials) {
		t.Errorf("expected ErrBadCredentials, got %v", err)
	}
}

func TestAdminFlow(t *testing.T) {
	dbPath := setupTestCLI(t)

	registerAndLogin(t, "ana")
	mustRun(t, "add", "peso", "70")
	mustRun(t, "add", "peso", "71")

	if err := runCLI(t, "admin", "users"); !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for regular user, got %v", err)
	}

	mustRun(t, "admin", "bootstrap", "--password", "clave")
	// A second bootstrap reports the existing account and succeeds.
	mustRun(t, "admin", "bootstrap", "--password", "clave")
	mustRun(t, "user", "login", defaultAdminName, "--password", "clave")
	mustRun(t, "admin", "users", "ana")

	db := openTestDB(t, dbPath)
	ana, err := db.GetUserByName(t.Context(), "ana")
	if err != nil {
		t.Fatalf("GetUserByName: %v", err)
	}
	weights, _ := db.ListMeasurements(t.Context(), ana.ID, models.KindWeight, 0)
	if len(weights) != 2 {
		t.Fatalf("expected 2 weights, got %d", len(weights))
	}

	mustRun(t, "admin", "records", ana.ID.String()[:8])
	mustRun(t, "admin", "edit", "peso", weights[0].ID.String()[:8], "72.5")
	mustRun(t, "admin", "delete", "peso", weights[1].ID.String()[:8])

	weights, _ = db.ListMeasurements(t.Context(), ana.ID, models.KindWeight, 0)
	if len(weights) != 1 || weights[0].Value() != 72.5 {
		t.Fatalf("after edit/delete weights = %v", weights)
	}

	err = runCLI(t, "admin", "edit", "peso", weights[0].ID.String()[:8], "900")
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Errorf("expected validation error for out-of-range edit, got %v", err)
	}

	mustRun(t, "admin", "promote", ana.ID.String()[:8])
	promoted, _ := db.GetUser(t.Context(), ana.ID.String())
	if !promoted.IsAdmin() {
		t.Error("expected ana to be admin after promote")
	}

	mustRun(t, "admin", "delete-user", ana.ID.String()[:8])
	if _, err := db.GetUser(t.Context(), ana.ID.String()); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ana deleted, got %v", err)
	}
}

func TestAdviceFlow(t *testing.T) {
	dbPath := setupTestCLI(t)
	dir := t.TempDir()
	image := filepath.Join(dir, "luna.png")
	if err := os.WriteFile(image, []byte("png"), 0600); err != nil {
		t.Fatal(err)
	}

	mustRun(t, "admin", "bootstrap", "--name", "jefa", "--email", "jefa@example.com", "--password", "clave")
	mustRun(t, "user", "login", "jefa", "--password", "clave")
	mustRun(t, "advice", "add", "--title", "Duerme bien", "--body", "Siete horas", "--topic", "Sueño", "--image", image)
	mustRun(t, "advice", "list", "--topic", "Sueño")
	mustRun(t, "advice", "list", "-q", "horas")
	mustRun(t, "advice", "topics")

	db := openTestDB(t, dbPath)
	list, err := db.ListAdvice(t.Context(), storage.AdviceFilter{})
	if err != nil || len(list) != 1 {
		t.Fatalf("advice = %v, err %v", list, err)
	}
	a := list[0]
	if a.ImageURL == nil {
		t.Fatal("expected image reference")
	}

	mustRun(t, "advice", "show", a.ID.String()[:8])
	mustRun(t, "advice", "edit", a.ID.String()[:8], "--title", "Descansa")
	got, _ := db.GetAdvice(t.Context(), a.ID.String())
	if got.Title != "Descansa" || got.Body != "Siete horas" {
		t.Errorf("after edit = %+v", got)
	}

	if err := runCLI(t, "advice", "add", "--title", "x", "--body", "y", "--image", filepath.Join(dir, "virus.exe")); err == nil {
		t.Error("expected error for missing image file")
	}

	mustRun(t, "advice", "delete", a.ID.String()[:8])
	if _, err := db.GetAdvice(t.Context(), a.ID.String()); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected advice deleted, got %v", err)
	}
}

func TestExportImportFlow(t *testing.T) {
	dbPath := setupTestCLI(t)
	registerAndLogin(t, "ana")
	mustRun(t, "add", "peso", "70")
	mustRun(t, "add", "bp", "120", "80")

	out := filepath.Join(t.TempDir(), "respaldo.json")
	mustRun(t, "export", "json", "-o", out)
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("export file missing: %v", err)
	}
	mustRun(t, "export", "yaml", "-o", filepath.Join(t.TempDir(), "respaldo.yaml"))
	mustRun(t, "export", "markdown", "--since", "2020-01-01", "-o", filepath.Join(t.TempDir(), "respaldo.md"))
	if err := runCLI(t, "export", "csv"); err == nil {
		t.Error("expected error for unknown format")
	}

	// Re-importing the same export skips every measurement.
	mustRun(t, "import", out)
	db := openTestDB(t, dbPath)
	ana, _ := db.GetUserByName(t.Context(), "ana")
	weights, _ := db.ListMeasurements(t.Context(), ana.ID, models.KindWeight, 0)
	if len(weights) != 1 {
		t.Errorf("expected import to skip existing rows, got %d weights", len(weights))
	}

	registerAndLogin(t, "luis")
	if err := runCLI(t, "import", out); !errors.Is(err, auth.ErrForbidden) {
		t.Errorf("expected ErrForbidden importing another user's export, got %v", err)
	}
}

func TestMigrateFlow(t *testing.T) {
	setupTestCLI(t)
	registerAndLogin(t, "ana")
	mustRun(t, "add", "peso", "70")
	mustRun(t, "add", "bp", "120", "80")

	dst := filepath.Join(t.TempDir(), "destino.db")
	mustRun(t, "migrate", "--to", "gorm-sqlite", "--dsn", dst, "--dry-run")
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Fatalf("dry run must not create the destination, got %v", err)
	}

	mustRun(t, "migrate", "--to", "gorm-sqlite", "--dsn", dst)

	g, err := storage.OpenGorm(storage.BackendGormSQLite, dst)
	if err != nil {
		t.Fatalf("OpenGorm: %v", err)
	}
	defer g.Close()
	ana, err := g.GetUserByName(t.Context(), "ana")
	if err != nil {
		t.Fatalf("migrated user missing: %v", err)
	}
	bp, _ := g.ListMeasurements(t.Context(), ana.ID, models.KindBloodPressure, 0)
	if len(bp) != 1 {
		t.Errorf("expected 1 migrated blood pressure, got %d", len(bp))
	}

	if err := runCLI(t, "migrate", "--to", "gorm-sqlite", "--dsn", dst); err == nil {
		t.Error("expected error migrating into a non-empty destination")
	}
	if err := runCLI(t, "migrate"); err == nil {
		t.Error("expected error without --to")
	}
}
