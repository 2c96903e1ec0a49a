package store

import (
	"io/fs"
	"strings"
	"testing"
)

// ----------------------------------------------------------------------------
// Migration Parsing Tests
// ----------------------------------------------------------------------------

func TestExtractUpMigration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "up and down sections",
			content: "-- +migrate Up\nCREATE TABLE x(id TEXT);\n-- +migrate Down\nDROP TABLE x;",
			want:    "\nCREATE TABLE x(id TEXT);\n",
		},
		{
			name:    "up section only",
			content: "-- +migrate Up\nCREATE TABLE x(id TEXT);",
			want:    "\nCREATE TABLE x(id TEXT);",
		},
		{
			name:    "no markers returns whole content",
			content: "CREATE TABLE x(id TEXT);",
			want:    "CREATE TABLE x(id TEXT);",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractUpMigration(tt.content)
			if got != tt.want {
				t.Errorf("extractUpMigration() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMigrationFiles_LexicalOrder(t *testing.T) {
	files, err := migrationFiles()
	if err != nil {
		t.Fatalf("migrationFiles() error = %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no embedded migrations found")
	}
	for i := 1; i < len(files); i++ {
		if files[i-1] >= files[i] {
			t.Errorf("migrations out of order: %q before %q", files[i-1], files[i])
		}
	}

	// The schema tables must all be covered by the embedded set.
	joined := strings.Join(files, " ")
	for _, name := range []string{"deals", "overlays", "batches"} {
		if !strings.Contains(joined, name) {
			t.Errorf("no migration file for %s", name)
		}
	}
}

func TestEmbeddedMigrations_HaveUpSections(t *testing.T) {
	files, err := migrationFiles()
	if err != nil {
		t.Fatalf("migrationFiles() error = %v", err)
	}

	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			content, err := fs.ReadFile(migrationFS, migrationRoot+"/"+file)
			if err != nil {
				t.Fatalf("read embedded migration: %v", err)
			}
			up := extractUpMigration(string(content))
			if strings.TrimSpace(up) == "" {
				t.Error("empty up section")
			}
			if !strings.Contains(up, "CREATE TABLE IF NOT EXISTS") {
				t.Error("up section does not create its table idempotently")
			}
			if strings.Contains(up, "DROP TABLE") {
				t.Error("up section contains down-section statements")
			}
		})
	}
}
