package repositories

import (
	"database/sql"
	"testing"
	"time"

	"github.com/desertthunder/t2c/internal/models"
	"github.com/desertthunder/t2c/internal/shared"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func testRecord(runID, workspace, group string) *models.RunRecord {
	return &models.RunRecord{
		RunID:     runID,
		Workspace: workspace,
		Group:     group,
		Created:   5,
		Skipped:   1,
		Failed:    0,
		StartedAt: time.Date(2016, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestRunRepository_Create(t *testing.T) {
	repo := NewRunRepository(setupTestDB(t))

	record := testRecord("run-1", "Acme", "clients")
	if err := repo.Create(record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if record.RecordID == "" {
		t.Error("expected a generated record ID")
	}

	loaded, err := repo.Get(record.RecordID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded.RunID != "run-1" || loaded.Workspace != "Acme" || loaded.Group != "clients" {
		t.Errorf("unexpected record: %+v", loaded)
	}
	if loaded.Created != 5 || loaded.Skipped != 1 {
		t.Errorf("counts not persisted: %+v", loaded)
	}
}

func TestRunRepository_CreateInvalid(t *testing.T) {
	repo := NewRunRepository(setupTestDB(t))

	record := testRecord("", "Acme", "clients")
	if err := repo.Create(record); err == nil {
		t.Error("expected validation error for missing run ID")
	}
}

func TestRunRepository_Update(t *testing.T) {
	repo := NewRunRepository(setupTestDB(t))

	record := testRecord("run-1", "Acme", "clients")
	if err := repo.Create(record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	record.Created = 10
	record.Failed = 2
	if err := repo.Update(record); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	loaded, err := repo.Get(record.RecordID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded.Created != 10 || loaded.Failed != 2 {
		t.Errorf("update not persisted: %+v", loaded)
	}

	missing := testRecord("run-x", "Acme", "tags")
	missing.RecordID = "does-not-exist"
	if err := repo.Update(missing); err == nil {
		t.Error("expected error updating a missing record")
	}
}

func TestRunRepository_Delete(t *testing.T) {
	repo := NewRunRepository(setupTestDB(t))

	record := testRecord("run-1", "Acme", "clients")
	if err := repo.Create(record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.Delete(record.RecordID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Get(record.RecordID); err == nil {
		t.Error("expected error getting a deleted record")
	}
	if err := repo.Delete(record.RecordID); err == nil {
		t.Error("expected error deleting twice")
	}
}

func TestRunRepository_List(t *testing.T) {
	repo := NewRunRepository(setupTestDB(t))

	for _, record := range []*models.RunRecord{
		testRecord("run-1", "Acme", "clients"),
		testRecord("run-1", "Acme", "projects"),
		testRecord("run-2", "Beta", "clients"),
	} {
		if err := repo.Create(record); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	t.Run("all records", func(t *testing.T) {
		records, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(records) != 3 {
			t.Errorf("expected 3 records, got %d", len(records))
		}
	})

	t.Run("filter by run_id", func(t *testing.T) {
		records, err := repo.List(map[string]any{"run_id": "run-1"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(records) != 2 {
			t.Errorf("expected 2 records, got %d", len(records))
		}
	})

	t.Run("filter by workspace", func(t *testing.T) {
		records, err := repo.List(map[string]any{"workspace": "Beta"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(records) != 1 || records[0].RunID != "run-2" {
			t.Errorf("unexpected records: %+v", records)
		}
	})
}
