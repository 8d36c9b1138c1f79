package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestJSONFileRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")

	original := map[string][]string{
		"Acme": {"Website", "Internal"},
	}
	if err := WriteJSONFile(path, original); err != nil {
		t.Fatalf("WriteJSONFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written file: %v", err)
	}
	if !strings.Contains(string(data), "  \"Acme\"") {
		t.Error("expected two-space indented output")
	}

	var loaded map[string][]string
	if err := ReadJSONFile(path, &loaded); err != nil {
		t.Fatalf("ReadJSONFile failed: %v", err)
	}
	if len(loaded["Acme"]) != 2 || loaded["Acme"][0] != "Website" {
		t.Errorf("roundtrip mismatch: %+v", loaded)
	}
}

func TestReadJSONFile(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		var v map[string]string
		err := ReadJSONFile(filepath.Join(t.TempDir(), "absent.json"), &v)
		if !errors.Is(err, ErrSnapshotNotFound) {
			t.Errorf("expected ErrSnapshotNotFound, got %v", err)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		var v map[string]string
		if err := ReadJSONFile(path, &v); err == nil {
			t.Error("expected error for malformed JSON")
		}
	})
}
