package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/rajasatyajit/bousai/internal/errors"
	"github.com/rajasatyajit/bousai/internal/models"
)

func TestFileStore_PersistsAcrossReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	ctx := context.Background()

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := s.Put(ctx, "U1", models.UserRecord{}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, "U2", models.NewUserRecord(34.6913, 135.183)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read users file: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("users file is not JSON: %v", err)
	}
	if string(raw["U1"]) != "{\n    \"lat\": null,\n    \"lon\": null\n  }" {
		t.Errorf("Unexpected U1 entry %s", raw["U1"])
	}

	reloaded, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	rec, ok, err := reloaded.Get(ctx, "U2")
	if err != nil || !ok {
		t.Fatalf("Expected U2 after reload, ok=%v err=%v", ok, err)
	}
	if *rec.Latitude != 34.6913 || *rec.Longitude != 135.183 {
		t.Errorf("Unexpected U2 record %+v", rec)
	}
}

func TestFileStore_MissingAndEmptyFile(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFileStore(filepath.Join(dir, "absent.json"))
	if err != nil {
		t.Fatalf("Expected missing file to be an empty registry, got %v", err)
	}
	if s.mem.Len() != 0 {
		t.Errorf("Expected empty registry")
	}

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(empty); err != nil {
		t.Errorf("Expected blank file to load, got %v", err)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewFileStore(path)
	var storeErr apperrors.StoreError
	if !errors.As(err, &storeErr) || storeErr.Backend != "file" {
		t.Fatalf("Expected file StoreError, got %v", err)
	}
}

func TestFileStore_WriteFailureKeepsPreviousRecord(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "gone")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	s, err := NewFileStore(filepath.Join(dir, "users.json"))
	if err != nil {
		t.Fatal(err)
	}

	lat, lon := 34.6913, 135.183
	if err := s.Put(ctx, "U1", models.NewUserRecord(lat, lon)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}

	if err := s.Put(ctx, "U1", models.UserRecord{}); err == nil {
		t.Fatal("Expected error when the registry directory is gone")
	}

	rec, ok, err := s.Get(ctx, "U1")
	if err != nil || !ok {
		t.Fatalf("Expected U1 to remain registered, got ok=%v err=%v", ok, err)
	}
	if !rec.HasLocation() || *rec.Latitude != lat || *rec.Longitude != lon {
		t.Errorf("Expected previous coordinates, got %+v", rec)
	}
}

func TestFileStore_WriteFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	s, err := NewFileStore(filepath.Join(dir, "users.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(dir); err != nil {
		t.Fatal(err)
	}

	if err := s.Put(context.Background(), "U1", models.UserRecord{}); err == nil {
		t.Error("Expected error when the registry directory is gone")
	}
	if _, ok, _ := s.Get(context.Background(), "U1"); ok {
		t.Error("Expected failed Put to leave the registry unchanged")
	}
	if err := s.Health(context.Background()); err == nil {
		t.Error("Expected unhealthy registry when the directory is gone")
	}
}
