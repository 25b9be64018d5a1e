package store

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rajasatyajit/bousai/internal/models"
)

func TestMemoryStore_GetPut(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "U1"); ok || err != nil {
		t.Fatalf("Expected missing user, got ok=%v err=%v", ok, err)
	}

	if err := s.Put(ctx, "U1", models.UserRecord{}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	rec, ok, err := s.Get(ctx, "U1")
	if err != nil || !ok {
		t.Fatalf("Expected user after follow, got ok=%v err=%v", ok, err)
	}
	if rec.HasLocation() {
		t.Error("Expected no location after follow")
	}

	if err := s.Put(ctx, "U1", models.NewUserRecord(34.69, 135.18)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	rec, _, _ = s.Get(ctx, "U1")
	if !rec.HasLocation() || *rec.Latitude != 34.69 || *rec.Longitude != 135.18 {
		t.Errorf("Unexpected record after location: %+v", rec)
	}

	if s.Len() != 1 {
		t.Errorf("Expected 1 user, got %d", s.Len())
	}
}

func TestMemoryStore_Flush(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Put(ctx, "U1", models.UserRecord{})
	_ = s.Put(ctx, "U2", models.NewUserRecord(35.0, 135.5))

	var buf bytes.Buffer
	if err := s.Flush(&buf); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	var got map[string]map[string]*float64
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Flush output is not JSON: %v", err)
	}
	if got["U1"]["lat"] != nil || got["U1"]["lon"] != nil {
		t.Errorf("Expected null coordinates for U1, got %+v", got["U1"])
	}
	if got["U2"]["lat"] == nil || *got["U2"]["lat"] != 35.0 {
		t.Errorf("Unexpected U2 entry %+v", got["U2"])
	}
	if !bytes.Contains(buf.Bytes(), []byte("\n  \"U1\"")) {
		t.Errorf("Expected two-space indentation, got %s", buf.String())
	}
}
