package store

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetTextMiss(t *testing.T) {
	s := openTestStore(t)
	text, hit, err := s.GetText(context.Background(), "unknown.jpeg")
	if err != nil {
		t.Fatalf("GetText: %v", err)
	}
	if hit || text != "" {
		t.Errorf("got hit=%v text=%q for unknown key", hit, text)
	}
}

func TestPutAndGetText(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.PutText(ctx, "a.jpeg", "VÖEN: 123\nCəmi 1.00"); err != nil {
		t.Fatalf("PutText: %v", err)
	}
	text, hit, err := s.GetText(ctx, "a.jpeg")
	if err != nil {
		t.Fatalf("GetText: %v", err)
	}
	if !hit || text != "VÖEN: 123\nCəmi 1.00" {
		t.Errorf("hit=%v text=%q", hit, text)
	}
}

func TestPutTextReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.PutText(ctx, "a.jpeg", "first pass"); err != nil {
		t.Fatalf("PutText: %v", err)
	}
	if err := s.PutText(ctx, "a.jpeg", "second pass"); err != nil {
		t.Fatalf("PutText upsert: %v", err)
	}
	text, hit, err := s.GetText(ctx, "a.jpeg")
	if err != nil || !hit {
		t.Fatalf("GetText: hit=%v err=%v", hit, err)
	}
	if text != "second pass" {
		t.Errorf("text = %q, want the replacement", text)
	}
}
