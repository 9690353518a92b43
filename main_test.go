package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sadopc/termsplit/internal/logging"
	"github.com/sadopc/termsplit/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func lastSplits(t *testing.T, s *store.Store) string {
	t.Helper()
	v, err := s.LastSplits()
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestOpenLedgerRemembersPath(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(t.TempDir(), "game.splits")
	if err := os.WriteFile(path, []byte("Intro\t\t\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctl, err := openLedger(path, false, s, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if ctl.Ledger().Len() != 1 {
		t.Errorf("expected 1 split, got %d", ctl.Ledger().Len())
	}
	if got := lastSplits(t, s); got != path {
		t.Errorf("expected last splits %q, got %q", path, got)
	}
}

func TestOpenLedgerBadPathNotRemembered(t *testing.T) {
	s := newTestStore(t)
	good := "/runs/good.splits"
	s.SetSetting(store.SettingLastSplits, good)

	bad := filepath.Join(t.TempDir(), "missing.splits")
	if _, err := openLedger(bad, false, s, logging.Discard()); err == nil {
		t.Fatal("expected error for missing file")
	}
	if got := lastSplits(t, s); got != good {
		t.Errorf("expected last splits to stay %q, got %q", good, got)
	}
}

func TestOpenLedgerForgetsBrokenRememberedPath(t *testing.T) {
	s := newTestStore(t)
	bad := filepath.Join(t.TempDir(), "gone.splits")
	s.SetSetting(store.SettingLastSplits, bad)

	if _, err := openLedger(bad, true, s, logging.Discard()); err == nil {
		t.Fatal("expected error for missing file")
	}
	if got := lastSplits(t, s); got != "" {
		t.Errorf("expected last splits to be cleared, got %q", got)
	}
}

func TestOpenLedgerWithoutHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.splits")
	if err := os.WriteFile(path, []byte("a\nb\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctl, err := openLedger(path, true, nil, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if ctl.Ledger().Len() != 2 {
		t.Errorf("expected 2 splits, got %d", ctl.Ledger().Len())
	}
}

func TestCheckName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"Intro", false},
		{"", true},
		{"  ", true},
		{"a\tb", true},
		{"a\nb", true},
	}
	for _, tt := range tests {
		if err := checkName(0, tt.name); (err != nil) != tt.wantErr {
			t.Errorf("checkName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
