package checkpoint

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFileManagerSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(Config{Enabled: true, Dir: dir})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	ctx := context.Background()
	want := &Checkpoint{
		Package:         "com.example.app",
		Track:           "beta",
		EditID:          "edit-123",
		VersionCodes:    []int64{41, 42},
		LastVersionCode: 42,
		UpdatedAt:       time.Now().UTC().Truncate(time.Second),
	}

	if err := mgr.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := mgr.Load(ctx, "com.example.app", "beta")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.EditID != want.EditID {
		t.Errorf("EditID = %q, want %q", got.EditID, want.EditID)
	}
	if got.LastVersionCode != want.LastVersionCode {
		t.Errorf("LastVersionCode = %d, want %d", got.LastVersionCode, want.LastVersionCode)
	}
	if len(got.VersionCodes) != 2 || got.VersionCodes[1] != 42 {
		t.Errorf("VersionCodes = %v, want %v", got.VersionCodes, want.VersionCodes)
	}
	if !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, want.UpdatedAt)
	}
}

func TestFileManagerLoadMissing(t *testing.T) {
	mgr, err := NewManager(Config{Enabled: true, Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	_, err = mgr.Load(context.Background(), "com.example.app", "beta")
	if !errors.Is(err, ErrNoCheckpoint) {
		t.Errorf("expected ErrNoCheckpoint, got %v", err)
	}
}

func TestFileManagerIsolatesPackageAndTrack(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(Config{Enabled: true, Dir: dir})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	ctx := context.Background()
	if err := mgr.Save(ctx, &Checkpoint{Package: "com.example.app", Track: "beta", LastVersionCode: 10}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := mgr.Save(ctx, &Checkpoint{Package: "com.example.app", Track: "production", LastVersionCode: 9}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := mgr.Load(ctx, "com.example.app", "beta")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.LastVersionCode != 10 {
		t.Errorf("LastVersionCode = %d, want 10", got.LastVersionCode)
	}

	if _, err := mgr.Load(ctx, "com.other.app", "beta"); !errors.Is(err, ErrNoCheckpoint) {
		t.Errorf("expected ErrNoCheckpoint for other package, got %v", err)
	}
}

func TestDisabledManagerIsNoop(t *testing.T) {
	mgr, err := NewManager(Config{Enabled: false})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	ctx := context.Background()
	if err := mgr.Save(ctx, &Checkpoint{Package: "com.example.app", Track: "beta"}); err != nil {
		t.Errorf("noop Save failed: %v", err)
	}
	if _, err := mgr.Load(ctx, "com.example.app", "beta"); !errors.Is(err, ErrNoCheckpoint) {
		t.Errorf("expected ErrNoCheckpoint from noop manager, got %v", err)
	}
}
