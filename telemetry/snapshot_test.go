package telemetry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version: SnapshotVersion,
		RNGSeed: 42,
		Tick:    1000,
		Solver: SolverState{
			Threshold: 0.5,
			Substeps:  4,
			K:         0.04,
			K2:        0.1,
			Gamma:     0.03,
			Viscosity: 0.05,
		},
		Particles: []ParticleState{
			{Pos: [3]float32{0.3, -1.2, 0}, Vel: [3]float32{0.01, 0, -0.02}},
			{Pos: [3]float32{0.6, -1.2, 0}},
		},
		Bookmark: &Bookmark{
			Type:        BookmarkSplash,
			Tick:        1000,
			Description: "Test bookmark",
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err, "snapshot file not created")

	loaded, err := LoadSnapshot(path)
	require.NoError(t, err)

	assert.Equal(t, snapshot.RNGSeed, loaded.RNGSeed)
	assert.Equal(t, snapshot.Tick, loaded.Tick)
	assert.Equal(t, snapshot.Solver, loaded.Solver)
	assert.Equal(t, snapshot.Particles, loaded.Particles)
	require.NotNil(t, loaded.Bookmark)
	assert.Equal(t, BookmarkSplash, loaded.Bookmark.Type)
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version: SnapshotVersion,
		Tick:    5000,
		Bookmark: &Bookmark{
			Type: BookmarkCompression,
			Tick: 5000,
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected := filepath.Join(tmpDir, "snapshot_5000_compression.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}

	path, err = SaveSnapshot(&Snapshot{Version: SnapshotVersion, Tick: 3000}, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected = filepath.Join(tmpDir, "snapshot_3000.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}
}

func TestLoadSnapshotRejectsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99}`), 0644))

	_, err := LoadSnapshot(path)
	assert.True(t, errors.Is(err, ErrSnapshotVersion))
}
