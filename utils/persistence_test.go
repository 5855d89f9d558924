package utils

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileIsColdStart(t *testing.T) {
	snap := NewSnapshot(filepath.Join(t.TempDir(), "missing.json"), time.Second, nil)
	err := snap.Load(func([]byte) error {
		t.Fatal("restore must not run for a missing file")
		return nil
	})
	assert.NoError(t, err)
}

func TestLoadHandsDataToRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0o644))

	var got []byte
	snap := NewSnapshot(path, time.Second, nil)
	require.NoError(t, snap.Load(func(data []byte) error {
		got = data
		return nil
	}))
	assert.Equal(t, `{"a":1}`, string(got))
}

func TestDebounceCollapsesBurstIntoOneWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	var marshals atomic.Int32
	snap := NewSnapshot(path, 50*time.Millisecond, func() ([]byte, error) {
		marshals.Add(1)
		return []byte(`{"v":"final"}`), nil
	})

	for i := 0; i < 20; i++ {
		snap.MarkDirty()
		time.Sleep(time.Millisecond)
	}

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && string(data) == `{"v":"final"}`
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), marshals.Load())
}

func TestFlushWritesImmediatelyAndCancelsPending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	var marshals atomic.Int32
	snap := NewSnapshot(path, time.Hour, func() ([]byte, error) {
		marshals.Add(1)
		return []byte(`{}`), nil
	})

	snap.MarkDirty()
	require.NoError(t, snap.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
	assert.Equal(t, int32(1), marshals.Load())
}

func TestFlushCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")
	snap := NewSnapshot(path, time.Second, func() ([]byte, error) {
		return []byte(`{}`), nil
	})
	require.NoError(t, snap.Flush())

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestFlushLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	snap := NewSnapshot(filepath.Join(dir, "state.json"), time.Second, func() ([]byte, error) {
		return []byte(`{}`), nil
	})
	require.NoError(t, snap.Flush())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())
}
