package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestJournal_OpenMissing(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal.msgpack"))
	require.NoError(t, err)
	assert.Equal(t, 0, j.Len())
}

func TestJournal_RecordSaveReopen(t *testing.T) {
	dir := t.TempDir()
	journalPath := filepath.Join(dir, ".cprep", "journal.msgpack")
	target := filepath.Join(dir, "usb_pe_drp_sm.c")

	j, err := Open(journalPath)
	require.NoError(t, err)
	stored, err := j.Record(target, "remove-functions", []byte("int x;\n"), 0600)
	require.NoError(t, err)
	assert.True(t, stored)
	require.NoError(t, j.Save())

	reopened, err := Open(journalPath)
	require.NoError(t, err)
	require.Equal(t, 1, reopened.Len())

	e, err := reopened.Get(target)
	require.NoError(t, err)
	assert.Equal(t, "remove-functions", e.Tool)
	assert.Equal(t, []byte("int x;\n"), e.Content)
	assert.Equal(t, uint32(0600), e.Mode)
	assert.Len(t, e.SHA256, 64)
}

func TestJournal_RecordKeepsFirstBackup(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "pd.c")
	j, err := Open(filepath.Join(dir, "journal.msgpack"))
	require.NoError(t, err)

	stored, err := j.Record(target, "resolve-flags", []byte("v1"), 0644)
	require.NoError(t, err)
	assert.True(t, stored)
	stored, err = j.Record(target, "remove-functions", []byte("v2"), 0644)
	require.NoError(t, err)
	assert.False(t, stored)

	assert.Equal(t, 1, j.Len())
	e, err := j.Get(target)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), e.Content)
	assert.Equal(t, "resolve-flags", e.Tool)

	// After a restore the next rewrite is recorded again.
	require.NoError(t, os.WriteFile(target, []byte("v3"), 0644))
	_, err = j.Restore(target)
	require.NoError(t, err)
	stored, err = j.Record(target, "remove-states", []byte("v1"), 0644)
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestJournal_Restore(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "pd.c")
	require.NoError(t, os.WriteFile(target, []byte("rewritten\n"), 0644))

	j, err := Open(filepath.Join(dir, "journal.msgpack"))
	require.NoError(t, err)
	_, err = j.Record(target, "resolve-flags", []byte("original\n"), 0644)
	require.NoError(t, err)

	e, err := j.Restore(target)
	require.NoError(t, err)
	assert.Equal(t, "resolve-flags", e.Tool)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "original\n", string(data))

	_, err = j.Get(target)
	assert.ErrorIs(t, err, ErrNoEntry)
}

func TestJournal_RestoreMissing(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal.msgpack"))
	require.NoError(t, err)

	_, err = j.Restore("nothing.c")
	assert.ErrorIs(t, err, ErrNoEntry)
}

func TestJournal_Limit(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal.msgpack"), WithLimit(2))
	require.NoError(t, err)
	j.now = fixedClock(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))

	_, err = j.Record("a.c", "t", []byte("a"), 0644)
	require.NoError(t, err)
	_, err = j.Record("b.c", "t", []byte("b"), 0644)
	require.NoError(t, err)
	_, err = j.Record("c.c", "t", []byte("c"), 0644)
	require.NoError(t, err)

	assert.Equal(t, 2, j.Len())
	_, err = j.Get("a.c")
	assert.ErrorIs(t, err, ErrNoEntry, "oldest entry should be evicted")

	entries := j.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "c", string(entries[0].Content))
	assert.Equal(t, "b", string(entries[1].Content))
}

func TestJournal_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.msgpack")
	require.NoError(t, os.WriteFile(path, []byte{0xc1}, 0644))

	_, err := Open(path)
	assert.Error(t, err)
}
