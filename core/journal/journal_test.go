package journal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords(base time.Time) []Record {
	return []Record{
		{Timestamp: base, VesselID: "v1", PartID: "goo", ExperimentID: "mysteryGoo", Action: "run", SubjectID: "mysteryGoo@KerbinSrfLanded", Value: 3},
		{Timestamp: base.Add(time.Second), VesselID: "v1", PartID: "goo", ExperimentID: "mysteryGoo", Action: "transfer", Target: "Pod"},
		{Timestamp: base.Add(2 * time.Second), VesselID: "v2", PartID: "thermo", ExperimentID: "temperatureScan", Action: "error", Error: "boom"},
	}
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Unix(1700000000, 0).UTC()
	for _, r := range sampleRecords(base) {
		require.NoError(t, s.Append(ctx, r))
	}

	all, err := s.Query(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "run", all[0].Action)
	assert.True(t, all[0].Timestamp.Equal(base))

	v1, err := s.Query(ctx, Query{VesselID: "v1"})
	require.NoError(t, err)
	assert.Len(t, v1, 2)

	errs, err := s.Query(ctx, Query{Action: "error"})
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "boom", errs[0].Error)

	late, err := s.Query(ctx, Query{Start: base.Add(time.Second), ExperimentID: "mysteryGoo"})
	require.NoError(t, err)
	require.Len(t, late, 1)
	assert.Equal(t, "Pod", late[0].Target)

	last, err := s.Query(ctx, Query{Limit: 1})
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, "v2", last[0].VesselID)
}

func TestJSONLStore(t *testing.T) {
	s, err := NewJSONLStore(filepath.Join(t.TempDir(), "journal.jsonl"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}

func TestJSONLStoreSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("not json\n{\"action\":\"run\"}\n"), 0o644))
	s, err := NewJSONLStore(path)
	require.NoError(t, err)
	out, err := s.Query(context.Background(), Query{})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestJSONLStoreReadsLongLines(t *testing.T) {
	s, err := NewJSONLStore(filepath.Join(t.TempDir(), "journal.jsonl"))
	require.NoError(t, err)
	ctx := context.Background()
	recs := []Record{
		{VesselID: "a", Action: "run"},
		{VesselID: "b", Action: "error", Error: strings.Repeat("e", 70*1024)},
		{VesselID: "c", Action: "error", Error: strings.Repeat("e", MaxLineSize)},
		{VesselID: "d", Action: "run"},
	}
	for _, r := range recs {
		require.NoError(t, s.Append(ctx, r))
	}

	a, err := s.Query(ctx, Query{VesselID: "a"})
	require.NoError(t, err)
	assert.Len(t, a, 1)

	all, err := s.Query(ctx, Query{})
	require.NoError(t, err)
	got := make([]string, 0, len(all))
	for _, r := range all {
		got = append(got, r.VesselID)
	}
	assert.Equal(t, []string{"a", "b", "d"}, got, "oversized line is skipped")
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore("file:journal_test.db?mode=memory&cache=shared")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}

func TestRotatingJSONLStore(t *testing.T) {
	s, err := NewRotatingJSONLStore(filepath.Join(t.TempDir(), "logs", "journal.jsonl"), 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}

func TestRotatingJSONLStore_Rotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.jsonl")
	s, err := NewRotatingJSONLStore(path, 1, 5, 1)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	pad := strings.Repeat("x", 64*1024)
	ctx := context.Background()
	for i := 0; i < 40; i++ {
		rec := Record{Timestamp: time.Unix(int64(i), 0), VesselID: fmt.Sprintf("v%d", i), Action: "run", Error: pad}
		require.NoError(t, s.Append(ctx, rec))
	}
	files, _ := filepath.Glob(filepath.Join(dir, "journal*"))
	assert.Greater(t, len(files), 1, "expected rotated files")

	out, err := s.Query(ctx, Query{VesselID: "v39"})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestNewFromConfig(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{"jsonl", "rotating", "sqlite"} {
		s, err := New(Config{Backend: backend, Path: filepath.Join(dir, backend+".journal")})
		require.NoError(t, err, backend)
		require.NoError(t, s.Append(context.Background(), Record{Action: "run"}))
		require.NoError(t, s.Close())
	}
	s, err := New(Config{Backend: "nop"})
	require.NoError(t, err)
	assert.IsType(t, NopStore{}, s)

	_, err = New(Config{Backend: "cassandra"})
	assert.Error(t, err)
	assert.Contains(t, Backends(), "sqlite")
}
