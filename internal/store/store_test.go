package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nita121388/Merge-Annotator/internal/analysis"
)

func sampleRecord(id string) *Record {
	return &Record{
		ID:        id,
		CreatedAt: "2026-08-26T10:00:00Z",
		Status:    "completed",
		Roots:     analysis.Roots{Branch: "/b", Trunk: "/t", Merge: "/m"},
		Result: &analysis.Result{
			Roots: analysis.Roots{Branch: "/b", Trunk: "/t", Merge: "/m"},
			Files: []analysis.Summary{{Path: "a.txt", TotalLines: 3, CommonLines: 3,
				FileOrigin: analysis.FileOriginShared}},
			FileMap: map[string]*analysis.FileAnalysis{},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	rec := sampleRecord("run-1")
	require.NoError(t, s.Save(rec))
	require.True(t, s.Exists("run-1"))

	got, err := s.Load("run-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Status, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, rec.Result.Files, got.Result.Files)
}

func TestLoadUnknownID(t *testing.T) {
	s := New(t.TempDir())
	got, err := s.Load("never-ran")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, s.Exists("never-ran"))
}

func TestSaveOverwrites(t *testing.T) {
	s := New(t.TempDir())
	rec := sampleRecord("run-1")
	rec.Status = "running"
	require.NoError(t, s.Save(rec))
	rec.Status = "completed"
	require.NoError(t, s.Save(rec))

	got, err := s.Load("run-1")
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
}

func TestSaveRejectsEmptyID(t *testing.T) {
	s := New(t.TempDir())
	assert.Error(t, s.Save(&Record{}))
	assert.Error(t, s.Save(nil))
}

func TestIDSanitization(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	rec := sampleRecord("../../etc/passwd")
	require.NoError(t, s.Save(rec))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].Name(), "..")
	assert.Equal(t, dir, filepath.Dir(filepath.Join(dir, entries[0].Name())))

	got, err := s.Load("../../etc/passwd")
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestCorruptDocumentSurfacesError(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{truncated"), 0o644))
	_, err := s.Load("bad")
	assert.Error(t, err)
}

func TestDefaultRoot(t *testing.T) {
	s := New("")
	assert.Equal(t, "data/analyses", s.Root())
}
