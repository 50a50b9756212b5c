package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	r := Report{
		ID:        "run-1",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Set:       SetSummary{ID: "set-1", Name: "demo", CaseCount: 1},
		Models:    []ModelSummary{{Provider: "openai", Model: "gpt-4.1"}},
		Results:   []EvalResult{resultWithScore("fib", "openai/gpt-4.1", 0.9)},
		TotalMs:   1234,
	}

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, Save(r, path))

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, r.ID, got.ID)
	assert.True(t, r.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, r.Set, got.Set)
	assert.Equal(t, r.Models, got.Models)
	assert.Equal(t, r.Results, got.Results)
	assert.Equal(t, r.TotalMs, got.TotalMs)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
