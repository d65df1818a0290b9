package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alex-pricope/teacher-evaluation-system/scoring"
	"github.com/alex-pricope/teacher-evaluation-system/syncer"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() syncer.Snapshot {
	return syncer.Snapshot{
		Submissions: []scoring.Submission{
			{ID: "a", Name: "Wang", Group: "1", GroupIndex: "2", Scores: scoring.Scores{"1_1": 10}, TotalScore: 10},
			{ID: "b", Group: "01", GroupIndex: "02", Scores: scoring.Scores{"1_1": 14}, TotalScore: 14},
		},
		Version: 1,
	}
}

func TestRun(t *testing.T) {
	t.Run("Happy path - snapshot file with csv output", func(t *testing.T) {
		dir := t.TempDir()
		raw, err := json.Marshal(testSnapshot())
		require.NoError(t, err)
		file := filepath.Join(dir, "snapshot.json")
		require.NoError(t, os.WriteFile(file, raw, 0o600))
		csvPath := filepath.Join(dir, "out.csv")

		var out bytes.Buffer
		err = run(context.Background(), options{file: file, csvPath: csvPath, timeout: time.Second}, &out)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "01-02")
		assert.Contains(t, out.String(), "Wang")
		assert.Contains(t, out.String(), "2 judgements, 1 candidates")

		written, err := os.ReadFile(csvPath)
		require.NoError(t, err)
		assert.Contains(t, string(written), "识别码")
	})

	t.Run("Happy path - redis remote", func(t *testing.T) {
		mr := miniredis.RunT(t)
		raw, err := json.Marshal(testSnapshot())
		require.NoError(t, err)
		require.NoError(t, mr.Set("snapshot:tok", string(raw)))

		var out bytes.Buffer
		err = run(context.Background(), options{token: "tok", remote: "redis", redisURL: "redis://" + mr.Addr(), timeout: time.Second}, &out)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "01-02")
	})

	t.Run("Unhappy path - no source", func(t *testing.T) {
		err := run(context.Background(), options{timeout: time.Second}, &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("Unhappy path - unknown remote", func(t *testing.T) {
		err := run(context.Background(), options{token: "x", remote: "ftp", timeout: time.Second}, &bytes.Buffer{})
		assert.Error(t, err)
	})
}
