package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/alex-pricope/teacher-evaluation-system/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exportTime = time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)

func TestWriteCSV(t *testing.T) {
	subs := []scoring.Submission{
		{ID: "c", Group: "2", GroupIndex: "10", Name: "丙", Scores: scoring.Scores{"1_1": 10}, TotalScore: 10},
		{ID: "b", Group: "2", GroupIndex: "9", Name: "乙", JudgeUsername: "alice", SelectedStages: []string{"Greeting", "Summary"}},
		{ID: "a", Group: "10", GroupIndex: "1", Name: "甲"},
		{ID: "d", Group: "1", GroupIndex: "1", Name: "丁", Feedback: "line one\nline two"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, subs))

	t.Run("Happy path - starts with a byte order mark", func(t *testing.T) {
		assert.True(t, strings.HasPrefix(buf.String(), "\ufeff"))
	})

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)

	t.Run("Happy path - header layout", func(t *testing.T) {
		assert.Equal(t, Header(), records[0])
		assert.Equal(t, "识别码", records[0][0])
		assert.Equal(t, "1.1 得分", records[0][8])
		assert.Equal(t, "最后更新", records[0][len(records[0])-1])
	})

	t.Run("Happy path - rows sorted numerically by identity", func(t *testing.T) {
		codes := []string{records[1][0], records[2][0], records[3][0], records[4][0]}
		assert.Equal(t, []string{"01-01", "02-09", "02-10", "10-01"}, codes)
	})

	t.Run("Happy path - judge fallback and stages", func(t *testing.T) {
		judgeCol := len(records[0]) - 2
		assert.Equal(t, UnknownJudge, records[1][judgeCol])
		assert.Equal(t, "alice", records[2][judgeCol])
		assert.Equal(t, "Greeting, Summary", records[2][7])
		assert.Equal(t, "line one\nline two", records[1][len(records[0])-3])
	})
}

func TestReadCSV(t *testing.T) {
	t.Run("Happy path - round trips an export", func(t *testing.T) {
		orig := []scoring.Submission{{
			ID: "x", Group: "3", GroupIndex: "4", Name: "张三", EnName: "Zhang", Organization: "Org",
			Category: scoring.CategoryPU1, SelectedStages: []string{"Pre-task"},
			Scores: scoring.Scores{"1_1": 12, "2_3": 8}, TotalScore: 20, Feedback: "ok",
			JudgeUsername: "bob", LastUpdated: scoring.FormatTimestamp(exportTime.Add(-time.Hour)),
		}}
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, orig))

		got, err := ReadCSV(&buf, exportTime)
		require.NoError(t, err)
		require.Len(t, got, 1)
		s := got[0]
		assert.Equal(t, "import-1716199200000000000-0", s.ID)
		assert.Equal(t, "张三", s.Name)
		assert.Equal(t, scoring.CategoryPU1, s.Category)
		assert.Equal(t, []string{"Pre-task"}, s.SelectedStages)
		assert.Equal(t, 12, s.Scores["1_1"])
		assert.Equal(t, 20, s.TotalScore)
		assert.Equal(t, "bob", s.JudgeUsername)
		assert.Equal(t, orig[0].LastUpdated, s.LastUpdated)
	})

	t.Run("Happy path - partial sheet is clamped and defaulted", func(t *testing.T) {
		in := "识别码,姓名,1.1 得分,2.3 得分,评委\n05-06,李四,99,abc,未知\n"
		got, err := ReadCSV(strings.NewReader(in), exportTime)
		require.NoError(t, err)
		require.Len(t, got, 1)
		s := got[0]
		assert.Equal(t, "05", s.Group)
		assert.Equal(t, "06", s.GroupIndex)
		assert.Equal(t, 15, s.Scores["1_1"])
		assert.Equal(t, 15, s.TotalScore)
		assert.Empty(t, s.JudgeUsername)
		assert.Equal(t, scoring.CategoryPU0, s.Category)
		assert.Equal(t, scoring.FormatTimestamp(exportTime), s.LastUpdated)
	})

	t.Run("Unhappy path - empty input", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader(""), exportTime)
		assert.ErrorIs(t, err, ErrNoRows)
	})

	t.Run("Unhappy path - header only", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader(strings.Join(Header(), ",")+"\n"), exportTime)
		assert.ErrorIs(t, err, ErrNoRows)
	})
}

func TestCSVFilename(t *testing.T) {
	assert.Equal(t, "教师考核评分总汇总_2024-05-20.csv", CSVFilename(exportTime))
}
