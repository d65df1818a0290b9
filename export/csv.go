// Package export turns submissions and aggregated results into files people open
// outside the service: spreadsheets, printable reports and console tables.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alex-pricope/teacher-evaluation-system/scoring"
)

const (
	colIdentity     = "识别码"
	colGroup        = "小组"
	colIndex        = "组内编号"
	colName         = "姓名"
	colEnName       = "英文名"
	colOrganization = "机构"
	colCategory     = "考核类别"
	colStages       = "已选教学环节"
	colTotal        = "总分"
	colFeedback     = "反馈意见"
	colJudge        = "评委"
	colUpdated      = "最后更新"

	// UnknownJudge fills the judge column when a submission has no owner.
	UnknownJudge = "未知"

	stageSeparator = ", "
	utf8BOM        = "\ufeff"
)

var ErrNoRows = errors.New("import file has no data rows")

func scoreColumn(id scoring.CriterionID) string {
	return strings.Replace(string(id), "_", ".", 1) + " 得分"
}

// Header returns the export column names in order.
func Header() []string {
	h := []string{colIdentity, colGroup, colIndex, colName, colEnName, colOrganization, colCategory, colStages}
	for _, id := range scoring.CriterionIDs() {
		h = append(h, scoreColumn(id))
	}
	return append(h, colTotal, colFeedback, colJudge, colUpdated)
}

// WriteCSV writes every raw submission ordered by the three digit sort key. The
// output starts with a byte order mark so spreadsheet tools detect UTF-8.
func WriteCSV(w io.Writer, subs []scoring.Submission) error {
	sorted := make([]scoring.Submission, len(subs))
	copy(sorted, subs)
	scoring.SortBy(sorted, func(s scoring.Submission) scoring.IdentityKey {
		return scoring.SortKey(s.Group, s.GroupIndex)
	})

	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, s := range sorted {
		if err := cw.Write(row(s)); err != nil {
			return fmt.Errorf("write csv row %s: %w", s.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(s scoring.Submission) []string {
	judge := s.JudgeUsername
	if judge == "" {
		judge = UnknownJudge
	}
	r := []string{
		string(s.Key()),
		s.Group,
		s.GroupIndex,
		s.Name,
		s.EnName,
		s.Organization,
		string(s.Category),
		strings.Join(s.SelectedStages, stageSeparator),
	}
	for _, id := range scoring.CriterionIDs() {
		r = append(r, strconv.Itoa(s.Scores[id]))
	}
	return append(r, strconv.Itoa(s.TotalScore), s.Feedback, judge, s.LastUpdated)
}

// ReadCSV parses a file in the WriteCSV layout. Columns are matched by name so
// reordered or partial sheets still import. Each record gets a fresh
// "import-<unixnano>-<row>" id, scores are clamped and totals recomputed.
func ReadCSV(r io.Reader, now time.Time) ([]scoring.Submission, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, utf8BOM))
		cols[name] = i
	}

	out := make([]scoring.Submission, 0)
	for i := 0; ; i++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", i+1, err)
		}
		out = append(out, parseRow(rec, cols, i, now))
	}
	if len(out) == 0 {
		return nil, ErrNoRows
	}
	return out, nil
}

func parseRow(rec []string, cols map[string]int, i int, now time.Time) scoring.Submission {
	get := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[idx])
	}

	s := scoring.Submission{
		ID:             fmt.Sprintf("import-%d-%d", now.UnixNano(), i),
		Name:           get(colName),
		EnName:         get(colEnName),
		Group:          get(colGroup),
		GroupIndex:     get(colIndex),
		Organization:   get(colOrganization),
		Category:       scoring.TeachingCategory(get(colCategory)),
		SelectedStages: splitStages(get(colStages)),
		Scores:         scoring.Scores{},
		Feedback:       get(colFeedback),
		JudgeUsername:  get(colJudge),
		LastUpdated:    get(colUpdated),
	}

	if s.Group == "" && s.GroupIndex == "" {
		if g, idx, ok := strings.Cut(get(colIdentity), "-"); ok {
			s.Group, s.GroupIndex = g, idx
		}
	}
	if !s.Category.Valid() {
		s.Category = scoring.CategoryPU0
	}
	if s.JudgeUsername == UnknownJudge {
		s.JudgeUsername = ""
	}
	if scoring.ParseTimestamp(s.LastUpdated).IsZero() {
		s.LastUpdated = scoring.FormatTimestamp(now)
	}

	for _, c := range scoring.Criteria() {
		v, err := strconv.Atoi(get(scoreColumn(c.ID)))
		if err != nil {
			continue
		}
		s.Scores[c.ID] = scoring.Clamp(v, c.Max)
	}
	s.Recalculate()
	return s
}

func splitStages(raw string) []string {
	out := []string{}
	for _, st := range strings.Split(raw, ",") {
		if st = strings.TrimSpace(st); st != "" {
			out = append(out, st)
		}
	}
	return out
}

// CSVFilename names a full export taken at now.
func CSVFilename(now time.Time) string {
	return fmt.Sprintf("教师考核评分总汇总_%s.csv", now.Format("2006-01-02"))
}
