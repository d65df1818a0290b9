package scoring

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// UnnamedCandidate is shown when no judge has entered a candidate name.
const UnnamedCandidate = "未命名"

// Scores maps a criterion to the integer points a judge awarded.
type Scores map[CriterionID]int

// Sum adds up every entry.
func (s Scores) Sum() int {
	total := 0
	for _, v := range s {
		total += v
	}
	return total
}

func (s Scores) clone() Scores {
	out := make(Scores, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Submission is one judge's scoring of one candidate.
type Submission struct {
	ID             string           `json:"id" dynamodbav:"PK"`
	Name           string           `json:"name" dynamodbav:"Name"`
	EnName         string           `json:"enName" dynamodbav:"EnName"`
	Group          string           `json:"group" dynamodbav:"Group"`
	GroupIndex     string           `json:"groupIndex" dynamodbav:"GroupIndex"`
	Organization   string           `json:"organization" dynamodbav:"Organization"`
	Category       TeachingCategory `json:"category" dynamodbav:"Category"`
	SelectedStages []string         `json:"selectedStages" dynamodbav:"SelectedStages"`
	Scores         Scores           `json:"scores" dynamodbav:"Scores"`
	Feedback       string           `json:"feedback" dynamodbav:"Feedback"`
	TotalScore     int              `json:"totalScore" dynamodbav:"TotalScore"`
	LastUpdated    string           `json:"lastUpdated" dynamodbav:"LastUpdated"`
	JudgeUsername  string           `json:"judgeUsername,omitempty" dynamodbav:"JudgeUsername"`
}

// NewSubmission starts an empty scoring sheet owned by judge.
func NewSubmission(judge string, now time.Time) Submission {
	return Submission{
		ID:             uuid.NewString(),
		Category:       CategoryPU0,
		SelectedStages: []string{},
		Scores:         Scores{},
		LastUpdated:    FormatTimestamp(now),
		JudgeUsername:  judge,
	}
}

// Clone returns a deep copy so callers can mutate without aliasing shared state.
func (s Submission) Clone() Submission {
	out := s
	out.Scores = s.Scores.clone()
	out.SelectedStages = append([]string(nil), s.SelectedStages...)
	return out
}

// Key is the display identity key of the candidate this submission scores.
func (s Submission) Key() IdentityKey {
	return Resolve(s.Group, s.GroupIndex)
}

// SetScore parses raw judge input and stores it clamped to the criterion range.
// Non-numeric input counts as 0. Unknown criteria are ignored.
func (s *Submission) SetScore(id CriterionID, raw string, now time.Time) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		v = 0
	}
	s.SetScoreValue(id, v, now)
}

func (s *Submission) SetScoreValue(id CriterionID, v int, now time.Time) {
	c, ok := LookupCriterion(id)
	if !ok {
		return
	}
	if s.Scores == nil {
		s.Scores = Scores{}
	}
	s.Scores[id] = Clamp(v, c.Max)
	s.Recalculate()
	s.Touch(now)
}

// Sanitize clamps stored scores to their criterion range, drops unknown criteria
// and rederives TotalScore. It is for records that did not pass through SetScore,
// such as remote copies; LastUpdated is left alone.
func (s *Submission) Sanitize() {
	if s.Scores != nil {
		clean := make(Scores, len(s.Scores))
		for id, v := range s.Scores {
			if c, ok := LookupCriterion(id); ok {
				clean[id] = Clamp(v, c.Max)
			}
		}
		s.Scores = clean
	}
	s.Recalculate()
}

// Recalculate is the only place TotalScore is derived.
func (s *Submission) Recalculate() {
	s.TotalScore = s.Scores.Sum()
}

func (s *Submission) Touch(now time.Time) {
	s.LastUpdated = FormatTimestamp(now)
}

// SetCategory switches the lesson model and clears stages picked for the old one.
func (s *Submission) SetCategory(c TeachingCategory) {
	if s.Category == c {
		return
	}
	s.Category = c
	s.SelectedStages = []string{}
}

func (s *Submission) ToggleStage(stage string) {
	for i, st := range s.SelectedStages {
		if st == stage {
			s.SelectedStages = append(s.SelectedStages[:i:i], s.SelectedStages[i+1:]...)
			return
		}
	}
	s.SelectedStages = append(s.SelectedStages, stage)
}

// Clamp bounds v to [0, max].
func Clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// Judge is a roster entry. Credentials live outside this service.
type Judge struct {
	ID        string `json:"id" dynamodbav:"PK"`
	Username  string `json:"username" dynamodbav:"Username"`
	Name      string `json:"name" dynamodbav:"Name"`
	CreatedAt string `json:"createdAt" dynamodbav:"CreatedAt"`
}

var (
	zonedLayouts = []string{time.RFC3339Nano, time.RFC3339}
	// Older clients wrote wall-clock strings without an offset.
	legacyLayouts = []string{
		"2006-01-02 15:04:05",
		"1/2/2006, 3:04:05 PM",
		"2006/1/2 15:04:05",
	}
	legacyLocation atomic.Pointer[time.Location]
)

// SetLegacyLocation sets the zone assumed for timestamps written without an offset.
// Nil restores the default, UTC.
func SetLegacyLocation(loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	legacyLocation.Store(loc)
}

func legacyZone() *time.Location {
	if loc := legacyLocation.Load(); loc != nil {
		return loc
	}
	return time.UTC
}

// FormatTimestamp is the canonical wire form of LastUpdated.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp accepts the canonical form and the locale strings older clients
// wrote, reading the latter in the legacy location. Anything unparseable is the
// zero time, which loses every comparison.
func ParseTimestamp(s string) time.Time {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	loc := legacyZone()
	for _, layout := range legacyLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}
