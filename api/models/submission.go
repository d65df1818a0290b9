package models

import (
	"errors"
	"time"

	"github.com/alex-pricope/teacher-evaluation-system/scoring"
)

var ErrInvalidCategory = errors.New("invalid category")

type SubmissionCreateRequest struct {
	Judge string `json:"judge" binding:"required"`
}

// SubmissionUpdateRequest is a partial update; nil fields are left alone. Scores
// accept numbers or raw strings and are clamped, never rejected.
type SubmissionUpdateRequest struct {
	Name           *string                `json:"name"`
	EnName         *string                `json:"enName"`
	Group          *string                `json:"group"`
	GroupIndex     *string                `json:"groupIndex"`
	Organization   *string                `json:"organization"`
	Category       *string                `json:"category"`
	SelectedStages []string               `json:"selectedStages"`
	ToggleStage    *string                `json:"toggleStage"`
	Feedback       *string                `json:"feedback"`
	Scores         map[string]interface{} `json:"scores"`
}

// Validate reports input that cannot be clamped into shape.
func (r SubmissionUpdateRequest) Validate() error {
	if r.Category != nil && !scoring.TeachingCategory(*r.Category).Valid() {
		return ErrInvalidCategory
	}
	return nil
}

// Apply copies the set fields onto sub. The category is applied first because
// switching it clears the stage selection.
func (r SubmissionUpdateRequest) Apply(sub *scoring.Submission, now time.Time) {
	if r.Category != nil {
		sub.SetCategory(scoring.TeachingCategory(*r.Category))
	}
	if r.SelectedStages != nil {
		sub.SelectedStages = filterStages(sub.Category, r.SelectedStages)
	}
	if r.ToggleStage != nil && containsStage(sub.Category, *r.ToggleStage) {
		sub.ToggleStage(*r.ToggleStage)
	}
	setIf(&sub.Name, r.Name)
	setIf(&sub.EnName, r.EnName)
	setIf(&sub.Group, r.Group)
	setIf(&sub.GroupIndex, r.GroupIndex)
	setIf(&sub.Organization, r.Organization)
	setIf(&sub.Feedback, r.Feedback)

	for id, raw := range r.Scores {
		criterion := scoring.CriterionID(id)
		switch v := raw.(type) {
		case string:
			sub.SetScore(criterion, v, now)
		case float64:
			sub.SetScoreValue(criterion, int(v), now)
		default:
			sub.SetScoreValue(criterion, 0, now)
		}
	}
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func containsStage(c scoring.TeachingCategory, stage string) bool {
	for _, st := range scoring.StagesFor(c) {
		if st == stage {
			return true
		}
	}
	return false
}

func filterStages(c scoring.TeachingCategory, stages []string) []string {
	out := make([]string, 0, len(stages))
	for _, st := range stages {
		if containsStage(c, st) {
			out = append(out, st)
		}
	}
	return out
}

type SubmissionResponse struct {
	ID             string         `json:"id"`
	Key            string         `json:"key"`
	Name           string         `json:"name"`
	EnName         string         `json:"enName"`
	Group          string         `json:"group"`
	GroupIndex     string         `json:"groupIndex"`
	Organization   string         `json:"organization"`
	Category       string         `json:"category"`
	SelectedStages []string       `json:"selectedStages"`
	Scores         map[string]int `json:"scores"`
	Feedback       string         `json:"feedback"`
	TotalScore     int            `json:"totalScore"`
	LastUpdated    string         `json:"lastUpdated"`
	JudgeUsername  string         `json:"judgeUsername"`
}

func TransformSubmission(s scoring.Submission) SubmissionResponse {
	scores := make(map[string]int, len(s.Scores))
	for id, v := range s.Scores {
		scores[string(id)] = v
	}
	stages := s.SelectedStages
	if stages == nil {
		stages = []string{}
	}
	return SubmissionResponse{
		ID:             s.ID,
		Key:            string(s.Key()),
		Name:           s.Name,
		EnName:         s.EnName,
		Group:          s.Group,
		GroupIndex:     s.GroupIndex,
		Organization:   s.Organization,
		Category:       string(s.Category),
		SelectedStages: stages,
		Scores:         scores,
		Feedback:       s.Feedback,
		TotalScore:     s.TotalScore,
		LastUpdated:    s.LastUpdated,
		JudgeUsername:  s.JudgeUsername,
	}
}

func TransformSubmissions(subs []scoring.Submission) []SubmissionResponse {
	out := make([]SubmissionResponse, 0, len(subs))
	for _, s := range subs {
		out = append(out, TransformSubmission(s))
	}
	return out
}

type PolishResponse struct {
	Polished   bool               `json:"polished"`
	Submission SubmissionResponse `json:"submission"`
}
