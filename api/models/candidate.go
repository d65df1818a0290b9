package models

import (
	"github.com/alex-pricope/teacher-evaluation-system/scoring"
)

type CandidateResponse struct {
	Key          string             `json:"key"`
	Name         string             `json:"name"`
	EnName       string             `json:"enName"`
	Organization string             `json:"organization"`
	Group        string             `json:"group"`
	GroupIndex   string             `json:"groupIndex"`
	Category     string             `json:"category"`
	Stages       []string           `json:"stages"`
	Averages     map[string]float64 `json:"averages"`
	Total        float64            `json:"total"`
	Feedback     string             `json:"feedback"`
	JudgeCount   int                `json:"judgeCount"`
	// Computed values before operator corrections.
	ComputedAverages map[string]float64 `json:"computedAverages"`
	ComputedTotal    float64            `json:"computedTotal"`
	SubmissionIDs    []string           `json:"submissionIds"`
}

type CandidateListResponse struct {
	Candidates []CandidateResponse `json:"candidates"`
	Stats      scoring.Stats       `json:"stats"`
}

type CandidateDetailResponse struct {
	CandidateResponse
	Submissions []SubmissionResponse `json:"submissions"`
}

// OverrideRequest is a partial edit of operator corrections. Averages only need to
// be non-negative; they are not bounded by the criterion maximum.
type OverrideRequest struct {
	Name         *string            `json:"name"`
	EnName       *string            `json:"enName"`
	Organization *string            `json:"organization"`
	Feedback     *string            `json:"feedback"`
	Averages     map[string]float64 `json:"averages" binding:"omitempty,dive,gte=0"`
}

// Apply copies the set fields onto o. Unknown criteria are reported back.
func (r OverrideRequest) Apply(o *scoring.Override) []string {
	setIf(&o.Name, r.Name)
	setIf(&o.EnName, r.EnName)
	setIf(&o.Organization, r.Organization)
	setIf(&o.Feedback, r.Feedback)

	unknown := make([]string, 0)
	for id, v := range r.Averages {
		if !o.SetAverage(scoring.CriterionID(id), v) {
			unknown = append(unknown, id)
		}
	}
	return unknown
}

type DeleteGroupResponse struct {
	Key     string `json:"key"`
	Removed int    `json:"removed"`
}

func TransformCandidate(v *scoring.View, key scoring.IdentityKey) (CandidateResponse, bool) {
	final, ok := v.Final(key)
	if !ok {
		return CandidateResponse{}, false
	}
	c, _ := v.Candidate(key)

	ids := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		ids = append(ids, m.ID)
	}
	return CandidateResponse{
		Key:              string(final.Key),
		Name:             final.Name,
		EnName:           final.EnName,
		Organization:     final.Organization,
		Group:            final.Group,
		GroupIndex:       final.GroupIndex,
		Category:         string(final.Category),
		Stages:           final.Stages,
		Averages:         averagesToMap(final.Averages),
		Total:            final.Total,
		Feedback:         final.Feedback,
		JudgeCount:       final.JudgeCount,
		ComputedAverages: averagesToMap(c.Averages),
		ComputedTotal:    c.Total(),
		SubmissionIDs:    ids,
	}, true
}

func TransformCandidates(v *scoring.View, subs []scoring.Submission) CandidateListResponse {
	out := CandidateListResponse{
		Candidates: make([]CandidateResponse, 0, len(v.Candidates())),
		Stats:      scoring.Summarize(v, subs),
	}
	for _, c := range v.Candidates() {
		if resp, ok := TransformCandidate(v, c.Key); ok {
			out.Candidates = append(out.Candidates, resp)
		}
	}
	return out
}

func averagesToMap(a scoring.Averages) map[string]float64 {
	out := make(map[string]float64, len(a))
	for _, id := range scoring.CriterionIDs() {
		out[string(id)] = a[id]
	}
	return out
}
