package models

import "github.com/alex-pricope/teacher-evaluation-system/scoring"

type RubricResponse struct {
	Groups   []scoring.CriterionGroup `json:"groups"`
	MaxTotal int                      `json:"maxTotal"`
	Stages   map[string][]string      `json:"stages"`
}

func NewRubricResponse() RubricResponse {
	return RubricResponse{
		Groups:   scoring.Rubric,
		MaxTotal: scoring.MaxTotal,
		Stages: map[string][]string{
			string(scoring.CategoryPU0): scoring.StagesFor(scoring.CategoryPU0),
			string(scoring.CategoryPU1): scoring.StagesFor(scoring.CategoryPU1),
		},
	}
}

type ImportResponse struct {
	Imported int `json:"imported"`
}
