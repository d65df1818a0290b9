package models

import "github.com/alex-pricope/teacher-evaluation-system/scoring"

type JudgeCreateRequest struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required,alphanum"`
}

type JudgeResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

func TransformJudge(j scoring.Judge) JudgeResponse {
	return JudgeResponse{
		ID:        j.ID,
		Username:  j.Username,
		Name:      j.Name,
		CreatedAt: j.CreatedAt,
	}
}
