package evaluation

import "errors"

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrCandidateNotFound  = errors.New("candidate not found")
	ErrJudgeNotFound      = errors.New("judge not found")
	ErrJudgeExists        = errors.New("judge username already exists")
)
