package controllers

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/alex-pricope/teacher-evaluation-system/api/models"
	"github.com/alex-pricope/teacher-evaluation-system/evaluation"
	"github.com/alex-pricope/teacher-evaluation-system/export"
	"github.com/alex-pricope/teacher-evaluation-system/feedback"
	"github.com/alex-pricope/teacher-evaluation-system/logging"
	"github.com/alex-pricope/teacher-evaluation-system/scoring"
	"github.com/gin-gonic/gin"
)

// SyncTrigger starts a background sync cycle.
type SyncTrigger interface {
	Trigger()
}

type SubmissionController struct {
	state    *evaluation.State
	polisher feedback.Polisher
	sync     SyncTrigger
}

func NewSubmissionController(state *evaluation.State, polisher feedback.Polisher, sync SyncTrigger) *SubmissionController {
	if polisher == nil {
		polisher = feedback.NoopPolisher{}
	}
	return &SubmissionController{state: state, polisher: polisher, sync: sync}
}

func (c *SubmissionController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api")

	group.GET("/rubric", c.rubric)
	group.POST("/submissions", c.create)
	group.GET("/submissions", c.list)
	group.GET("/submissions/:id", c.get)
	group.PATCH("/submissions/:id", c.update)
	group.DELETE("/submissions/:id", c.delete)
	group.POST("/submissions/:id/polish", c.polish)
	group.GET("/submissions/:id/report", c.report)
}

// @Summary Scoring rubric and teaching stages
// @Tags Submissions
// @Produce json
// @Success 200 {object} models.RubricResponse
// @Router /api/rubric [get]
func (c *SubmissionController) rubric(g *gin.Context) {
	g.JSON(http.StatusOK, models.NewRubricResponse())
}

// @Summary Start a new scoring sheet
// @Tags Submissions
// @Accept json
// @Produce json
// @Param request body models.SubmissionCreateRequest true "Owner judge"
// @Success 201 {object} models.SubmissionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/submissions [post]
func (c *SubmissionController) create(g *gin.Context) {
	var req models.SubmissionCreateRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		logging.Log.Errorf("SUBMISSION: invalid create request: %v", err)
		g.JSON(http.StatusBadRequest, gin.H{"error": "invalid request, missing judge"})
		return
	}

	sub, err := c.state.CreateSubmission(g.Request.Context(), req.Judge)
	if err != nil {
		logging.Log.Errorf("SUBMISSION: failed to create: %v", err)
		g.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if c.sync != nil {
		c.sync.Trigger()
	}
	g.JSON(http.StatusCreated, models.TransformSubmission(sub))
}

// @Summary List submissions, newest first
// @Tags Submissions
// @Produce json
// @Param judge query string false "Only this judge's submissions"
// @Success 200 {array} models.SubmissionResponse
// @Router /api/submissions [get]
func (c *SubmissionController) list(g *gin.Context) {
	var subs []scoring.Submission
	if judge := g.Query("judge"); judge != "" {
		subs = c.state.SubmissionsByJudge(judge)
	} else {
		subs = c.state.Submissions()
	}
	g.JSON(http.StatusOK, models.TransformSubmissions(subs))
}

// @Summary Get a submission
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} models.SubmissionResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/submissions/{id} [get]
func (c *SubmissionController) get(g *gin.Context) {
	sub, err := c.state.Submission(g.Param("id"))
	if err != nil {
		g.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
		return
	}
	g.JSON(http.StatusOK, models.TransformSubmission(sub))
}

// @Summary Update a submission
// @Description Partial update. Scores may be numbers or strings; out of range or non-numeric values are clamped.
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param request body models.SubmissionUpdateRequest true "Fields to change"
// @Success 200 {object} models.SubmissionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/submissions/{id} [patch]
func (c *SubmissionController) update(g *gin.Context) {
	var req models.SubmissionUpdateRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		logging.Log.Errorf("SUBMISSION: invalid update request: %v", err)
		g.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := req.Validate(); err != nil {
		g.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := c.state.UpdateSubmission(g.Request.Context(), g.Param("id"), req.Apply)
	if err != nil {
		c.writeError(g, err, "update")
		return
	}
	g.JSON(http.StatusOK, models.TransformSubmission(sub))
}

// @Summary Delete a submission
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/submissions/{id} [delete]
func (c *SubmissionController) delete(g *gin.Context) {
	if err := c.state.DeleteSubmission(g.Request.Context(), g.Param("id")); err != nil {
		c.writeError(g, err, "delete")
		return
	}
	g.JSON(http.StatusOK, gin.H{"message": "submission deleted"})
}

// @Summary Rewrite the feedback with AI
// @Description On model failure the original feedback is kept and polished is false.
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} models.PolishResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/submissions/{id}/polish [post]
func (c *SubmissionController) polish(g *gin.Context) {
	id := g.Param("id")
	sub, err := c.state.Submission(id)
	if err != nil {
		g.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
		return
	}

	polished, err := c.polisher.Polish(g.Request.Context(), sub.Feedback)
	if err != nil || polished == sub.Feedback {
		if err != nil {
			logging.Log.Warnf("SUBMISSION: polish failed for %s, keeping original text: %v", id, err)
		}
		g.JSON(http.StatusOK, models.PolishResponse{Polished: false, Submission: models.TransformSubmission(sub)})
		return
	}

	updated, err := c.state.UpdateSubmission(g.Request.Context(), id, func(s *scoring.Submission, _ time.Time) {
		s.Feedback = polished
	})
	if err != nil {
		c.writeError(g, err, "polish")
		return
	}
	g.JSON(http.StatusOK, models.PolishResponse{Polished: true, Submission: models.TransformSubmission(updated)})
}

// @Summary Download the scoring sheet as HTML
// @Tags Submissions
// @Produce html
// @Param id path string true "Submission ID"
// @Success 200 {string} string "HTML document"
// @Failure 404 {object} models.ErrorResponse
// @Router /api/submissions/{id}/report [get]
func (c *SubmissionController) report(g *gin.Context) {
	sub, err := c.state.Submission(g.Param("id"))
	if err != nil {
		g.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
		return
	}

	var buf bytes.Buffer
	if err := export.RenderSubmissionReport(&buf, sub); err != nil {
		logging.Log.Errorf("SUBMISSION: failed to render report: %v", err)
		g.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	attachment(g, export.SubmissionReportFilename(sub))
	g.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (c *SubmissionController) writeError(g *gin.Context, err error, action string) {
	if errors.Is(err, evaluation.ErrSubmissionNotFound) {
		g.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
		return
	}
	logging.Log.Errorf("SUBMISSION: failed to %s: %v", action, err)
	g.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
