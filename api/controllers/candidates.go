package controllers

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/alex-pricope/teacher-evaluation-system/api/models"
	"github.com/alex-pricope/teacher-evaluation-system/evaluation"
	"github.com/alex-pricope/teacher-evaluation-system/export"
	"github.com/alex-pricope/teacher-evaluation-system/logging"
	"github.com/alex-pricope/teacher-evaluation-system/scoring"
	"github.com/gin-gonic/gin"
)

// CandidateController serves the aggregated view and the operator override layer.
type CandidateController struct {
	state *evaluation.State
}

func NewCandidateController(state *evaluation.State) *CandidateController {
	return &CandidateController{state: state}
}

func (c *CandidateController) RegisterRoutes(engine *gin.Engine, adminAuth gin.HandlerFunc) {
	group := engine.Group("/api/admin/candidates", adminAuth)

	group.GET("", c.list)
	group.GET("/:key", c.get)
	group.GET("/:key/report", c.report)
	group.PUT("/:key/override", c.editOverride)
	group.DELETE("/:key/override", c.resetOverride)
	group.DELETE("/:key", c.deleteGroup)
}

// keyParam accepts "01-02" as well as unpadded forms like "1-2".
func keyParam(g *gin.Context) scoring.IdentityKey {
	group, index, _ := strings.Cut(g.Param("key"), "-")
	return scoring.Resolve(group, index)
}

// @Security AdminToken
// @Summary Aggregated candidates with statistics
// @Tags Admin/Candidates
// @Produce json
// @Success 200 {object} models.CandidateListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/candidates [get]
func (c *CandidateController) list(g *gin.Context) {
	view, err := c.state.View(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("ADMIN: failed to aggregate candidates: %v", err)
		g.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	g.JSON(http.StatusOK, models.TransformCandidates(view, c.state.Submissions()))
}

// @Security AdminToken
// @Summary One candidate with its submissions
// @Tags Admin/Candidates
// @Produce json
// @Param key path string true "Identity key, e.g. 01-02"
// @Success 200 {object} models.CandidateDetailResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/candidates/{key} [get]
func (c *CandidateController) get(g *gin.Context) {
	key := keyParam(g)
	view, err := c.state.View(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("ADMIN: failed to aggregate candidates: %v", err)
		g.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	resp, ok := models.TransformCandidate(view, key)
	if !ok {
		g.JSON(http.StatusNotFound, gin.H{"error": "candidate not found"})
		return
	}
	cand, _ := view.Candidate(key)
	g.JSON(http.StatusOK, models.CandidateDetailResponse{
		CandidateResponse: resp,
		Submissions:       models.TransformSubmissions(cand.Members),
	})
}

// @Security AdminToken
// @Summary Edit operator corrections
// @Description Partial edit. Averages must be non-negative and are not capped by the criterion maximum.
// @Tags Admin/Candidates
// @Accept json
// @Produce json
// @Param key path string true "Identity key"
// @Param request body models.OverrideRequest true "Corrections"
// @Success 200 {object} models.CandidateResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/candidates/{key}/override [put]
func (c *CandidateController) editOverride(g *gin.Context) {
	var req models.OverrideRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		logging.Log.Errorf("ADMIN: invalid override request: %v", err)
		g.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	key := keyParam(g)
	var unknown []string
	view, err := c.state.EditOverride(g.Request.Context(), key, func(o *scoring.Override) {
		unknown = req.Apply(o)
	})
	if err != nil {
		c.writeError(g, err, "edit override")
		return
	}
	if len(unknown) > 0 {
		logging.Log.Warnf("ADMIN: ignored unknown criteria %v for %s", unknown, key)
	}
	resp, _ := models.TransformCandidate(view, key)
	logging.Log.Infof("ADMIN: edited override for %s", key)
	g.JSON(http.StatusOK, resp)
}

// @Security AdminToken
// @Summary Reset operator corrections to computed values
// @Tags Admin/Candidates
// @Produce json
// @Param key path string true "Identity key"
// @Success 200 {object} models.CandidateResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/candidates/{key}/override [delete]
func (c *CandidateController) resetOverride(g *gin.Context) {
	key := keyParam(g)
	if err := c.state.ResetOverride(g.Request.Context(), key); err != nil {
		c.writeError(g, err, "reset override")
		return
	}
	view, err := c.state.View(g.Request.Context())
	if err != nil {
		c.writeError(g, err, "reset override")
		return
	}
	resp, ok := models.TransformCandidate(view, key)
	if !ok {
		g.JSON(http.StatusNotFound, gin.H{"error": "candidate not found"})
		return
	}
	g.JSON(http.StatusOK, resp)
}

// @Security AdminToken
// @Summary Delete every submission of a candidate
// @Tags Admin/Candidates
// @Produce json
// @Param key path string true "Identity key"
// @Success 200 {object} models.DeleteGroupResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/candidates/{key} [delete]
func (c *CandidateController) deleteGroup(g *gin.Context) {
	key := keyParam(g)
	removed, err := c.state.DeleteGroup(g.Request.Context(), key)
	if err != nil {
		c.writeError(g, err, "delete candidate")
		return
	}
	g.JSON(http.StatusOK, models.DeleteGroupResponse{Key: string(key), Removed: removed})
}

// @Security AdminToken
// @Summary Download the final report as HTML
// @Tags Admin/Candidates
// @Produce html
// @Param key path string true "Identity key"
// @Success 200 {string} string "HTML document"
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/candidates/{key}/report [get]
func (c *CandidateController) report(g *gin.Context) {
	view, err := c.state.View(g.Request.Context())
	if err != nil {
		c.writeError(g, err, "render report")
		return
	}
	final, ok := view.Final(keyParam(g))
	if !ok {
		g.JSON(http.StatusNotFound, gin.H{"error": "candidate not found"})
		return
	}

	var buf bytes.Buffer
	if err := export.RenderFinalReport(&buf, final, c.state.Now()); err != nil {
		c.writeError(g, err, "render report")
		return
	}
	attachment(g, export.FinalReportFilename(final))
	g.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (c *CandidateController) writeError(g *gin.Context, err error, action string) {
	if errors.Is(err, evaluation.ErrCandidateNotFound) {
		g.JSON(http.StatusNotFound, gin.H{"error": "candidate not found"})
		return
	}
	logging.Log.Errorf("ADMIN: failed to %s: %v", action, err)
	g.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
