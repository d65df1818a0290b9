package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/alex-pricope/teacher-evaluation-system/api/models"
	"github.com/alex-pricope/teacher-evaluation-system/evaluation"
	"github.com/alex-pricope/teacher-evaluation-system/logging"
	"github.com/gin-gonic/gin"
)

type JudgeController struct {
	state *evaluation.State
}

func NewJudgeController(state *evaluation.State) *JudgeController {
	return &JudgeController{state: state}
}

func (c *JudgeController) RegisterRoutes(engine *gin.Engine, adminAuth gin.HandlerFunc) {
	group := engine.Group("/api/admin/judges", adminAuth)

	group.GET("", c.getAll)
	group.POST("", c.create)
	group.DELETE("/:id", c.delete)
}

// @Security AdminToken
// @Summary List the judge roster
// @Tags Admin/Judges
// @Produce json
// @Success 200 {array} models.JudgeResponse
// @Router /api/admin/judges [get]
func (c *JudgeController) getAll(g *gin.Context) {
	judges := c.state.Judges()

	responses := make([]models.JudgeResponse, 0, len(judges))
	for _, j := range judges {
		responses = append(responses, models.TransformJudge(j))
	}
	g.JSON(http.StatusOK, responses)
}

// @Security AdminToken
// @Summary Add a judge
// @Tags Admin/Judges
// @Accept json
// @Produce json
// @Param judge body models.JudgeCreateRequest true "Judge object"
// @Success 201 {object} models.JudgeResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/judges [post]
func (c *JudgeController) create(g *gin.Context) {
	var req models.JudgeCreateRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		logging.Log.Errorf("JUDGE: invalid create judge request: %v", err)
		g.JSON(http.StatusBadRequest, gin.H{"error": "invalid request, name and alphanumeric username required"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		g.JSON(http.StatusBadRequest, gin.H{"error": "invalid request empty name"})
		return
	}

	judge, err := c.state.AddJudge(g.Request.Context(), name, req.Username)
	if err != nil {
		if errors.Is(err, evaluation.ErrJudgeExists) {
			logging.Log.Warnf("JUDGE: username %s already exists", req.Username)
			g.JSON(http.StatusConflict, gin.H{"error": "judge with username already exists"})
			return
		}

		logging.Log.Errorf("JUDGE: failed to create judge: %v", err)
		g.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	g.JSON(http.StatusCreated, models.TransformJudge(judge))
}

// @Security AdminToken
// @Summary Remove a judge
// @Description Submissions owned by the judge are kept.
// @Tags Admin/Judges
// @Produce json
// @Param id path string true "Judge ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/judges/{id} [delete]
func (c *JudgeController) delete(g *gin.Context) {
	if err := c.state.RemoveJudge(g.Request.Context(), g.Param("id")); err != nil {
		if errors.Is(err, evaluation.ErrJudgeNotFound) {
			g.JSON(http.StatusNotFound, gin.H{"error": "judge not found"})
			return
		}
		logging.Log.Errorf("JUDGE: failed to delete judge: %v", err)
		g.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	g.JSON(http.StatusOK, gin.H{"message": "judge deleted"})
}
