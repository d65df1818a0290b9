package controllers

import (
	"errors"
	"net/http"

	"github.com/alex-pricope/teacher-evaluation-system/api/models"
	"github.com/alex-pricope/teacher-evaluation-system/evaluation"
	"github.com/alex-pricope/teacher-evaluation-system/logging"
	"github.com/alex-pricope/teacher-evaluation-system/syncer"
	"github.com/gin-gonic/gin"
)

type SyncController struct {
	state     *evaluation.State
	scheduler *syncer.Scheduler
}

func NewSyncController(state *evaluation.State, scheduler *syncer.Scheduler) *SyncController {
	return &SyncController{state: state, scheduler: scheduler}
}

func (c *SyncController) RegisterRoutes(engine *gin.Engine, adminAuth gin.HandlerFunc) {
	group := engine.Group("/api/admin/sync", adminAuth)

	group.GET("", c.status)
	group.POST("/session", c.createSession)
	group.POST("/join", c.join)
	group.POST("/disable", c.disable)
	group.POST("/run", c.run)
}

func (c *SyncController) statusResponse() models.SyncStatusResponse {
	return models.TransformSyncConfig(c.state.SyncConfig(), c.scheduler.Running())
}

// @Security AdminToken
// @Summary Sync configuration and state
// @Tags Admin/Sync
// @Produce json
// @Success 200 {object} models.SyncStatusResponse
// @Router /api/admin/sync [get]
func (c *SyncController) status(g *gin.Context) {
	g.JSON(http.StatusOK, c.statusResponse())
}

// @Security AdminToken
// @Summary Create a sync session from local data
// @Tags Admin/Sync
// @Produce json
// @Success 200 {object} models.SyncStatusResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/admin/sync/session [post]
func (c *SyncController) createSession(g *gin.Context) {
	if _, err := c.scheduler.CreateSession(g.Request.Context()); err != nil {
		logging.Log.Errorf("SYNC: failed to create session: %v", err)
		g.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	g.JSON(http.StatusOK, c.statusResponse())
}

// @Security AdminToken
// @Summary Join an existing sync session
// @Tags Admin/Sync
// @Accept json
// @Produce json
// @Param request body models.SyncJoinRequest true "Session token"
// @Success 200 {object} models.SyncStatusResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/admin/sync/join [post]
func (c *SyncController) join(g *gin.Context) {
	var req models.SyncJoinRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, gin.H{"error": "invalid request, missing token"})
		return
	}
	if _, err := c.scheduler.Join(g.Request.Context(), req.Token); err != nil {
		if errors.Is(err, syncer.ErrSessionNotFound) {
			g.JSON(http.StatusNotFound, gin.H{"error": "sync session not found"})
			return
		}
		logging.Log.Errorf("SYNC: failed to join session: %v", err)
		g.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	g.JSON(http.StatusOK, c.statusResponse())
}

// @Security AdminToken
// @Summary Stop syncing
// @Tags Admin/Sync
// @Produce json
// @Success 200 {object} models.SyncStatusResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/sync/disable [post]
func (c *SyncController) disable(g *gin.Context) {
	if _, err := c.scheduler.Disable(g.Request.Context()); err != nil {
		logging.Log.Errorf("SYNC: failed to disable: %v", err)
		g.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	g.JSON(http.StatusOK, c.statusResponse())
}

// @Security AdminToken
// @Summary Run one sync cycle now
// @Description ran is false when a cycle was already in flight.
// @Tags Admin/Sync
// @Produce json
// @Success 202 {object} models.SyncRunResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/admin/sync/run [post]
func (c *SyncController) run(g *gin.Context) {
	ran, err := c.scheduler.SyncNow(g.Request.Context())
	if err != nil {
		if errors.Is(err, syncer.ErrSyncDisabled) {
			g.JSON(http.StatusConflict, gin.H{"error": "sync is disabled"})
			return
		}
		logging.Log.Warnf("SYNC: manual cycle failed: %v", err)
		g.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	g.JSON(http.StatusAccepted, models.SyncRunResponse{Ran: ran, SyncStatusResponse: c.statusResponse()})
}
