package controllers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/alex-pricope/teacher-evaluation-system/api/models"
	"github.com/alex-pricope/teacher-evaluation-system/evaluation"
	"github.com/alex-pricope/teacher-evaluation-system/export"
	"github.com/alex-pricope/teacher-evaluation-system/logging"
	"github.com/gin-gonic/gin"
)

const maxImportSize = 10 << 20

// DataController handles bulk export, import and wipe of submissions.
type DataController struct {
	state *evaluation.State
}

func NewDataController(state *evaluation.State) *DataController {
	return &DataController{state: state}
}

func (c *DataController) RegisterRoutes(engine *gin.Engine, adminAuth gin.HandlerFunc) {
	group := engine.Group("/api/admin", adminAuth)

	group.GET("/export.csv", c.exportCSV)
	group.POST("/import", c.importCSV)
	group.DELETE("/submissions", c.clear)
}

// @Security AdminToken
// @Summary Export every raw submission as CSV
// @Tags Admin/Data
// @Produce text/csv
// @Success 200 {string} string "CSV file"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/export.csv [get]
func (c *DataController) exportCSV(g *gin.Context) {
	subs := c.state.Submissions()

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, subs); err != nil {
		logging.Log.Errorf("ADMIN: failed to export csv: %v", err)
		g.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	logging.Log.Infof("ADMIN: exported %d submissions", len(subs))
	attachment(g, export.CSVFilename(c.state.Now()))
	g.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// @Security AdminToken
// @Summary Import submissions from CSV
// @Description Accepts the export layout as the raw body or as a multipart "file" field.
// @Tags Admin/Data
// @Accept text/csv
// @Produce json
// @Success 200 {object} models.ImportResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/import [post]
func (c *DataController) importCSV(g *gin.Context) {
	var reader io.Reader = http.MaxBytesReader(g.Writer, g.Request.Body, maxImportSize)
	if g.ContentType() == "multipart/form-data" {
		file, err := g.FormFile("file")
		if err != nil {
			g.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
			return
		}
		f, err := file.Open()
		if err != nil {
			g.JSON(http.StatusBadRequest, gin.H{"error": "cannot open uploaded file"})
			return
		}
		defer f.Close()
		reader = f
	}

	subs, err := export.ReadCSV(reader, c.state.Now())
	if err != nil {
		logging.Log.Warnf("ADMIN: rejected import: %v", err)
		msg := "invalid csv"
		if errors.Is(err, export.ErrNoRows) {
			msg = err.Error()
		}
		g.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	n, err := c.state.ImportSubmissions(g.Request.Context(), subs)
	if err != nil {
		logging.Log.Errorf("ADMIN: failed to import: %v", err)
		g.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	g.JSON(http.StatusOK, models.ImportResponse{Imported: n})
}

// @Security AdminToken
// @Summary Delete every submission
// @Tags Admin/Data
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/submissions [delete]
func (c *DataController) clear(g *gin.Context) {
	if err := c.state.ClearSubmissions(g.Request.Context()); err != nil {
		logging.Log.Errorf("ADMIN: failed to clear submissions: %v", err)
		g.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	g.JSON(http.StatusOK, gin.H{"message": "all submissions deleted"})
}
