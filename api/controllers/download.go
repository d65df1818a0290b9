package controllers

import (
	"mime"

	"github.com/gin-gonic/gin"
)

// attachment marks the response as a download. Non-ASCII names are encoded per RFC 2231.
func attachment(g *gin.Context, filename string) {
	g.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
}
