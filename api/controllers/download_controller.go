package controllers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/friendlyshare-go/servepoint"
)

// DownloadController streams files from the serve point as attachments.
type DownloadController struct {
	sp *servepoint.ServePoint
}

func NewDownloadController(sp *servepoint.ServePoint) *DownloadController {
	return &DownloadController{sp: sp}
}

// HandleDownload serves the file bytes with range support. Anything that is
// not a regular file inside the root is a 404; the reason is never revealed.
func (dc *DownloadController) HandleDownload(c *gin.Context) {
	rel := strings.TrimPrefix(c.Param("path"), "/")

	abs, ok := dc.sp.ResolveFile(rel)
	if !ok {
		c.String(http.StatusNotFound, "Not Found")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(abs)))
	c.File(abs)
}
