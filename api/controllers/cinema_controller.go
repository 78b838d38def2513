package controllers

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/friendlyshare-go/servepoint"
	"github.com/moyoez/friendlyshare-go/tool"
)

// CinemaController renders the watch-together page for a playable file.
type CinemaController struct {
	sp *servepoint.ServePoint
}

func NewCinemaController(sp *servepoint.ServePoint) *CinemaController {
	return &CinemaController{sp: sp}
}

func (cc *CinemaController) HandleCinemaPage(c *gin.Context) {
	rel := strings.TrimPrefix(c.Param("path"), "/")

	if !cc.sp.IsFile(rel) {
		tool.DefaultLogger.Debugf("Rejecting cinema page, not a file: %q", rel)
		c.String(http.StatusNotFound, "Not Found")
		return
	}
	renderPage(c, "cinema.html", gin.H{
		"MP4Path": "/files/" + urlencodePath(rel),
		"MP4Name": path.Base(rel),
	})
}
