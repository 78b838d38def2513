package controllers

import (
	"net/http"
	"strings"
	"time"

	ttlworker "github.com/FloatTech/ttl"
	"github.com/gin-gonic/gin"

	"github.com/moyoez/friendlyshare-go/servepoint"
	"github.com/moyoez/friendlyshare-go/types"
)

// BrowseController renders directory listings from the serve point. Listings
// are cached briefly so a party of viewers refreshing the same folder does not
// hammer the filesystem; expiry is the only invalidation.
type BrowseController struct {
	sp    *servepoint.ServePoint
	cache *ttlworker.Cache[string, *types.DirectoryListing]
}

func NewBrowseController(sp *servepoint.ServePoint, cacheTTL time.Duration) *BrowseController {
	bc := &BrowseController{sp: sp}
	if cacheTTL > 0 {
		bc.cache = ttlworker.NewCache[string, *types.DirectoryListing](cacheTTL)
	}
	return bc
}

// HandleBrowse serves the listing page for the requested directory. Files,
// missing paths, and paths escaping the root all get the same 404.
func (bc *BrowseController) HandleBrowse(c *gin.Context) {
	rel := strings.TrimPrefix(c.Param("path"), "/")

	if bc.sp.IsFile(rel) {
		c.String(http.StatusNotFound, "Not Found")
		return
	}

	listing := bc.lookup(rel)
	if listing == nil {
		c.String(http.StatusNotFound, "Not Found")
		return
	}
	renderPage(c, "listing.html", gin.H{"Listing": listing})
}

func (bc *BrowseController) lookup(rel string) *types.DirectoryListing {
	if bc.cache != nil {
		if listing := bc.cache.Get(rel); listing != nil {
			return listing
		}
	}
	listing := bc.sp.GetDirectoryListing(rel)
	if listing != nil && bc.cache != nil {
		bc.cache.Set(rel, listing)
	}
	return listing
}
