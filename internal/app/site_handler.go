package app

import (
	"net/http"
	"strconv"

	"buildhub/internal/service"
	"buildhub/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthCheck reports whether a dependency is reachable
type HealthCheck func() error

type SiteHandler struct {
	searchService  service.SearchService
	sitemapService service.SitemapService
	checks         map[string]HealthCheck
}

func NewSiteHandler(searchService service.SearchService, sitemapService service.SitemapService, checks map[string]HealthCheck) *SiteHandler {
	return &SiteHandler{
		searchService:  searchService,
		sitemapService: sitemapService,
		checks:         checks,
	}
}

// Search
// GET /api/v1/search?q=&limit=
func (h *SiteHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	result, err := h.searchService.Search(c.Query("q"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Search results", result)
}

// Sitemap
// GET /sitemap.xml
func (h *SiteHandler) Sitemap(c *gin.Context) {
	body, err := h.sitemapService.Build()
	if err != nil {
		zap.L().Error("failed to build sitemap", zap.Error(err))
		c.String(http.StatusInternalServerError, "sitemap unavailable")
		return
	}

	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

// Health answers 503 when any registered check fails
// GET /health
func (h *SiteHandler) Health(c *gin.Context) {
	status := http.StatusOK
	components := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(); err != nil {
			components[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{"status": overall, "components": components})
}
