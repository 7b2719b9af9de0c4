package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/LJTian/NewsHub/internal/model"
	"github.com/LJTian/NewsHub/internal/storage"
)

type Server struct {
	store        *storage.Store
	adminEnabled bool
}

// NewServer adminEnabled 仅在配置了 Basic Auth 时为 true，否则管理接口一律 403
func NewServer(store *storage.Store, adminEnabled bool) *Server {
	return &Server{store: store, adminEnabled: adminEnabled}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)
	r.GET("/rss.xml", s.rss)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/articles", s.listArticles)
		v1.GET("/articles/recent", s.recentArticles)
		v1.GET("/articles/trending", s.trendingArticles)
		v1.GET("/articles/search", s.searchArticles)
		v1.GET("/articles/:id", s.getArticle)
		v1.POST("/articles/:id/view", s.viewArticle)
		v1.GET("/sources", s.listSources)
	}

	admin := r.Group("/api/v1", s.requireAdmin)
	{
		admin.PUT("/articles/:id/trending", s.markTrending)
		admin.PATCH("/sources/:id", s.updateSource)
	}
}

func (s *Server) requireAdmin(c *gin.Context) {
	if !s.adminEnabled {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"code":    "admin_disabled",
			"message": "admin endpoints require basic auth to be configured",
		})
		return
	}
	c.Next()
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    data,
	})
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}

func internalError(c *gin.Context, err error) {
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
}

func storeError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		fail(c, http.StatusNotFound, "not_found", "not found")
		return
	}
	internalError(c, err)
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

func paramID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid_id", "id must be a uuid")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listArticles(c *gin.Context) {
	f := storage.ArticleFilter{
		Category: c.Query("category"),
		Language: c.Query("language"),
		Region:   c.Query("region"),
		Limit:    queryInt(c, "limit", 0),
		Offset:   queryInt(c, "offset", 0),
	}
	if raw := c.Query("source_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "invalid_source_id", "source_id must be a uuid")
			return
		}
		f.SourceID = &id
	}

	items, err := s.store.ListArticles(c.Request.Context(), f)
	if err != nil {
		internalError(c, err)
		return
	}
	ok(c, items)
}

func (s *Server) recentArticles(c *gin.Context) {
	items, err := s.store.RecentArticles(c.Request.Context(), queryInt(c, "limit", 0))
	if err != nil {
		internalError(c, err)
		return
	}
	ok(c, items)
}

func (s *Server) trendingArticles(c *gin.Context) {
	items, err := s.store.TrendingArticles(c.Request.Context(), queryInt(c, "limit", 0))
	if err != nil {
		internalError(c, err)
		return
	}
	ok(c, items)
}

func (s *Server) searchArticles(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		fail(c, http.StatusBadRequest, "missing_query", "query parameter q is required")
		return
	}
	items, err := s.store.SearchArticles(c.Request.Context(), q, queryInt(c, "limit", 0), queryInt(c, "offset", 0))
	if err != nil {
		internalError(c, err)
		return
	}
	ok(c, items)
}

func (s *Server) getArticle(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	a, err := s.store.GetArticle(c.Request.Context(), id)
	if err != nil {
		storeError(c, err)
		return
	}
	ok(c, a)
}

func (s *Server) viewArticle(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	views, err := s.store.IncrementArticleViews(c.Request.Context(), id)
	if err != nil {
		storeError(c, err)
		return
	}
	ok(c, gin.H{"id": id, "viewCount": views})
}

func (s *Server) markTrending(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	var req struct {
		Trending *bool `json:"trending" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if err := s.store.MarkTrending(c.Request.Context(), id, *req.Trending); err != nil {
		storeError(c, err)
		return
	}
	ok(c, gin.H{"id": id, "isTrending": *req.Trending})
}

func (s *Server) listSources(c *gin.Context) {
	list := s.store.ListActiveSources
	if c.Query("all") == "true" {
		list = s.store.ListSources
	}
	sources, err := list(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	if sources == nil {
		sources = []model.Source{}
	}
	ok(c, sources)
}

// updateSource 目前只支持启用/停用，来源不会被删除
func (s *Server) updateSource(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if err := s.store.SetSourceActive(c.Request.Context(), id, *req.Active); err != nil {
		storeError(c, err)
		return
	}
	ok(c, gin.H{"id": id, "active": *req.Active})
}
