package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/PaperHub/internal/crawler"
	"github.com/LJTian/PaperHub/internal/storage"
)

type Server struct {
	service *crawler.Service
	store   *storage.Store
}

func NewServer(service *crawler.Service, store *storage.Store) *Server {
	return &Server{service: service, store: store}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/crawl", s.triggerCrawl)
		v1.GET("/crawl/last", s.lastOutcome)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// triggerCrawl 同步执行一轮采集并返回汇总。
// 采集内部保证任何单源失败都不会冒泡，这里恒返回 200。
func (s *Server) triggerCrawl(c *gin.Context) {
	out := s.service.RunFullCrawl(c.Request.Context())
	c.JSON(http.StatusOK, out)
}

func (s *Server) lastOutcome(c *gin.Context) {
	bs, ok := s.store.LastOutcome(c.Request.Context())
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "not_found",
			"message": "no crawl outcome cached",
		})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", bs)
}
