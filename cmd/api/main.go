package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/PaperHub/internal/api"
	"github.com/LJTian/PaperHub/internal/collector"
	"github.com/LJTian/PaperHub/internal/config"
	"github.com/LJTian/PaperHub/internal/crawler"
	"github.com/LJTian/PaperHub/internal/fetch"
	"github.com/LJTian/PaperHub/internal/scheduler"
	"github.com/LJTian/PaperHub/internal/storage"
)

func main() {
	cfg := config.Load()

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	// 预置默认分类，arXiv 采集的 slug 查找通常直接命中
	if _, err := store.EnsureCategory("object-detection", "Object Detection", "Computer vision papers on object detection"); err != nil {
		log.Fatalf("ensure category object-detection failed: %v", err)
	}
	if _, err := store.EnsureCategory("hacker-news", "Hacker News", "Top stories from Hacker News"); err != nil {
		log.Fatalf("ensure category hacker-news failed: %v", err)
	}

	service, err := buildCrawler(cfg, store)
	if err != nil {
		log.Fatalf("init crawler failed: %v", err)
	}

	s, err := scheduler.New(cfg.CronSpec, service)
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}
	s.Start()

	r := gin.Default()
	api.NewServer(service, store).RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Printf("starting api server at %s ...", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}

func buildCrawler(cfg *config.Config, store *storage.Store) (*crawler.Service, error) {
	client, err := fetch.New(cfg.FetchTimeout, cfg.HTTPProxy)
	if err != nil {
		return nil, err
	}

	return crawler.New(
		store,
		collector.NewTrendingCollector(client, ""),
		[]collector.PaperSource{
			collector.NewArxivCollector(client, store, cfg.ArxivMaxResults),
			collector.NewHackerNewsCollector(client, store, cfg.HNStoryLimit),
		},
		cfg.CrawlTimeout,
	), nil
}
