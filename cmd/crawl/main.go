package main

import (
	"context"
	"log"

	"github.com/LJTian/PaperHub/internal/collector"
	"github.com/LJTian/PaperHub/internal/config"
	"github.com/LJTian/PaperHub/internal/crawler"
	"github.com/LJTian/PaperHub/internal/fetch"
	"github.com/LJTian/PaperHub/internal/storage"
)

// 一个仅执行一轮采集的命令行入口：适合手动触发或排查上游
func main() {
	cfg := config.Load()

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	// 与 cmd/api 保持一致的默认分类
	if _, err := store.EnsureCategory("object-detection", "Object Detection", "Computer vision papers on object detection"); err != nil {
		log.Fatalf("ensure category object-detection failed: %v", err)
	}
	if _, err := store.EnsureCategory("hacker-news", "Hacker News", "Top stories from Hacker News"); err != nil {
		log.Fatalf("ensure category hacker-news failed: %v", err)
	}

	client, err := fetch.New(cfg.FetchTimeout, cfg.HTTPProxy)
	if err != nil {
		log.Fatalf("init fetch client failed: %v", err)
	}

	service := crawler.New(
		store,
		collector.NewTrendingCollector(client, ""),
		[]collector.PaperSource{
			collector.NewArxivCollector(client, store, cfg.ArxivMaxResults),
			collector.NewHackerNewsCollector(client, store, cfg.HNStoryLimit),
		},
		cfg.CrawlTimeout,
	)

	out := service.RunFullCrawl(context.Background())
	log.Printf("done: %s", out.Message)
}
