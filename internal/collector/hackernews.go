package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/LJTian/PaperHub/internal/fetch"
)

const (
	hnBaseURL     = "https://hacker-news.firebaseio.com/v0"
	hnSlug        = "hacker-news"
	hnConcurrency = 8

	defaultHNLimit = 20
)

// HackerNewsCollector 通过官方 Firebase API 抓取 Top Stories，
// 归一化为 source=hackernews 的 PaperItem（摘要由分数与评论数合成）。
type HackerNewsCollector struct {
	baseURL    string
	client     *fetch.Client
	categories CategoryResolver
	limit      int
}

func NewHackerNewsCollector(client *fetch.Client, categories CategoryResolver, limit int) *HackerNewsCollector {
	if limit <= 0 {
		limit = defaultHNLimit
	}
	return &HackerNewsCollector{
		baseURL:    hnBaseURL,
		client:     client,
		categories: categories,
		limit:      limit,
	}
}

func (h *HackerNewsCollector) Name() string {
	return "hackernews"
}

type hnItem struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	By          string `json:"by"`
	Time        int64  `json:"time"`
	Type        string `json:"type"`
}

func (h *HackerNewsCollector) Fetch(ctx context.Context) ([]PaperItem, error) {
	log.Println("fetch Hacker News Top Stories...")

	body, err := h.client.Get(ctx, h.baseURL+"/topstories.json")
	if err != nil {
		return nil, err
	}

	var ids []int
	if err := json.Unmarshal(body, &ids); err != nil {
		return nil, &ParseError{Source: SourceHackerNews, Err: err}
	}
	if len(ids) > h.limit {
		ids = ids[:h.limit]
	}

	// hacker-news 分类不存在时顺带创建，是唯一会写 Category 的采集器
	var categoryID *uint
	if id, err := h.categories.EnsureCategory(hnSlug, "Hacker News", "Top stories from Hacker News"); err != nil {
		log.Printf("hackernews: ensure category: %v", err)
	} else {
		categoryID = &id
	}

	// 按索引占位，保持 topstories 的原始顺序；单条失败留空即可
	slots := make([]*PaperItem, len(ids))

	var wg sync.WaitGroup
	sem := make(chan struct{}, hnConcurrency)
	for i, id := range ids {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx, id int) {
			defer wg.Done()
			defer func() { <-sem }()

			it, err := h.fetchItem(ctx, id)
			if err != nil {
				log.Printf("hackernews: fetch item %d: %v", id, err)
				return
			}
			if it.Type != "story" || it.Title == "" {
				return
			}
			slots[idx] = h.toPaperItem(it, categoryID)
		}(i, id)
	}
	wg.Wait()

	results := make([]PaperItem, 0, len(ids))
	for _, p := range slots {
		if p != nil {
			results = append(results, *p)
		}
	}

	if len(results) == 0 {
		log.Println("hackernews: no items fetched")
	}
	return results, nil
}

func (h *HackerNewsCollector) fetchItem(ctx context.Context, id int) (hnItem, error) {
	body, err := h.client.Get(ctx, fmt.Sprintf("%s/item/%d.json", h.baseURL, id))
	if err != nil {
		return hnItem{}, err
	}

	var it hnItem
	if err := json.Unmarshal(body, &it); err != nil {
		return hnItem{}, &ParseError{Source: SourceHackerNews, Err: err}
	}
	return it, nil
}

func (h *HackerNewsCollector) toPaperItem(it hnItem, categoryID *uint) *PaperItem {
	author := it.By
	if author == "" {
		author = "unknown"
	}

	// 没有外链的故事指向站内讨论页
	link := it.URL
	if link == "" {
		link = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", it.ID)
	}

	return &PaperItem{
		Title:         it.Title,
		Abstract:      fmt.Sprintf("Score: %d | Comments: %d", it.Score, it.Descendants),
		Authors:       []string{author},
		PDFURL:        link,
		PublishedDate: time.Unix(it.Time, 0),
		Source:        SourceHackerNews,
		CategoryID:    categoryID,
	}
}
