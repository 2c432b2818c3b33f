package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/LJTian/PaperHub/internal/collector"
	"github.com/LJTian/PaperHub/internal/storage"
)

const defaultRunTimeout = 5 * time.Minute

// Outcome 一次完整采集的汇总；不落库，返回给触发方并缓存到 Redis
type Outcome struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Counts  map[string]int `json:"counts"`
}

// Service 串起三个数据源的采集与落库，是定时器和手动触发共用的执行单元
type Service struct {
	repos   collector.RepoSource
	papers  []collector.PaperSource
	store   *storage.Store
	timeout time.Duration
}

func New(store *storage.Store, repos collector.RepoSource, papers []collector.PaperSource, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}
	return &Service{
		repos:   repos,
		papers:  papers,
		store:   store,
		timeout: timeout,
	}
}

// RunFullCrawl 并发跑完全部数据源，每个源抓取后立即落库。
// 单源整体失败（网络或解析）只让该源计 0 条，不会让整轮采集报错：
// 某个上游劣化时，其余源的摄入不能被阻塞，所以结果恒为 success。
func (s *Service) RunFullCrawl(ctx context.Context) Outcome {
	log.Println("start full crawl...")

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		counts = make(map[string]int)
	)
	record := func(name string, n int) {
		mu.Lock()
		counts[name] = n
		mu.Unlock()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		name := s.repos.Name()
		items, err := s.repos.Fetch(ctx)
		if err != nil {
			log.Printf("fetch %s error: %v", name, err)
			record(name, 0)
			return
		}
		record(name, s.store.SaveRepos(items))
	}()

	for _, src := range s.papers {
		wg.Add(1)
		go func(src collector.PaperSource) {
			defer wg.Done()
			name := src.Name()
			items, err := src.Fetch(ctx)
			if err != nil {
				log.Printf("fetch %s error: %v", name, err)
				record(name, 0)
				return
			}
			record(name, s.store.SavePapers(items))
		}(src)
	}

	wg.Wait()

	out := Outcome{
		Status:  "success",
		Message: summarize(counts),
		Counts:  counts,
	}
	log.Printf("full crawl done: %s", out.Message)

	// 结果缓存用独立的 context：本轮的 ctx 可能已经到期
	if bs, err := json.Marshal(out); err == nil {
		cacheCtx, cacheCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cacheCancel()
		s.store.SaveLastOutcome(cacheCtx, bs)
	}

	return out
}

// summarize 生成按源名排序的计数摘要，例如 "crawled arxiv=20 github=25 hackernews=18"
func summarize(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, counts[name]))
	}
	return "crawled " + strings.Join(parts, " ")
}
