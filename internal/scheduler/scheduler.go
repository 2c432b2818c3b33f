package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/LJTian/PaperHub/internal/crawler"
)

type Scheduler struct {
	cron    *cron.Cron
	service *crawler.Service
}

func New(spec string, service *crawler.Service) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{cron: c, service: service}
	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	// 延迟执行首轮采集，避免与服务启动期的请求争抢资源
	const startupDelay = 15 * time.Second
	time.AfterFunc(startupDelay, func() {
		go s.runOnce()
	})
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RunOnce 对外暴露的单次执行入口，方便手动触发采集
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	out := s.service.RunFullCrawl(context.Background())
	log.Printf("scheduled crawl: %s", out.Message)
}
