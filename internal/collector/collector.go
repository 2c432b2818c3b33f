package collector

import (
	"context"
	"fmt"
	"time"
)

const (
	SourceArxiv      = "arxiv"
	SourceHackerNews = "hackernews"
)

// RepoItem 仓库榜单采集后的标准化结构
type RepoItem struct {
	RepoID       string
	Name         string
	FullName     string
	Description  string
	Language     string
	Stars        uint
	Forks        uint
	URL          string
	TrendingDate time.Time
}

// PaperItem 论文 / 资讯条目的标准化结构，arxiv 与 hackernews 共用
type PaperItem struct {
	Title         string
	Abstract      string
	Authors       []string
	PDFURL        string
	CodeURL       string
	PublishedDate time.Time
	Source        string
	CategoryID    *uint
}

// RepoSource 产出仓库记录的数据源
type RepoSource interface {
	Name() string
	Fetch(ctx context.Context) ([]RepoItem, error)
}

// PaperSource 产出论文记录的数据源
type PaperSource interface {
	Name() string
	Fetch(ctx context.Context) ([]PaperItem, error)
}

// CategoryResolver 采集器需要的最小分类解析能力，由 storage.Store 实现
type CategoryResolver interface {
	// LookupCategory 按 slug 查找，不存在时不创建
	LookupCategory(slug string) (uint, bool, error)
	// AnyCategoryID 任取一个已有分类作为兜底
	AnyCategoryID() (uint, bool, error)
	// EnsureCategory 按 slug 查找，不存在则用给定默认值创建
	EnsureCategory(slug, name, description string) (uint, error)
}

// ParseError 表示单条数据不符合预期结构；按条跳过，不中断同源的其它条目
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
