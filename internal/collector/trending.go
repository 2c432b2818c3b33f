package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/LJTian/PaperHub/internal/fetch"
)

const defaultTrendingURL = "https://github.com/trending"

// TrendingCollector 抓取 GitHub Trending 榜单页，每行产出一条 RepoItem
type TrendingCollector struct {
	baseURL  string
	language string // 可选的语言过滤段，如 "go"
	client   *fetch.Client
}

func NewTrendingCollector(client *fetch.Client, language string) *TrendingCollector {
	return &TrendingCollector{
		baseURL:  defaultTrendingURL,
		language: language,
		client:   client,
	}
}

func (t *TrendingCollector) Name() string {
	return "github"
}

func (t *TrendingCollector) pageURL() string {
	if t.language != "" {
		return t.baseURL + "/" + t.language
	}
	return t.baseURL
}

func (t *TrendingCollector) Fetch(ctx context.Context) ([]RepoItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Println("fetch GitHub Trending...")

	c := colly.NewCollector(colly.UserAgent("PaperHubBot/1.0"))
	c.SetRequestTimeout(t.client.Timeout())
	// 与其余采集器共用同一份代理 / TLS 配置
	c.WithTransport(t.client.Transport())

	results := make([]RepoItem, 0, 25)
	now := time.Now()

	c.OnHTML("article.Box-row", func(e *colly.HTMLElement) {
		item, err := parseTrendingRow(e, now)
		if err != nil {
			log.Printf("github: skip row: %v", err)
			return
		}
		results = append(results, *item)
	})

	if err := c.Visit(t.pageURL()); err != nil {
		return nil, err
	}

	if len(results) == 0 {
		log.Println("github: got 0 repos")
	}
	return results, nil
}

// parseTrendingRow 解析榜单中的一行。
// 缺少标题锚点或数字字段非法均视为坏行，返回 ParseError 由调用方跳过。
func parseTrendingRow(e *colly.HTMLElement, now time.Time) (*RepoItem, error) {
	titleSel := e.DOM.Find("h2 a")
	if titleSel.Length() == 0 {
		return nil, &ParseError{Source: "github", Err: errors.New("row missing title anchor")}
	}
	href, ok := titleSel.Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return nil, &ParseError{Source: "github", Err: errors.New("row missing repo link")}
	}

	// 页面上是 "owner /\n  name"，压掉所有空白得到 owner/name
	fullName := strings.Join(strings.Fields(titleSel.Text()), "")
	name := fullName
	if parts := strings.SplitN(fullName, "/", 2); len(parts) == 2 && parts[1] != "" {
		name = parts[1]
	}

	stats := e.DOM.Find("a.Link--muted")
	stars, err := parseCount(statText(stats, 0))
	if err != nil {
		return nil, &ParseError{Source: "github", Err: fmt.Errorf("stars %q: %w", statText(stats, 0), err)}
	}
	forks, err := parseCount(statText(stats, 1))
	if err != nil {
		return nil, &ParseError{Source: "github", Err: fmt.Errorf("forks %q: %w", statText(stats, 1), err)}
	}

	return &RepoItem{
		// 详情链接路径即稳定 ID，重复采集会 upsert 到同一行
		RepoID:       strings.Trim(href, "/"),
		Name:         name,
		FullName:     fullName,
		Description:  strings.TrimSpace(e.DOM.Find("p.col-9").Text()),
		Language:     strings.TrimSpace(e.DOM.Find(`span[itemprop="programmingLanguage"]`).Text()),
		Stars:        stars,
		Forks:        forks,
		URL:          e.Request.AbsoluteURL(href),
		TrendingDate: now,
	}, nil
}

// statText 返回第 i 个 muted link 的文本，缺位时按 "0" 处理
func statText(sel *goquery.Selection, i int) string {
	if sel.Length() <= i {
		return "0"
	}
	s := strings.TrimSpace(sel.Eq(i).Text())
	if s == "" {
		return "0"
	}
	return s
}

// parseCount 去掉千分位逗号后按无符号整数解析
func parseCount(s string) (uint, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}
