package collector

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mmcdole/gofeed/atom"

	"github.com/LJTian/PaperHub/internal/fetch"
)

const (
	arxivQueryURL = "http://export.arxiv.org/api/query?search_query=cat:%s&start=0&max_results=%d&sortBy=submittedDate&sortOrder=descending"
	arxivCategory = "cs.CV"
	arxivSlug     = "object-detection"

	defaultArxivMaxResults = 20
)

// ArxivCollector 消费 arXiv 的 Atom 查询接口，产出 source=arxiv 的 PaperItem
type ArxivCollector struct {
	queryURL   string // 带 category 与 max_results 两个占位符
	client     *fetch.Client
	categories CategoryResolver
	category   string
	maxResults int
}

func NewArxivCollector(client *fetch.Client, categories CategoryResolver, maxResults int) *ArxivCollector {
	if maxResults <= 0 {
		maxResults = defaultArxivMaxResults
	}
	return &ArxivCollector{
		queryURL:   arxivQueryURL,
		client:     client,
		categories: categories,
		category:   arxivCategory,
		maxResults: maxResults,
	}
}

func (a *ArxivCollector) Name() string {
	return "arxiv"
}

func (a *ArxivCollector) Fetch(ctx context.Context) ([]PaperItem, error) {
	queryURL := fmt.Sprintf(a.queryURL, a.category, a.maxResults)
	log.Printf("fetch arXiv: %s", queryURL)

	body, err := a.client.Get(ctx, queryURL)
	if err != nil {
		return nil, err
	}

	items, err := parseArxivFeed(body)
	if err != nil {
		return nil, err
	}

	// 分类每轮只解析一次：优先固定 slug，缺失退回任意已有分类，都没有则为空
	categoryID := a.resolveCategory()
	for i := range items {
		items[i].CategoryID = categoryID
	}
	return items, nil
}

func (a *ArxivCollector) resolveCategory() *uint {
	if id, ok, err := a.categories.LookupCategory(arxivSlug); err != nil {
		log.Printf("arxiv: lookup category %q: %v", arxivSlug, err)
	} else if ok {
		return &id
	}

	if id, ok, err := a.categories.AnyCategoryID(); err != nil {
		log.Printf("arxiv: fallback category: %v", err)
	} else if ok {
		return &id
	}
	return nil
}

// parseArxivFeed 把 Atom 响应解析成 PaperItem。
// 单条异常（缺标题 / 缺发布时间）记录日志后跳过，不影响其余条目。
func parseArxivFeed(data []byte) ([]PaperItem, error) {
	parser := &atom.Parser{}
	feed, err := parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Source: SourceArxiv, Err: err}
	}

	papers := make([]PaperItem, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		if entry == nil || strings.TrimSpace(entry.Title) == "" || entry.PublishedParsed == nil {
			log.Printf("arxiv: skip entry without title or published date")
			continue
		}

		authors := make([]string, 0, len(entry.Authors))
		for _, au := range entry.Authors {
			if au != nil && au.Name != "" {
				authors = append(authors, au.Name)
			}
		}

		pdfURL := ""
		for _, l := range entry.Links {
			if l != nil && l.Type == "application/pdf" {
				pdfURL = l.Href
				break
			}
		}

		papers = append(papers, PaperItem{
			Title:         collapseWhitespace(entry.Title),
			Abstract:      collapseWhitespace(entry.Summary),
			Authors:       authors,
			PDFURL:        pdfURL,
			PublishedDate: *entry.PublishedParsed,
			Source:        SourceArxiv,
		})
	}
	return papers, nil
}

// collapseWhitespace 把换行等连续空白压成单个空格；arXiv 的标题和摘要带硬换行
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
