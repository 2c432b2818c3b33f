package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LJTian/PaperHub/internal/fetch"
)

// newHNTestServer 模拟 topstories + item 两个端点；102 是评论而非故事
func newHNTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	items := map[string]string{
		"101": `{"id":101,"title":"Show HN: A tiny database","url":"https://example.com/db","score":120,"descendants":45,"by":"alice","time":1714550400,"type":"story"}`,
		"102": `{"id":102,"title":"a comment","score":1,"by":"bob","time":1714550400,"type":"comment"}`,
		"103": `{"id":103,"title":"Untitled link-less story","score":7,"descendants":0,"time":1714550400,"type":"story"}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[101, 102, 103, 104, 105]`))
	})
	mux.HandleFunc("/item/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/item/") : len(r.URL.Path)-len(".json")]
		body, ok := items[id]
		if !ok {
			// 104/105 等未知条目返回 500，模拟单条抓取失败
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(body))
	})
	return httptest.NewServer(mux)
}

func newHNTestCollector(t *testing.T, srv *httptest.Server, resolver CategoryResolver, limit int) *HackerNewsCollector {
	t.Helper()

	client, err := fetch.New(5*time.Second, "")
	if err != nil {
		t.Fatalf("fetch.New error: %v", err)
	}
	h := NewHackerNewsCollector(client, resolver, limit)
	h.baseURL = srv.URL
	return h
}

func TestHackerNewsFetchSkipsNonStories(t *testing.T) {
	srv := newHNTestServer(t)
	defer srv.Close()

	resolver := &fakeResolver{ensureID: 7}
	h := newHNTestCollector(t, srv, resolver, 3)

	items, err := h.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	// 102 是 comment，应被跳过；101 与 103 保留且维持索引顺序
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.Title != "Show HN: A tiny database" {
		t.Fatalf("Title = %q", first.Title)
	}
	if first.Abstract != "Score: 120 | Comments: 45" {
		t.Fatalf("Abstract = %q, want synthesized score/comments summary", first.Abstract)
	}
	if len(first.Authors) != 1 || first.Authors[0] != "alice" {
		t.Fatalf("Authors = %v, want [alice]", first.Authors)
	}
	if first.PDFURL != "https://example.com/db" {
		t.Fatalf("PDFURL = %q, want external url", first.PDFURL)
	}
	if first.Source != SourceHackerNews {
		t.Fatalf("Source = %q, want %q", first.Source, SourceHackerNews)
	}
	if first.CategoryID == nil || *first.CategoryID != 7 {
		t.Fatalf("CategoryID = %v, want 7", first.CategoryID)
	}
	if got := first.PublishedDate.Unix(); got != 1714550400 {
		t.Fatalf("PublishedDate.Unix = %d, want 1714550400", got)
	}

	// 103 没有 by 也没有 url：作者回落为 unknown，链接指向讨论页
	second := items[1]
	if len(second.Authors) != 1 || second.Authors[0] != "unknown" {
		t.Fatalf("Authors = %v, want [unknown]", second.Authors)
	}
	if want := "https://news.ycombinator.com/item?id=103"; second.PDFURL != want {
		t.Fatalf("PDFURL = %q, want %q", second.PDFURL, want)
	}

	if len(resolver.ensured) != 1 || resolver.ensured[0] != hnSlug {
		t.Fatalf("EnsureCategory calls = %v, want exactly one for %q", resolver.ensured, hnSlug)
	}
}

func TestHackerNewsFetchToleratesItemFailures(t *testing.T) {
	srv := newHNTestServer(t)
	defer srv.Close()

	// limit=5 覆盖 104/105 两个返回 500 的条目，失败只影响自身
	h := newHNTestCollector(t, srv, &fakeResolver{ensureID: 7}, 5)

	items, err := h.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items despite per-item failures, got %d", len(items))
	}
}

func TestHackerNewsFetchHonorsLimit(t *testing.T) {
	var itemCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[1,2,3,4,5,6,7,8,9,10]`))
	})
	mux.HandleFunc("/item/", func(w http.ResponseWriter, r *http.Request) {
		itemCalls.Add(1)
		_, _ = fmt.Fprintf(w, `{"id":1,"title":"t","score":1,"by":"u","time":1714550400,"type":"story"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	h := newHNTestCollector(t, srv, &fakeResolver{ensureID: 1}, 4)
	if _, err := h.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if got := itemCalls.Load(); got != 4 {
		t.Fatalf("item fetches = %d, want 4 (capped by limit)", got)
	}
}
