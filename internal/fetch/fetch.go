package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 4 << 20 // 4MB
	userAgent        = "PaperHubBot/1.0"
)

// TransportError 表示网络层失败（超时 / TLS / 代理等），与解析错误区分开。
// 是否致命由调用方决定：编排器默认把整源失败降级为该源 0 条。
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client 所有采集器共用的出站抓取客户端，不做重试
type Client struct {
	http    *http.Client
	timeout time.Duration
}

// New 创建抓取客户端；proxyURL 为空时直连
func New(timeout time.Duration, proxyURL string) (*Client, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(u)
	}

	return &Client{
		http:    &http.Client{Timeout: timeout, Transport: transport},
		timeout: timeout,
	}, nil
}

// Get 拉取目标地址并返回原始字节，任何失败统一包装为 TransportError
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{URL: rawURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}
	return body, nil
}

// Transport 暴露底层 Transport，供 colly 复用同一份代理配置
func (c *Client) Transport() http.RoundTripper {
	return c.http.Transport
}

func (c *Client) Timeout() time.Duration {
	return c.timeout
}
