package config

import (
	"os"
	"testing"
	"time"
)

func TestGetEnvWithDefault(t *testing.T) {
	const key = "TEST_APP_PORT"

	// 环境变量未设置时，应该返回默认值
	_ = os.Unsetenv(key)
	if got := getEnv(key, "9000"); got != "9000" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "9000")
	}

	// 环境变量设置后，应优先返回环境变量
	if err := os.Setenv(key, "8080"); err != nil {
		t.Fatalf("Setenv error: %v", err)
	}
	defer os.Unsetenv(key)
	if got := getEnv(key, "9000"); got != "8080" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "8080")
	}
}

func TestGetEnvIntRejectsInvalid(t *testing.T) {
	const key = "TEST_HN_STORY_LIMIT"
	defer os.Unsetenv(key)

	_ = os.Unsetenv(key)
	if got := getEnvInt(key, 20); got != 20 {
		t.Fatalf("getEnvInt unset = %d, want 20", got)
	}

	_ = os.Setenv(key, "abc")
	if got := getEnvInt(key, 20); got != 20 {
		t.Fatalf("getEnvInt invalid = %d, want default 20", got)
	}

	_ = os.Setenv(key, "-3")
	if got := getEnvInt(key, 20); got != 20 {
		t.Fatalf("getEnvInt negative = %d, want default 20", got)
	}

	_ = os.Setenv(key, "15")
	if got := getEnvInt(key, 20); got != 15 {
		t.Fatalf("getEnvInt = %d, want 15", got)
	}
}

func TestLoadReadsTimeouts(t *testing.T) {
	_ = os.Setenv("FETCH_TIMEOUT_SEC", "5")
	_ = os.Setenv("CRAWL_TIMEOUT_SEC", "60")
	defer func() {
		_ = os.Unsetenv("FETCH_TIMEOUT_SEC")
		_ = os.Unsetenv("CRAWL_TIMEOUT_SEC")
	}()

	cfg := Load()
	if cfg.FetchTimeout != 5*time.Second {
		t.Fatalf("FetchTimeout = %v, want 5s", cfg.FetchTimeout)
	}
	if cfg.CrawlTimeout != 60*time.Second {
		t.Fatalf("CrawlTimeout = %v, want 60s", cfg.CrawlTimeout)
	}
}
