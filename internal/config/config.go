package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort string

	PostgresDSN string
	RedisAddr   string

	CronSpec string

	// 出站抓取相关：统一的超时与可选正向代理
	HTTPProxy    string
	FetchTimeout time.Duration
	// 整轮采集的墙钟超时，超时后未完成的源按 0 条计
	CrawlTimeout time.Duration

	// 各数据源的条数上限
	HNStoryLimit    int
	ArxivMaxResults int
}

func Load() *Config {
	cfg := &Config{
		AppPort:     getEnv("APP_PORT", "9000"),
		PostgresDSN: getEnv("POSTGRES_DSN", "host=localhost user=paperhub password=paperhub dbname=paperhub port=5432 sslmode=disable TimeZone=UTC"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		CronSpec:    getEnv("CRON_SPEC", "*/30 * * * *"),

		HTTPProxy:    getEnv("HTTP_PROXY", ""),
		FetchTimeout: time.Duration(getEnvInt("FETCH_TIMEOUT_SEC", 30)) * time.Second,
		CrawlTimeout: time.Duration(getEnvInt("CRAWL_TIMEOUT_SEC", 300)) * time.Second,

		HNStoryLimit:    getEnvInt("HN_STORY_LIMIT", 20),
		ArxivMaxResults: getEnvInt("ARXIV_MAX_RESULTS", 20),
	}

	log.Printf("config loaded: port=%s cron=%s", cfg.AppPort, cfg.CronSpec)
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("warn: invalid %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}
