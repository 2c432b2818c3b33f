package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/LJTian/PaperHub/internal/collector"
)

// Category 论文条目引用的主题分类；按 slug 唯一，首次使用时惰性创建，之后不再变更
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Slug        string `gorm:"size:64;uniqueIndex" json:"slug"`
	Name        string `gorm:"size:128" json:"name"`
	Description string `gorm:"size:512" json:"description"`

	CreatedAt time.Time `json:"createdAt"`
}

// Repo GitHub Trending 仓库快照；repo_id 是 upsert 冲突键，重复采集覆盖整行
type Repo struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	RepoID       string `gorm:"size:256;uniqueIndex" json:"repoId"`
	Name         string `gorm:"size:256" json:"name"`
	FullName     string `gorm:"size:256" json:"fullName"`
	Description  string `gorm:"size:1024" json:"description"`
	Language     string `gorm:"size:64;index" json:"language"`
	Stars        uint   `json:"stars"`
	Forks        uint   `json:"forks"`
	URL          string `gorm:"size:512" json:"url"`
	TrendingDate string `gorm:"size:10;index" json:"trendingDate"` // 日期 YYYY-MM-DD

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Paper 论文 / 资讯条目；没有天然去重键，重复采集会产生重复行（按设计保留）
type Paper struct {
	ID            uint                        `gorm:"primaryKey" json:"id"`
	Title         string                      `gorm:"size:512" json:"title"`
	Abstract      string                      `gorm:"type:text" json:"abstract"`
	Authors       datatypes.JSONSlice[string] `json:"authors"`
	PDFURL        string                      `gorm:"size:512" json:"pdfUrl"`
	CodeURL       string                      `gorm:"size:512" json:"codeUrl"`
	PublishedDate string                      `gorm:"size:10;index" json:"publishedDate"` // 日期 YYYY-MM-DD
	Source        string                      `gorm:"size:32;index" json:"source"`
	CategoryID    *uint                       `gorm:"index" json:"categoryId"`

	CreatedAt time.Time `json:"createdAt"`
}

// RecordError 表示存储层拒绝了单条写入；按条隔离，不影响同批其它记录
type RecordError struct {
	Table string
	Key   string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s[%s]: %v", e.Table, e.Key, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewStore(dsn, redisAddr string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return NewStoreWithDB(db, redisAddr)
}

// NewStoreWithDB 基于已有的 gorm 连接建 Store；redisAddr 为空时不启用 Redis
func NewStoreWithDB(db *gorm.DB, redisAddr string) (*Store, error) {
	if err := db.AutoMigrate(&Category{}, &Repo{}, &Paper{}); err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if redisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: redisAddr})

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("warn: redis ping failed: %v", err)
		}
	}

	return &Store{DB: db, Redis: rdb}, nil
}

// ---------- 分类解析 ----------

// LookupCategory 按 slug 查找，不存在时不创建
func (s *Store) LookupCategory(slug string) (uint, bool, error) {
	var c Category
	err := s.DB.Where("slug = ?", slug).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return c.ID, true, nil
}

// AnyCategoryID 任取一个已有分类，作为找不到目标 slug 时的兜底
func (s *Store) AnyCategoryID() (uint, bool, error) {
	var c Category
	err := s.DB.Order("id ASC").First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return c.ID, true, nil
}

// EnsureCategory 确保分类存在并返回其 ID。
// 走 slug 唯一索引 + ON CONFLICT DO NOTHING 再回读，并发调用同一 slug 也只会落一行。
func (s *Store) EnsureCategory(slug, name, description string) (uint, error) {
	c := &Category{Slug: slug, Name: name, Description: description}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	}).Create(c).Error; err != nil {
		return 0, err
	}
	if c.ID != 0 {
		return c.ID, nil
	}

	// 发生冲突时没有拿到 ID，按 slug 回读已有行
	var existing Category
	if err := s.DB.Where("slug = ?", slug).First(&existing).Error; err != nil {
		return 0, err
	}
	return existing.ID, nil
}

// ---------- 持久化网关 ----------

// SaveRepos 逐条 upsert 仓库快照，冲突键为 repo_id，已有行被整体覆盖。
// 单条失败记录日志后跳过，返回成功条数。
func (s *Store) SaveRepos(items []collector.RepoItem) int {
	saved := 0
	for _, it := range items {
		r := &Repo{
			RepoID:       it.RepoID,
			Name:         toValidUTF8(it.Name),
			FullName:     toValidUTF8(it.FullName),
			Description:  truncateRunes(toValidUTF8(it.Description), 1000),
			Language:     it.Language,
			Stars:        it.Stars,
			Forks:        it.Forks,
			URL:          it.URL,
			TrendingDate: it.TrendingDate.Format("2006-01-02"),
		}

		err := s.DB.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "repo_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "full_name", "description", "language",
				"stars", "forks", "url", "trending_date", "updated_at",
			}),
		}).Create(r).Error
		if err != nil {
			log.Printf("save repo failed: %v", &RecordError{Table: "repos", Key: it.RepoID, Err: err})
			continue
		}
		saved++
	}
	return saved
}

// SavePapers 逐条插入论文；没有去重键，重复内容产生重复行是当前设计。
// 单条失败记录日志后跳过，返回成功条数。
func (s *Store) SavePapers(items []collector.PaperItem) int {
	saved := 0
	for _, it := range items {
		p := &Paper{
			Title:         truncateRunes(toValidUTF8(it.Title), 500),
			Abstract:      toValidUTF8(it.Abstract),
			Authors:       datatypes.NewJSONSlice(it.Authors),
			PDFURL:        it.PDFURL,
			CodeURL:       it.CodeURL,
			PublishedDate: it.PublishedDate.Format("2006-01-02"),
			Source:        it.Source,
			CategoryID:    it.CategoryID,
		}

		if err := s.DB.Create(p).Error; err != nil {
			log.Printf("save paper failed: %v", &RecordError{Table: "papers", Key: it.Title, Err: err})
			continue
		}
		saved++
	}
	return saved
}

// ---------- 采集结果缓存 ----------

const (
	lastOutcomeKey = "crawl:last_outcome"
	lastOutcomeTTL = 24 * time.Hour
)

// SaveLastOutcome 把最近一次采集汇总写入 Redis 供 API 回读；失败仅告警
func (s *Store) SaveLastOutcome(ctx context.Context, payload []byte) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Set(ctx, lastOutcomeKey, payload, lastOutcomeTTL).Err(); err != nil {
		log.Printf("warn: cache last outcome: %v", err)
	}
}

// LastOutcome 读取最近一次采集汇总；没有缓存时返回 ok=false
func (s *Store) LastOutcome(ctx context.Context) ([]byte, bool) {
	if s.Redis == nil {
		return nil, false
	}
	bs, err := s.Redis.Get(ctx, lastOutcomeKey).Bytes()
	if err != nil {
		return nil, false
	}
	return bs, true
}

// toValidUTF8 把字符串规范为合法 UTF-8，避免 PostgreSQL invalid byte sequence 错误
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}

// truncateRunes 按 rune 数截断，保证不超过数据库字段长度
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
