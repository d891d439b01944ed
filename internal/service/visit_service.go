package service

import (
	"context"
	"time"

	radix "github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"

	"github.com/example/bookstore/internal/datamodels/visit"
)

const uvKeyTTL = 40 * 24 * time.Hour

// DayVisits 单日访问量，Unique 为 HyperLogLog 估算的独立访客数
type DayVisits struct {
	Day    string `json:"day"`
	Count  int64  `json:"count"`
	Unique int64  `json:"unique"`
}

// VisitService 访问统计：PV 落库，UV 存 Redis
type VisitService struct {
	repo  visit.Repository
	redis radix.Client
	now   func() time.Time
}

// NewVisitService redis 为 nil 时不统计独立访客
func NewVisitService(repo visit.Repository, redis radix.Client) *VisitService {
	return &VisitService{repo: repo, redis: redis, now: time.Now}
}

func uvKey(day string) string {
	return "visits:uv:" + day
}

// Record 记录一次访问，visitor 为用户 ID 或客户端 IP
func (s *VisitService) Record(ctx context.Context, visitor string) error {
	day := s.now().Format(visit.DayLayout)
	if err := s.repo.Incr(ctx, day); err != nil {
		return err
	}
	if s.redis == nil || visitor == "" {
		return nil
	}
	key := uvKey(day)
	if err := s.redis.Do(radix.Cmd(nil, "PFADD", key, visitor)); err != nil {
		zap.L().Warn("record unique visitor failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	_ = s.redis.Do(radix.FlatCmd(nil, "EXPIRE", key, int64(uvKeyTTL/time.Second)))
	return nil
}

// Recent 最近 days 天（含今天）的访问量，没有访问的日期补 0
func (s *VisitService) Recent(ctx context.Context, days int) ([]DayVisits, error) {
	if days <= 0 {
		days = 7
	}
	if days > 90 {
		days = 90
	}
	today := s.now()
	first := today.AddDate(0, 0, -(days - 1)).Format(visit.DayLayout)
	rows, err := s.repo.ListSince(ctx, first)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Day] = r.Count
	}

	out := make([]DayVisits, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format(visit.DayLayout)
		dv := DayVisits{Day: day, Count: counts[day]}
		if s.redis != nil {
			if err := s.redis.Do(radix.Cmd(&dv.Unique, "PFCOUNT", uvKey(day))); err != nil {
				zap.L().Warn("count unique visitors failed", zap.String("day", day), zap.Error(err))
			}
		}
		out = append(out, dv)
	}
	return out, nil
}
