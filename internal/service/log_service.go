package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/example/bookstore/internal/datamodels/auditlog"
	"github.com/example/bookstore/internal/infra/mq"
)

type LogService struct {
	repo auditlog.Repository
}

func NewLogService(repo auditlog.Repository) *LogService {
	return &LogService{repo: repo}
}

// Record 写一条操作日志，失败只记录不返回，不影响主流程
func (s *LogService) Record(ctx context.Context, actor, action, target, detail string) {
	if s == nil {
		return
	}
	l := &auditlog.Log{Actor: actor, Action: action, Target: target, Detail: detail}
	if err := s.repo.Create(ctx, l); err != nil {
		zap.L().Warn("write audit log failed", zap.String("action", action), zap.Error(err))
	}
}

func (s *LogService) List(ctx context.Context, action string, limit int) ([]*auditlog.Log, error) {
	return s.repo.List(ctx, action, limit)
}

// HandleOrderEvent 消费订单状态事件写入日志。
// 消息无法解析时返回 mq.ErrDiscard，存储失败返回原始错误等待重投。
func (s *LogService) HandleOrderEvent(ctx context.Context, body []byte) error {
	var ev OrderEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: decode order event: %v", mq.ErrDiscard, err)
	}
	if ev.OrderID == 0 || !ev.To.Valid() {
		return fmt.Errorf("%w: malformed order event %q", mq.ErrDiscard, ev.EventID)
	}

	detail := fmt.Sprintf("%s -> %s (event %s, order %s)", ev.From, ev.To, ev.EventID, ev.OrderNo)
	l := &auditlog.Log{
		Actor:  ev.Actor,
		Action: "order." + strings.ToLower(ev.To.String()),
		Target: strconv.FormatInt(ev.OrderID, 10),
		Detail: detail,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return fmt.Errorf("save audit log: %w", err)
	}
	return nil
}
