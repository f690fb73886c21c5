package repo

import (
	"context"
	"log/slog"
	"time"

	"short.local/internal/app/shortlink/stats"
)

// RecordClicks 把一批点击事件落库：每个事件插一条明细并把计数 +1。
//
// 刻意不用跨记录事务：单条失败跳过继续，计数与明细之间允许轻微偏差
// （统计数据，不是账本）。
func (s *LinksRepo) RecordClicks(ctx context.Context, events []stats.ClickEvent) error {
	if len(events) == 0 {
		return nil
	}

	dbctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	for _, e := range events {
		if _, err := s.db.Exec(dbctx,
			`INSERT INTO clicks (code, clicked_at, ip, user_agent, referer) VALUES ($1,$2,$3,$4,$5)`,
			e.Code, e.ClickedAt, e.IP, e.UserAgent, e.Referer); err != nil {
			slog.Error("insert click failed", "code", e.Code, "err", err)
			continue
		}
		if err := s.IncrementClicks(dbctx, e.Code); err != nil {
			slog.Error("bump click count failed", "code", e.Code, "err", err)
		}
	}
	return nil
}
