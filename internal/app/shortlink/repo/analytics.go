package repo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"short.local/internal/app/shortlink"
)

type RefererCount struct {
	Referer string `json:"referer"`
	Count   int64  `json:"count"`
}

type UserAgentCount struct {
	UserAgent string `json:"user_agent"`
	Count     int64  `json:"count"`
}

type DailyClicks struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// AnalyticsReport 是单个短码的点击分析汇总。
type AnalyticsReport struct {
	Code           string           `json:"code"`
	TotalClicks    int64            `json:"total_clicks"`
	UniqueClicks   int64            `json:"unique_clicks"`
	TopReferers    []RefererCount   `json:"top_referers"`
	TopUserAgents  []UserAgentCount `json:"top_user_agents"`
	ClicksOverTime []DailyClicks    `json:"clicks_over_time"`
}

// AnalyticsByCode 汇总一个短码的点击分析（纯 SQL 分组，最近 30 天的时间线）。
func (s *LinksRepo) AnalyticsByCode(ctx context.Context, code string) (*AnalyticsReport, error) {
	dbctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	// 短码必须存在（过期与否都可以看历史数据）
	var exists bool
	if err := s.db.QueryRow(dbctx,
		`SELECT EXISTS(SELECT 1 FROM shortlinks WHERE code=$1)`, code).Scan(&exists); err != nil {
		slog.Error("analytics: existence check failed", "code", code, "err", err)
		return nil, err
	}
	if !exists {
		return nil, shortlink.ErrNotFound
	}

	report := &AnalyticsReport{Code: code}

	if err := s.db.QueryRow(dbctx,
		`SELECT COUNT(*), COUNT(DISTINCT ip) FROM clicks WHERE code=$1`, code).
		Scan(&report.TotalClicks, &report.UniqueClicks); err != nil {
		slog.Error("analytics: counts failed", "code", code, "err", err)
		return nil, err
	}

	if err := s.queryReferers(dbctx, code, report); err != nil {
		return nil, err
	}
	if err := s.queryUserAgents(dbctx, code, report); err != nil {
		return nil, err
	}
	if err := s.queryTimeline(dbctx, code, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *LinksRepo) queryReferers(ctx context.Context, code string, report *AnalyticsReport) error {
	rows, err := s.db.Query(ctx,
		`SELECT referer, COUNT(*) AS count FROM clicks
		 WHERE code=$1 AND referer <> ''
		 GROUP BY referer ORDER BY count DESC LIMIT 10`, code)
	if err != nil {
		slog.Error("analytics: referers failed", "code", code, "err", err)
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item RefererCount
		if err := rows.Scan(&item.Referer, &item.Count); err != nil {
			return err
		}
		report.TopReferers = append(report.TopReferers, item)
	}
	return rows.Err()
}

func (s *LinksRepo) queryUserAgents(ctx context.Context, code string, report *AnalyticsReport) error {
	rows, err := s.db.Query(ctx,
		`SELECT user_agent, COUNT(*) AS count FROM clicks
		 WHERE code=$1
		 GROUP BY user_agent ORDER BY count DESC LIMIT 10`, code)
	if err != nil {
		slog.Error("analytics: user agents failed", "code", code, "err", err)
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item UserAgentCount
		if err := rows.Scan(&item.UserAgent, &item.Count); err != nil {
			return err
		}
		report.TopUserAgents = append(report.TopUserAgents, item)
	}
	return rows.Err()
}

func (s *LinksRepo) queryTimeline(ctx context.Context, code string, report *AnalyticsReport) error {
	rows, err := s.db.Query(ctx,
		`SELECT DATE(clicked_at)::text AS date, COUNT(*) AS count FROM clicks
		 WHERE code=$1 AND clicked_at >= NOW() - INTERVAL '30 days'
		 GROUP BY DATE(clicked_at) ORDER BY date ASC`, code)
	if err != nil {
		slog.Error("analytics: timeline failed", "code", code, "err", err)
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item DailyClicks
		if err := rows.Scan(&item.Date, &item.Count); err != nil {
			return err
		}
		report.ClicksOverTime = append(report.ClicksOverTime, item)
	}
	return rows.Err()
}

// UserLink 是“我的短链”列表项。
type UserLink struct {
	Code       string     `json:"code"`
	URL        string     `json:"url"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	ClickCount int64      `json:"click_count"`
}

// ListByUser 返回某用户创建的短链，按创建时间倒序。
func (s *LinksRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]UserLink, error) {
	dbctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := s.db.Query(dbctx,
		`SELECT code, url, created_at, expires_at, click_count FROM shortlinks
		 WHERE created_by=$1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		slog.Error("list by user failed", "user_id", userID, "err", err)
		return nil, err
	}
	defer rows.Close()

	var result []UserLink
	for rows.Next() {
		var item UserLink
		if err := rows.Scan(&item.Code, &item.URL, &item.CreatedAt, &item.ExpiresAt, &item.ClickCount); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UserOwnsLink 判断某短码是否由该用户创建（分析接口的权限检查）。
func (s *LinksRepo) UserOwnsLink(ctx context.Context, userID int64, code string) (bool, error) {
	dbctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	var exists bool
	err := s.db.QueryRow(dbctx,
		`SELECT EXISTS(SELECT 1 FROM shortlinks WHERE code=$1 AND created_by=$2)`,
		code, userID).Scan(&exists)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		slog.Error("ownership check failed", "code", code, "err", err)
		return false, err
	}
	return exists, nil
}
