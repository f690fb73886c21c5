package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"short.local/internal/app/shortlink"
	"short.local/internal/app/shortlink/cache"
)

const pgUniqueViolation = "23505"

// LinksRepo 是 shortlink.LinkStore 的 Postgres 实现，权威存储。
//
// bloom 为可选的已知短码过滤器：预热后用来在解析路径上快速判定
// “一定不存在”的短码，跳过一次数据库查询（防穿透）。
type LinksRepo struct {
	db    *pgxpool.Pool
	bloom *cache.BloomFilter
}

func NewLinksRepo(db *pgxpool.Pool, bloom *cache.BloomFilter) *LinksRepo {
	return &LinksRepo{db: db, bloom: bloom}
}

const linkColumns = `code, url, url_hash, created_at, expires_at, click_count, created_by`

func scanLink(row pgx.Row) (shortlink.Link, error) {
	var link shortlink.Link
	err := row.Scan(&link.Code, &link.URL, &link.Fingerprint,
		&link.CreatedAt, &link.ExpiresAt, &link.ClickCount, &link.CreatedBy)
	return link, err
}

// FindByCode 按短码查未过期链接；缺失返回 shortlink.ErrNotFound。
func (s *LinksRepo) FindByCode(ctx context.Context, code string) (shortlink.Link, error) {
	// 布隆过滤器说“一定不存在”就不用去数据库了（只在预热完成后生效）
	if s.bloom != nil && s.bloom.Ready() && !s.bloom.MightExist(code) {
		return shortlink.Link{}, shortlink.ErrNotFound
	}

	dbctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	link, err := scanLink(s.db.QueryRow(dbctx,
		`SELECT `+linkColumns+` FROM shortlinks
		 WHERE code=$1 AND (expires_at IS NULL OR expires_at > now())`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shortlink.Link{}, shortlink.ErrNotFound
		}
		slog.Error("find by code failed", "code", code, "err", err)
		return shortlink.Link{}, err
	}
	return link, nil
}

// FindByFingerprint 按 URL 指纹查未过期链接（去重查找）。
func (s *LinksRepo) FindByFingerprint(ctx context.Context, fingerprint string) (shortlink.Link, error) {
	dbctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	link, err := scanLink(s.db.QueryRow(dbctx,
		`SELECT `+linkColumns+` FROM shortlinks
		 WHERE url_hash=$1 AND (expires_at IS NULL OR expires_at > now())
		 ORDER BY created_at LIMIT 1`, fingerprint))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shortlink.Link{}, shortlink.ErrNotFound
		}
		slog.Error("find by fingerprint failed", "err", err)
		return shortlink.Link{}, err
	}
	return link, nil
}

// Insert 写入新链接。
//
// 唯一约束冲突的翻译：
// - code 冲突   → shortlink.ErrDuplicateCode
// - url_hash 冲突 → shortlink.ErrDuplicateURL
//
// 冲突对象是已过期的旧行时，先清掉旧行再重插一次：过期行不该挡住
// 新链接，但唯一索引不区分过期与否。
func (s *LinksRepo) Insert(ctx context.Context, link shortlink.Link) (shortlink.Link, error) {
	dbctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	created, err := s.insertOnce(dbctx, link)
	if err == nil {
		if s.bloom != nil {
			s.bloom.Add(created.Code)
		}
		return created, nil
	}
	if !errors.Is(err, shortlink.ErrDuplicateCode) && !errors.Is(err, shortlink.ErrDuplicateURL) {
		return shortlink.Link{}, err
	}

	purged, perr := s.purgeExpired(dbctx, link)
	if perr != nil {
		slog.Error("purge expired shortlinks failed", "err", perr)
		return shortlink.Link{}, err
	}
	if purged == 0 {
		return shortlink.Link{}, err // 冲突的是活着的行，让引擎处理
	}

	created, err = s.insertOnce(dbctx, link)
	if err != nil {
		return shortlink.Link{}, err
	}
	if s.bloom != nil {
		s.bloom.Add(created.Code)
	}
	return created, nil
}

func (s *LinksRepo) insertOnce(ctx context.Context, link shortlink.Link) (shortlink.Link, error) {
	created, err := scanLink(s.db.QueryRow(ctx,
		`INSERT INTO shortlinks (code, url, url_hash, expires_at, created_by)
		 VALUES ($1,$2,$3,$4,$5)
		 RETURNING `+linkColumns,
		link.Code, link.URL, link.Fingerprint, link.ExpiresAt, link.CreatedBy))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			if strings.Contains(strings.ToLower(pgErr.ConstraintName), "hash") {
				return shortlink.Link{}, shortlink.ErrDuplicateURL
			}
			return shortlink.Link{}, shortlink.ErrDuplicateCode
		}
		slog.Error("insert shortlink failed", "err", err)
		return shortlink.Link{}, err
	}
	return created, nil
}

func (s *LinksRepo) purgeExpired(ctx context.Context, link shortlink.Link) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM shortlinks
		 WHERE (code=$1 OR url_hash=$2)
		   AND expires_at IS NOT NULL AND expires_at <= now()`,
		link.Code, link.Fingerprint)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// IncrementClicks 原子地把短码的点击计数 +1（单行操作，无需事务）。
func (s *LinksRepo) IncrementClicks(ctx context.Context, code string) error {
	dbctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	_, err := s.db.Exec(dbctx,
		`UPDATE shortlinks SET click_count = click_count + 1 WHERE code=$1`, code)
	if err != nil {
		slog.Error("increment clicks failed", "code", code, "err", err)
	}
	return err
}

// WarmBloom 把现存的全部短码灌进布隆过滤器，完成后标记 Ready。
// 失败只记日志不致命：过滤器不 Ready 时查询照常走数据库。
func (s *LinksRepo) WarmBloom(ctx context.Context) (int, error) {
	if s.bloom == nil {
		return 0, nil
	}

	rows, err := s.db.Query(ctx, `SELECT code FROM shortlinks`)
	if err != nil {
		return 0, fmt.Errorf("warm bloom: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return count, err
		}
		s.bloom.Add(code)
		count++
	}
	if err := rows.Err(); err != nil {
		return count, err
	}
	s.bloom.MarkReady()
	return count, nil
}
