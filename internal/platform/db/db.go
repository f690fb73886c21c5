package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// New 建立 Postgres 连接池。连通性由调用方用 Ping 验证。
func New(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	return pgxpool.NewWithConfig(ctx, cfg)
}
