package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/ogurasousui/logiflow/internal/platform/config"
)

// SlowQueryThreshold を超えたクエリは警告として記録されます。
const SlowQueryThreshold = 500 * time.Millisecond

// BuildPoolConfig は database 設定から pgxpool.Config を構築します。
// logger が指定された場合はクエリトレーサーを設定します。
func BuildPoolConfig(cfg config.DatabaseConfig, logger logrus.FieldLogger) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}

	if logger != nil {
		poolCfg.ConnConfig.Tracer = &QueryTracer{logger: logger, threshold: SlowQueryThreshold}
	}

	return poolCfg, nil
}

// NewPool は pgxpool.Pool を生成し疎通確認を行います。
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger logrus.FieldLogger) (*pgxpool.Pool, error) {
	poolCfg, err := BuildPoolConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return pool, nil
}

type queryStartKey struct{}

type queryStart struct {
	sql   string
	start time.Time
}

// QueryTracer は失敗したクエリと閾値を超えたクエリを logrus に記録します。
type QueryTracer struct {
	logger    logrus.FieldLogger
	threshold time.Duration
	now       func() time.Time
}

func (t *QueryTracer) clock() time.Time {
	if t.now != nil {
		return t.now()
	}
	return time.Now()
}

// TraceQueryStart は pgx.QueryTracer を実装します。
func (t *QueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{sql: data.SQL, start: t.clock()})
}

// TraceQueryEnd は pgx.QueryTracer を実装します。
func (t *QueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	qs, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	elapsed := t.clock().Sub(qs.start)
	entry := t.logger.WithFields(logrus.Fields{
		"sql":     qs.sql,
		"elapsed": elapsed.String(),
	})

	switch {
	case data.Err != nil:
		entry.WithError(data.Err).Error("query failed")
	case elapsed >= t.threshold:
		entry.Warn("slow query")
	}
}
