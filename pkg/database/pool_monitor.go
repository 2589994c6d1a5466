package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// RegisterPoolMetrics 以 go_sql_* 指标导出连接池状态
func RegisterPoolMetrics(reg prometheus.Registerer, sqlDB *sql.DB, dbName string) error {
	return reg.Register(collectors.NewDBStatsCollector(sqlDB, dbName))
}

// PoolMonitor 定期检查连接池，出现排队等待时告警
type PoolMonitor struct {
	db       *sql.DB
	interval time.Duration
	log      *zap.Logger

	lastWaitCount int64
}

func NewPoolMonitor(db *sql.DB, interval time.Duration, log *zap.Logger) *PoolMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &PoolMonitor{db: db, interval: interval, log: log}
}

// Run 阻塞直到 ctx 结束
func (m *PoolMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check()
		}
	}
}

// check 返回本轮新增的等待次数
func (m *PoolMonitor) check() int64 {
	stats := m.db.Stats()
	waited := stats.WaitCount - m.lastWaitCount
	m.lastWaitCount = stats.WaitCount

	if waited > 0 {
		m.log.Warn("connection pool saturated",
			zap.Int64("waits", waited),
			zap.Duration("wait_duration", stats.WaitDuration),
			zap.Int("open", stats.OpenConnections),
			zap.Int("in_use", stats.InUse),
			zap.Int("max_open", stats.MaxOpenConnections))
	}
	return waited
}
