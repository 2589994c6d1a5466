package database

import (
	"context"

	"gorm.io/gorm"
)

type ctxTxKey struct{}

// Transactor 事务执行器
type Transactor interface {
	// Transaction 在同一个事务中执行 fn，fn 内部通过 Conn 取得事务连接。
	// 嵌套调用会落到 SAVEPOINT 上，内层失败只回滚到自己的保存点。
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor 创建基于 gorm 的事务执行器
func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return Conn(ctx, t.db).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, ctxTxKey{}, tx))
	})
}

// Conn 返回当前 ctx 上的事务连接，没有事务时返回普通连接
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(ctxTxKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}

// InTransaction 判断 ctx 是否处于事务中
func InTransaction(ctx context.Context) bool {
	tx, ok := ctx.Value(ctxTxKey{}).(*gorm.DB)
	return ok && tx != nil
}
