// Package dbtest 为测试提供独立的内存 SQLite 数据库
package dbtest

import (
	"testing"

	"paperly/config"
	"paperly/internal/model"
	"paperly/pkg/db"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// New 打开一个已迁移的内存数据库，每次调用互相隔离
func New(t testing.TB) *gorm.DB {
	t.Helper()
	orm, err := db.Open(config.DatabaseConfig{
		Driver:   "sqlite",
		Database: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	require.NoError(t, orm.AutoMigrate(model.All()...))

	t.Cleanup(func() {
		if sqlDB, err := orm.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return orm
}
