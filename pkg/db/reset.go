package db

import (
	"fmt"

	"gorm.io/gorm"
)

// Reset 清空指定表并重置自增ID，表结构保留
// 按传入顺序删除，子表应排在前面；不存在的表跳过
func Reset(orm *gorm.DB, tables ...string) ([]string, error) {
	var cleared []string
	// 会话级设置（FOREIGN_KEY_CHECKS）需要固定在同一连接上
	err := orm.Connection(func(conn *gorm.DB) error {
		m := conn.Migrator()
		dialect := conn.Dialector.Name()

		if dialect == "mysql" {
			if err := conn.Exec("SET FOREIGN_KEY_CHECKS=0").Error; err != nil {
				return fmt.Errorf("disable foreign key checks: %w", err)
			}
			defer conn.Exec("SET FOREIGN_KEY_CHECKS=1")
		}

		for _, table := range tables {
			if !m.HasTable(table) {
				continue
			}
			quoted := conn.Statement.Quote(table)
			var err error
			switch dialect {
			case "postgres":
				err = conn.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", quoted)).Error
			case "mysql":
				if err = conn.Exec("DELETE FROM " + quoted).Error; err == nil {
					err = conn.Exec(fmt.Sprintf("ALTER TABLE %s AUTO_INCREMENT = 1", quoted)).Error
				}
			default:
				if err = conn.Exec("DELETE FROM " + quoted).Error; err == nil && m.HasTable("sqlite_sequence") {
					err = conn.Exec("DELETE FROM sqlite_sequence WHERE name = ?", table).Error
				}
			}
			if err != nil {
				return fmt.Errorf("reset table %s: %w", table, err)
			}
			cleared = append(cleared, table)
		}
		return nil
	})
	return cleared, err
}
