package model

import "time"

// SearchLog 搜索日志，只追加
// SearchType: papers / authors
type SearchLog struct {
	ID           uint      `gorm:"primaryKey"`
	Query        string    `gorm:"type:varchar(500);not null;comment:查询词"`
	UserID       *uint     `gorm:"index;comment:用户ID(匿名为空)"`
	ResultsCount int       `gorm:"not null;default:0;comment:结果数"`
	SearchType   string    `gorm:"type:varchar(20);not null;comment:搜索类型"`
	CreatedAt    time.Time `gorm:"index;comment:创建时间"`
}

func (SearchLog) TableName() string { return "search_log" }

const (
	SearchTypePapers  = "papers"
	SearchTypeAuthors = "authors"
)

// All 返回需要迁移的全部模型
func All() []interface{} {
	return []interface{}{&User{}, &Paper{}, &SearchLog{}}
}
