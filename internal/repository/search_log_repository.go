package repository

import (
	"context"

	"paperly/internal/model"

	"gorm.io/gorm"
)

// SearchLogRepository 搜索日志仓储，只追加
type SearchLogRepository struct {
	db *gorm.DB
}

func NewSearchLogRepository(db *gorm.DB) *SearchLogRepository {
	return &SearchLogRepository{db: db}
}

// Append 追加一条搜索日志
func (r *SearchLogRepository) Append(ctx context.Context, entry *model.SearchLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// CountByType 统计某类搜索次数
func (r *SearchLogRepository) CountByType(ctx context.Context, searchType string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.SearchLog{}).
		Where("search_type = ?", searchType).
		Count(&n).Error
	return n, err
}
