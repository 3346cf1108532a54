package repository

import (
	"context"

	"paperly/internal/model"

	"gorm.io/gorm"
)

// PaperRepository 论文数据仓储
type PaperRepository struct {
	db *gorm.DB
}

// NewPaperRepository 创建PaperRepository实例
func NewPaperRepository(db *gorm.DB) *PaperRepository {
	return &PaperRepository{db: db}
}

// Create 创建论文；DOI 重复时返回 ErrDuplicateKey
func (r *PaperRepository) Create(ctx context.Context, paper *model.Paper) error {
	return translate(r.db.WithContext(ctx).Create(paper).Error)
}

// GetByID 根据ID获取论文
func (r *PaperRepository) GetByID(ctx context.Context, id uint) (*model.Paper, error) {
	var paper model.Paper
	if err := r.db.WithContext(ctx).First(&paper, id).Error; err != nil {
		return nil, translate(err)
	}
	return &paper, nil
}

// GetByDOI 根据DOI获取论文
func (r *PaperRepository) GetByDOI(ctx context.Context, doi string) (*model.Paper, error) {
	var paper model.Paper
	if err := r.db.WithContext(ctx).Where("doi = ?", doi).First(&paper).Error; err != nil {
		return nil, translate(err)
	}
	return &paper, nil
}

// List 按主键顺序分页获取论文
func (r *PaperRepository) List(ctx context.Context, offset, limit int) ([]*model.Paper, error) {
	var papers []*model.Paper
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&papers).Error
	return papers, err
}

// Update 只更新 fields 中出现的列
func (r *PaperRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&model.Paper{}).
		Where("id = ?", id).
		Updates(fields).Error
	return translate(err)
}

// Delete 物理删除论文；不存在时返回 ErrNotFound
func (r *PaperRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Paper{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchByTitle 标题包含 query 的论文，通配符按字面匹配
func (r *PaperRepository) SearchByTitle(ctx context.Context, query string, offset, limit int) ([]*model.Paper, error) {
	return r.searchColumn(ctx, "title", query, offset, limit)
}

// SearchByAuthor 作者列表（JSON文本）包含 query 的论文
func (r *PaperRepository) SearchByAuthor(ctx context.Context, query string, offset, limit int) ([]*model.Paper, error) {
	return r.searchColumn(ctx, "authors", query, offset, limit)
}

func (r *PaperRepository) searchColumn(ctx context.Context, column, query string, offset, limit int) ([]*model.Paper, error) {
	var papers []*model.Paper
	err := r.db.WithContext(ctx).
		Where(column+" LIKE ? ESCAPE '!'", "%"+escapeLike(query)+"%").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&papers).Error
	return papers, err
}

// Popular 按被引次数倒序
func (r *PaperRepository) Popular(ctx context.Context, limit int) ([]*model.Paper, error) {
	var papers []*model.Paper
	err := r.db.WithContext(ctx).
		Order("citation_count DESC").
		Order("id ASC").
		Limit(limit).
		Find(&papers).Error
	return papers, err
}
