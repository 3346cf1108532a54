package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"paperly/internal/model"
	"paperly/internal/repository"
	"paperly/pkg/metrics"
)

// PaperDraft 新建论文参数
type PaperDraft struct {
	Title           string
	Abstract        *string
	Authors         []string
	PublicationYear *int
	DOI             *string
	PDFURL          *string
	Keywords        []string
}

// PaperPatch 部分更新参数，nil 表示不修改
// Abstract 为空白字符串时清空为 NULL
type PaperPatch struct {
	Title           *string
	Abstract        *string
	Authors         *[]string
	PublicationYear *int
	DOI             *string
	PDFURL          *string
	Keywords        *[]string
}

// PaperView 对外的论文视图，作者与关键词已解码为列表
type PaperView struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Abstract        *string   `json:"abstract"`
	Authors         []string  `json:"authors"`
	PublicationYear *int      `json:"publication_year"`
	DOI             *string   `json:"doi"`
	PDFURL          *string   `json:"pdf_url"`
	Keywords        []string  `json:"keywords"`
	CitationCount   int       `json:"citation_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	CreatorID       *uint     `json:"creator_id"`
}

// NewPaperView 解码存储的 JSON 列表；空值视为空列表，格式错误返回错误
func NewPaperView(p *model.Paper) (*PaperView, error) {
	authors, err := decodeList(p.Authors)
	if err != nil {
		return nil, fmt.Errorf("paper %d authors: %w", p.ID, err)
	}
	keywords, err := decodeList(p.Keywords)
	if err != nil {
		return nil, fmt.Errorf("paper %d keywords: %w", p.ID, err)
	}
	return &PaperView{
		ID:              p.ID,
		Title:           p.Title,
		Abstract:        p.Abstract,
		Authors:         authors,
		PublicationYear: p.PublicationYear,
		DOI:             p.DOI,
		PDFURL:          p.PDFURL,
		Keywords:        keywords,
		CitationCount:   p.CitationCount,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		CreatorID:       p.CreatorID,
	}, nil
}

func newPaperViews(papers []*model.Paper) ([]*PaperView, error) {
	views := make([]*PaperView, 0, len(papers))
	for _, p := range papers {
		v, err := NewPaperView(p)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// EncodeList 编码为 JSON 数组文本；不转义 HTML 字符，保证 LIKE 能匹配原文
func EncodeList(list []string) string {
	if list == nil {
		list = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(list)
	return strings.TrimSuffix(buf.String(), "\n")
}

func decodeList(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

// nilIfBlank 空白文本视为未提供，非空时原样保留
func nilIfBlank(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	return v
}

// normalizeDOI 空白 DOI 视为未提供
func normalizeDOI(doi *string) *string {
	if doi == nil {
		return nil
	}
	v := strings.TrimSpace(*doi)
	if v == "" {
		return nil
	}
	return &v
}

// PaperService 论文服务
type PaperService struct {
	repo *repository.PaperRepository
}

// NewPaperService 创建PaperService实例
func NewPaperService(repo *repository.PaperRepository) *PaperService {
	return &PaperService{repo: repo}
}

// Create 新建论文；DOI 已存在返回 ErrDOITaken
func (s *PaperService) Create(ctx context.Context, draft PaperDraft, creatorID *uint) (*PaperView, error) {
	draft.Title = strings.TrimSpace(draft.Title)
	if err := validateTitle(draft.Title); err != nil {
		return nil, err
	}
	draft.Abstract = nilIfBlank(draft.Abstract)
	draft.DOI = normalizeDOI(draft.DOI)
	if draft.DOI != nil {
		if _, err := s.repo.GetByDOI(ctx, *draft.DOI); err == nil {
			return nil, ErrDOITaken
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("check doi: %w", err)
		}
	}

	paper := &model.Paper{
		Title:           draft.Title,
		Abstract:        draft.Abstract,
		Authors:         EncodeList(draft.Authors),
		PublicationYear: draft.PublicationYear,
		DOI:             draft.DOI,
		PDFURL:          draft.PDFURL,
		Keywords:        EncodeList(draft.Keywords),
		CreatorID:       creatorID,
	}
	if err := s.repo.Create(ctx, paper); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDOITaken
		}
		return nil, fmt.Errorf("create paper: %w", err)
	}
	metrics.PapersCreated.Inc()
	return NewPaperView(paper)
}

// GetByID 不存在时返回 ErrNotFound
func (s *PaperService) GetByID(ctx context.Context, id uint) (*PaperView, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewPaperView(p)
}

// GetByDOI 不存在时返回 ErrNotFound
func (s *PaperService) GetByDOI(ctx context.Context, doi string) (*PaperView, error) {
	p, err := s.repo.GetByDOI(ctx, doi)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load paper by doi: %w", err)
	}
	return NewPaperView(p)
}

// List 按主键顺序分页
func (s *PaperService) List(ctx context.Context, skip, limit int) ([]*PaperView, error) {
	papers, err := s.repo.List(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	return newPaperViews(papers)
}

// Popular 被引次数最多的论文
func (s *PaperService) Popular(ctx context.Context, limit int) ([]*PaperView, error) {
	papers, err := s.repo.Popular(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("popular papers: %w", err)
	}
	return newPaperViews(papers)
}

// SearchByTitle 标题子串匹配
func (s *PaperService) SearchByTitle(ctx context.Context, query string, offset, limit int) ([]*PaperView, error) {
	papers, err := s.repo.SearchByTitle(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("search by title: %w", err)
	}
	return newPaperViews(papers)
}

// SearchByAuthor 作者子串匹配
func (s *PaperService) SearchByAuthor(ctx context.Context, query string, offset, limit int) ([]*PaperView, error) {
	papers, err := s.repo.SearchByAuthor(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("search by author: %w", err)
	}
	return newPaperViews(papers)
}

// Update 部分更新，只修改 patch 中提供的字段
// actorID 与创建者都已知且不同时返回 ErrForbidden
func (s *PaperService) Update(ctx context.Context, id uint, patch PaperPatch, actorID *uint) (*PaperView, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !mayModify(existing, actorID) {
		return nil, ErrForbidden
	}

	fields := make(map[string]interface{})
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		fields["title"] = title
	}
	if patch.Abstract != nil {
		fields["abstract"] = nilIfBlank(patch.Abstract)
	}
	if patch.Authors != nil {
		fields["authors"] = EncodeList(*patch.Authors)
	}
	if patch.PublicationYear != nil {
		fields["publication_year"] = *patch.PublicationYear
	}
	if patch.PDFURL != nil {
		fields["pdf_url"] = *patch.PDFURL
	}
	if patch.Keywords != nil {
		fields["keywords"] = EncodeList(*patch.Keywords)
	}
	if patch.DOI != nil {
		doi := normalizeDOI(patch.DOI)
		if doi != nil && (existing.DOI == nil || *existing.DOI != *doi) {
			if other, err := s.repo.GetByDOI(ctx, *doi); err == nil && other.ID != id {
				return nil, ErrDOITaken
			} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("check doi: %w", err)
			}
		}
		fields["doi"] = doi
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDOITaken
		}
		return nil, fmt.Errorf("update paper: %w", err)
	}
	// 并发删除时返回 ErrNotFound
	return s.GetByID(ctx, id)
}

// Delete 物理删除
func (s *PaperService) Delete(ctx context.Context, id uint, actorID *uint) error {
	existing, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !mayModify(existing, actorID) {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete paper: %w", err)
	}
	return nil
}

func (s *PaperService) load(ctx context.Context, id uint) (*model.Paper, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load paper: %w", err)
	}
	return p, nil
}

// mayModify 仅当操作者与创建者都已知且不同时拒绝
func mayModify(p *model.Paper, actorID *uint) bool {
	if actorID == nil || p.CreatorID == nil {
		return true
	}
	return *actorID == *p.CreatorID
}

func validateTitle(title string) error {
	if title == "" {
		return validationError("title is required")
	}
	if utf8.RuneCountInString(title) > 500 {
		return validationError("title must be at most 500 characters")
	}
	return nil
}
