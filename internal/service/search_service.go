package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"paperly/internal/model"
	"paperly/internal/repository"
	"paperly/pkg/cache"
	"paperly/pkg/logger"
	"paperly/pkg/metrics"

	"go.uber.org/zap"
)

const maxSuggestions = 5

// suggestionTerms 搜索建议词表
var suggestionTerms = []string{
	"machine learning",
	"artificial intelligence",
	"deep learning",
	"computer vision",
	"natural language processing",
	"data science",
	"algorithms",
	"software engineering",
	"cybersecurity",
	"blockchain",
}

// SearchResponse 搜索结果
type SearchResponse struct {
	Query   string       `json:"query"`
	Total   int          `json:"total"`
	Results []*PaperView `json:"results"`
}

// SearchService 搜索服务
// 结果按 "<类型>_<查询>_<偏移>_<数量>" 缓存，命中时原样返回缓存的字节
// 缓存不随论文增删改失效，只能通过 ClearCache 清空
type SearchService struct {
	papers *PaperService
	logs   *repository.SearchLogRepository
	cache  cache.Cache
}

func NewSearchService(papers *PaperService, logs *repository.SearchLogRepository, c cache.Cache) *SearchService {
	if c == nil {
		c = cache.Noop{}
	}
	return &SearchService{papers: papers, logs: logs, cache: c}
}

// SearchPapers 按标题搜索
func (s *SearchService) SearchPapers(ctx context.Context, query string, limit, offset int, userID *uint) (json.RawMessage, error) {
	return s.search(ctx, model.SearchTypePapers, query, limit, offset, userID, s.papers.SearchByTitle)
}

// SearchAuthors 按作者搜索
func (s *SearchService) SearchAuthors(ctx context.Context, query string, limit, offset int, userID *uint) (json.RawMessage, error) {
	return s.search(ctx, model.SearchTypeAuthors, query, limit, offset, userID, s.papers.SearchByAuthor)
}

type searchFunc func(ctx context.Context, query string, offset, limit int) ([]*PaperView, error)

func (s *SearchService) search(ctx context.Context, category, query string, limit, offset int, userID *uint, find searchFunc) (json.RawMessage, error) {
	metrics.Searches.WithLabelValues(category).Inc()
	key := cacheKey(category, query, offset, limit)

	if payload, ok := s.cache.Get(ctx, key); ok {
		var cached struct {
			Total int `json:"total"`
		}
		if err := json.Unmarshal(payload, &cached); err == nil {
			s.record(ctx, category, query, cached.Total, userID)
			return payload, nil
		}
		logger.Warn("缓存内容无法解析，重新查询", zap.String("key", key))
	}

	results, err := find(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(SearchResponse{Query: query, Total: len(results), Results: results})
	if err != nil {
		return nil, fmt.Errorf("encode search response: %w", err)
	}
	s.cache.Set(ctx, key, payload)
	s.record(ctx, category, query, len(results), userID)
	return payload, nil
}

// record 写入搜索日志；失败只记录告警，不影响搜索结果
func (s *SearchService) record(ctx context.Context, category, query string, count int, userID *uint) {
	entry := &model.SearchLog{
		Query:        query,
		UserID:       userID,
		ResultsCount: count,
		SearchType:   category,
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		logger.Warn("写入搜索日志失败", zap.String("query", query), zap.Error(err))
	}
}

func cacheKey(category, query string, offset, limit int) string {
	return fmt.Sprintf("%s_%s_%d_%d", category, query, offset, limit)
}

// Suggestions 返回包含 prefix 的建议词（不区分大小写），最多5个
func (s *SearchService) Suggestions(prefix string) []string {
	needle := strings.ToLower(strings.TrimSpace(prefix))
	out := []string{}
	if needle == "" {
		return out
	}
	for _, term := range suggestionTerms {
		if strings.Contains(strings.ToLower(term), needle) {
			out = append(out, term)
			if len(out) == maxSuggestions {
				break
			}
		}
	}
	return out
}

// ClearCache 清空搜索缓存
func (s *SearchService) ClearCache(ctx context.Context) error {
	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("clear search cache: %w", err)
	}
	logger.Info("搜索缓存已清空")
	return nil
}
