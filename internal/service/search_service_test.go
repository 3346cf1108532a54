package service

import (
	"context"
	"encoding/json"
	"testing"

	"paperly/internal/model"
	"paperly/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw json.RawMessage) SearchResponse {
	t.Helper()
	var resp SearchResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	return resp
}

func TestSearchService_CachedResultIsStable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := f.papers.Create(ctx, PaperDraft{Title: "Deep Learning Survey", Authors: []string{"Ada"}}, nil)
	require.NoError(t, err)

	first, err := f.search.SearchPapers(ctx, "Deep", 10, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, decode(t, first).Total)

	require.NoError(t, f.papers.Delete(ctx, p.ID, nil))

	// 删除后缓存仍返回同样的字节
	second, err := f.search.SearchPapers(ctx, "Deep", 10, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	// 不同分页参数是不同的缓存键
	third, err := f.search.SearchPapers(ctx, "Deep", 5, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, decode(t, third).Total)

	require.NoError(t, f.search.ClearCache(ctx))
	fresh, err := f.search.SearchPapers(ctx, "Deep", 10, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, decode(t, fresh).Total)
}

func TestSearchService_LogsEveryCall(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.papers.Create(ctx, PaperDraft{Title: "Graph Neural Networks", Authors: []string{"Grace Hopper"}}, nil)
	require.NoError(t, err)

	uid := uint(7)
	for i := 0; i < 3; i++ {
		_, err := f.search.SearchPapers(ctx, "Graph", 10, 0, &uid)
		require.NoError(t, err)
	}
	raw, err := f.search.SearchAuthors(ctx, "Grace", 10, 0, nil)
	require.NoError(t, err)
	resp := decode(t, raw)
	assert.Equal(t, "Grace", resp.Query)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, []string{"Grace Hopper"}, resp.Results[0].Authors)

	n, err := f.logRepo.CountByType(ctx, model.SearchTypePapers)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	var logs []model.SearchLog
	require.NoError(t, f.orm.Order("id").Find(&logs).Error)
	require.Len(t, logs, 4)
	for _, l := range logs[:3] {
		assert.Equal(t, 1, l.ResultsCount)
		require.NotNil(t, l.UserID)
		assert.EqualValues(t, 7, *l.UserID)
	}
	assert.Equal(t, model.SearchTypeAuthors, logs[3].SearchType)
	assert.Nil(t, logs[3].UserID)
}

func TestSearchService_AuthorWithAmpersand(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.papers.Create(ctx, PaperDraft{
		Title:   "Lab Report",
		Authors: []string{"Smith & Jones Lab"},
	}, nil)
	require.NoError(t, err)

	raw, err := f.search.SearchAuthors(ctx, "Smith & Jones", 10, 0, nil)
	require.NoError(t, err)
	resp := decode(t, raw)
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, []string{"Smith & Jones Lab"}, resp.Results[0].Authors)
}

func TestSearchService_NilCacheDisablesCaching(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := NewSearchService(f.papers, repository.NewSearchLogRepository(f.orm), nil)

	p, err := f.papers.Create(ctx, PaperDraft{Title: "Volatile"}, nil)
	require.NoError(t, err)
	raw, err := s.SearchPapers(ctx, "Volatile", 10, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, decode(t, raw).Total)

	require.NoError(t, f.papers.Delete(ctx, p.ID, nil))
	raw, err = s.SearchPapers(ctx, "Volatile", 10, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, decode(t, raw).Total)
}

func TestSearchService_Suggestions(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, []string{"machine learning", "deep learning"}, f.search.Suggestions("LEARN"))
	assert.Equal(t, []string{"blockchain"}, f.search.Suggestions("block"))
	assert.Equal(t, []string{}, f.search.Suggestions("   "))
	assert.Equal(t, []string{}, f.search.Suggestions("quantum"))
	assert.Len(t, f.search.Suggestions("e"), 5)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "papers_ml_0_10", cacheKey(model.SearchTypePapers, "ml", 0, 10))
	assert.Equal(t, "authors_ada_5_20", cacheKey(model.SearchTypeAuthors, "ada", 5, 20))
}
