// Package external 模拟 arXiv、IEEE Xplore、ACM Digital Library 三个外部论文库
package external

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Source 外部论文库
type Source string

const (
	SourceArxiv Source = "arxiv"
	SourceIEEE  Source = "ieee"
	SourceACM   Source = "acm"
)

// Sources 固定的查询顺序
var Sources = []Source{SourceArxiv, SourceIEEE, SourceACM}

// DisplayName 展示名称
func (s Source) DisplayName() string {
	switch s {
	case SourceArxiv:
		return "arXiv"
	case SourceIEEE:
		return "IEEE Xplore"
	case SourceACM:
		return "ACM Digital Library"
	default:
		return string(s)
	}
}

// Paper 外部论文记录
type Paper struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Abstract string   `json:"abstract,omitempty"`
	Source   Source   `json:"source"`
	URL      string   `json:"url,omitempty"`
}

// SearchResponse 单个来源的搜索结果
// Fallback 为 true 表示没有匹配，Papers 是随机抽取的样本
type SearchResponse struct {
	Query    string  `json:"query"`
	Source   Source  `json:"source"`
	Total    int     `json:"total"`
	Papers   []Paper `json:"papers"`
	Fallback bool    `json:"fallback"`
}

// Mock 外部论文库模拟，构造后只读，可并发使用
type Mock struct {
	catalog map[Source][]Paper
	shuffle func(n int, swap func(i, j int))
}

// NewMock 创建带内置样本数据的模拟器
func NewMock() *Mock {
	return &Mock{catalog: catalog(), shuffle: rand.Shuffle}
}

// Search 在指定来源中按标题或摘要匹配（不区分大小写）
// 无匹配时随机返回最多 limit 条记录
func (m *Mock) Search(source Source, query string, limit int) (*SearchResponse, error) {
	records, ok := m.catalog[source]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", source)
	}
	if limit < 1 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	needle := strings.ToLower(query)
	var matched []Paper
	for _, p := range records {
		if strings.Contains(strings.ToLower(p.Title), needle) || strings.Contains(strings.ToLower(p.Abstract), needle) {
			matched = append(matched, p)
		}
	}

	fallback := len(matched) == 0
	if fallback {
		matched = m.sample(records, limit)
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}

	return &SearchResponse{
		Query:    query,
		Source:   source,
		Total:    len(matched),
		Papers:   matched,
		Fallback: fallback,
	}, nil
}

// SearchAll 依次查询全部来源，顺序为 arXiv、IEEE、ACM
func (m *Mock) SearchAll(query string, limitPerSource int) ([]*SearchResponse, error) {
	out := make([]*SearchResponse, 0, len(Sources))
	for _, source := range Sources {
		resp, err := m.Search(source, query, limitPerSource)
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", source, err)
		}
		out = append(out, resp)
	}
	return out, nil
}

func (m *Mock) sample(records []Paper, limit int) []Paper {
	picked := make([]Paper, len(records))
	copy(picked, records)
	m.shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	if len(picked) > limit {
		picked = picked[:limit]
	}
	return picked
}

func catalog() map[Source][]Paper {
	return map[Source][]Paper{
		SourceArxiv: {
			{
				ID:       "arxiv:2401.00001",
				Title:    "Advances in Deep Learning for Computer Vision",
				Authors:  []string{"John Smith", "Jane Doe"},
				Abstract: "This paper presents novel advances in deep learning techniques for computer vision applications.",
				Source:   SourceArxiv,
				URL:      "https://arxiv.org/abs/2401.00001",
			},
			{
				ID:       "arxiv:2401.00002",
				Title:    "Natural Language Processing with Transformers",
				Authors:  []string{"Alice Johnson", "Bob Wilson"},
				Abstract: "An comprehensive review of transformer models in NLP applications.",
				Source:   SourceArxiv,
				URL:      "https://arxiv.org/abs/2401.00002",
			},
		},
		SourceIEEE: {
			{
				ID:       "ieee:2024.001",
				Title:    "Quantum Computing Applications in Cryptography",
				Authors:  []string{"Dr. Maria Garcia", "Prof. David Chen"},
				Abstract: "Exploring the impact of quantum computing on modern cryptographic systems.",
				Source:   SourceIEEE,
				URL:      "https://ieeexplore.ieee.org/document/2024001",
			},
			{
				ID:       "ieee:2024.002",
				Title:    "IoT Security Framework for Smart Cities",
				Authors:  []string{"Sarah Brown", "Michael Davis"},
				Abstract: "A comprehensive security framework for IoT devices in smart city environments.",
				Source:   SourceIEEE,
				URL:      "https://ieeexplore.ieee.org/document/2024002",
			},
		},
		SourceACM: {
			{
				ID:       "acm:2024.001",
				Title:    "Blockchain Technology in Supply Chain Management",
				Authors:  []string{"Robert Taylor", "Emma Wilson"},
				Abstract: "Implementation of blockchain for transparent supply chain tracking.",
				Source:   SourceACM,
				URL:      "https://dl.acm.org/doi/10.1145/3024001",
			},
		},
	}
}
