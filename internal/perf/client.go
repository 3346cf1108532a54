package perf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Client 压测用 HTTP 客户端
type Client struct {
	base string
	http *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base: baseURL,
		http: &http.Client{Timeout: timeout},
	}
}

// Do 发送一次请求并记录延迟，状态码等于 want 视为成功
func (c *Client) Do(ctx context.Context, op, method, path string, query url.Values, body interface{}, want int) Result {
	res := Result{Operation: op, Query: query.Get("q")}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			res.Error, res.Timestamp = err.Error(), time.Now()
			return res
		}
		reader = bytes.NewReader(data)
	}
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		res.Error, res.Timestamp = err.Error(), time.Now()
		return res
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		res.LatencyMS = msSince(start)
		res.Error, res.Timestamp = err.Error(), time.Now()
		return res
	}
	defer resp.Body.Close()
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	res.LatencyMS = msSince(start)
	res.Timestamp = time.Now()
	res.StatusCode = resp.StatusCode
	res.Success = resp.StatusCode == want
	if !res.Success {
		res.Error = truncate(string(payload), 200)
	}
	return res
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// AuthScenario 注册新用户 → 用新用户登录 → 用已有管理员账号登录
func AuthScenario(c *Client, adminUser, adminPassword string) Scenario {
	const password = "testpass123"
	return func(ctx context.Context, user int) []Result {
		username := fmt.Sprintf("testuser_%d_%s", user, uuid.NewString()[:8])
		reg := c.Do(ctx, "register", http.MethodPost, "/api/v1/auth/register", nil, map[string]string{
			"username":  username,
			"email":     username + "@example.com",
			"password":  password,
			"full_name": fmt.Sprintf("Test User %d", user),
		}, http.StatusCreated)

		out := []Result{reg}
		if reg.Success {
			out = append(out, c.Do(ctx, "login", http.MethodPost, "/api/v1/auth/login-json", nil,
				map[string]string{"username": username, "password": password}, http.StatusOK))
		}
		out = append(out, c.Do(ctx, "login", http.MethodPost, "/api/v1/auth/login-json", nil,
			map[string]string{"username": adminUser, "password": adminPassword}, http.StatusOK))
		return out
	}
}

var (
	PaperQueries = []string{
		"machine learning", "deep learning", "computer vision", "natural language processing",
		"artificial intelligence", "neural networks", "data science", "algorithms",
		"cybersecurity", "blockchain", "quantum computing", "cloud computing",
		"software engineering", "database", "web development", "mobile apps",
		"internet of things", "big data", "data mining", "pattern recognition",
	}
	AuthorQueries = []string{
		"Smith", "Johnson", "García", "Chen", "López", "Wang", "Brown", "Davis",
		"Wilson", "Miller", "Taylor", "Anderson", "Thomas", "Jackson", "White",
	}
)

// SearchScenario 论文搜索 → 作者搜索 → 建议词，externalChance 概率追加一次外部聚合搜索
func SearchScenario(c *Client, externalChance float64) Scenario {
	return func(ctx context.Context, _ int) []Result {
		paperQuery := PaperQueries[rand.IntN(len(PaperQueries))]
		authorQuery := AuthorQueries[rand.IntN(len(AuthorQueries))]

		out := []Result{
			c.Do(ctx, "search_papers", http.MethodGet, "/api/v1/search/papers",
				searchParams(paperQuery, 5+rand.IntN(11)), nil, http.StatusOK),
			c.Do(ctx, "search_authors", http.MethodGet, "/api/v1/search/authors",
				searchParams(authorQuery, 5+rand.IntN(6)), nil, http.StatusOK),
			c.Do(ctx, "get_suggestions", http.MethodGet, "/api/v1/search/suggestions",
				url.Values{"q": {prefix(paperQuery, 5)}}, nil, http.StatusOK),
		}
		if rand.Float64() < externalChance {
			out = append(out, c.Do(ctx, "search_external", http.MethodGet, "/api/v1/external/papers",
				url.Values{"q": {paperQuery}, "limit_per_source": {"3"}}, nil, http.StatusOK))
		}
		return out
	}
}

func searchParams(q string, limit int) url.Values {
	return url.Values{
		"q":      {q},
		"limit":  {strconv.Itoa(limit)},
		"offset": {"0"},
	}
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
