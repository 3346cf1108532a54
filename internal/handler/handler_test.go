package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"paperly/config"
	"paperly/internal/external"
	"paperly/internal/repository"
	"paperly/internal/service"
	"paperly/pkg/cache"
	"paperly/pkg/db/dbtest"
	"paperly/pkg/jwt"
	"paperly/pkg/password"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	jwt    *jwt.JWTService
}

func newTestServer(t *testing.T, mockEnabled bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	orm := dbtest.New(t)

	hasher, err := password.New(password.Options{Cost: bcrypt.MinCost})
	require.NoError(t, err)
	jwtSvc, err := jwt.NewJWTService(config.JWTConfig{Secret: "handler-test", Issuer: "paperly", ExpireTime: 30 * time.Minute})
	require.NoError(t, err)

	users := service.NewUserService(repository.NewUserRepository(orm), hasher, jwtSvc)
	papers := service.NewPaperService(repository.NewPaperRepository(orm))
	search := service.NewSearchService(papers, repository.NewSearchLogRepository(orm), cache.NewMemory())

	router := gin.New()
	RegisterRoutes(router, jwtSvc, Handlers{
		System: NewSystemHandler(config.AppConfig{Name: "Paperly UTEC", Version: "1.0.0"}, map[string]HealthChecker{
			"database": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("down") },
		}),
		User:     NewUserHandler(users),
		Paper:    NewPaperHandler(papers, users),
		Search:   NewSearchHandler(search, users),
		External: NewExternalHandler(external.NewMock(), mockEnabled),
	})
	return &testServer{t: t, router: router, jwt: jwtSvc}
}

func (s *testServer) do(method, path string, body interface{}, token string) (int, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.serve(req)
}

func (s *testServer) serve(req *http.Request) (int, envelope) {
	s.t.Helper()
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	var env envelope
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (s *testServer) register(username, pass string) {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/v1/auth/register", gin.H{
		"username": username,
		"email":    username + "@paperly.com",
		"password": pass,
	}, "")
	require.Equal(s.t, http.StatusCreated, code, env.Message)
}

func (s *testServer) login(username, pass string) string {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/v1/auth/login-json", gin.H{"username": username, "password": pass}, "")
	require.Equal(s.t, http.StatusOK, code, env.Message)
	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &tok))
	require.Equal(s.t, "bearer", tok.TokenType)
	return tok.AccessToken
}

func TestAuth_RegisterTwice(t *testing.T) {
	s := newTestServer(t, true)

	code, env := s.do(http.MethodPost, "/api/v1/auth/register", gin.H{
		"username": "admin", "email": "admin@paperly.com", "full_name": "Admin", "password": "admin123",
	}, "")
	require.Equal(t, http.StatusCreated, code)
	var user map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "admin", user["username"])
	assert.Equal(t, true, user["is_active"])
	assert.NotContains(t, user, "password_hash")
	assert.NotContains(t, string(env.Data), "admin123")

	// 用户名相同，邮箱不同
	code, env = s.do(http.MethodPost, "/api/v1/auth/register", gin.H{
		"username": "admin", "email": "else@paperly.com", "password": "x",
	}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, http.StatusBadRequest, env.Code)
	assert.Contains(t, env.Message, "username already registered")

	code, _ = s.do(http.MethodPost, "/api/v1/auth/register", gin.H{"username": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAuth_RegisterRejectsDisplayNameEmail(t *testing.T) {
	s := newTestServer(t, true)

	code, env := s.do(http.MethodPost, "/api/v1/auth/register", gin.H{
		"username": "bob", "email": "Bob <bob@x.com>", "password": "secret",
	}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, http.StatusBadRequest, env.Code)

	code, env = s.do(http.MethodPost, "/api/v1/auth/register", gin.H{
		"username": "bob", "email": "bob@x.com", "password": "secret",
	}, "")
	require.Equal(t, http.StatusCreated, code, env.Message)
}

func TestAuth_LoginFormAndJSON(t *testing.T) {
	s := newTestServer(t, true)
	s.register("researcher1", "research123")

	token := s.login("researcher1", "research123")
	subject, ok := s.jwt.VerifySubject(token)
	require.True(t, ok)
	assert.Equal(t, "researcher1", subject)

	form := url.Values{"username": {"researcher1"}, "password": {"research123"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	code, _ := s.serve(req)
	assert.Equal(t, http.StatusOK, code)

	code, env := s.do(http.MethodPost, "/api/v1/auth/login-json", gin.H{"username": "researcher1", "password": "bad"}, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, 401, env.Code)

	code, _ = s.do(http.MethodPost, "/api/v1/auth/login-json", gin.H{"username": "ghost", "password": "bad"}, "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAuth_ProfileAndVerify(t *testing.T) {
	s := newTestServer(t, true)
	s.register("student1", "student123")
	token := s.login("student1", "student123")

	code, env := s.do(http.MethodGet, "/api/v1/auth/profile", nil, token)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"username":"student1"`)

	code, env = s.do(http.MethodGet, "/api/v1/auth/verify", nil, token)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "token valid for user: student1", env.Message)

	code, _ = s.do(http.MethodGet, "/api/v1/auth/profile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodGet, "/api/v1/auth/verify", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, code)

	// 令牌有效但用户不存在
	orphan, err := s.jwt.GenerateToken("deleted-user", nil)
	require.NoError(t, err)
	code, _ = s.do(http.MethodGet, "/api/v1/auth/profile", nil, orphan)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestPapers_CRUD(t *testing.T) {
	s := newTestServer(t, true)
	s.register("owner", "pw")
	s.register("intruder", "pw")
	owner := s.login("owner", "pw")
	intruder := s.login("intruder", "pw")

	code, env := s.do(http.MethodPost, "/api/v1/papers", gin.H{
		"title":    "Attention Is All You Need",
		"abstract": "Transformers",
		"authors":  []string{"A", "B"},
		"keywords": []string{"x"},
		"doi":      "10.5555/3295222",
	}, owner)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var created service.PaperView
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotNil(t, created.CreatorID)

	path := "/api/v1/papers/" + jsonID(created.ID)

	code, env = s.do(http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, code)
	var got service.PaperView
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, []string{"A", "B"}, got.Authors)

	// 重复DOI
	code, _ = s.do(http.MethodPost, "/api/v1/papers", gin.H{"title": "copy", "doi": "10.5555/3295222"}, "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPut, path, gin.H{"title": "stolen"}, intruder)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(http.MethodPut, path, gin.H{"title": "Renamed"}, owner)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Renamed", got.Title)
	require.NotNil(t, got.Abstract)
	assert.Equal(t, "Transformers", *got.Abstract)
	assert.Equal(t, []string{"x"}, got.Keywords)

	code, _ = s.do(http.MethodDelete, path, nil, intruder)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(http.MethodDelete, path, nil, owner)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "paper deleted successfully", env.Message)

	code, _ = s.do(http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPapers_NotFoundAndBadInput(t *testing.T) {
	s := newTestServer(t, true)

	code, env := s.do(http.MethodDelete, "/api/v1/papers/999", nil, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, 404, env.Code)

	code, _ = s.do(http.MethodPut, "/api/v1/papers/999", gin.H{"title": "x"}, "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(http.MethodGet, "/api/v1/papers/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/api/v1/papers", gin.H{"abstract": "no title"}, "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodGet, "/api/v1/papers?limit=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPapers_ListAndPopular(t *testing.T) {
	s := newTestServer(t, true)
	for _, title := range []string{"one", "two", "three"} {
		code, _ := s.do(http.MethodPost, "/api/v1/papers", gin.H{"title": title}, "")
		require.Equal(t, http.StatusCreated, code)
	}

	code, env := s.do(http.MethodGet, "/api/v1/papers?skip=1&limit=1", nil, "")
	require.Equal(t, http.StatusOK, code)
	var list []service.PaperView
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "two", list[0].Title)

	code, env = s.do(http.MethodGet, "/api/v1/papers/popular", nil, "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 3)
}

func TestSearch_Endpoints(t *testing.T) {
	s := newTestServer(t, true)
	code, _ := s.do(http.MethodPost, "/api/v1/papers", gin.H{"title": "Deep Learning Survey", "authors": []string{"Yann LeCun"}}, "")
	require.Equal(t, http.StatusCreated, code)

	code, env := s.do(http.MethodGet, "/api/v1/search/papers?q=+deep+", nil, "")
	require.Equal(t, http.StatusOK, code)
	var resp service.SearchResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "deep", resp.Query)
	assert.Equal(t, 1, resp.Total)

	code, env = s.do(http.MethodGet, "/api/v1/search/authors?q=LeCun", nil, "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, 1, resp.Total)

	code, _ = s.do(http.MethodGet, "/api/v1/search/papers?q=+a+", nil, "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(http.MethodGet, "/api/v1/search/suggestions?q=learn", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `["machine learning","deep learning"]`, string(env.Data))
}

func TestSearch_CacheClearRequiresAuth(t *testing.T) {
	s := newTestServer(t, true)

	code, _ := s.do(http.MethodDelete, "/api/v1/search/cache", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	s.register("admin", "admin123")
	code, env := s.do(http.MethodDelete, "/api/v1/search/cache", nil, s.login("admin", "admin123"))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "search cache cleared", env.Message)
}

func TestExternal_Endpoints(t *testing.T) {
	s := newTestServer(t, true)

	code, env := s.do(http.MethodGet, "/api/v1/external/papers?q=zzzznonexistentzzzz&limit_per_source=3", nil, "")
	require.Equal(t, http.StatusOK, code)
	var all []external.SearchResponse
	require.NoError(t, json.Unmarshal(env.Data, &all))
	require.Len(t, all, 3)
	assert.Equal(t, external.SourceArxiv, all[0].Source)
	assert.Equal(t, external.SourceACM, all[2].Source)

	code, env = s.do(http.MethodGet, "/api/v1/external/arxiv", nil, "")
	require.Equal(t, http.StatusOK, code)
	var one external.SearchResponse
	require.NoError(t, json.Unmarshal(env.Data, &one))
	assert.Equal(t, "deep learning", one.Query)
	assert.False(t, one.Fallback)

	code, _ = s.do(http.MethodGet, "/api/v1/external/ieee?q=x", nil, "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestExternal_Disabled(t *testing.T) {
	s := newTestServer(t, false)

	for _, path := range []string{"/api/v1/external/papers", "/api/v1/external/acm"} {
		code, env := s.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, 503, env.Code)
	}
}

func TestSystem_Endpoints(t *testing.T) {
	s := newTestServer(t, true)

	code, env := s.do(http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Welcome to Paperly UTEC v1.0.0", env.Message)

	code, env = s.do(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, code)
	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &health))
	assert.Equal(t, "degraded", health["status"])
	assert.Equal(t, map[string]interface{}{"database": "up", "redis": "down"}, health["dependencies"])

	code, env = s.do(http.MethodGet, "/info", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "IEEE Xplore")

	code, env = s.do(http.MethodGet, "/does/not/exist", nil, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "resource not found", env.Message)
}

func jsonID(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
