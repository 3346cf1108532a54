package service

import (
	"testing"
	"time"

	"paperly/config"
	"paperly/internal/repository"
	"paperly/pkg/cache"
	"paperly/pkg/db/dbtest"
	"paperly/pkg/jwt"
	"paperly/pkg/password"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fixture struct {
	orm     *gorm.DB
	jwt     *jwt.JWTService
	users   *UserService
	papers  *PaperService
	search  *SearchService
	logRepo *repository.SearchLogRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	orm := dbtest.New(t)

	hasher, err := password.New(password.Options{Scheme: password.SchemeBcrypt, Cost: bcrypt.MinCost})
	require.NoError(t, err)
	jwtSvc, err := jwt.NewJWTService(config.JWTConfig{Secret: "test", Issuer: "paperly", ExpireTime: 30 * time.Minute})
	require.NoError(t, err)

	logRepo := repository.NewSearchLogRepository(orm)
	papers := NewPaperService(repository.NewPaperRepository(orm))
	return &fixture{
		orm:     orm,
		jwt:     jwtSvc,
		users:   NewUserService(repository.NewUserRepository(orm), hasher, jwtSvc),
		papers:  papers,
		search:  NewSearchService(papers, logRepo, cache.NewMemory()),
		logRepo: logRepo,
	}
}

func ptr[T any](v T) *T { return &v }
