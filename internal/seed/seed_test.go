package seed

import (
	"context"
	"testing"

	"paperly/internal/model"
	"paperly/internal/repository"
	"paperly/pkg/db/dbtest"
	"paperly/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	orm := dbtest.New(t)
	hasher, err := password.New(password.Options{Scheme: password.SchemeBcrypt, Cost: bcrypt.MinCost})
	require.NoError(t, err)

	sum, err := Run(ctx, orm, hasher)
	require.NoError(t, err)
	assert.False(t, sum.Skipped)
	assert.Equal(t, []string{"admin", "researcher1", "student1"}, sum.Users)
	assert.Equal(t, 6, sum.Papers)

	admin, err := repository.NewUserRepository(orm).GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, hasher.Verify("admin123", admin.PasswordHash))
	assert.True(t, admin.IsActive)

	papers := repository.NewPaperRepository(orm)
	top, err := papers.Popular(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Natural Language Processing with Transformer Models", top[0].Title)
	assert.Equal(t, 23, top[0].CitationCount)
	assert.JSONEq(t, `["María García","Roberto Silva"]`, top[0].Authors)

	student, err := repository.NewUserRepository(orm).GetByUsername(ctx, "student1")
	require.NoError(t, err)
	require.NotNil(t, top[0].CreatorID)
	assert.Equal(t, student.ID, *top[0].CreatorID)

	// 已有用户时不重复写入
	sum, err = Run(ctx, orm, hasher)
	require.NoError(t, err)
	assert.True(t, sum.Skipped)
	var count int64
	require.NoError(t, orm.Model(&model.Paper{}).Count(&count).Error)
	assert.EqualValues(t, 6, count)
}

func TestRun_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	orm := dbtest.New(t)
	doi := "10.1000/sample.2024.001"
	require.NoError(t, repository.NewPaperRepository(orm).Create(ctx, &model.Paper{Title: "existing", DOI: &doi}))

	hasher, err := password.New(password.Options{Scheme: password.SchemeBcrypt, Cost: bcrypt.MinCost})
	require.NoError(t, err)

	_, err = Run(ctx, orm, hasher)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)

	n, err := repository.NewUserRepository(orm).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
