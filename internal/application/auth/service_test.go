package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"authflow/internal/domain/user"
)

// fakeRepo is an in-memory user.Repository. failWith, when set, makes
// every call return that error to simulate a broken database.
type fakeRepo struct {
	users    map[string]*user.User
	failWith error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[string]*user.User{}}
}

func (r *fakeRepo) Create(_ context.Context, u *user.User) error {
	if r.failWith != nil {
		return r.failWith
	}
	for _, existing := range r.users {
		if (u.Email != "" && existing.Email == u.Email) ||
			(u.Username != "" && existing.Username == u.Username) {
			return user.ErrUserAlreadyExists
		}
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.CreatedAt = time.Now()
	r.users[u.ID] = u
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, user.ErrUserNotFound
}

func (r *fakeRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *fakeRepo) GetByUsername(_ context.Context, username string) (*user.User, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func newTestService(repo user.Repository) Service {
	return NewService(repo, []byte("test-secret"), 7*24*time.Hour)
}

func TestSignup_Email(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "a@b.com", "secret1"))

	stored, err := repo.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", stored.Email)
	assert.Empty(t, stored.Username)
	assert.NotEqual(t, "secret1", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret1")))
}

func TestSignup_Username(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "alice", "secret1"))

	stored, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, stored.Email)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "a@b.com", "secret1"))
	err := svc.Signup(ctx, "a@b.com", "other")
	assert.ErrorIs(t, err, user.ErrEmailTaken)
	assert.Len(t, repo.users, 1)
}

func TestSignup_DuplicateUsername(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "alice", "secret1"))
	err := svc.Signup(ctx, "alice", "other")
	assert.ErrorIs(t, err, user.ErrUsernameTaken)
	assert.Len(t, repo.users, 1)
}

// racingRepo simulates a concurrent signup landing between the
// existence check and the insert: lookups miss, the insert conflicts.
type racingRepo struct {
	*fakeRepo
}

func (r *racingRepo) GetByEmail(context.Context, string) (*user.User, error) {
	return nil, user.ErrUserNotFound
}

func (r *racingRepo) GetByUsername(context.Context, string) (*user.User, error) {
	return nil, user.ErrUserNotFound
}

func (r *racingRepo) Create(context.Context, *user.User) error {
	return user.ErrUserAlreadyExists
}

// A lost pre-check race still yields the duplicate error: the insert's
// unique violation is mapped the same way.
func TestSignup_InsertConflict(t *testing.T) {
	svc := newTestService(&racingRepo{newFakeRepo()})
	ctx := context.Background()

	assert.ErrorIs(t, svc.Signup(ctx, "bob", "pw123456"), user.ErrUsernameTaken)
	assert.ErrorIs(t, svc.Signup(ctx, "a@b.com", "pw123456"), user.ErrEmailTaken)
}

func TestLogin_Success(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "a@b.com", "secret1"))

	token, err := svc.Login(ctx, "a@b.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	stored, err := repo.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Empty(t, claims.Username)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "a@b.com", "secret1"))

	_, err := svc.Login(ctx, "a@b.com", "wrong")
	assert.ErrorIs(t, err, user.ErrInvalidPassword)
}

func TestLogin_UnknownIdentifier(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.Login(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestLogin_NoSessionOnSignup(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	result, err := svc.PerformAuth(context.Background(), ModeSignup, "carol", "secret1")
	require.NoError(t, err)
	assert.Empty(t, result.Token)
}

func TestPerformAuth_Transcript(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.PerformAuth(ctx, ModeSignup, "a@b.com", "secret1")
	require.NoError(t, err)
	assert.Len(t, repo.users, 1)

	_, err = svc.PerformAuth(ctx, ModeSignup, "a@b.com", "other")
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	result, err := svc.PerformAuth(ctx, ModeLogin, "a@b.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	_, err = svc.PerformAuth(ctx, ModeLogin, "a@b.com", "wrong")
	assert.ErrorIs(t, err, user.ErrInvalidPassword)
}

func TestPerformAuth_UnknownMode(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.PerformAuth(context.Background(), Mode("reset"), "a@b.com", "pw")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestStorageErrorCollapse(t *testing.T) {
	repo := newFakeRepo()
	repo.failWith = errors.New("connection refused")
	svc := newTestService(repo)
	ctx := context.Background()

	err := svc.Signup(ctx, "a@b.com", "secret1")
	assert.ErrorIs(t, err, user.ErrStorage)

	_, err = svc.Login(ctx, "a@b.com", "secret1")
	assert.ErrorIs(t, err, user.ErrStorage)
}

func TestUserFromToken(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "dave", "secret1"))
	token, err := svc.Login(ctx, "dave", "secret1")
	require.NoError(t, err)

	u, err := svc.UserFromToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "dave", u.Username)

	_, err = svc.UserFromToken(ctx, "not-a-token")
	assert.Error(t, err)
}
