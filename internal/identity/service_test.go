package identity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu    sync.Mutex
	users map[string]User
}

func newMemRepo() *memRepo { return &memRepo{users: map[string]User{}} }

func (m *memRepo) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if x.Email == u.Email {
			return ErrAlreadyExist
		}
	}
	m.users[u.ID] = *u
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) UpdateEmail(_ context.Context, id, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Email = email
	m.users[id] = u
	return nil
}

func (m *memRepo) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = hash
	m.users[id] = u
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return false, nil
	}
	delete(m.users, id)
	return true, nil
}

func TestSignInAndToken(t *testing.T) {
	ctx := context.Background()
	s := NewService(newMemRepo(), "test-secret")

	u, err := s.CreateUser(ctx, " Sara@GeezShoe.com ", "secret1", "Sara", "normal")
	require.NoError(t, err)
	assert.Equal(t, "sara@geezshoe.com", u.Email)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	_, _, err = s.SignIn(ctx, "sara@geezshoe.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = s.SignIn(ctx, "nobody@geezshoe.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, signed, err := s.SignIn(ctx, "SARA@geezshoe.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, signed.ID)

	me, err := s.UserFromToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)
	assert.Equal(t, "normal", me.Role)
}

func TestUserFromToken_Rejects(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	s := NewService(repo, "test-secret")
	u, err := s.CreateUser(ctx, "a@b.co", "secret1", "A", "normal")
	require.NoError(t, err)
	token, _, err := s.SignIn(ctx, "a@b.co", "secret1")
	require.NoError(t, err)

	_, err = NewService(repo, "other-secret").UserFromToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	later := NewService(repo, "test-secret")
	later.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	_, err = later.UserFromToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.UserFromToken(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	_, err = s.UserFromToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()
	s := NewService(newMemRepo(), "k")
	u, err := s.CreateUser(ctx, "a@b.co", "secret1", "A", "normal")
	require.NoError(t, err)

	assert.ErrorIs(t, s.UpdatePassword(ctx, u.ID, "short"), ErrWeakPassword)
	require.NoError(t, s.UpdatePassword(ctx, u.ID, "secret2"))

	_, _, err = s.SignIn(ctx, "a@b.co", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = s.SignIn(ctx, "a@b.co", "secret2")
	assert.NoError(t, err)

	assert.ErrorIs(t, s.UpdatePassword(ctx, "missing", "secret3"), ErrNotFound)
}

func TestCreateUser_Duplicate(t *testing.T) {
	ctx := context.Background()
	s := NewService(newMemRepo(), "k")
	_, err := s.CreateUser(ctx, "a@b.co", "secret1", "A", "normal")
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, "A@B.CO", "secret1", "A2", "normal")
	assert.ErrorIs(t, err, ErrAlreadyExist)
}
