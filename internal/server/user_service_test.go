package server

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jonathan/learntube/internal/config"
	"github.com/jonathan/learntube/internal/db"
	"github.com/jonathan/learntube/internal/types"
)

type fakeUserDB struct {
	users map[uuid.UUID]*db.User
}

func newFakeUserDB() *fakeUserDB {
	return &fakeUserDB{users: map[uuid.UUID]*db.User{}}
}

func (f *fakeUserDB) CreateUser(_ context.Context, name, email string) (uuid.UUID, error) {
	id := uuid.New()
	now := time.Now()
	f.users[id] = &db.User{ID: id, Name: name, Email: email, CreatedAt: now, UpdatedAt: now}
	return id, nil
}

func (f *fakeUserDB) GetUser(_ context.Context, userID uuid.UUID) (*db.User, error) {
	return f.users[userID], nil
}

func (f *fakeUserDB) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserDB) CheckEmailExists(_ context.Context, email string) (bool, error) {
	u, _ := f.GetUserByEmail(context.Background(), email)
	return u != nil, nil
}

func (f *fakeUserDB) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
	u := f.users[userID]
	if u == nil {
		return assert.AnError
	}
	u.PasswordHash = passwordHash
	u.PasswordSet = true
	return nil
}

func newTestUserService(store *fakeUserDB) *UserService {
	// MinCost keeps bcrypt fast in tests.
	return NewUserService(store, &config.PasswordConfig{BcryptCost: bcrypt.MinCost})
}

func TestUserService_Register(t *testing.T) {
	store := newFakeUserDB()
	service := newTestUserService(store)

	user, err := service.Register(context.Background(), &types.CreateUserRequest{
		Name:     "Test User",
		Email:    "test@example.com",
		Password: "SecurePass123!",
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "test@example.com", user.Email)
	assert.True(t, user.PasswordSet)

	stored := store.users[user.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "SecurePass123!", stored.PasswordHash, "password must be hashed")
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	store := newFakeUserDB()
	service := newTestUserService(store)

	req := &types.CreateUserRequest{Name: "Test", Email: "dup@example.com", Password: "SecurePass123!"}
	_, err := service.Register(context.Background(), req)
	require.NoError(t, err)

	user, err := service.Register(context.Background(), req)
	assert.Nil(t, user)
	var dupErr *ErrEmailAlreadyExists
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "dup@example.com", dupErr.Email)
}

func TestUserService_Login(t *testing.T) {
	store := newFakeUserDB()
	service := newTestUserService(store)

	registered, err := service.Register(context.Background(), &types.CreateUserRequest{
		Name:     "Test",
		Email:    "login@example.com",
		Password: "SecurePass123!",
	})
	require.NoError(t, err)

	user, err := service.Login(context.Background(), &types.LoginRequest{
		Email:    "login@example.com",
		Password: "SecurePass123!",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	store := newFakeUserDB()
	service := newTestUserService(store)

	_, err := service.Register(context.Background(), &types.CreateUserRequest{
		Name:     "Test",
		Email:    "login@example.com",
		Password: "SecurePass123!",
	})
	require.NoError(t, err)

	user, err := service.Login(context.Background(), &types.LoginRequest{
		Email:    "login@example.com",
		Password: "wrong",
	})
	assert.Nil(t, user)
	var credErr *ErrInvalidCredentials
	assert.ErrorAs(t, err, &credErr)
}

func TestUserService_Login_UnknownEmail(t *testing.T) {
	service := newTestUserService(newFakeUserDB())

	user, err := service.Login(context.Background(), &types.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	assert.Nil(t, user)
	var credErr *ErrInvalidCredentials
	assert.ErrorAs(t, err, &credErr)
}

func TestUserService_UpdatePassword(t *testing.T) {
	store := newFakeUserDB()
	service := newTestUserService(store)

	user, err := service.Register(context.Background(), &types.CreateUserRequest{
		Name:     "Test",
		Email:    "pw@example.com",
		Password: "OldPass123!",
	})
	require.NoError(t, err)

	err = service.UpdatePassword(context.Background(), user.ID, "OldPass123!", "NewPass456!")
	require.NoError(t, err)

	_, err = service.Login(context.Background(), &types.LoginRequest{Email: "pw@example.com", Password: "NewPass456!"})
	assert.NoError(t, err)
	_, err = service.Login(context.Background(), &types.LoginRequest{Email: "pw@example.com", Password: "OldPass123!"})
	assert.Error(t, err)
}

func TestUserService_UpdatePassword_WrongCurrent(t *testing.T) {
	store := newFakeUserDB()
	service := newTestUserService(store)

	user, err := service.Register(context.Background(), &types.CreateUserRequest{
		Name:     "Test",
		Email:    "pw@example.com",
		Password: "OldPass123!",
	})
	require.NoError(t, err)

	err = service.UpdatePassword(context.Background(), user.ID, "nope", "NewPass456!")
	var mismatch *ErrPasswordMismatch
	assert.ErrorAs(t, err, &mismatch)
}

func TestUserService_UpdatePassword_UnknownUser(t *testing.T) {
	service := newTestUserService(newFakeUserDB())

	err := service.UpdatePassword(context.Background(), uuid.New(), "a", "b")
	var notFound *ErrUserNotFound
	assert.ErrorAs(t, err, &notFound)
}
