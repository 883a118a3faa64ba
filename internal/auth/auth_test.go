package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/darshit3596/shreejida/internal/appstate"
	"github.com/darshit3596/shreejida/internal/model"
	"github.com/darshit3596/shreejida/internal/store"
)

func createTestService(t *testing.T) (*Service, *appstate.State) {
	t.Helper()
	ctx := context.Background()
	db, err := store.New(ctx, model.DefaultSettings())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := appstate.New(db)
	require.NoError(t, st.Hydrate(ctx))
	return NewService(st, BcryptHasher{Cost: bcrypt.MinCost}), st
}

func legacyDigest(pw string) string {
	sum := sha256.Sum256([]byte(pw))
	return hex.EncodeToString(sum[:])
}

func TestLogin_FirstUserRegisters(t *testing.T) {
	svc, st := createTestService(t)
	ctx := context.Background()

	u, err := svc.Login(ctx, " owner ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "owner", u.Username)

	cur, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, "owner", cur.Username)
	require.Len(t, st.Users(), 1)
	assert.True(t, st.Dirty())
}

func TestLogin_ExistingUser(t *testing.T) {
	svc, _ := createTestService(t)
	ctx := context.Background()
	_, err := svc.Login(ctx, "owner", "secret")
	require.NoError(t, err)
	svc.Logout()

	_, ok := svc.Current()
	assert.False(t, ok)

	_, err = svc.Login(ctx, "owner", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "stranger", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "only the first login registers")

	u, err := svc.Login(ctx, "owner", "secret")
	require.NoError(t, err)
	assert.Equal(t, "owner", u.Username)
}

func TestLogin_EmptyCredentials(t *testing.T) {
	svc, st := createTestService(t)

	_, err := svc.Login(context.Background(), "", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), "owner", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, st.Users())
}

func TestLogin_LegacyDigest(t *testing.T) {
	svc, st := createTestService(t)
	ctx := context.Background()
	require.NoError(t, st.AddUser(ctx, model.User{Username: "owner", PasswordHash: legacyDigest("secret")}))

	_, err := svc.Login(ctx, "owner", "secret")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "owner", "Secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _ := createTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "owner", "a")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "owner", "b")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestVerifyPassword(t *testing.T) {
	svc, _ := createTestService(t)
	assert.False(t, svc.VerifyPassword("secret"), "nobody logged in")

	_, err := svc.Login(context.Background(), "owner", "secret")
	require.NoError(t, err)
	assert.True(t, svc.VerifyPassword("secret"))
	assert.False(t, svc.VerifyPassword("nope"))
}

func TestChangePassword(t *testing.T) {
	svc, _ := createTestService(t)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, "a", "b")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = svc.Login(ctx, "owner", "old")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, "wrong", "new")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, "old", "new"))
	assert.True(t, svc.VerifyPassword("new"))
	assert.False(t, svc.VerifyPassword("old"))

	svc.Logout()
	_, err = svc.Login(ctx, "owner", "new")
	require.NoError(t, err)
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("secret")
	require.NoError(t, err)
	_, err = hex.DecodeString(hash)
	require.NoError(t, err, "stored hashes are hex")
	assert.False(t, isLegacyDigest(hash))
	assert.True(t, h.Verify("secret", hash))
	assert.False(t, h.Verify("other", hash))

	legacy := legacyDigest("secret")
	assert.True(t, isLegacyDigest(legacy))
	assert.True(t, h.Verify("secret", legacy))
	assert.False(t, h.Verify("secret", strings.ToUpper(legacy[:10])+legacy[10:]))

	assert.False(t, h.Verify("secret", "not-hex"))
	assert.False(t, h.Verify("secret", ""))
}

func TestBcryptHasher_TooLong(t *testing.T) {
	_, err := BcryptHasher{Cost: bcrypt.MinCost}.Hash(strings.Repeat("x", 100))
	assert.Error(t, err)
}
