package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/darshit3596/shreejida/internal/model"
)

var (
	// ErrInvalidCredentials means the username or password did not match.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUserExists is returned by Register for a taken username.
	ErrUserExists = errors.New("username already exists")

	// ErrNotLoggedIn is returned by operations that need a current user.
	ErrNotLoggedIn = errors.New("not logged in")
)

// Users is the user store the service reads and writes.
type Users interface {
	Users() []model.User
	UserByName(username string) (model.User, bool)
	AddUser(ctx context.Context, u model.User) error
	UpdateUserPassword(ctx context.Context, username, hash string) error
}

// Service tracks the current user.
type Service struct {
	users  Users
	hasher Hasher

	mu      sync.Mutex
	current string
}

// NewService returns a logged-out service. A nil hasher means BcryptHasher.
func NewService(users Users, hasher Hasher) *Service {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	return &Service{users: users, hasher: hasher}
}

// Login checks the credentials and makes the user current. When the file
// has no users yet, the first login registers the given credentials.
func (s *Service) Login(ctx context.Context, username, password string) (model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return model.User{}, ErrInvalidCredentials
	}

	if u, ok := s.users.UserByName(username); ok && s.hasher.Verify(password, u.PasswordHash) {
		s.setCurrent(u.Username)
		slog.Info("user logged in", "user", u.Username)
		return u, nil
	}

	if len(s.users.Users()) == 0 {
		slog.Info("no users yet, registering first user", "user", username)
		return s.Register(ctx, username, password)
	}
	return model.User{}, ErrInvalidCredentials
}

// Register adds a user and makes it current.
func (s *Service) Register(ctx context.Context, username, password string) (model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return model.User{}, errors.New("register: username and password are required")
	}
	if _, ok := s.users.UserByName(username); ok {
		return model.User{}, fmt.Errorf("register %q: %w", username, ErrUserExists)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.User{}, fmt.Errorf("register %q: %w", username, err)
	}
	u := model.User{Username: username, PasswordHash: hash}
	if err := s.users.AddUser(ctx, u); err != nil {
		return model.User{}, fmt.Errorf("register %q: %w", username, err)
	}
	s.setCurrent(username)
	return u, nil
}

// Logout forgets the current user.
func (s *Service) Logout() {
	s.setCurrent("")
}

// Current returns the logged-in user. It is false after Logout, and also
// when the user no longer exists in the open file.
func (s *Service) Current() (model.User, bool) {
	s.mu.Lock()
	name := s.current
	s.mu.Unlock()
	if name == "" {
		return model.User{}, false
	}
	return s.users.UserByName(name)
}

// VerifyPassword re-checks the current user's password, for confirming
// sensitive edits.
func (s *Service) VerifyPassword(password string) bool {
	u, ok := s.Current()
	return ok && s.hasher.Verify(password, u.PasswordHash)
}

// ChangePassword replaces the current user's password after checking the
// old one.
func (s *Service) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	u, ok := s.Current()
	if !ok {
		return fmt.Errorf("change password: %w", ErrNotLoggedIn)
	}
	if !s.hasher.Verify(oldPassword, u.PasswordHash) {
		return fmt.Errorf("change password: %w", ErrInvalidCredentials)
	}
	if newPassword == "" {
		return errors.New("change password: new password is required")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if err := s.users.UpdateUserPassword(ctx, u.Username, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

func (s *Service) setCurrent(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = username
}
