package app

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"inno-quiz-service/internal/domain"
)

const (
	maxUsernameLen    = 64
	minPasswordLength = 6
)

// PasswordHasher hashes and verifies passwords (bcrypt in production).
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// AccountService registers and authenticates users.
type AccountService struct {
	users  UserStore
	hasher PasswordHasher
	now    func() time.Time
}

func NewAccountService(users UserStore, hasher PasswordHasher) *AccountService {
	return &AccountService{users: users, hasher: hasher, now: time.Now}
}

// Register creates a user; usernames are unique.
func (s *AccountService) Register(ctx context.Context, username, password string) (domain.User, error) {
	if err := validateUsername(username); err != nil {
		return domain.User{}, err
	}
	if len(password) < minPasswordLength {
		return domain.User{}, domain.Invalid("password", "must be at least 6 characters")
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}
	user := domain.User{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Authenticate checks the password. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.users.GetUser(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return user, nil
}

func validateUsername(username string) error {
	if username == "" {
		return domain.Invalid("username", "must not be empty")
	}
	if len(username) > maxUsernameLen {
		return domain.Invalid("username", "too long")
	}
	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return domain.Invalid("username", "must not contain whitespace")
	}
	return nil
}
