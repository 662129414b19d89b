package auth

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"authflow/internal/domain/user"
)

// bcryptCost matches the work factor the account passwords were
// hashed with originally; raising it only affects new signups.
const bcryptCost = 10

// Mode selects which auth operation PerformAuth runs.
type Mode string

const (
	ModeLogin  Mode = "login"
	ModeSignup Mode = "signup"
)

var ErrUnknownMode = errors.New("unknown auth mode")

// Result is the outcome of a successful auth operation. Token is set
// only for login; signup issues no session and the caller must log in
// separately.
type Result struct {
	Token string
}

// Service defines the authentication service interface
type Service interface {
	PerformAuth(ctx context.Context, mode Mode, identifier, password string) (*Result, error)
	Signup(ctx context.Context, identifier, password string) error
	Login(ctx context.Context, identifier, password string) (string, error)
	ValidateToken(token string) (*Claims, error)
	UserFromToken(ctx context.Context, token string) (*user.User, error)
	TokenTTL() time.Duration
}

type service struct {
	userRepo user.Repository
	secret   []byte
	tokenTTL time.Duration
}

// NewService creates a new auth service. The signing secret is injected
// here rather than read from the environment at use sites.
func NewService(userRepo user.Repository, secret []byte, tokenTTL time.Duration) Service {
	return &service{
		userRepo: userRepo,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

func (s *service) PerformAuth(ctx context.Context, mode Mode, identifier, password string) (*Result, error) {
	switch mode {
	case ModeSignup:
		if err := s.Signup(ctx, identifier, password); err != nil {
			return nil, err
		}
		return &Result{}, nil
	case ModeLogin:
		token, err := s.Login(ctx, identifier, password)
		if err != nil {
			return nil, err
		}
		return &Result{Token: token}, nil
	default:
		return nil, ErrUnknownMode
	}
}

func (s *service) Signup(ctx context.Context, identifier, password string) error {
	kind := ClassifyIdentifier(identifier)

	// Advisory pre-check: gives the identifier-specific wording without
	// a bcrypt round trip. The insert's unique constraint is what
	// actually prevents duplicates under concurrency.
	if _, err := s.lookup(ctx, kind, identifier); err == nil {
		return duplicateError(kind)
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return s.storageError("signup lookup", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return s.storageError("password hash", err)
	}

	newUser := &user.User{Password: string(hash)}
	if kind == KindEmail {
		newUser.Email = identifier
	} else {
		newUser.Username = identifier
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, user.ErrUserAlreadyExists) {
			return duplicateError(kind)
		}
		return s.storageError("signup insert", err)
	}
	return nil
}

func (s *service) Login(ctx context.Context, identifier, password string) (string, error) {
	kind := ClassifyIdentifier(identifier)

	u, err := s.lookup(ctx, kind, identifier)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", user.ErrUserNotFound
		}
		return "", s.storageError("login lookup", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", user.ErrInvalidPassword
	}

	token, err := signToken(u, s.secret, s.tokenTTL)
	if err != nil {
		return "", s.storageError("token sign", err)
	}
	return token, nil
}

func (s *service) ValidateToken(token string) (*Claims, error) {
	return parseToken(token, s.secret)
}

// UserFromToken resolves a token back to the stored user record, so
// protected endpoints see current account data rather than the claims
// snapshot taken at login.
func (s *service) UserFromToken(ctx context.Context, token string) (*user.User, error) {
	claims, err := parseToken(token, s.secret)
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, claims.UserID)
}

func (s *service) TokenTTL() time.Duration {
	return s.tokenTTL
}

func (s *service) lookup(ctx context.Context, kind IdentifierKind, identifier string) (*user.User, error) {
	if kind == KindEmail {
		return s.userRepo.GetByEmail(ctx, identifier)
	}
	return s.userRepo.GetByUsername(ctx, identifier)
}

// storageError logs the underlying cause and collapses it to the
// generic storage error; nothing lower-level reaches the caller.
func (s *service) storageError(op string, err error) error {
	log.Printf("auth: %s: %v", op, err)
	return user.ErrStorage
}

func duplicateError(kind IdentifierKind) error {
	if kind == KindEmail {
		return user.ErrEmailTaken
	}
	return user.ErrUsernameTaken
}
