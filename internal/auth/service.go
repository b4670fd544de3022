package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/flexpath/flexpath/internal/db"
	"github.com/flexpath/flexpath/internal/typeid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnknownAccount     = errors.New("unknown account")
)

const (
	tokenTTL    = 24 * time.Hour
	tokenIssuer = "flexpath"
	bcryptCost  = 12

	pgUniqueViolation = "23505"
)

// Account is the public view of a user row. The password hash never
// leaves this package.
type Account struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Credentials is what a successful register or login returns: a signed
// bearer token, its expiry, and the account it belongs to.
type Credentials struct {
	Token     string  `json:"token"`
	ExpiresAt int64   `json:"expiresAt"`
	Account   Account `json:"account"`
}

type Service struct {
	queries *db.Queries
	secret  []byte
}

func NewService(queries *db.Queries, secret string) *Service {
	return &Service{queries: queries, secret: []byte(secret)}
}

func (s *Service) Register(ctx context.Context, email, password, displayName string) (*Credentials, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.queries.CreateUser(ctx, db.CreateUserParams{
		ID:          typeid.NewUserID(),
		Email:       email,
		Password:    string(hash),
		DisplayName: displayName,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.credentialsFor(user)
}

func (s *Service) Login(ctx context.Context, email, password string) (*Credentials, error) {
	user, err := s.queries.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.credentialsFor(user)
}

// Account looks up the public account view for a validated user ID.
func (s *Service) Account(ctx context.Context, userID string) (*Account, error) {
	user, err := s.queries.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnknownAccount
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &Account{ID: user.ID, Email: user.Email, DisplayName: user.DisplayName}, nil
}

// ValidateToken checks signature, expiry, and that the subject is a
// well-formed user ID. Returns the user ID on success.
func (s *Service) ValidateToken(raw string) (string, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	// A token whose subject is not a user ID was not minted here.
	if typeid.Validate(claims.Subject, typeid.PrefixUser) != nil {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

func (s *Service) credentialsFor(user db.User) (*Credentials, error) {
	expiresAt := time.Now().Add(tokenTTL)

	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Credentials{
		Token:     signed,
		ExpiresAt: expiresAt.Unix(),
		Account:   Account{ID: user.ID, Email: user.Email, DisplayName: user.DisplayName},
	}, nil
}
