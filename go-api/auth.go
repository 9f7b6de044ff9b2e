package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Authenticator registers users, checks credentials and issues and
// verifies bearer tokens.
type Authenticator struct {
	store  Store
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time

	// dummyHash is compared against when the username is unknown so a
	// failed login costs the same either way.
	dummyHash []byte
}

func NewAuthenticator(store Store, secret []byte, ttl time.Duration, cost int) (*Authenticator, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte(newID()), cost)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	return &Authenticator{
		store:     store,
		secret:    secret,
		ttl:       ttl,
		cost:      cost,
		now:       time.Now,
		dummyHash: dummy,
	}, nil
}

// randomSecret is used when JWT_SECRET is not configured; tokens then do
// not survive a restart.
func randomSecret() ([]byte, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return []byte(hex.EncodeToString(b)), nil
}

func (a *Authenticator) Register(ctx context.Context, username, password string) (User, error) {
	if blank(username) || blank(password) {
		return User{}, ErrMissingCredentials
	}
	// cheap pre-check so duplicates don't pay for a hash
	if _, err := a.store.UserByUsername(ctx, username); err == nil {
		return User{}, ErrDuplicateUsername
	} else if !errors.Is(err, ErrUserNotFound) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	u := User{
		ID:           newID(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    a.now().UTC(),
	}
	if err := a.store.CreateUser(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (a *Authenticator) Login(ctx context.Context, username, password string) (string, User, error) {
	u, err := a.store.UserByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(password))
		return "", User{}, ErrInvalidCredentials
	} else if err != nil {
		return "", User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", User{}, ErrInvalidCredentials
	}

	tok, err := issueToken(Identity{UserID: u.ID, Username: u.Username}, a.secret, a.ttl, a.now())
	if err != nil {
		return "", User{}, fmt.Errorf("sign token: %w", err)
	}
	return tok, u, nil
}

// Authenticate verifies the bearer token carried in an Authorization
// header value.
func (a *Authenticator) Authenticate(header string) (Identity, error) {
	tok := bearerToken(header)
	if tok == "" {
		return Identity{}, ErrMissingToken
	}
	return verifyToken(tok, a.secret, a.now())
}

// bearerToken extracts <token> from "Bearer <token>".
func bearerToken(header string) string {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}
