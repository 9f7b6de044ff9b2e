package main

import (
	"errors"
	"strings"
	"time"
)

// User is a registered account. Users are never mutated or deleted.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Post is a user-authored entry. AuthorUsername is a snapshot taken at
// creation time and is not kept in sync with the user record.
type Post struct {
	ID             string
	Title          string
	Content        string
	AuthorID       string
	AuthorUsername string
	DatePosted     time.Time
}

// PostPatch carries the optional fields of an update. Nil or blank fields
// are left untouched.
type PostPatch struct {
	Title   *string
	Content *string
}

// Identity is what a verified token asserts about its bearer.
type Identity struct {
	UserID   string
	Username string
}

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrMissingPostFields  = errors.New("title and content are required")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingToken       = errors.New("authentication token missing")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrPostNotFound       = errors.New("post not found")
	ErrForbidden          = errors.New("not the author of this post")
)

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// newPost validates the required fields and stamps a fresh id and date.
func newPost(title, content string, author Identity, now time.Time) (Post, error) {
	if blank(title) || blank(content) {
		return Post{}, ErrMissingPostFields
	}
	return Post{
		ID:             newID(),
		Title:          title,
		Content:        content,
		AuthorID:       author.UserID,
		AuthorUsername: author.Username,
		DatePosted:     now.UTC().Truncate(time.Millisecond),
	}, nil
}

func (p *Post) apply(patch PostPatch) {
	if patch.Title != nil && !blank(*patch.Title) {
		p.Title = *patch.Title
	}
	if patch.Content != nil && !blank(*patch.Content) {
		p.Content = *patch.Content
	}
}

func checkAuthor(p Post, requesterID string) error {
	if p.AuthorID != requesterID {
		return ErrForbidden
	}
	return nil
}
