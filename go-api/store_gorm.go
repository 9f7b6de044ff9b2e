package main

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type userRecord struct {
	ID           string    `gorm:"primaryKey;type:text"`
	Username     string    `gorm:"uniqueIndex;type:text;not null"`
	PasswordHash string    `gorm:"type:text;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (userRecord) TableName() string { return "users" }

// postRecord keeps an autoincrement sequence so listing can follow
// insertion order.
type postRecord struct {
	Seq            uint      `gorm:"primaryKey;autoIncrement"`
	ID             string    `gorm:"uniqueIndex;type:text;not null"`
	Title          string    `gorm:"type:text;not null"`
	Content        string    `gorm:"type:text;not null"`
	AuthorID       string    `gorm:"index;type:text;not null"`
	AuthorUsername string    `gorm:"type:text;not null"`
	DatePosted     time.Time `gorm:"not null"`
}

func (postRecord) TableName() string { return "posts" }

func (r postRecord) toPost() Post {
	return Post{
		ID:             r.ID,
		Title:          r.Title,
		Content:        r.Content,
		AuthorID:       r.AuthorID,
		AuthorUsername: r.AuthorUsername,
		DatePosted:     r.DatePosted.UTC(),
	}
}

type gormStore struct {
	mu sync.Mutex // serializes writes
	db *gorm.DB
}

func newGormStore(db *gorm.DB) *gormStore {
	return &gormStore{db: db}
}

func (s *gormStore) CreateUser(ctx context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	if err := s.db.WithContext(ctx).Model(&userRecord{}).Where("username = ?", u.Username).Count(&count).Error; err != nil {
		return errors.Wrap(err, "count users")
	}
	if count > 0 {
		return ErrDuplicateUsername
	}
	rec := userRecord{ID: u.ID, Username: u.Username, PasswordHash: u.PasswordHash, CreatedAt: u.CreatedAt}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return errors.Wrap(err, "insert user")
	}
	return nil
}

func (s *gormStore) UserByUsername(ctx context.Context, username string) (User, error) {
	var rec userRecord
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrUserNotFound
	} else if err != nil {
		return User{}, errors.Wrap(err, "find user")
	}
	return User{ID: rec.ID, Username: rec.Username, PasswordHash: rec.PasswordHash, CreatedAt: rec.CreatedAt}, nil
}

func (s *gormStore) ListPosts(ctx context.Context) ([]Post, error) {
	var recs []postRecord
	if err := s.db.WithContext(ctx).Order("seq ASC").Find(&recs).Error; err != nil {
		return nil, errors.Wrap(err, "list posts")
	}
	out := make([]Post, 0, len(recs))
	for _, rc := range recs {
		out = append(out, rc.toPost())
	}
	return out, nil
}

func (s *gormStore) CreatePost(ctx context.Context, p Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := postRecord{
		ID:             p.ID,
		Title:          p.Title,
		Content:        p.Content,
		AuthorID:       p.AuthorID,
		AuthorUsername: p.AuthorUsername,
		DatePosted:     p.DatePosted,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return errors.Wrap(err, "insert post")
	}
	return nil
}

func (s *gormStore) GetPost(ctx context.Context, id string) (Post, error) {
	rec, err := s.findPost(s.db.WithContext(ctx), id)
	if err != nil {
		return Post{}, err
	}
	return rec.toPost(), nil
}

func (s *gormStore) UpdatePost(ctx context.Context, id, requesterID string, patch PostPatch) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db := s.db.WithContext(ctx)
	rec, err := s.findPost(db, id)
	if err != nil {
		return Post{}, err
	}
	p := rec.toPost()
	if err := checkAuthor(p, requesterID); err != nil {
		return Post{}, err
	}
	p.apply(patch)
	rec.Title, rec.Content = p.Title, p.Content
	if err := db.Save(&rec).Error; err != nil {
		return Post{}, errors.Wrap(err, "update post")
	}
	return p, nil
}

func (s *gormStore) DeletePost(ctx context.Context, id, requesterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db := s.db.WithContext(ctx)
	rec, err := s.findPost(db, id)
	if err != nil {
		return err
	}
	if err := checkAuthor(rec.toPost(), requesterID); err != nil {
		return err
	}
	if err := db.Delete(&rec).Error; err != nil {
		return errors.Wrap(err, "delete post")
	}
	return nil
}

func (s *gormStore) findPost(db *gorm.DB, id string) (postRecord, error) {
	var rec postRecord
	err := db.Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return postRecord{}, ErrPostNotFound
	} else if err != nil {
		return postRecord{}, errors.Wrap(err, "find post")
	}
	return rec, nil
}
