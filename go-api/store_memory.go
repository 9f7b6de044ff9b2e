package main

import (
	"context"
	"sync"
)

// memStore keeps users and posts in process memory behind one lock.
type memStore struct {
	mu     sync.RWMutex
	users  map[string]User // username -> user
	posts  []Post          // oldest..newest
	postAt map[string]int  // post id -> index into posts
}

func newMemStore() *memStore {
	return &memStore{
		users:  map[string]User{},
		posts:  []Post{},
		postAt: map[string]int{},
	}
}

func (s *memStore) CreateUser(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return ErrDuplicateUsername
	}
	s.users[u.Username] = u
	return nil
}

func (s *memStore) UserByUsername(_ context.Context, username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (s *memStore) ListPosts(_ context.Context) ([]Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Post(nil), s.posts...), nil
}

func (s *memStore) CreatePost(_ context.Context, p Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postAt[p.ID] = len(s.posts)
	s.posts = append(s.posts, p)
	return nil
}

func (s *memStore) GetPost(_ context.Context, id string) (Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.postAt[id]
	if !ok {
		return Post{}, ErrPostNotFound
	}
	return s.posts[i], nil
}

func (s *memStore) UpdatePost(_ context.Context, id, requesterID string, patch PostPatch) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.postAt[id]
	if !ok {
		return Post{}, ErrPostNotFound
	}
	if err := checkAuthor(s.posts[i], requesterID); err != nil {
		return Post{}, err
	}
	s.posts[i].apply(patch)
	return s.posts[i], nil
}

func (s *memStore) DeletePost(_ context.Context, id, requesterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.postAt[id]
	if !ok {
		return ErrPostNotFound
	}
	if err := checkAuthor(s.posts[i], requesterID); err != nil {
		return err
	}
	s.posts = append(s.posts[:i], s.posts[i+1:]...)
	delete(s.postAt, id)
	for j := i; j < len(s.posts); j++ {
		s.postAt[s.posts[j].ID] = j
	}
	return nil
}
