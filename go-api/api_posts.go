package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

/* ---------- Shared DTO with the client ---------- */

type postDTO struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	AuthorID       string `json:"authorId"`
	AuthorUsername string `json:"authorUsername"`
	DatePosted     string `json:"date_posted"` // ISO 8601, UTC millis
}

func toPostDTO(p Post) postDTO {
	return postDTO{
		ID:             p.ID,
		Title:          p.Title,
		Content:        p.Content,
		AuthorID:       p.AuthorID,
		AuthorUsername: p.AuthorUsername,
		DatePosted:     formatDate(p.DatePosted),
	}
}

type createPostReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type updatePostReq struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

/* ---------- Routes ---------- */

// GET /api/posts
func (s *server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.store.ListPosts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]postDTO, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostDTO(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/posts/{id}
func (s *server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostDTO(p))
}

// POST /api/posts
func (s *server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var in createPostReq
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	p, err := newPost(in.Title, in.Content, id, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.CreatePost(r.Context(), p); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info("post created", "postId", p.ID, "userId", id.UserID)
	writeJSON(w, http.StatusCreated, toPostDTO(p))
}

// PUT /api/posts/{id}
func (s *server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var in updatePostReq
	// an empty body is an empty patch
	if err := decodeJSON(r, &in); err != nil && !errors.Is(err, io.EOF) {
		errorJSON(w, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	p, err := s.store.UpdatePost(r.Context(), chi.URLParam(r, "id"), id.UserID, PostPatch{Title: in.Title, Content: in.Content})
	if errors.Is(err, ErrForbidden) {
		errorJSON(w, http.StatusForbidden, "You are not authorized to update this post.")
		return
	} else if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostDTO(p))
}

// DELETE /api/posts/{id}
func (s *server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	postID := chi.URLParam(r, "id")

	err := s.store.DeletePost(r.Context(), postID, id.UserID)
	if errors.Is(err, ErrForbidden) {
		errorJSON(w, http.StatusForbidden, "You are not authorized to delete this post.")
		return
	} else if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info("post deleted", "postId", postID, "userId", id.UserID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully."})
}
