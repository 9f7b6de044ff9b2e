package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

// fakeAPI is a small stand-in for the postboard server. Tokens are
// "tok-<username>"; rejectTokens makes every authenticated route answer
// 403 as if the token had expired.
type fakeAPI struct {
	mu           sync.Mutex
	users        map[string]string
	posts        []Post
	seq          int
	rejectTokens bool
}

func newFakeAPI(t *testing.T) (*fakeAPI, *Client) {
	t.Helper()
	f := &fakeAPI{users: map[string]string{}}
	srv := httptest.NewServer(f.routes())
	t.Cleanup(srv.Close)
	return f, NewClient(srv.URL + "/api/")
}

func (f *fakeAPI) setRejectTokens(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejectTokens = v
}

func (f *fakeAPI) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			defer f.mu.Unlock()
			next.ServeHTTP(w, r)
		})
	})
	r.Route("/api", func(r chi.Router) {
		r.Post("/register", f.register)
		r.Post("/login", f.login)
		r.Get("/posts", func(w http.ResponseWriter, r *http.Request) {
			out := append([]Post{}, f.posts...)
			reply(w, http.StatusOK, out)
		})
		r.Get("/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
			i := f.find(chi.URLParam(r, "id"))
			if i < 0 {
				reply(w, http.StatusNotFound, msg("Post not found."))
				return
			}
			reply(w, http.StatusOK, f.posts[i])
		})
		r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
			counts := map[string]int{}
			var order []string
			for _, p := range f.posts {
				if counts[p.AuthorUsername] == 0 {
					order = append(order, p.AuthorUsername)
				}
				counts[p.AuthorUsername]++
			}
			stats := []AuthorStat{}
			for _, u := range order {
				stats = append(stats, AuthorStat{AuthorID: "id-" + u, AuthorUsername: u, Posts: counts[u]})
			}
			reply(w, http.StatusOK, map[string]any{"stats": stats})
		})
		r.Post("/posts", f.authed(f.create))
		r.Put("/posts/{id}", f.authed(f.update))
		r.Delete("/posts/{id}", f.authed(f.delete))
	})
	return r
}

func msg(m string) map[string]string { return map[string]string{"message": m} }

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var in struct{ Username, Password string }
	_ = json.NewDecoder(r.Body).Decode(&in)
	switch {
	case in.Username == "" || in.Password == "":
		reply(w, http.StatusBadRequest, msg("Username and password are required."))
	case f.users[in.Username] != "":
		reply(w, http.StatusConflict, msg("Username already exists."))
	default:
		f.users[in.Username] = in.Password
		reply(w, http.StatusCreated, msg("User registered successfully."))
	}
}

func (f *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var in struct{ Username, Password string }
	_ = json.NewDecoder(r.Body).Decode(&in)
	if pw, ok := f.users[in.Username]; !ok || pw != in.Password {
		reply(w, http.StatusUnauthorized, msg("Invalid username or password."))
		return
	}
	reply(w, http.StatusOK, LoginResponse{Token: "tok-" + in.Username, User: User{ID: "id-" + in.Username, Username: in.Username}})
}

func (f *fakeAPI) authed(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if tok == "" {
			reply(w, http.StatusUnauthorized, msg("Authentication token missing."))
			return
		}
		user := strings.TrimPrefix(tok, "tok-")
		if f.rejectTokens || user == tok || f.users[user] == "" {
			reply(w, http.StatusForbidden, msg("Invalid or expired token."))
			return
		}
		next(w, r, user)
	}
}

func (f *fakeAPI) create(w http.ResponseWriter, r *http.Request, user string) {
	var in struct{ Title, Content string }
	_ = json.NewDecoder(r.Body).Decode(&in)
	if in.Title == "" || in.Content == "" {
		reply(w, http.StatusBadRequest, msg("Title and content are required."))
		return
	}
	f.seq++
	p := Post{
		ID:             fmt.Sprintf("p%d", f.seq),
		Title:          in.Title,
		Content:        in.Content,
		AuthorID:       "id-" + user,
		AuthorUsername: user,
		DatePosted:     time.Date(2024, 5, 1, 12, f.seq, 0, 0, time.UTC).Format(isoMillis),
	}
	f.posts = append(f.posts, p)
	reply(w, http.StatusCreated, p)
}

func (f *fakeAPI) update(w http.ResponseWriter, r *http.Request, user string) {
	i := f.find(chi.URLParam(r, "id"))
	if i < 0 {
		reply(w, http.StatusNotFound, msg("Post not found."))
		return
	}
	if f.posts[i].AuthorUsername != user {
		reply(w, http.StatusForbidden, msg("You are not authorized to update this post."))
		return
	}
	var in struct{ Title, Content *string }
	_ = json.NewDecoder(r.Body).Decode(&in)
	if in.Title != nil && *in.Title != "" {
		f.posts[i].Title = *in.Title
	}
	if in.Content != nil && *in.Content != "" {
		f.posts[i].Content = *in.Content
	}
	reply(w, http.StatusOK, f.posts[i])
}

func (f *fakeAPI) delete(w http.ResponseWriter, r *http.Request, user string) {
	i := f.find(chi.URLParam(r, "id"))
	if i < 0 {
		reply(w, http.StatusNotFound, msg("Post not found."))
		return
	}
	if f.posts[i].AuthorUsername != user {
		reply(w, http.StatusForbidden, msg("You are not authorized to delete this post."))
		return
	}
	f.posts = append(f.posts[:i], f.posts[i+1:]...)
	reply(w, http.StatusOK, msg("Post deleted successfully."))
}

func (f *fakeAPI) find(id string) int {
	for i, p := range f.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}
