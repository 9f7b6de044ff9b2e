package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	t   *testing.T
	srv *server
	h   http.Handler
}

func newTestAPI(t *testing.T, s Store) *testAPI {
	t.Helper()
	srv := newServer(newTestAuthenticator(t, s), s, discardLogger())
	return &testAPI{t: t, srv: srv, h: srv.routes([]string{"*"})}
}

func (ta *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	ta.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(ta.t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ta.h.ServeHTTP(w, req)
	return w
}

func (ta *testAPI) register(username, password string) {
	ta.t.Helper()
	w := ta.do("POST", "/api/register", "", authReq{Username: username, Password: password})
	require.Equal(ta.t, http.StatusCreated, w.Code, w.Body.String())
}

func (ta *testAPI) login(username, password string) loginResp {
	ta.t.Helper()
	w := ta.do("POST", "/api/login", "", authReq{Username: username, Password: password})
	require.Equal(ta.t, http.StatusOK, w.Code, w.Body.String())
	return decodeBody[loginResp](ta.t, w)
}

func (ta *testAPI) createPost(token, title, content string) postDTO {
	ta.t.Helper()
	w := ta.do("POST", "/api/posts", token, createPostReq{Title: title, Content: content})
	require.Equal(ta.t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[postDTO](ta.t, w)
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[map[string]string](t, w)["message"]
}

func TestAPIEndToEnd(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ta := newTestAPI(t, s)

		w := ta.do("POST", "/api/register", "", authReq{Username: "alice", Password: "pw1"})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "User registered successfully.", message(t, w))

		login := ta.login("alice", "pw1")
		require.NotEmpty(t, login.Token)
		assert.Equal(t, "alice", login.User.Username)
		assert.NotEmpty(t, login.User.ID)

		p := ta.createPost(login.Token, "Hi", "World")
		assert.Equal(t, "alice", p.AuthorUsername)
		assert.Equal(t, login.User.ID, p.AuthorID)
		assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`, p.DatePosted)

		w = ta.do("PUT", "/api/posts/"+p.ID, login.Token, map[string]string{"title": "Hi2"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		updated := decodeBody[postDTO](t, w)
		assert.Equal(t, "Hi2", updated.Title)
		assert.Equal(t, "World", updated.Content)
		assert.Equal(t, p.DatePosted, updated.DatePosted)

		w = ta.do("GET", "/api/posts/"+p.ID, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, updated, decodeBody[postDTO](t, w))

		w = ta.do("DELETE", "/api/posts/"+p.ID, login.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Post deleted successfully.", message(t, w))

		w = ta.do("GET", "/api/posts", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		for _, got := range decodeBody[[]postDTO](t, w) {
			assert.NotEqual(t, p.ID, got.ID)
		}
	})
}

func TestAPIRegister(t *testing.T) {
	ta := newTestAPI(t, newMemStore())

	ta.register("alice", "pw1")
	w := ta.do("POST", "/api/register", "", authReq{Username: "alice", Password: "pw2"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Username already exists.", message(t, w))

	w = ta.do("POST", "/api/register", "", authReq{Username: "bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username and password are required.", message(t, w))

	w = ta.do("POST", "/api/register", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPILoginHidesUserExistence(t *testing.T) {
	ta := newTestAPI(t, newMemStore())
	ta.register("alice", "pw1")

	wrongPw := ta.do("POST", "/api/login", "", authReq{Username: "alice", Password: "nope"})
	unknown := ta.do("POST", "/api/login", "", authReq{Username: "mallory", Password: "nope"})

	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrongPw.Body.String(), unknown.Body.String())
	assert.Equal(t, "Invalid username or password.", message(t, wrongPw))
}

func TestAPIListPostsEmpty(t *testing.T) {
	ta := newTestAPI(t, newMemStore())
	w := ta.do("GET", "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestAPIListPostsOrder(t *testing.T) {
	ta := newTestAPI(t, newMemStore())
	ta.register("alice", "pw1")
	tok := ta.login("alice", "pw1").Token

	first := ta.createPost(tok, "one", "1")
	second := ta.createPost(tok, "two", "2")

	posts := decodeBody[[]postDTO](t, ta.do("GET", "/api/posts", "", nil))
	require.Len(t, posts, 2)
	assert.Equal(t, first.ID, posts[0].ID)
	assert.Equal(t, second.ID, posts[1].ID)
}

func TestAPICreatePostValidation(t *testing.T) {
	ta := newTestAPI(t, newMemStore())
	ta.register("alice", "pw1")
	tok := ta.login("alice", "pw1").Token

	w := ta.do("POST", "/api/posts", tok, createPostReq{Title: "only title"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Title and content are required.", message(t, w))

	posts := decodeBody[[]postDTO](t, ta.do("GET", "/api/posts", "", nil))
	assert.Empty(t, posts)
}

func TestAPITokenMissingVsRejected(t *testing.T) {
	ta := newTestAPI(t, newMemStore())
	ta.register("alice", "pw1")
	tok := ta.login("alice", "pw1").Token
	p := ta.createPost(tok, "Hi", "World")

	routes := []struct{ method, path string }{
		{"POST", "/api/posts"},
		{"PUT", "/api/posts/" + p.ID},
		{"DELETE", "/api/posts/" + p.ID},
	}
	for _, rt := range routes {
		w := ta.do(rt.method, rt.path, "", map[string]string{"title": "x", "content": "y"})
		assert.Equal(t, http.StatusUnauthorized, w.Code, rt.method)
		assert.Equal(t, "Authentication token missing.", message(t, w))

		w = ta.do(rt.method, rt.path, "garbage", map[string]string{"title": "x", "content": "y"})
		assert.Equal(t, http.StatusForbidden, w.Code, rt.method)
		assert.Equal(t, "Invalid or expired token.", message(t, w))
	}

	got := decodeBody[postDTO](t, ta.do("GET", "/api/posts/"+p.ID, "", nil))
	assert.Equal(t, "Hi", got.Title)
}

func TestAPIExpiredToken(t *testing.T) {
	ta := newTestAPI(t, newMemStore())
	ta.register("alice", "pw1")

	issued := time.Now()
	ta.srv.auth.now = func() time.Time { return issued }
	tok := ta.login("alice", "pw1").Token

	ta.srv.auth.now = func() time.Time { return issued.Add(time.Hour + time.Minute) }
	w := ta.do("POST", "/api/posts", tok, createPostReq{Title: "late", Content: "post"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	posts := decodeBody[[]postDTO](t, ta.do("GET", "/api/posts", "", nil))
	assert.Empty(t, posts)
}

func TestAPIOnlyAuthorMayMutate(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ta := newTestAPI(t, s)
		ta.register("alice", "pw1")
		ta.register("bob", "pw2")
		aliceTok := ta.login("alice", "pw1").Token
		bobTok := ta.login("bob", "pw2").Token

		p := ta.createPost(aliceTok, "Hi", "World")

		w := ta.do("PUT", "/api/posts/"+p.ID, bobTok, map[string]string{"title": "pwned"})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "You are not authorized to update this post.", message(t, w))

		w = ta.do("DELETE", "/api/posts/"+p.ID, bobTok, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "You are not authorized to delete this post.", message(t, w))

		got := decodeBody[postDTO](t, ta.do("GET", "/api/posts/"+p.ID, "", nil))
		assert.Equal(t, p, got)
	})
}

func TestAPIUnknownPost(t *testing.T) {
	ta := newTestAPI(t, newMemStore())
	ta.register("alice", "pw1")
	tok := ta.login("alice", "pw1").Token

	for _, w := range []*httptest.ResponseRecorder{
		ta.do("GET", "/api/posts/nope", "", nil),
		ta.do("PUT", "/api/posts/nope", tok, map[string]string{"title": "x"}),
		ta.do("DELETE", "/api/posts/nope", tok, nil),
	} {
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Post not found.", message(t, w))
	}
}

func TestAPIUpdateEmptyBody(t *testing.T) {
	ta := newTestAPI(t, newMemStore())
	ta.register("alice", "pw1")
	tok := ta.login("alice", "pw1").Token
	p := ta.createPost(tok, "Hi", "World")

	w := ta.do("PUT", "/api/posts/"+p.ID, tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, p, decodeBody[postDTO](t, w))
}

func TestAPIHealthAndReadiness(t *testing.T) {
	ta := newTestAPI(t, newMemStore())

	w := ta.do("GET", "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	assert.Equal(t, http.StatusOK, ta.do("GET", "/readyz", "", nil).Code)
	ta.srv.ready.Store(false)
	assert.Equal(t, http.StatusServiceUnavailable, ta.do("GET", "/readyz", "", nil).Code)
}

func TestAPIUnknownRouteAndMethod(t *testing.T) {
	ta := newTestAPI(t, newMemStore())

	w := ta.do("GET", "/api/nothing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found.", message(t, w))

	w = ta.do("PATCH", "/api/posts", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestAPICORSPreflight(t *testing.T) {
	ta := newTestAPI(t, newMemStore())

	req := httptest.NewRequest("OPTIONS", "/api/posts", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	w := httptest.NewRecorder()
	ta.h.ServeHTTP(w, req)

	assert.Less(t, w.Code, 300)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
