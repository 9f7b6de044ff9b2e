package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// View is the screen the client is on. Login and Register are only
// reachable while logged out, Feed and Editing only while logged in.
type View int

const (
	ViewLogin View = iota
	ViewRegister
	ViewFeed
	ViewEditing
)

func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewRegister:
		return "register"
	case ViewFeed:
		return "feed"
	case ViewEditing:
		return "editing"
	}
	return fmt.Sprintf("View(%d)", int(v))
}

func (v View) loggedIn() bool { return v == ViewFeed || v == ViewEditing }

var ErrWrongView = errors.New("action not available in this view")

// App drives the client views from API responses. Message holds the last
// user-visible status line.
type App struct {
	client   *Client
	sessions *SessionFile

	session   Session
	view      View
	editingID string
	posts     []Post

	Message string
}

// NewApp restores the cached session. A cached token goes straight to the
// feed without asking the server whether it is still valid.
func NewApp(client *Client, sessions *SessionFile) (*App, error) {
	s, err := sessions.Load()
	if err != nil {
		return nil, err
	}
	a := &App{client: client, sessions: sessions, session: s, view: ViewLogin}
	if s.LoggedIn() {
		a.view = ViewFeed
	}
	return a, nil
}

func (a *App) View() View        { return a.view }
func (a *App) EditingID() string { return a.editingID }
func (a *App) Session() Session  { return a.session }

// Feed returns the loaded posts newest first.
func (a *App) Feed() []Post {
	out := make([]Post, len(a.posts))
	for i, p := range a.posts {
		out[len(a.posts)-1-i] = p
	}
	return out
}

func (a *App) transition(from []View, to View) error {
	for _, v := range from {
		if a.view == v {
			a.view = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrWrongView, a.view, to)
}

func (a *App) ShowRegister() error { return a.transition([]View{ViewLogin, ViewRegister}, ViewRegister) }
func (a *App) ShowLogin() error    { return a.transition([]View{ViewRegister, ViewLogin}, ViewLogin) }

func (a *App) Register(ctx context.Context, username, password string) error {
	if a.view != ViewRegister {
		return fmt.Errorf("%w: register from %s", ErrWrongView, a.view)
	}
	if _, err := a.client.Register(ctx, username, password); err != nil {
		return a.fail(err, "Registration failed.", "Error during registration.")
	}
	a.view = ViewLogin
	a.Message = "Registration successful! Please log in."
	return nil
}

func (a *App) Login(ctx context.Context, username, password string) error {
	if a.view != ViewLogin {
		return fmt.Errorf("%w: login from %s", ErrWrongView, a.view)
	}
	resp, err := a.client.Login(ctx, username, password)
	if err != nil {
		return a.fail(err, "Login failed.", "Error during login.")
	}
	user := resp.User
	a.session = Session{Token: resp.Token, User: &user}
	if err := a.sessions.Save(a.session); err != nil {
		return err
	}
	a.view = ViewFeed
	a.Message = ""
	return a.Refresh(ctx)
}

func (a *App) Logout() error {
	a.session = Session{}
	a.view = ViewLogin
	a.editingID = ""
	return a.sessions.Clear()
}

// Refresh reloads the full post list.
func (a *App) Refresh(ctx context.Context) error {
	posts, err := a.client.ListPosts(ctx)
	if err != nil {
		a.Message = "Failed to load posts."
		return err
	}
	a.posts = posts
	return nil
}

func (a *App) CreatePost(ctx context.Context, title, content string) error {
	if !a.view.loggedIn() {
		return fmt.Errorf("%w: create post from %s", ErrWrongView, a.view)
	}
	if _, err := a.client.CreatePost(ctx, a.session.Token, title, content); err != nil {
		// create has no ownership check, so any 403 is a rejected token
		if isStatus(err, http.StatusUnauthorized, http.StatusForbidden) {
			return a.expire(err)
		}
		return a.fail(err, "Failed to create post.", "Error creating post.")
	}
	a.Message = "Post created successfully!"
	return a.Refresh(ctx)
}

// BeginEdit loads the post and switches to the editing view.
func (a *App) BeginEdit(ctx context.Context, id string) (Post, error) {
	if a.view != ViewFeed {
		return Post{}, fmt.Errorf("%w: edit from %s", ErrWrongView, a.view)
	}
	p, err := a.client.GetPost(ctx, id)
	if err != nil {
		return Post{}, a.fail(err, "Failed to load post.", "Error loading post.")
	}
	a.editingID = p.ID
	a.view = ViewEditing
	return p, nil
}

func (a *App) CancelEdit() error {
	if err := a.transition([]View{ViewEditing}, ViewFeed); err != nil {
		return err
	}
	a.editingID = ""
	return nil
}

// SaveEdit submits the patch for the post being edited. Nil fields are
// not sent.
func (a *App) SaveEdit(ctx context.Context, title, content *string) error {
	if a.view != ViewEditing {
		return fmt.Errorf("%w: save from %s", ErrWrongView, a.view)
	}
	if _, err := a.client.UpdatePost(ctx, a.session.Token, a.editingID, title, content); err != nil {
		if isStatus(err, http.StatusUnauthorized) {
			return a.expire(err)
		}
		return a.fail(err, "Failed to update post.", "Error updating post.")
	}
	a.Message = "Post updated successfully!"
	a.editingID = ""
	a.view = ViewFeed
	return a.Refresh(ctx)
}

func (a *App) DeletePost(ctx context.Context, id string) error {
	if a.view != ViewFeed {
		return fmt.Errorf("%w: delete from %s", ErrWrongView, a.view)
	}
	if _, err := a.client.DeletePost(ctx, a.session.Token, id); err != nil {
		if isStatus(err, http.StatusUnauthorized) {
			return a.expire(err)
		}
		return a.fail(err, "Failed to delete post.", "Error deleting post.")
	}
	a.Message = "Post deleted successfully!"
	return a.Refresh(ctx)
}

// expire drops the cached session after the server refused it.
func (a *App) expire(cause error) error {
	if err := a.Logout(); err != nil {
		return err
	}
	a.Message = "Your session has expired. Please log in again."
	return cause
}

// fail records a user-visible message: the server's message for API
// errors, otherwise a generic one for network and decoding failures.
func (a *App) fail(err error, apiFallback, netMsg string) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		a.Message = apiErr.Message
		if a.Message == "" {
			a.Message = apiFallback
		}
		return err
	}
	a.Message = netMsg
	return err
}

func isStatus(err error, statuses ...int) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, s := range statuses {
		if apiErr.Status == s {
			return true
		}
	}
	return false
}
