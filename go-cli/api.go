package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const dialTimeout = 10 * time.Second
const reqTimeout = 30 * time.Second

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type Post struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	AuthorID       string `json:"authorId"`
	AuthorUsername string `json:"authorUsername"`
	DatePosted     string `json:"date_posted"`
}

type AuthorStat struct {
	AuthorID       string `json:"authorId"`
	AuthorUsername string `json:"authorUsername"`
	Posts          int    `json:"posts"`
	LastPosted     string `json:"lastPosted"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Client talks to the postboard HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	netDialer := &net.Dialer{Timeout: dialTimeout}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: &http.Transport{DialContext: netDialer.DialContext},
			Timeout:   reqTimeout,
		},
	}
}

func (c *Client) Register(ctx context.Context, username, password string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodPost, "/register", "", map[string]string{"username": username, "password": password}, &out)
	return out.Message, err
}

func (c *Client) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	var out LoginResponse
	err := c.do(ctx, http.MethodPost, "/login", "", map[string]string{"username": username, "password": password}, &out)
	return out, err
}

func (c *Client) ListPosts(ctx context.Context) ([]Post, error) {
	var out []Post
	err := c.do(ctx, http.MethodGet, "/posts", "", nil, &out)
	return out, err
}

func (c *Client) GetPost(ctx context.Context, id string) (Post, error) {
	var out Post
	err := c.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(id), "", nil, &out)
	return out, err
}

func (c *Client) CreatePost(ctx context.Context, token, title, content string) (Post, error) {
	var out Post
	err := c.do(ctx, http.MethodPost, "/posts", token, map[string]string{"title": title, "content": content}, &out)
	return out, err
}

// UpdatePost sends only the non-nil fields.
func (c *Client) UpdatePost(ctx context.Context, token, id string, title, content *string) (Post, error) {
	patch := map[string]string{}
	if title != nil {
		patch["title"] = *title
	}
	if content != nil {
		patch["content"] = *content
	}
	var out Post
	err := c.do(ctx, http.MethodPut, "/posts/"+url.PathEscape(id), token, patch, &out)
	return out, err
}

func (c *Client) DeletePost(ctx context.Context, token, id string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(id), token, nil, &out)
	return out.Message, err
}

func (c *Client) Stats(ctx context.Context) ([]AuthorStat, error) {
	var out struct {
		Stats []AuthorStat `json:"stats"`
	}
	err := c.do(ctx, http.MethodGet, "/stats", "", nil, &out)
	return out.Stats, err
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("error marshalling request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("error building request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		errBody, _ := io.ReadAll(resp.Body)
		return decodeAPIError(resp.StatusCode, errBody)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == "" {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(status)
		}
		return &APIError{Status: status, Message: msg}
	}
	return &APIError{Status: status, Message: payload.Message}
}
