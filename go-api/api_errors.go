package main

import (
	"errors"
	"net/http"
)

type apiError struct {
	status int
	msg    string
}

var knownErrors = []struct {
	err error
	apiError
}{
	{ErrMissingCredentials, apiError{http.StatusBadRequest, "Username and password are required."}},
	{ErrMissingPostFields, apiError{http.StatusBadRequest, "Title and content are required."}},
	{ErrDuplicateUsername, apiError{http.StatusConflict, "Username already exists."}},
	{ErrInvalidCredentials, apiError{http.StatusUnauthorized, "Invalid username or password."}},
	{ErrMissingToken, apiError{http.StatusUnauthorized, "Authentication token missing."}},
	{ErrInvalidToken, apiError{http.StatusForbidden, "Invalid or expired token."}},
	{ErrExpiredToken, apiError{http.StatusForbidden, "Invalid or expired token."}},
	{ErrPostNotFound, apiError{http.StatusNotFound, "Post not found."}},
	{ErrForbidden, apiError{http.StatusForbidden, "You are not authorized to modify this post."}},
}

// writeError maps a domain error to its status and message. Anything
// unrecognized is logged and reported as a generic 500.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.writeErrorWith(w, r, err, "Internal server error.")
}

func (s *server) writeErrorWith(w http.ResponseWriter, r *http.Request, err error, internalMsg string) {
	for _, k := range knownErrors {
		if errors.Is(err, k.err) {
			errorJSON(w, k.status, k.msg)
			return
		}
	}
	s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	errorJSON(w, http.StatusInternalServerError, internalMsg)
}
