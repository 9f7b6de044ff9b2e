package main

import (
	"net/http"
)

// --------- DTOs ---------

type authReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type loginResp struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

func toUserDTO(u User) userDTO {
	return userDTO{ID: u.ID, Username: u.Username}
}

// --------- Handlers ---------

// POST /api/register
func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in authReq
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	u, err := s.auth.Register(r.Context(), in.Username, in.Password)
	if err != nil {
		s.writeErrorWith(w, r, err, "Error registering user.")
		return
	}
	s.log.Info("user registered", "userId", u.ID, "username", u.Username)
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully."})
}

// POST /api/login
func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in authReq
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	tok, u, err := s.auth.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		s.writeErrorWith(w, r, err, "Error during login.")
		return
	}
	writeJSON(w, http.StatusOK, loginResp{Token: tok, User: toUserDTO(u)})
}
