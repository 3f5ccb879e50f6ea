package http

import (
	"net/http"

	"pocketpal/internal/core"
)

type signupRequest struct {
	Name     string `json:"name"`
	Contact  string `json:"contact"`
	Password string `json:"password"`
}

type loginRequest struct {
	Contact  string `json:"contact"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	u, sess, err := s.sessions.Signup(r.Context(), req.Name, req.Contact, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: sess.Token, User: toUserDTO(u)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	u, sess, err := s.sessions.Login(r.Context(), req.Contact, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: sess.Token, User: toUserDTO(u)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(r.Context(), bearerToken(r)); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessionRestore(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toUserDTO(requestUser(r)))
}

type settingsRequest struct {
	PocketMoney        *string `json:"pocket_money"`
	SavingsGoalPercent *int    `json:"savings_goal_percent"`
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	u := requestUser(r)

	// Omitted fields keep their stored value; "0" is a valid pocket money.
	pocket := u.PocketMoney
	if req.PocketMoney != nil {
		cents, err := core.ParseDecimalToCentsAllowZero(*req.PocketMoney)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		pocket = core.Money{Cents: cents}
	}
	percent := u.SavingsGoalPercent
	if req.SavingsGoalPercent != nil {
		percent = *req.SavingsGoalPercent
	}

	if err := s.sessions.UpdateSettings(r.Context(), u.ID, pocket, percent); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.insights.InvalidateUser(u.ID)

	u.PocketMoney = pocket
	u.SavingsGoalPercent = percent
	writeJSON(w, http.StatusOK, toUserDTO(u))
}
