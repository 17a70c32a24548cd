package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"gator-post/internal/api"
	"gator-post/internal/engine/actors"
	"gator-post/internal/models"
	"gator-post/internal/utils"
)

// RegisterUserRequest represents a request to register a new user
type RegisterUserRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// LoginRequest represents a request to log in a user
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleUserRegistration registers a user and returns a session token
func (s *Server) HandleUserRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		s.Metrics.IncrementRequests()

		var req RegisterUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeAppError(w, utils.NewAppError(utils.ErrInvalidInput, "Invalid request body", err))
			return
		}

		future := s.Context.RequestFuture(
			s.Engine.GetUserSupervisor(),
			&actors.RegisterUserMsg{
				Username:  req.Username,
				Password:  req.Password,
				FirstName: req.FirstName,
				LastName:  req.LastName,
				Phone:     req.Phone,
			},
			s.RequestTimeout,
		)

		result, err := future.Result()
		if err != nil {
			s.writeAppError(w, utils.NewActorTimeoutError("user_supervisor"))
			return
		}

		if appErr, ok := result.(*utils.AppError); ok {
			s.writeAppError(w, appErr)
			return
		}

		summary, ok := result.(*models.UserSummary)
		if !ok {
			log.Printf("HTTP Handler: unexpected registration response type: %T", result)
			s.writeAppError(w, utils.NewAppError(utils.ErrDatabase, "Internal server error", nil))
			return
		}

		// Registration doubles as a first login
		token, err := s.Tokens.GenerateToken(summary.Username)
		if err != nil {
			log.Printf("HTTP Handler: failed to generate token: %v", err)
			s.writeAppError(w, utils.NewAppError(utils.ErrDatabase, "Failed to generate auth token", err))
			return
		}

		writeJSON(w, http.StatusCreated, &api.LoginResponse{
			Success:  true,
			Token:    token,
			Username: summary.Username,
		})
	}
}

// HandleUserLogin verifies credentials and returns a session token
func (s *Server) HandleUserLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		s.Metrics.IncrementRequests()

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeAppError(w, utils.NewAppError(utils.ErrInvalidInput, "Invalid request body", err))
			return
		}

		future := s.Context.RequestFuture(
			s.Engine.GetUserSupervisor(),
			&actors.LoginMsg{
				Username: req.Username,
				Password: req.Password,
			},
			s.RequestTimeout,
		)

		result, err := future.Result()
		if err != nil {
			s.writeAppError(w, utils.NewActorTimeoutError("user_supervisor"))
			return
		}

		loginResp, ok := result.(*api.LoginResponse)
		if !ok {
			log.Printf("HTTP Handler: unexpected login response type: %T", result)
			s.writeAppError(w, utils.NewAppError(utils.ErrDatabase, "Internal server error", nil))
			return
		}

		if !loginResp.Success {
			// Identical response for unknown user and wrong password
			s.writeAppError(w, utils.NewInvalidCredentialsError())
			return
		}

		token, err := s.Tokens.GenerateToken(loginResp.Username)
		if err != nil {
			log.Printf("HTTP Handler: failed to generate token: %v", err)
			s.writeAppError(w, utils.NewAppError(utils.ErrDatabase, "Failed to generate auth token", err))
			return
		}
		loginResp.Token = token

		writeJSON(w, http.StatusOK, loginResp)
	}
}

// HandleUserProfile returns a user's profile
func (s *Server) HandleUserProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		s.Metrics.IncrementRequests()

		username := r.URL.Query().Get("username")
		if username == "" {
			s.writeAppError(w, utils.NewAppError(utils.ErrInvalidInput, "Username required", nil))
			return
		}

		future := s.Context.RequestFuture(
			s.Engine.GetUserSupervisor(),
			&actors.GetUserProfileMsg{Username: username},
			s.RequestTimeout,
		)

		result, err := future.Result()
		if err != nil {
			s.writeAppError(w, utils.NewActorTimeoutError("user_supervisor"))
			return
		}

		s.respond(w, result)
	}
}

// HandleListUsers returns basic info on all users
func (s *Server) HandleListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		s.Metrics.IncrementRequests()

		future := s.Context.RequestFuture(
			s.Engine.GetUserSupervisor(),
			&actors.GetAllUsersMsg{},
			s.RequestTimeout,
		)

		result, err := future.Result()
		if err != nil {
			s.writeAppError(w, utils.NewActorTimeoutError("user_supervisor"))
			return
		}

		s.respond(w, result)
	}
}
