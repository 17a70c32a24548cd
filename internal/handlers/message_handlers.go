package handlers

import (
	"encoding/json"
	"net/http"

	"gator-post/internal/engine/actors"
	"gator-post/internal/middleware"
	"gator-post/internal/utils"

	"github.com/google/uuid"
)

// SendMessageRequest represents a request to send a direct message. The
// sender is always the authenticated caller, never a request field.
type SendMessageRequest struct {
	ToUsername string `json:"toUsername"`
	Body       string `json:"body"`
}

// MarkReadRequest represents a request to mark a message as read
type MarkReadRequest struct {
	MessageID string `json:"messageId"`
}

// HandleDirectMessages handles sending a message (POST) and fetching a
// single message's detail (GET ?id=)
func (s *Server) HandleDirectMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := middleware.GetUsernameFromContext(r.Context())
		if !ok {
			s.writeAppError(w, utils.NewUnauthorizedError())
			return
		}

		s.Metrics.IncrementRequests()

		switch r.Method {
		case http.MethodPost:
			var req SendMessageRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.writeAppError(w, utils.NewAppError(utils.ErrInvalidInput, "Invalid request body", err))
				return
			}

			msg := &actors.SendDirectMessageMsg{
				FromUsername: caller,
				ToUsername:   req.ToUsername,
				Body:         req.Body,
			}

			future := s.Context.RequestFuture(s.Engine.GetDirectMessageActor(), msg, s.RequestTimeout)
			result, err := future.Result()
			if err != nil {
				s.writeAppError(w, utils.NewActorTimeoutError("direct_message_actor"))
				return
			}

			s.respond(w, result)

		case http.MethodGet:
			idStr := r.URL.Query().Get("id")
			if idStr == "" {
				s.writeAppError(w, utils.NewAppError(utils.ErrInvalidInput, "Message ID required", nil))
				return
			}

			messageID, err := uuid.Parse(idStr)
			if err != nil {
				s.writeAppError(w, utils.NewAppError(utils.ErrInvalidInput, "Invalid message ID", err))
				return
			}

			msg := &actors.GetMessageMsg{MessageID: messageID, Caller: caller}
			future := s.Context.RequestFuture(s.Engine.GetDirectMessageActor(), msg, s.RequestTimeout)
			result, err := future.Result()
			if err != nil {
				s.writeAppError(w, utils.NewActorTimeoutError("direct_message_actor"))
				return
			}

			s.respond(w, result)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleMarkMessageRead marks a message as read on behalf of the caller
func (s *Server) HandleMarkMessageRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		caller, ok := middleware.GetUsernameFromContext(r.Context())
		if !ok {
			s.writeAppError(w, utils.NewUnauthorizedError())
			return
		}

		s.Metrics.IncrementRequests()

		var req MarkReadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeAppError(w, utils.NewAppError(utils.ErrInvalidInput, "Invalid request body", err))
			return
		}

		messageID, err := uuid.Parse(req.MessageID)
		if err != nil {
			s.writeAppError(w, utils.NewAppError(utils.ErrInvalidInput, "Invalid message ID", err))
			return
		}

		msg := &actors.MarkMessageReadMsg{MessageID: messageID, Caller: caller}
		future := s.Context.RequestFuture(s.Engine.GetDirectMessageActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			s.writeAppError(w, utils.NewActorTimeoutError("direct_message_actor"))
			return
		}

		s.respond(w, result)
	}
}

// HandleMessagesFrom lists messages sent by a user. Only that user may
// read their own outbox.
func (s *Server) HandleMessagesFrom() http.HandlerFunc {
	return s.handleMessageList(func(username string) interface{} {
		return &actors.GetMessagesFromMsg{Username: username}
	})
}

// HandleMessagesTo lists messages received by a user. Only that user may
// read their own inbox.
func (s *Server) HandleMessagesTo() http.HandlerFunc {
	return s.handleMessageList(func(username string) interface{} {
		return &actors.GetMessagesToMsg{Username: username}
	})
}

func (s *Server) handleMessageList(makeMsg func(username string) interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		caller, ok := middleware.GetUsernameFromContext(r.Context())
		if !ok {
			s.writeAppError(w, utils.NewUnauthorizedError())
			return
		}

		s.Metrics.IncrementRequests()

		username := r.URL.Query().Get("username")
		if username == "" {
			username = caller
		}
		if username != caller {
			s.writeAppError(w, utils.NewUnauthorizedError())
			return
		}

		future := s.Context.RequestFuture(s.Engine.GetDirectMessageActor(), makeMsg(username), s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			s.writeAppError(w, utils.NewActorTimeoutError("direct_message_actor"))
			return
		}

		s.respond(w, result)
	}
}
