package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/abhisek/olive/internal/tutor"
)

// Frame types sent to chat socket clients.
const (
	FrameSubmitted = "submitted"
	FrameDelta     = "delta"
	FrameDone      = "done"
	FrameError     = "error"
)

// Frame is one server-to-client chat socket message.
type Frame struct {
	Type             string `json:"type"`
	Delta            string `json:"delta,omitempty"`
	Partial          string `json:"partial,omitempty"`
	Reply            string `json:"reply,omitempty"`
	LessonsCompleted int    `json:"lessons_completed,omitempty"`
	JustUnlocked     bool   `json:"just_unlocked,omitempty"`
	Error            string `json:"error,omitempty"`
}

// serveChatSocket runs turns sent as {"mode": "chat"|"study", "text": ...}
// and streams each one back as submitted, delta... and done frames.
// Turns on one socket run strictly one after another.
func (s *Server) serveChatSocket(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.allowedOrigins,
	})
	if err != nil {
		s.logger.Warn("websocket accept", "user", userID, "err", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	s.logger.Debug("chat socket open", "user", userID)

	for {
		var req chatRequest
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway ||
				errors.Is(err, context.Canceled) {
				s.logger.Debug("chat socket closed", "user", userID)
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			s.logger.Warn("chat socket read", "user", userID, "err", err)
			conn.Close(websocket.StatusUnsupportedData, "invalid message")
			return
		}

		send := func(f Frame) {
			if err := wsjson.Write(ctx, conn, f); err != nil {
				s.logger.Debug("chat socket write", "user", userID, "err", err)
			}
		}

		// Looked up per turn so the hub sees the learner as active.
		res, err := s.runTurn(r, s.session(r), req, func(ev tutor.Event) {
			switch ev.Phase {
			case tutor.Submitted:
				send(Frame{Type: FrameSubmitted})
			case tutor.Streaming:
				send(Frame{Type: FrameDelta, Delta: ev.Delta, Partial: ev.Partial})
			}
		})
		if err != nil {
			send(Frame{Type: FrameError, Error: err.Error()})
			continue
		}

		done := chatResponseOf(res)
		send(Frame{
			Type:             FrameDone,
			Reply:            done.Reply.Content,
			LessonsCompleted: done.LessonsCompleted,
			JustUnlocked:     done.JustUnlocked,
			Error:            done.Error,
		})
	}
}
