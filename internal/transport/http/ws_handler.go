package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"inno-quiz-service/internal/app"
)

// WSHandler serves the play channel. Every inbound message gets exactly one
// reply; nothing is pushed unprompted.
type WSHandler struct {
	engine   *app.ScoringEngine
	identity *Identity
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewWSHandler(engine *app.ScoringEngine, identity *Identity, log *slog.Logger) *WSHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WSHandler{
		engine:   engine,
		identity: identity,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades the request and answers submit and leaderboard messages for
// the quiz named by the quizId query parameter.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}
	username, err := h.identity.Username(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}

		var reply any
		switch inbound.Type {
		case "submit":
			var req submitRequest
			if err := json.Unmarshal(inbound.Payload, &req); err != nil {
				reply = outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "invalid submit payload"}}
				break
			}
			result, err := h.engine.SubmitAttempt(ctx, quizID, username, req.submissions(), req.CompletionTime)
			if err != nil {
				reply = h.errorReply(err)
				break
			}
			reply = outboundMessage[any]{Type: "result", Payload: result}
		case "leaderboard":
			board, err := h.engine.Leaderboard(ctx, quizID)
			if err != nil {
				reply = h.errorReply(err)
				break
			}
			reply = outboundMessage[any]{Type: "leaderboard", Payload: board}
		default:
			reply = outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}

		if err := conn.WriteJSON(reply); err != nil {
			h.log.Debug("ws write failed", slog.String("username", username), slog.Any("error", err))
			return
		}
	}
}

func (h *WSHandler) errorReply(err error) outboundMessage[errorPayload] {
	_, msg := classifyError(h.log, err)
	return outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: msg}}
}
