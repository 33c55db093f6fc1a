package http

import (
	"encoding/json"
	"net/http"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/logger"

	"github.com/gorilla/websocket"
)

// WSHandler streams the leaderboard to websocket clients and accepts quiz
// submissions over the same connection.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
	log      *logger.Logger
}

func NewWSHandler(service *app.QuizService, log *logger.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log.With("component", "ws"),
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type submitPayload struct {
	QuizID  string         `json:"quizId"`
	Answers map[int]string `json:"answers"`
}

type submitResult struct {
	AttemptID string `json:"attemptId"`
	Score     int    `json:"score"`
	MaxScore  int    `json:"maxScore"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades the request and pushes a leaderboard snapshot on connect
// and after every finalized attempt.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	updates, cancel, err := h.service.Subscribe(r.Context())
	if err != nil {
		_, msg := statusFor(err)
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: msg}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer; gorilla connections do not support concurrent writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write failed", "error", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "leaderboard", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "refresh":
			lb, err := h.service.Leaderboard(r.Context())
			if err != nil {
				send <- errorMessage(err)
				continue
			}
			send <- outboundMessage[any]{Type: "leaderboard", Payload: lb}
		case "submit":
			var payload submitPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid submit payload"}}
				continue
			}
			res, err := h.service.SubmitQuiz(r.Context(), app.Submission{QuizID: payload.QuizID, Answers: payload.Answers})
			if err != nil {
				send <- errorMessage(err)
				continue
			}
			send <- outboundMessage[any]{Type: "result", Payload: submitResult{
				AttemptID: res.Attempt.ID,
				Score:     res.Attempt.Score,
				MaxScore:  res.Attempt.MaxScore,
			}}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func errorMessage(err error) outboundMessage[any] {
	_, msg := statusFor(err)
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
