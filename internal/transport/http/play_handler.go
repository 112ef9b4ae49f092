package http

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"playquiz/internal/app"
	"playquiz/internal/playback"
)

// NotFoundPath is where clients are redirected when a quiz cannot be played.
const NotFoundPath = "/notFound"

// PlayHandler runs live play-throughs over a websocket.
type PlayHandler struct {
	service  *app.PlaybackService
	upgrader websocket.Upgrader
}

func NewPlayHandler(service *app.PlaybackService) *PlayHandler {
	return &PlayHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Register mounts the websocket endpoint on mux.
func (h *PlayHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/play/{id}", h.ServePlay)
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Question int `json:"question"`
	Option   int `json:"option"`
}

type nextPayload struct {
	Question int `json:"question"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type sessionPayload struct {
	ID     string `json:"id"`
	QuizID string `json:"quizId"`
}

type redirectPayload struct {
	To string `json:"to"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServePlay upgrades the request and attaches it to a playback session,
// resuming ?session=<id> when that session is still running.
func (h *PlayHandler) ServePlay(w http.ResponseWriter, r *http.Request) {
	quizID := r.PathValue("id")
	if quizID == "" {
		http.Error(w, "missing quiz id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session, ok := h.service.Attach(r.URL.Query().Get("session"), quizID)
	if !ok {
		session = h.service.Start(quizID)
	}
	defer h.service.Detach(session)
	log.Printf("session %s attached (quiz %s)", session.ID, quizID)

	updates, cancel := session.Player.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	quit := make(chan struct{})
	writerDone := make(chan struct{})
	forwardDone := make(chan struct{})
	readerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for {
			select {
			case msg := <-send:
				if err := conn.WriteJSON(msg); err != nil {
					log.Printf("ws write error: %v", err)
					return
				}
			case <-quit:
				// flush what is already queued
				for {
					select {
					case msg := <-send:
						if err := conn.WriteJSON(msg); err != nil {
							return
						}
					default:
						return
					}
				}
			}
		}
	}()

	enqueue := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-quit:
		}
	}

	enqueue(outboundMessage[any]{Type: "session", Payload: sessionPayload{ID: session.ID, QuizID: quizID}})

	go func() {
		defer close(forwardDone)
		for {
			select {
			case state, ok := <-updates:
				if !ok {
					return
				}
				enqueue(outboundMessage[any]{Type: "snapshot", Payload: state.View()})
				if state.Phase == playback.PhaseNotFound {
					enqueue(outboundMessage[any]{Type: "redirect", Payload: redirectPayload{To: NotFoundPath}})
				}
			case <-readerDone:
				return
			}
		}
	}()

	go func() {
		defer close(readerDone)
		for {
			var inbound inboundMessage
			if err := conn.ReadJSON(&inbound); err != nil {
				return
			}
			switch inbound.Type {
			case "select":
				var payload selectPayload
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
					enqueue(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid select payload"}})
					continue
				}
				session.Player.Select(payload.Question, payload.Option)
			case "next":
				var payload nextPayload
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
					enqueue(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid next payload"}})
					continue
				}
				session.Player.Next(payload.Question)
			case "retry":
				session.Player.Retry()
			default:
				enqueue(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
			}
		}
	}()

	// Either the play-through ended or the client went away.
	select {
	case <-forwardDone:
	case <-readerDone:
		<-forwardDone
	}
	close(quit)
	<-writerDone

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "playback finished"),
		time.Now().Add(time.Second))
	_ = conn.Close()
	<-readerDone
	log.Printf("session %s detached", session.ID)
}
