package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"playquiz/internal/app"
	"playquiz/internal/infra/memory"
)

func TestWebSocketPollFlow(t *testing.T) {
	server, store, _ := newPlayServer()
	defer server.Close()

	conn := dial(t, server, "/ws/play/poll-1")
	defer conn.Close()

	_, payload := readNext(conn, t, "session")
	if payload["id"] == "" || payload["quizId"] != "poll-1" {
		t.Fatalf("unexpected session payload %+v", payload)
	}
	waitSnapshot(t, conn, "playing")

	if err := conn.WriteJSON(map[string]any{"type": "select", "payload": map[string]any{"question": 0, "option": 1}}); err != nil {
		t.Fatalf("write select: %v", err)
	}
	if err := conn.WriteJSON(map[string]any{"type": "next", "payload": map[string]any{"question": 0}}); err != nil {
		t.Fatalf("write next: %v", err)
	}

	result := waitSnapshot(t, conn, "result")
	res, _ := result["result"].(map[string]any)
	if res["kind"] != "poll" {
		t.Fatalf("expected poll result, got %+v", result)
	}

	saved, _ := store.LoadQuiz(context.Background(), "poll-1")
	if saved.Questions[0].Options[1].PollCount != 1 {
		t.Fatalf("expected persisted poll count, got %+v", saved.Questions[0])
	}
}

func TestWebSocketUnknownQuizRedirects(t *testing.T) {
	server, _, _ := newPlayServer()
	defer server.Close()

	conn := dial(t, server, "/ws/play/missing")
	defer conn.Close()

	readNext(conn, t, "session")
	for {
		typ, payload := readNext(conn, t, "")
		if typ == "redirect" {
			if payload["to"] != NotFoundPath {
				t.Fatalf("unexpected redirect %+v", payload)
			}
			return
		}
	}
}

func TestWebSocketResumeSession(t *testing.T) {
	server, _, sessions := newPlayServer()
	defer server.Close()

	first := dial(t, server, "/ws/play/quiz-1")
	_, payload := readNext(first, t, "session")
	sessionID, _ := payload["id"].(string)
	waitSnapshot(t, first, "playing")
	if err := first.WriteJSON(map[string]any{"type": "select", "payload": map[string]any{"question": 0, "option": 2}}); err != nil {
		t.Fatalf("write select: %v", err)
	}
	waitFor(t, first, func(v map[string]any) bool {
		opts, _ := v["options"].([]any)
		if len(opts) < 3 {
			return false
		}
		opt, _ := opts[2].(map[string]any)
		return opt["selected"] == true
	})
	first.Close()

	second := dial(t, server, "/ws/play/quiz-1?session="+sessionID)
	defer second.Close()
	_, payload = readNext(second, t, "session")
	if payload["id"] != sessionID {
		t.Fatalf("expected resumed session %s, got %+v", sessionID, payload)
	}
	_, snap := readNext(second, t, "snapshot")
	opts, _ := snap["options"].([]any)
	if len(opts) != 3 || opts[2].(map[string]any)["selected"] != true {
		t.Fatalf("expected selection to survive reconnect, got %+v", snap)
	}
	if sessions.Len() != 1 {
		t.Fatalf("expected exactly one live session, got %d", sessions.Len())
	}
}

func newPlayServer() (*httptest.Server, *memory.QuizStore, *memory.SessionStore) {
	store := memory.NewQuizStore(sampleQuiz(), samplePoll())
	service := app.NewTallyService(memory.NewQuizRepository(store, time.Minute))
	sessions := memory.NewSessionStore()
	playbackService := app.NewPlaybackService(service, sessions, time.Minute)

	mux := http.NewServeMux()
	NewPlayHandler(playbackService).Register(mux)
	return httptest.NewServer(mux), store, sessions
}

func dial(t *testing.T, server *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + path
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func waitSnapshot(t *testing.T, conn *websocket.Conn, phase string) map[string]any {
	t.Helper()
	return waitFor(t, conn, func(v map[string]any) bool { return v["phase"] == phase })
}

func waitFor(t *testing.T, conn *websocket.Conn, cond func(map[string]any) bool) map[string]any {
	t.Helper()
	for i := 0; i < 20; i++ {
		typ, payload := readNext(conn, t, "")
		if typ == "snapshot" && cond(payload) {
			return payload
		}
	}
	t.Fatalf("condition not met")
	return nil
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
