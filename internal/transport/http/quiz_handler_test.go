package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"playquiz/internal/app"
	"playquiz/internal/client"
	"playquiz/internal/domain"
	"playquiz/internal/infra/memory"
)

func TestGetQuiz(t *testing.T) {
	server, _ := newQuizServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/playQuiz/quiz-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Quiz map[string]any `json:"quiz"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Quiz["quizType"] != "Q&A" || body.Quiz["questionSets"] == nil {
		t.Fatalf("unexpected body %+v", body.Quiz)
	}
}

func TestQuizHandlerErrors(t *testing.T) {
	server, _ := newQuizServer()
	defer server.Close()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "unknown quiz", method: http.MethodGet, path: "/playQuiz/missing", status: http.StatusNotFound},
		{name: "bad id", method: http.MethodGet, path: "/playQuiz/bad%20id", status: http.StatusBadRequest},
		{name: "bad body", method: http.MethodPut, path: "/playQuiz/quiz-1", body: `{"questionSets":`, status: http.StatusBadRequest},
		{name: "missing sets", method: http.MethodPut, path: "/playQuiz/quiz-1", body: `{}`, status: http.StatusBadRequest},
		{name: "mismatch", method: http.MethodPut, path: "/playQuiz/quiz-1", body: `{"questionSets":[]}`, status: http.StatusBadRequest},
		{name: "put unknown", method: http.MethodPut, path: "/playQuiz/missing", body: `{"questionSets":[]}`, status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, server.URL+tt.path, strings.NewReader(tt.body))
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.StatusCode)
			}
			var body messageResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Message == "" {
				t.Fatalf("expected message body, got %+v (%v)", body, err)
			}
		})
	}
}

func TestClientRoundTrip(t *testing.T) {
	server, store := newQuizServer()
	defer server.Close()

	ctx := context.Background()
	c := client.New(server.URL)
	quiz, err := c.FetchQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	quiz.Questions[0].TotalAttempted++
	quiz.Questions[0].TotalCorrect++
	if err := c.SubmitTallies(ctx, "quiz-1", quiz.Questions); err != nil {
		t.Fatalf("submit: %v", err)
	}

	saved, _ := store.LoadQuiz(ctx, "quiz-1")
	if saved.Questions[0].TotalCorrect != 1 || saved.Questions[0].TotalAttempted != 1 {
		t.Fatalf("expected tallies persisted, got %+v", saved.Questions[0])
	}

	_, err = c.FetchQuiz(ctx, "missing")
	if !domain.IsTerminal(err) || domain.Message(err) != "quiz not found" {
		t.Fatalf("expected terminal not-found error, got %v", err)
	}
}

func newQuizServer() (*httptest.Server, *memory.QuizStore) {
	store := memory.NewQuizStore(sampleQuiz(), samplePoll())
	service := app.NewTallyService(memory.NewQuizRepository(store, time.Minute))
	mux := http.NewServeMux()
	NewQuizHandler(service).Register(mux)
	return httptest.NewServer(mux), store
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:   "quiz-1",
		Type: domain.QuizTypeQnA,
		Questions: []domain.Question{
			{
				ID:     "q1",
				Prompt: "What is 2 + 2?",
				Options: []domain.Option{
					{ID: "o1", Text: "3"},
					{ID: "o2", Text: "4", IsCorrectAnswer: true},
					{ID: "o3", Text: "5"},
				},
			},
		},
	}
}

func samplePoll() domain.Quiz {
	return domain.Quiz{
		ID:   "poll-1",
		Type: domain.QuizTypePoll,
		Questions: []domain.Question{
			{
				ID:     "p1",
				Prompt: "Best editor?",
				Options: []domain.Option{
					{ID: "o1", Text: "vim"},
					{ID: "o2", Text: "emacs"},
				},
			},
		},
	}
}
