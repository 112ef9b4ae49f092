package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"playquiz/internal/domain"
)

// TallyBackend is what the REST handler serves.
type TallyBackend interface {
	FetchQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	SubmitTallies(ctx context.Context, quizID string, questionSets []domain.Question) error
}

// QuizHandler serves GET and PUT /playQuiz/{id}.
type QuizHandler struct {
	backend TallyBackend
}

func NewQuizHandler(backend TallyBackend) *QuizHandler {
	return &QuizHandler{backend: backend}
}

type quizResponse struct {
	Quiz domain.Quiz `json:"quiz"`
}

type submitRequest struct {
	QuestionSets []domain.Question `json:"questionSets"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register mounts the endpoints on mux.
func (h *QuizHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /playQuiz/{id}", h.GetQuiz)
	mux.HandleFunc("PUT /playQuiz/{id}", h.PutTallies)
}

func (h *QuizHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.backend.FetchQuiz(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizResponse{Quiz: quiz})
}

func (h *QuizHandler) PutTallies(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid request body"})
		return
	}
	if err := h.backend.SubmitTallies(r.Context(), r.PathValue("id"), req.QuestionSets); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Quiz tallies recorded"})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, messageResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrBadRequest):
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: err.Error()})
	default:
		log.Printf("request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Something went wrong, please try again"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}
