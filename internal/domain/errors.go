package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound classifies errors that send the player to the not-found view.
	ErrNotFound = errors.New("not found")
	// ErrBadRequest classifies rejected requests; terminal like ErrNotFound.
	ErrBadRequest = errors.New("bad request")

	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = fmt.Errorf("quiz %w", ErrNotFound)
	// ErrInvalidQuizID rejects ids that cannot name a quiz.
	ErrInvalidQuizID = fmt.Errorf("%w: invalid quiz id", ErrBadRequest)
	// ErrQuestionSetMismatch rejects tallies that do not line up with the stored quiz.
	ErrQuestionSetMismatch = fmt.Errorf("%w: question sets do not match quiz", ErrBadRequest)
	// ErrInvalidTally rejects negative counters.
	ErrInvalidTally = fmt.Errorf("%w: tally counters must not be negative", ErrBadRequest)
	// ErrMissingQuestionSets rejects a submission without questionSets.
	ErrMissingQuestionSets = fmt.Errorf("%w: questionSets is required", ErrBadRequest)

	// ErrUnsupportedQuizType is returned for quiz types other than Q&A and Poll.
	ErrUnsupportedQuizType = errors.New("unsupported quiz type")
	// ErrEmptyQuiz is returned for quizzes without questions.
	ErrEmptyQuiz = errors.New("quiz has no questions")
	// ErrQuestionWithoutOptions is returned when a question has nothing to pick.
	ErrQuestionWithoutOptions = errors.New("question has no options")
	// ErrInvalidTimer is returned for negative timers.
	ErrInvalidTimer = errors.New("quiz timer must not be negative")
)

// APIError is a non-2xx response from the quiz backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d", e.Status)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Is maps HTTP status codes onto the sentinel classes.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrBadRequest:
		return e.Status == http.StatusBadRequest
	}
	return false
}

// IsTerminal reports whether err should abandon playback for the not-found view.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrBadRequest)
}

// Message returns the user-facing text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
