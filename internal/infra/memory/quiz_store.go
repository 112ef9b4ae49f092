package memory

import (
	"context"
	"sync"

	"playquiz/internal/domain"
)

// QuizStore keeps quizzes in a map; used when no database is configured and in tests.
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

func NewQuizStore(quizzes ...domain.Quiz) *QuizStore {
	s := &QuizStore{quizzes: make(map[string]domain.Quiz, len(quizzes))}
	for _, quiz := range quizzes {
		s.quizzes[quiz.ID] = quiz.Clone()
	}
	return s
}

func (s *QuizStore) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if quiz, ok := s.quizzes[quizID]; ok {
		return quiz.Clone(), nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (s *QuizStore) SaveQuestionSets(_ context.Context, quizID string, questionSets []domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	quiz.Questions = domain.CloneQuestions(questionSets)
	s.quizzes[quizID] = quiz
	return nil
}

// Upsert adds or replaces a quiz.
func (s *QuizStore) Upsert(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = quiz.Clone()
	return nil
}
