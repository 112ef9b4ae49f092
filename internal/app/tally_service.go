package app

import (
	"context"
	"fmt"
	"regexp"

	"playquiz/internal/domain"
)

// QuizRepository loads quiz content (from cache/backing store) and persists tallies.
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	SaveQuestionSets(ctx context.Context, quizID string, questionSets []domain.Question) error
}

var quizIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// TallyService serves quizzes for playing and records the tallies sent back.
// It satisfies playback.Backend, so in-process sessions can play against it directly.
type TallyService struct {
	quizzes QuizRepository
}

func NewTallyService(quizzes QuizRepository) *TallyService {
	return &TallyService{quizzes: quizzes}
}

// FetchQuiz returns the quiz to play.
func (s *TallyService) FetchQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if !quizIDPattern.MatchString(quizID) {
		return domain.Quiz{}, domain.ErrInvalidQuizID
	}
	return s.quizzes.GetQuiz(ctx, quizID)
}

// SubmitTallies persists the counters of a finished play-through. Only the
// tally fields are taken from the submission; prompts, options and answers
// stay as stored.
func (s *TallyService) SubmitTallies(ctx context.Context, quizID string, questionSets []domain.Question) error {
	if !quizIDPattern.MatchString(quizID) {
		return domain.ErrInvalidQuizID
	}
	if questionSets == nil {
		return domain.ErrMissingQuestionSets
	}
	stored, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	merged, err := mergeTallies(stored.Questions, questionSets)
	if err != nil {
		return err
	}
	if err := s.quizzes.SaveQuestionSets(ctx, quizID, merged); err != nil {
		return fmt.Errorf("save tallies for %s: %w", quizID, err)
	}
	return nil
}

func mergeTallies(stored, submitted []domain.Question) ([]domain.Question, error) {
	if len(stored) != len(submitted) {
		return nil, domain.ErrQuestionSetMismatch
	}
	merged := domain.CloneQuestions(stored)
	for i, sub := range submitted {
		q := &merged[i]
		if len(sub.Options) != len(q.Options) {
			return nil, domain.ErrQuestionSetMismatch
		}
		if sub.TotalAttempted < 0 || sub.TotalCorrect < 0 || sub.TotalIncorrect < 0 {
			return nil, domain.ErrInvalidTally
		}
		q.TotalAttempted = sub.TotalAttempted
		q.TotalCorrect = sub.TotalCorrect
		q.TotalIncorrect = sub.TotalIncorrect
		for j, opt := range sub.Options {
			if opt.PollCount < 0 {
				return nil, domain.ErrInvalidTally
			}
			q.Options[j].PollCount = opt.PollCount
		}
	}
	return merged, nil
}
