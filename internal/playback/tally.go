package playback

import "playquiz/internal/domain"

// tallyHandler is the per-quiz-type recording policy, picked once when the quiz loads.
type tallyHandler interface {
	// record applies the outcome for question q with the given selection
	// (NoSelection when nothing was picked) and reports whether it scored.
	record(q domain.Question, selected int) (domain.Question, bool)
	timed(quiz domain.Quiz) bool
	result() ResultKind
}

func handlerFor(t domain.QuizType) (tallyHandler, error) {
	switch t {
	case domain.QuizTypeQnA:
		return qnaHandler{}, nil
	case domain.QuizTypePoll:
		return pollHandler{}, nil
	}
	return nil, domain.ErrUnsupportedQuizType
}

type qnaHandler struct{}

func (qnaHandler) record(q domain.Question, selected int) (domain.Question, bool) {
	if selected == NoSelection {
		q.TotalIncorrect++
		return q, false
	}
	q.TotalAttempted++
	if q.Options[selected].IsCorrectAnswer {
		q.TotalCorrect++
		return q, true
	}
	q.TotalIncorrect++
	return q, false
}

func (qnaHandler) timed(quiz domain.Quiz) bool { return quiz.Timer > 0 }

func (qnaHandler) result() ResultKind { return ResultQnA }

type pollHandler struct{}

func (pollHandler) record(q domain.Question, selected int) (domain.Question, bool) {
	if selected == NoSelection {
		return q, false
	}
	q = q.Clone()
	q.Options[selected].PollCount++
	return q, false
}

func (pollHandler) timed(domain.Quiz) bool { return false }

func (pollHandler) result() ResultKind { return ResultPoll }
