package playback

import (
	"playquiz/internal/domain"
)

// NoSelection is the Selected value when no option is picked.
const NoSelection = -1

// Phase is the playback lifecycle stage.
type Phase int

const (
	PhaseLoading Phase = iota
	PhasePlaying
	PhaseSubmitting
	PhaseResult
	PhaseNotFound
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhasePlaying:
		return "playing"
	case PhaseSubmitting:
		return "submitting"
	case PhaseResult:
		return "result"
	case PhaseNotFound:
		return "not_found"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether playback has nothing left to do in this phase.
func (p Phase) Terminal() bool {
	return p == PhaseResult || p == PhaseNotFound || p == PhaseFailed
}

// ResultKind selects which result view is shown after the last question.
type ResultKind int

const (
	ResultNone ResultKind = iota
	ResultQnA
	ResultPoll
)

func (k ResultKind) String() string {
	switch k {
	case ResultQnA:
		return "qna"
	case ResultPoll:
		return "poll"
	}
	return ""
}

// State is an immutable playback snapshot. Reduce never mutates a State it
// receives; questions are replaced copy-on-write.
type State struct {
	Phase     Phase
	Current   int
	Selected  int
	Remaining int
	TimerOn   bool
	Score     int
	Busy      bool
	Result    ResultKind
	Notice    string

	quiz    domain.Quiz
	handler tallyHandler
}

// Initial is the state before the quiz has been fetched.
func Initial() State {
	return State{Phase: PhaseLoading, Selected: NoSelection}
}

// Total is the number of questions, 0 before load.
func (s State) Total() int {
	return len(s.quiz.Questions)
}

// Quiz returns a deep copy of the quiz as tallied so far.
func (s State) Quiz() domain.Quiz {
	return s.quiz.Clone()
}

// Question returns a copy of question i.
func (s State) Question(i int) (domain.Question, bool) {
	if i < 0 || i >= len(s.quiz.Questions) {
		return domain.Question{}, false
	}
	return s.quiz.Questions[i].Clone(), true
}

// Last reports whether the current question is the final one.
func (s State) Last() bool {
	return s.Current == len(s.quiz.Questions)-1
}

// Reduce applies a to s and returns the next snapshot plus the effects to run.
func Reduce(s State, a Action) (State, []Effect) {
	switch a := a.(type) {
	case Loaded:
		return s.loaded(a.Quiz)
	case LoadFailed:
		if s.Phase != PhaseLoading {
			return s, nil
		}
		return s.fail(a.Err, PhaseFailed)
	case Select:
		if s.Phase != PhasePlaying || a.Question != s.Current {
			return s, nil
		}
		if a.Option < 0 || a.Option >= len(s.quiz.Questions[s.Current].Options) {
			return s, nil
		}
		s.Selected = a.Option
		return s, nil
	case Next:
		if s.Phase != PhasePlaying || a.Question != s.Current {
			return s, nil
		}
		return s.advance()
	case Tick:
		if s.Phase != PhasePlaying || !s.TimerOn || a.Question != s.Current {
			return s, nil
		}
		s.Remaining--
		if s.Remaining > 0 {
			return s, nil
		}
		s.Remaining = 0
		return s.advance()
	case SubmitSucceeded:
		if s.Phase != PhaseSubmitting || !s.Busy {
			return s, nil
		}
		s.Phase = PhaseResult
		s.Busy = false
		s.Notice = ""
		return s, nil
	case SubmitFailed:
		if s.Phase != PhaseSubmitting || !s.Busy {
			return s, nil
		}
		s.Busy = false
		return s.fail(a.Err, PhaseSubmitting)
	case Retry:
		if s.Phase != PhaseSubmitting || s.Busy {
			return s, nil
		}
		s.Busy = true
		s.Notice = ""
		return s, []Effect{Submit{QuestionSets: domain.CloneQuestions(s.quiz.Questions)}}
	}
	return s, nil
}

func (s State) loaded(quiz domain.Quiz) (State, []Effect) {
	if s.Phase != PhaseLoading {
		return s, nil
	}
	if err := quiz.Validate(); err != nil {
		return s.fail(err, PhaseFailed)
	}
	handler, err := handlerFor(quiz.Type)
	if err != nil {
		return s.fail(err, PhaseFailed)
	}

	s.quiz = quiz.Clone()
	s.handler = handler
	s.Phase = PhasePlaying
	s.Current = 0
	s.Selected = NoSelection
	s.Notice = ""
	if !handler.timed(quiz) {
		return s, nil
	}
	s.TimerOn = true
	s.Remaining = quiz.Timer
	return s, []Effect{StartTimer{Question: 0, Seconds: quiz.Timer}}
}

// advance records the current question exactly once and moves on.
func (s State) advance() (State, []Effect) {
	recorded, scored := s.handler.record(s.quiz.Questions[s.Current], s.Selected)
	if scored {
		s.Score++
	}
	questions := make([]domain.Question, len(s.quiz.Questions))
	copy(questions, s.quiz.Questions)
	questions[s.Current] = recorded
	s.quiz.Questions = questions
	s.Selected = NoSelection

	if !s.Last() {
		s.Current++
		if !s.TimerOn {
			return s, nil
		}
		s.Remaining = s.quiz.Timer
		return s, []Effect{StartTimer{Question: s.Current, Seconds: s.quiz.Timer}}
	}

	var effects []Effect
	if s.TimerOn {
		effects = append(effects, StopTimer{})
	}
	s.TimerOn = false
	s.Remaining = 0
	s.Phase = PhaseSubmitting
	s.Result = s.handler.result()
	s.Busy = true
	effects = append(effects, Submit{QuestionSets: domain.CloneQuestions(s.quiz.Questions)})
	return s, effects
}

// fail routes err: terminal errors redirect, others leave a notice in phase.
func (s State) fail(err error, phase Phase) (State, []Effect) {
	if domain.IsTerminal(err) {
		var effects []Effect
		if s.TimerOn {
			effects = append(effects, StopTimer{})
		}
		s.TimerOn = false
		s.Busy = false
		s.Phase = PhaseNotFound
		s.Result = ResultNone
		return s, append(effects, Redirect{})
	}
	s.Phase = phase
	s.Notice = domain.Message(err)
	return s, nil
}
