package playback

import "playquiz/internal/domain"

// Action is an input to Reduce. User and timer actions carry the index of the
// question they target; actions for a question that is no longer current are dropped.
type Action interface {
	action()
}

// Loaded delivers the fetched quiz.
type Loaded struct {
	Quiz domain.Quiz
}

// LoadFailed reports a failed fetch.
type LoadFailed struct {
	Err error
}

// Select marks an option of the current question.
type Select struct {
	Question int
	Option   int
}

// Next is the user's explicit advance.
type Next struct {
	Question int
}

// Tick is one second of countdown for Question.
type Tick struct {
	Question int
}

// SubmitSucceeded acknowledges persistence of the tallies.
type SubmitSucceeded struct{}

// SubmitFailed reports a rejected or failed submission.
type SubmitFailed struct {
	Err error
}

// Retry re-fires a submission that failed with a recoverable error.
type Retry struct{}

func (Loaded) action()          {}
func (LoadFailed) action()      {}
func (Select) action()          {}
func (Next) action()            {}
func (Tick) action()            {}
func (SubmitSucceeded) action() {}
func (SubmitFailed) action()    {}
func (Retry) action()           {}

// Effect is a side effect requested by Reduce and carried out by the Player.
type Effect interface {
	effect()
}

// StartTimer (re)starts the countdown for Question.
type StartTimer struct {
	Question int
	Seconds  int
}

// StopTimer cancels the countdown.
type StopTimer struct{}

// Submit sends the final tallies to the backend.
type Submit struct {
	QuestionSets []domain.Question
}

// Redirect leaves playback for the not-found view.
type Redirect struct{}

func (StartTimer) effect() {}
func (StopTimer) effect()  {}
func (Submit) effect()     {}
func (Redirect) effect()   {}
