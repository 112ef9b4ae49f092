package playback

import (
	"context"
	"sync"
	"time"

	"playquiz/internal/domain"
)

// Backend is the quiz API the player talks to (REST client or in-process service).
type Backend interface {
	FetchQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	SubmitTallies(ctx context.Context, quizID string, questionSets []domain.Question) error
}

// Ticker is the countdown clock; NewTicker is the production implementation.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type stdTicker struct {
	t *time.Ticker
}

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

// NewTicker wraps time.NewTicker.
func NewTicker(d time.Duration) Ticker {
	return stdTicker{t: time.NewTicker(d)}
}

// Option configures a Player.
type Option func(*Player)

// WithTicker replaces the countdown clock, mainly for tests.
func WithTicker(newTicker func(time.Duration) Ticker) Option {
	return func(p *Player) { p.newTicker = newTicker }
}

// Player drives one play-through of a quiz. Run owns the state; the
// command methods may be called from any goroutine.
type Player struct {
	backend   Backend
	quizID    string
	newTicker func(time.Duration) Ticker

	actions chan Action
	results chan Action
	done    chan struct{}

	mu          sync.RWMutex
	state       State
	subscribers map[chan State]struct{}
	finished    bool
}

func NewPlayer(backend Backend, quizID string, opts ...Option) *Player {
	p := &Player{
		backend:     backend,
		quizID:      quizID,
		newTicker:   NewTicker,
		actions:     make(chan Action, 16),
		results:     make(chan Action, 1),
		done:        make(chan struct{}),
		state:       Initial(),
		subscribers: make(map[chan State]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// QuizID is the id this player was created for.
func (p *Player) QuizID() string {
	return p.quizID
}

// Select picks option of question.
func (p *Player) Select(question, option int) {
	p.dispatch(Select{Question: question, Option: option})
}

// Next advances past question.
func (p *Player) Next(question int) {
	p.dispatch(Next{Question: question})
}

// Retry re-sends a submission that failed.
func (p *Player) Retry() {
	p.dispatch(Retry{})
}

func (p *Player) dispatch(a Action) {
	select {
	case p.actions <- a:
	case <-p.done:
	}
}

// Snapshot returns the current state.
func (p *Player) Snapshot() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Subscribe returns a channel that receives every new snapshot, starting with
// the current one. The channel is closed when Run returns; cancel detaches early.
func (p *Player) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 8)

	p.mu.Lock()
	ch <- p.state
	if p.finished {
		close(ch)
		p.mu.Unlock()
		return ch, func() {}
	}
	p.subscribers[ch] = struct{}{}
	p.mu.Unlock()

	cancel := func() {
		p.mu.Lock()
		if _, ok := p.subscribers[ch]; ok {
			delete(p.subscribers, ch)
			close(ch)
		}
		p.mu.Unlock()
	}
	return ch, cancel
}

// Run fetches the quiz and plays it until a terminal phase is reached or ctx
// is cancelled. The returned error is ctx.Err() on cancellation.
func (p *Player) Run(ctx context.Context) (State, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer p.finish()

	var (
		ticker        Ticker
		tickC         <-chan time.Time
		timerQuestion int
	)
	stopTimer := func() {
		if ticker != nil {
			ticker.Stop()
		}
		ticker, tickC = nil, nil
	}
	defer stopTimer()

	go func() {
		quiz, err := p.backend.FetchQuiz(ctx, p.quizID)
		var a Action = Loaded{Quiz: quiz}
		if err != nil {
			a = LoadFailed{Err: err}
		}
		p.report(ctx, a)
	}()

	apply := func(a Action) State {
		next, effects := Reduce(p.Snapshot(), a)
		for _, eff := range effects {
			switch eff := eff.(type) {
			case StartTimer:
				stopTimer()
				ticker = p.newTicker(time.Second)
				tickC = ticker.C()
				timerQuestion = eff.Question
			case StopTimer:
				stopTimer()
			case Submit:
				go func(sets []domain.Question) {
					var a Action = SubmitSucceeded{}
					if err := p.backend.SubmitTallies(ctx, p.quizID, sets); err != nil {
						a = SubmitFailed{Err: err}
					}
					p.report(ctx, a)
				}(eff.QuestionSets)
			case Redirect:
				stopTimer()
			}
		}
		p.publish(next)
		return next
	}

	for {
		var a Action
		// A user action already queued wins over a tick that is ready at the same time.
		select {
		case a = <-p.actions:
		default:
			select {
			case <-ctx.Done():
				return p.Snapshot(), ctx.Err()
			case a = <-p.actions:
			case a = <-p.results:
			case <-tickC:
				a = Tick{Question: timerQuestion}
			}
		}
		if state := apply(a); state.Phase.Terminal() {
			return state, nil
		}
	}
}

func (p *Player) report(ctx context.Context, a Action) {
	select {
	case p.results <- a:
	case <-ctx.Done():
	}
}

func (p *Player) publish(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = s
	for ch := range p.subscribers {
		select {
		case ch <- s:
		default:
			// drop the oldest snapshot so slow readers still see the latest one
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}

func (p *Player) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}
	p.finished = true
	close(p.done)
	for ch := range p.subscribers {
		delete(p.subscribers, ch)
		close(ch)
	}
}
