package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"playquiz/internal/playback"
)

// SessionRepository abstracts where live playback sessions are tracked (in-memory, Redis, etc).
type SessionRepository interface {
	Add(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// Session is one live play-through that frontends attach to.
type Session struct {
	ID     string
	QuizID string
	Player *playback.Player

	cancel   context.CancelFunc
	mu       sync.Mutex
	attached int
	expiry   *time.Timer
}

// PlaybackService runs play-throughs on behalf of remote frontends. A session
// outlives a dropped connection for the grace period so the client can reattach.
type PlaybackService struct {
	backend  playback.Backend
	sessions SessionRepository
	grace    time.Duration
	opts     []playback.Option
}

func NewPlaybackService(backend playback.Backend, sessions SessionRepository, grace time.Duration, opts ...playback.Option) *PlaybackService {
	return &PlaybackService{backend: backend, sessions: sessions, grace: grace, opts: opts}
}

// Start creates a session for quizID, attaches the caller and begins playing.
func (s *PlaybackService) Start(quizID string) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	session := &Session{
		ID:       uuid.NewString(),
		QuizID:   quizID,
		Player:   playback.NewPlayer(s.backend, quizID, s.opts...),
		cancel:   cancel,
		attached: 1,
	}
	s.sessions.Add(session)

	go func() {
		defer s.sessions.Delete(session.ID)
		defer cancel()
		state, err := session.Player.Run(ctx)
		if err != nil {
			log.Printf("session %s (quiz %s) stopped: %v", session.ID, quizID, err)
			return
		}
		log.Printf("session %s (quiz %s) finished: %s", session.ID, quizID, state.Phase)
	}()
	return session
}

// Attach resumes a session that is still running for quizID.
func (s *PlaybackService) Attach(sessionID, quizID string) (*Session, bool) {
	session, ok := s.sessions.Get(sessionID)
	if !ok || session.QuizID != quizID {
		return nil, false
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.expiry != nil {
		session.expiry.Stop()
		session.expiry = nil
	}
	session.attached++
	return session, true
}

// Detach releases the caller; the last detach starts the grace period.
func (s *PlaybackService) Detach(session *Session) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.attached--
	if session.attached > 0 {
		return
	}
	if s.grace <= 0 {
		session.cancel()
		return
	}
	session.expiry = time.AfterFunc(s.grace, session.cancel)
}
