package app_test

import (
	"testing"
	"time"

	"playquiz/internal/app"
	"playquiz/internal/infra/memory"
	"playquiz/internal/playback"
)

func TestPlaybackSessionResumeAndExpiry(t *testing.T) {
	service, _ := newTestService()
	sessions := memory.NewSessionStore()
	playbackService := app.NewPlaybackService(service, sessions, 50*time.Millisecond)

	session := playbackService.Start("quiz-1")
	updates, cancel := session.Player.Subscribe()
	defer cancel()
	waitPhase(t, updates, playback.PhasePlaying)

	playbackService.Detach(session)
	resumed, ok := playbackService.Attach(session.ID, "quiz-1")
	if !ok || resumed != session {
		t.Fatalf("expected to resume session %s", session.ID)
	}
	if _, ok := playbackService.Attach(session.ID, "other-quiz"); ok {
		t.Fatalf("session must not attach to another quiz")
	}

	playbackService.Detach(resumed)
	deadline := time.Now().Add(5 * time.Second)
	for sessions.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if sessions.Len() != 0 {
		t.Fatalf("expected session to expire after grace period")
	}
	if _, ok := playbackService.Attach(session.ID, "quiz-1"); ok {
		t.Fatalf("expired session must not be resumable")
	}
}

func waitPhase(t *testing.T, updates <-chan playback.State, phase playback.Phase) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case s, ok := <-updates:
			if !ok {
				t.Fatalf("updates closed before %s", phase)
			}
			if s.Phase == phase {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", phase)
		}
	}
}
