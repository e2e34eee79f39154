package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-wagames/trivia"
)

func startQuiz(t *testing.T, m *Manager, players ...string) *Session {
	t.Helper()
	if err := m.QuizCreate(chat, players[0], "P0", trivia.CategoryTrivia, "easy"); err != nil {
		t.Fatalf("create: %v", err)
	}
	s := m.store.FindByPlayer(players[0])
	if s == nil {
		t.Fatal("no session after create")
	}
	for i, p := range players[1:] {
		if err := m.QuizJoin(chat, p, "P"+itoa(i+1), s.ID); err != nil {
			t.Fatalf("join %s: %v", p, err)
		}
	}
	if err := m.QuizStart(chat, players[0]); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitRound(t, m, s)
	return s
}

// waitRound blocks until the round's question is armed. The question
// fetch runs off the manager lock, so round start is asynchronous.
func waitRound(t *testing.T, m *Manager, s *Session) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		// A very short countdown can already have run the whole game
		ready := s.Quiz.Current != nil || s.State == Terminal
		m.mu.Unlock()
		if ready {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("round never started")
}

func TestQuizCreateValidation(t *testing.T) {
	m, _, _ := newTestManager(testConfig())

	if err := m.QuizCreate(chat, alice, "Alice", "chess", "easy"); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("bad category: want ErrInvalidCategory, got %v", err)
	}
	if err := m.QuizCreate(chat, alice, "Alice", trivia.CategoryMath, "medium"); !errors.Is(err, ErrInvalidDifficulty) {
		t.Errorf("math has no medium: want ErrInvalidDifficulty, got %v", err)
	}
	if err := m.QuizCreate(chat, alice, "Alice", trivia.CategoryTrivia, "easy"); err != nil {
		t.Errorf("valid create failed: %v", err)
	}
}

func TestQuizJoinErrors(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPlayers = 2
	m, _, _ := newTestManager(cfg)

	if err := m.QuizJoin(chat, bob, "Bob", "wcg-NOPE"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("unknown id: want ErrSessionNotFound, got %v", err)
	}

	m.QuizCreate(chat, alice, "Alice", trivia.CategoryTrivia, "easy")
	s := m.store.FindByPlayer(alice)

	if err := m.QuizJoin(chat, alice, "Alice", s.ID); !errors.Is(err, ErrAlreadyInSession) {
		t.Errorf("creator rejoining: want ErrAlreadyInSession, got %v", err)
	}
	if err := m.QuizJoin(chat, bob, "Bob", s.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	// Second join by the same player changes nothing
	if err := m.QuizJoin(chat, bob, "Bob", s.ID); !errors.Is(err, ErrAlreadyInSession) {
		t.Errorf("double join: want ErrAlreadyInSession, got %v", err)
	}
	if len(s.Players) != 2 {
		t.Errorf("double join changed participant count: %d", len(s.Players))
	}

	if err := m.QuizJoin(chat, carol, "Carol", s.ID); !errors.Is(err, ErrSessionFull) {
		t.Errorf("full lobby: want ErrSessionFull, got %v", err)
	}
}

func TestQuizStartChecks(t *testing.T) {
	m, _, _ := newTestManager(testConfig())

	if err := m.QuizStart(chat, alice); !errors.Is(err, ErrNotCreator) {
		t.Errorf("no lobby: want ErrNotCreator, got %v", err)
	}

	m.QuizCreate(chat, alice, "Alice", trivia.CategoryTrivia, "easy")
	if err := m.QuizStart(chat, bob); !errors.Is(err, ErrNotCreator) {
		t.Errorf("non-creator start: want ErrNotCreator, got %v", err)
	}
	if err := m.QuizStart(chat, alice); !errors.Is(err, ErrNotEnoughPlayers) {
		t.Errorf("solo start: want ErrNotEnoughPlayers, got %v", err)
	}
}

// Scenario: both players answer correctly inside the countdown; the
// round closes immediately and both receive the configured points.
func TestRoundClosesWhenAllAnswered(t *testing.T) {
	m, notes, store := newTestManager(testConfig())
	s := startQuiz(t, m, alice, bob)

	handled, err := m.HandleText(chat, alice, "Alice", "4")
	if !handled || err != nil {
		t.Fatalf("alice answer: handled=%v err=%v", handled, err)
	}
	if s.Quiz.Current == nil {
		t.Fatalf("round closed before everyone answered")
	}

	handled, err = m.HandleText(chat, bob, "Bob", "4")
	if !handled || err != nil {
		t.Fatalf("bob answer: handled=%v err=%v", handled, err)
	}

	if !notes.contains("All players answered") {
		t.Errorf("early close announcement missing")
	}
	if s.State != Terminal {
		t.Fatalf("single-round game should be terminal after early close")
	}
	pts := PointsForDifficulty("easy")
	for _, p := range s.Players {
		if p.Score != pts {
			t.Errorf("%s score = %d, want %d", p.Name, p.Score, pts)
		}
	}

	board, _ := store.LoadQuizBoard()
	if board.Stats.TotalMatches != 1 {
		t.Errorf("total matches = %d, want 1", board.Stats.TotalMatches)
	}
}

func TestAnswerRejectedTwice(t *testing.T) {
	m, _, _ := newTestManager(testConfig())
	s := startQuiz(t, m, alice, bob)

	if _, err := m.HandleText(chat, alice, "Alice", "4"); err != nil {
		t.Fatalf("first answer: %v", err)
	}
	_, err := m.HandleText(chat, alice, "Alice", "2")
	if !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("second answer: want ErrAlreadyAnswered, got %v", err)
	}
	if got := s.Player(alice).Score; got != PointsForDifficulty("easy") {
		t.Errorf("score changed by rejected answer: %d", got)
	}
}

func TestAnswerValidation(t *testing.T) {
	m, _, _ := newTestManager(testConfig())
	s := startQuiz(t, m, alice, bob)

	if _, err := m.HandleText(chat, alice, "Alice", "7"); !errors.Is(err, ErrInvalidChoice) {
		t.Errorf("choice 7: want ErrInvalidChoice, got %v", err)
	}
	if _, err := m.HandleText(chat, carol, "Carol", "2"); !errors.Is(err, ErrNotInSession) {
		t.Errorf("outsider answer: want ErrNotInSession, got %v", err)
	}

	// Past the deadline the round no longer accepts answers
	m.now = func() time.Time { return s.Quiz.Current.Deadline.Add(time.Second) }
	if _, err := m.HandleText(chat, alice, "Alice", "4"); !errors.Is(err, ErrNoActiveQuestion) {
		t.Errorf("late answer: want ErrNoActiveQuestion, got %v", err)
	}
}

func TestWrongAnswerScoresNothing(t *testing.T) {
	m, _, _ := newTestManager(testConfig())
	s := startQuiz(t, m, alice, bob)

	if _, err := m.HandleText(chat, alice, "Alice", "1"); err != nil {
		t.Fatalf("wrong answer: %v", err)
	}
	if got := s.Player(alice).Score; got != 0 {
		t.Errorf("wrong answer scored %d points", got)
	}
}

func TestTiedTopScorersShareTheWin(t *testing.T) {
	m, _, store := newTestManager(testConfig())
	startQuiz(t, m, alice, bob)

	m.HandleText(chat, alice, "Alice", "4")
	m.HandleText(chat, bob, "Bob", "4")

	board, _ := store.LoadQuizBoard()
	for _, id := range []string{"1111", "2222"} {
		rec, ok := board.Leaderboard[id]
		if !ok || rec.Wins != 1 {
			t.Errorf("player %s should share the win, got %+v", id, rec)
		}
	}
}

func TestCountdownExpiryEndsRound(t *testing.T) {
	cfg := testConfig()
	cfg.QuestionTime = 20 * time.Millisecond
	m, notes, _ := newTestManager(cfg)
	s := startQuiz(t, m, alice, bob)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		done := s.State == Terminal
		m.mu.Unlock()
		if done {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s.State != Terminal {
		t.Fatalf("countdown expiry should end the single-round game")
	}
	if !notes.contains("Time's up") {
		t.Errorf("expiry announcement missing")
	}
}

// blockingSource holds every fetch until released, standing in for a
// degraded trivia API.
type blockingSource struct {
	release chan struct{}
}

func (b *blockingSource) Fetch(ctx context.Context, category, difficulty string) trivia.Question {
	<-b.release
	return fixedQuestion()
}

// A hanging question fetch must not stall unrelated sessions: the fetch
// runs outside the manager lock.
func TestSlowSourceDoesNotBlockOtherSessions(t *testing.T) {
	m, notes, _ := newTestManager(testConfig())
	blocker := &blockingSource{release: make(chan struct{})}
	m.source = blocker

	m.TTTChallenge(chat, alice, "Alice", "")
	m.TTTChallenge(chat, bob, "Bob", "")

	quizChat := "quiz@g.us"
	if err := m.QuizCreate(quizChat, carol, "Carol", trivia.CategoryTrivia, "easy"); err != nil {
		t.Fatal(err)
	}
	s := m.store.FindByPlayer(carol)
	if err := m.QuizJoin(quizChat, dave, "Dave", s.ID); err != nil {
		t.Fatal(err)
	}
	if err := m.QuizStart(quizChat, carol); err != nil {
		t.Fatal(err)
	}

	// The quiz round is now stuck fetching. The board game must still
	// process moves.
	done := make(chan error, 1)
	go func() {
		_, err := m.HandleText(chat, alice, "Alice", "5")
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("move during pending fetch: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("move blocked behind the question fetch")
	}

	close(blocker.release)
	waitRound(t, m, s)
	if !notes.contains("You have 30 seconds") {
		t.Errorf("question not delivered after fetch completed: %v", notes.msgs)
	}
}

// The round closes early when the last player still to answer leaves.
func TestLeaverNoLongerHoldsRoundOpen(t *testing.T) {
	m, notes, store := newTestManager(testConfig())
	s := startQuiz(t, m, alice, bob, carol)

	m.HandleText(chat, alice, "Alice", "4")
	m.HandleText(chat, bob, "Bob", "4")
	if s.Quiz.Current == nil {
		t.Fatal("round closed while carol still had to answer")
	}

	if err := m.QuizLeave(chat, carol, "Carol"); err != nil {
		t.Fatalf("leave: %v", err)
	}

	if !notes.contains("All players answered") {
		t.Errorf("round should close once the holdout left: %v", notes.msgs)
	}
	if s.State != Terminal {
		t.Errorf("single-round game should be over")
	}
	board, _ := store.LoadQuizBoard()
	if board.Stats.TotalMatches != 1 {
		t.Errorf("total matches = %d, want 1", board.Stats.TotalMatches)
	}
}

func TestQuizLeaveByCreatorEndsGame(t *testing.T) {
	m, notes, _ := newTestManager(testConfig())
	m.QuizCreate(chat, alice, "Alice", trivia.CategoryTrivia, "easy")
	s := m.store.FindByPlayer(alice)
	m.QuizJoin(chat, bob, "Bob", s.ID)

	if err := m.QuizLeave(chat, alice, "Alice"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if m.store.Len() != 0 {
		t.Errorf("creator leaving should end the game")
	}
	if !notes.contains("Game ended") {
		t.Errorf("end announcement missing")
	}
}

func TestExplicitTerminationCancelsCountdown(t *testing.T) {
	cfg := testConfig()
	cfg.QuestionTime = 30 * time.Millisecond
	m, _, store := newTestManager(cfg)
	s := startQuiz(t, m, alice, bob)

	// Early close terminates the game; the pending countdown must not
	// fire a second termination afterwards.
	m.HandleText(chat, alice, "Alice", "4")
	m.HandleText(chat, bob, "Bob", "4")
	if s.State != Terminal {
		t.Fatal("game should be over")
	}
	time.Sleep(60 * time.Millisecond)

	board, _ := store.LoadQuizBoard()
	if board.Stats.TotalMatches != 1 {
		t.Errorf("stale timer double-terminated: total matches = %d", board.Stats.TotalMatches)
	}
}
