package game

import (
	"context"
	"strings"
	"sync"
	"time"

	waLog "go.mau.fi/whatsmeow/util/log"

	"go-wagames/storage"
	"go-wagames/trivia"
)

// memStore is an in-memory storage.Store for tests.
type memStore struct {
	mu    sync.Mutex
	ttt   storage.TTTStats
	board storage.QuizBoard
}

func newMemStore() *memStore {
	return &memStore{
		ttt:   make(storage.TTTStats),
		board: storage.NewQuizBoard(),
	}
}

func (m *memStore) LoadTTTStats() (storage.TTTStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(storage.TTTStats, len(m.ttt))
	for k, v := range m.ttt {
		c := *v
		out[k] = &c
	}
	return out, nil
}

func (m *memStore) SaveTTTStats(stats storage.TTTStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ttt = stats
	return nil
}

func (m *memStore) LoadQuizBoard() (storage.QuizBoard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := storage.NewQuizBoard()
	for k, v := range m.board.Leaderboard {
		c := *v
		out.Leaderboard[k] = &c
	}
	out.Stats = m.board.Stats
	return out, nil
}

func (m *memStore) SaveQuizBoard(board storage.QuizBoard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.board = board
	return nil
}

// fakeSource returns a fixed question so scoring is deterministic.
type fakeSource struct {
	q trivia.Question
}

func (f *fakeSource) Fetch(ctx context.Context, category, difficulty string) trivia.Question {
	return f.q
}

func fixedQuestion() trivia.Question {
	return trivia.Question{
		Text:         "What is the capital of France?",
		Options:      []string{"London", "Berlin", "Madrid", "Paris"},
		CorrectIndex: 3,
	}
}

// notifyRec collects outbound messages.
type notifyRec struct {
	mu   sync.Mutex
	msgs []string
}

func (n *notifyRec) send(chatID, text string, mentions []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, text)
}

func (n *notifyRec) contains(substr string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, m := range n.msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func testConfig() Config {
	return Config{
		TTTTimeout:       30 * time.Minute,
		QuizLobbyTimeout: 10 * time.Minute,
		SweepInterval:    time.Minute,
		QuestionTime:     30 * time.Second,
		RoundDelay:       time.Millisecond,
		Rounds:           1,
		MaxPlayers:       4,
		MinPlayers:       2,
	}
}

func newTestManager(cfg Config) (*Manager, *notifyRec, *memStore) {
	store := newMemStore()
	rec := NewRecorder(store, waLog.Noop)
	notes := &notifyRec{}
	m := NewManager(cfg, NewSessionStore(), rec, &fakeSource{q: fixedQuestion()}, notes.send, waLog.Noop)
	return m, notes, store
}

const (
	alice = "1111@s.whatsapp.net"
	bob   = "2222@s.whatsapp.net"
	carol = "3333@s.whatsapp.net"
	dave  = "4444@s.whatsapp.net"
	chat  = "group@g.us"
)
