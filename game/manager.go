package game

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	waLog "go.mau.fi/whatsmeow/util/log"

	"go-wagames/trivia"
)

// NotifyFunc delivers formatted output to a chat. Fire-and-forget: the
// messaging gateway logs its own errors.
type NotifyFunc func(chatID, text string, mentions []string)

// QuestionSource supplies quiz questions. Implementations must fall
// back locally instead of failing (see package trivia).
type QuestionSource interface {
	Fetch(ctx context.Context, category, difficulty string) trivia.Question
}

type Config struct {
	TTTTimeout       time.Duration
	QuizLobbyTimeout time.Duration
	SweepInterval    time.Duration
	QuestionTime     time.Duration
	RoundDelay       time.Duration
	Rounds           int
	MaxPlayers       int
	MinPlayers       int
}

// Manager owns the session store and every state transition around it.
// All session mutations run under one mutex, so a given session only
// ever processes one action at a time.
type Manager struct {
	mu       sync.Mutex
	cfg      Config
	store    *SessionStore
	recorder *Recorder
	source   QuestionSource
	notify   NotifyFunc
	log      waLog.Logger
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func NewManager(cfg Config, store *SessionStore, recorder *Recorder, source QuestionSource, notify NotifyFunc, log waLog.Logger) *Manager {
	return &Manager{
		cfg:      cfg,
		store:    store,
		recorder: recorder,
		source:   source,
		notify:   notify,
		log:      log,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

// StartSweeper runs the timeout sweep on a fixed interval until Stop.
func (m *Manager) StartSweeper() {
	go func() {
		ticker := time.NewTicker(m.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Sweep()
			case <-m.stop:
				return
			}
		}
	}()
}

func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.store.All() {
		s.cancelTimer()
	}
}

// Sweep force-terminates every session idle past its timeout threshold,
// notifying participants first. It is the backstop that keeps even
// partially broken sessions from sticking around forever.
func (m *Manager) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for _, s := range m.store.All() {
		if s.State == Terminal {
			continue
		}
		if now.Sub(s.LastActivity) < m.idleTimeout(s) {
			continue
		}
		m.log.Infof("session %s timed out after %s idle", s.ID, now.Sub(s.LastActivity))
		m.notifySession(s, "⏰ *Game Timed Out*\n\nGame room \""+s.ID+"\" has been closed due to inactivity.", nil)
		m.terminate(s, ReasonTimeout)
	}
}

func (m *Manager) idleTimeout(s *Session) time.Duration {
	if s.Kind == KindQuiz && s.State == Waiting {
		return m.cfg.QuizLobbyTimeout
	}
	return m.cfg.TTTTimeout
}

var surrenderPattern = regexp.MustCompile(`^(?i)(surrender|give up|quit|exit|ff)$`)

// HandleText routes free-text replies that carry no command prefix:
// bare digits to the sender's board or the chat's quiz round, surrender
// words to the sender's game. Returns false when the text means nothing
// to any session.
func (m *Manager) HandleText(chatID, senderID, senderName, text string) (bool, error) {
	text = strings.TrimSpace(text)

	if surrenderPattern.MatchString(text) {
		m.mu.Lock()
		s := m.store.FindByPlayer(senderID)
		if s == nil || s.Kind != KindTicTacToe || s.State != Active {
			m.mu.Unlock()
			return false, nil
		}
		err := m.surrenderLocked(s, senderID)
		m.mu.Unlock()
		return true, err
	}

	n, err := strconv.Atoi(text)
	if err != nil {
		return false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s := m.store.FindByPlayer(senderID); s != nil && s.Kind == KindTicTacToe && s.State == Active {
		if n < 1 || n > 9 {
			return true, ErrInvalidCell
		}
		return true, m.moveLocked(s, senderID, n-1)
	}

	if s := m.store.FindByChat(KindQuiz, chatID, Active); s != nil {
		return true, m.answerLocked(s, senderID, n)
	}

	return false, nil
}

// Abandon cleanly terminates whatever session the player occupies after
// an unexpected failure, so no session is left stuck in Active.
func (m *Manager) Abandon(playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.store.FindByPlayer(playerID)
	if s == nil {
		return
	}
	m.log.Warnf("abandoning session %s after unexpected error", s.ID)
	m.notifySession(s, "❌ Something went wrong. The game has been cancelled.", nil)
	m.terminate(s, ReasonAbandoned)
}

// terminate marks the session terminal, cancels any pending countdown
// and removes it from the store. Statistics are the caller's concern.
func (m *Manager) terminate(s *Session, reason Reason) {
	s.cancelTimer()
	s.State = Terminal
	m.store.Delete(s.ID)
	m.log.Infof("session %s ended: %s", s.ID, reason)
}

// notifySession sends the text once to every chat the participants play
// from.
func (m *Manager) notifySession(s *Session, text string, mentions []string) {
	for _, chat := range s.chats() {
		m.notify(chat, text, mentions)
	}
}
