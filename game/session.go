// Package game implements the multiplayer session core: the session
// store, the Tic-Tac-Toe and quiz engines, the lifecycle manager with
// its timeout sweep, and the statistics recorder.
package game

import (
	"errors"
	"strings"
	"time"

	"go-wagames/trivia"
)

type State int

const (
	Waiting State = iota
	Active
	Terminal
)

type Kind int

const (
	KindTicTacToe Kind = iota
	KindQuiz
)

// Reason says why a session reached Terminal.
type Reason int

const (
	ReasonWin Reason = iota
	ReasonDraw
	ReasonSurrender
	ReasonTimeout
	ReasonComplete
	ReasonAbandoned
)

func (r Reason) String() string {
	switch r {
	case ReasonWin:
		return "win"
	case ReasonDraw:
		return "draw"
	case ReasonSurrender:
		return "surrender"
	case ReasonTimeout:
		return "timeout"
	case ReasonComplete:
		return "complete"
	case ReasonAbandoned:
		return "abandoned"
	}
	return "unknown"
}

// User-input level errors. They are translated into short chat messages
// at the command boundary and never crash the process.
var (
	ErrAlreadyInSession  = errors.New("already in a session")
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionFull       = errors.New("session is full")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrCellOccupied      = errors.New("cell already taken")
	ErrInvalidCell       = errors.New("invalid cell")
	ErrInvalidChoice     = errors.New("invalid choice")
	ErrAlreadyAnswered   = errors.New("already answered")
	ErrNoActiveQuestion  = errors.New("no active question")
	ErrNotInSession      = errors.New("not in a session")
	ErrNotCreator        = errors.New("not the session creator")
	ErrNotEnoughPlayers  = errors.New("not enough players")
	ErrAlreadyStarted    = errors.New("session already started")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
)

type Player struct {
	ID       string // full JID
	Name     string
	ChatID   string // chat the player plays from
	Score    int
	Answered bool
}

type QuizRound struct {
	Question trivia.Question
	Deadline time.Time
}

type QuizState struct {
	Category   string
	Difficulty string
	Round      int
	Current    *QuizRound
}

type Session struct {
	ID           string
	Kind         Kind
	Name         string // optional challenge-room name (Tic-Tac-Toe)
	ChatID       string // chat the session was created in
	State        State
	Players      []*Player
	CreatedAt    time.Time
	LastActivity time.Time

	TTT  *TTTState
	Quiz *QuizState

	timer *time.Timer
	gen   int // invalidates pending timer callbacks
}

func (s *Session) Player(id string) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Session) Creator() *Player {
	return s.Players[0]
}

func (s *Session) Touch(now time.Time) {
	s.LastActivity = now
}

// chats returns the distinct chats the participants play from, so a
// cross-chat room can notify both sides exactly once.
func (s *Session) chats() []string {
	var out []string
	for _, p := range s.Players {
		found := false
		for _, c := range out {
			if c == p.ChatID {
				found = true
				break
			}
		}
		if !found {
			out = append(out, p.ChatID)
		}
	}
	return out
}

// cancelTimer invalidates any pending countdown so a fired timer for a
// dead session is a no-op.
func (s *Session) cancelTimer() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// shortID trims a JID down to the user part for display and for keying
// the persisted statistics documents.
func shortID(jid string) string {
	if i := strings.IndexByte(jid, '@'); i >= 0 {
		return jid[:i]
	}
	return jid
}
