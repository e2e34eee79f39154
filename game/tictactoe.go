package game

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrGameOver rejects moves against a board that already reached a
// terminal outcome.
var ErrGameOver = errors.New("game already over")

type Mark byte

const (
	Empty Mark = 0
	MarkX Mark = 'X'
	MarkO Mark = 'O'
)

type Board [9]Mark

// The 8 winning lines: 3 rows, 3 columns, 2 diagonals.
var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

func (b Board) Winner() Mark {
	for _, line := range winLines {
		m := b[line[0]]
		if m != Empty && b[line[1]] == m && b[line[2]] == m {
			return m
		}
	}
	return Empty
}

// TTTState is the per-session board. Player index 0 (the initiator)
// plays X and always moves first; index 1 plays O.
type TTTState struct {
	Board  Board
	Turn   int // player index to move
	Moves  int
	Winner int // player index, -1 while undecided
}

func NewTTTState() *TTTState {
	return &TTTState{Winner: -1}
}

func playerMark(idx int) Mark {
	if idx == 0 {
		return MarkX
	}
	return MarkO
}

func (t *TTTState) finished() bool {
	return t.Winner >= 0 || t.Moves >= 9
}

type MoveResult struct {
	Win  bool
	Draw bool
}

// Apply validates and plays one move for the given player index.
func (t *TTTState) Apply(playerIdx, cell int) (MoveResult, error) {
	if t.finished() {
		return MoveResult{}, ErrGameOver
	}
	if playerIdx != t.Turn {
		return MoveResult{}, ErrNotYourTurn
	}
	if cell < 0 || cell > 8 {
		return MoveResult{}, ErrInvalidCell
	}
	if t.Board[cell] != Empty {
		return MoveResult{}, ErrCellOccupied
	}

	t.Board[cell] = playerMark(playerIdx)
	t.Moves++

	if t.Board.Winner() != Empty {
		t.Winner = playerIdx
		return MoveResult{Win: true}, nil
	}
	if t.Moves == 9 {
		return MoveResult{Draw: true}, nil
	}
	t.Turn = 1 - t.Turn
	return MoveResult{}, nil
}

func newRoomID(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}

// TTTChallenge creates a waiting room, or joins the matching one and
// starts the game. With no room name the first open room is joined.
func (m *Manager) TTTChallenge(chatID, senderID, senderName, roomName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cur := m.store.FindByPlayer(senderID); cur != nil {
		return ErrAlreadyInSession
	}
	now := m.now()

	if room := m.store.FindWaiting(KindTicTacToe, roomName); room != nil {
		room.Players = append(room.Players, &Player{ID: senderID, Name: senderName, ChatID: chatID})
		room.State = Active
		room.Touch(now)
		m.notifySession(room, FormatTTTStart(room, m.recorder), playerIDs(room))
		return nil
	}

	s := &Session{
		ID:           newRoomID("ttt"),
		Kind:         KindTicTacToe,
		Name:         roomName,
		ChatID:       chatID,
		State:        Waiting,
		Players:      []*Player{{ID: senderID, Name: senderName, ChatID: chatID}},
		CreatedAt:    now,
		LastActivity: now,
		TTT:          NewTTTState(),
	}
	m.store.Put(s)
	m.notify(chatID, FormatTTTInvite(s), []string{senderID})
	return nil
}

func (m *Manager) moveLocked(s *Session, senderID string, cell int) error {
	idx := playerIndex(s, senderID)
	if idx < 0 {
		return ErrNotInSession
	}

	res, err := s.TTT.Apply(idx, cell)
	if err != nil {
		return err
	}
	s.Touch(m.now())

	switch {
	case res.Win:
		winner, loser := s.Players[idx], s.Players[1-idx]
		m.recorder.RecordTTTResult(winner.ID, loser.ID)
		m.notifySession(s, FormatTTTBoard(s, FormatTTTWin(winner, loser, m.recorder)), playerIDs(s))
		m.terminate(s, ReasonWin)
	case res.Draw:
		m.recorder.RecordTTTDraw(s.Players[0].ID, s.Players[1].ID)
		m.notifySession(s, FormatTTTBoard(s, "🤝 Game ended in a draw!\n\nBoth players earn a draw."), playerIDs(s))
		m.terminate(s, ReasonDraw)
	default:
		next := s.Players[s.TTT.Turn]
		m.notifySession(s, FormatTTTBoard(s, "🎲 Turn: @"+shortID(next.ID)+" ("+string(playerMark(s.TTT.Turn))+")"), playerIDs(s))
	}
	return nil
}

func (m *Manager) surrenderLocked(s *Session, senderID string) error {
	idx := playerIndex(s, senderID)
	if idx < 0 {
		return ErrNotInSession
	}
	loser, winner := s.Players[idx], s.Players[1-idx]
	m.recorder.RecordTTTResult(winner.ID, loser.ID)
	m.notifySession(s, FormatTTTSurrender(winner, loser, m.recorder), playerIDs(s))
	m.terminate(s, ReasonSurrender)
	return nil
}

// TTTStats sends the sender's accumulated record to the chat.
func (m *Manager) TTTStats(chatID, senderID string) {
	rec := m.recorder.TTTStats(senderID)
	m.notify(chatID, FormatTTTStats(shortID(senderID), rec), []string{senderID})
}

// TTTLeaderboard sends the top-10 win table.
func (m *Manager) TTTLeaderboard(chatID string) {
	m.notify(chatID, FormatTTTLeaderboard(m.recorder.TTTAll()), nil)
}

// TTTList sends the currently active rooms.
func (m *Manager) TTTList(chatID string) {
	m.mu.Lock()
	var active []*Session
	for _, s := range m.store.All() {
		if s.Kind == KindTicTacToe && s.State == Active {
			active = append(active, s)
		}
	}
	text := FormatActiveTTT(active, m.now())
	m.mu.Unlock()
	m.notify(chatID, text, nil)
}

func playerIndex(s *Session, playerID string) int {
	for i, p := range s.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

func playerIDs(s *Session) []string {
	out := make([]string, len(s.Players))
	for i, p := range s.Players {
		out[i] = p.ID
	}
	return out
}
