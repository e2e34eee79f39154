package game

import (
	"context"
	"time"

	"go-wagames/trivia"
)

var pointsByDifficulty = map[string]int{
	"easy":    10,
	"medium":  20,
	"hard":    30,
	"extreme": 50,
}

func PointsForDifficulty(difficulty string) int {
	if pts, ok := pointsByDifficulty[difficulty]; ok {
		return pts
	}
	return 10
}

// QuizCreate opens a waiting lobby for a new quiz game.
func (m *Manager) QuizCreate(chatID, senderID, senderName, category, difficulty string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cur := m.store.FindByPlayer(senderID); cur != nil {
		return ErrAlreadyInSession
	}
	if !trivia.ValidCategory(category) {
		return ErrInvalidCategory
	}
	if !trivia.ValidDifficulty(category, difficulty) {
		return ErrInvalidDifficulty
	}

	now := m.now()
	s := &Session{
		ID:           newRoomID("wcg"),
		Kind:         KindQuiz,
		ChatID:       chatID,
		State:        Waiting,
		Players:      []*Player{{ID: senderID, Name: senderName, ChatID: chatID}},
		CreatedAt:    now,
		LastActivity: now,
		Quiz:         &QuizState{Category: category, Difficulty: difficulty},
	}
	m.store.Put(s)
	m.notify(chatID, FormatQuizCreated(s, m.cfg.MaxPlayers), nil)
	return nil
}

// QuizJoin adds the sender to an open lobby.
func (m *Manager) QuizJoin(chatID, senderID, senderName, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.store.Get(gameID)
	if !ok || s.Kind != KindQuiz {
		return ErrSessionNotFound
	}
	if s.Player(senderID) != nil {
		return ErrAlreadyInSession
	}
	if cur := m.store.FindByPlayer(senderID); cur != nil {
		return ErrAlreadyInSession
	}
	if s.State != Waiting {
		return ErrAlreadyStarted
	}
	if len(s.Players) >= m.cfg.MaxPlayers {
		return ErrSessionFull
	}

	s.Players = append(s.Players, &Player{ID: senderID, Name: senderName, ChatID: chatID})
	s.Touch(m.now())

	m.notify(s.ChatID, "🎉 "+senderName+" joined the game!\n\nCurrent players: "+
		itoa(len(s.Players))+"/"+itoa(m.cfg.MaxPlayers), playerIDs(s))
	if len(s.Players) == m.cfg.MaxPlayers {
		m.notify(s.ChatID, "✅ Game is now full! The creator can start the game with .wcg start", nil)
	}
	return nil
}

// QuizStart begins round 1. Only the lobby creator may start, and only
// with enough players joined.
func (m *Manager) QuizStart(chatID, senderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var s *Session
	for _, cand := range m.store.All() {
		if cand.Kind == KindQuiz && cand.State == Waiting &&
			cand.ChatID == chatID && cand.Creator().ID == senderID {
			s = cand
			break
		}
	}
	if s == nil {
		return ErrNotCreator
	}
	if len(s.Players) < m.cfg.MinPlayers {
		return ErrNotEnoughPlayers
	}

	s.State = Active
	s.Quiz.Round = 1
	s.Touch(m.now())
	m.notify(s.ChatID, FormatQuizStarting(s), playerIDs(s))
	go m.beginRound(m.prepareRoundLocked(s))
	return nil
}

// QuizLeave removes the sender from their lobby or game. The whole game
// ends when the creator leaves or nobody is left.
func (m *Manager) QuizLeave(chatID, senderID, senderName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.store.FindByPlayer(senderID)
	if s == nil || s.Kind != KindQuiz {
		return ErrNotInSession
	}

	isCreator := s.Creator().ID == senderID
	remaining := s.Players[:0]
	for _, p := range s.Players {
		if p.ID != senderID {
			remaining = append(remaining, p)
		}
	}
	s.Players = remaining

	if isCreator || len(s.Players) == 0 {
		m.notify(s.ChatID, "🏁 Game ended because "+senderName+" left.", nil)
		m.terminate(s, ReasonAbandoned)
		return nil
	}
	s.Touch(m.now())
	m.notify(s.ChatID, "🚪 "+senderName+" left the game. "+itoa(len(s.Players))+" players remaining.", nil)
	// The leaver may have been the only one still holding the round open
	if s.State == Active && s.Quiz.Current != nil && allAnswered(s) {
		m.closeRoundLocked(s, true)
	}
	return nil
}

func allAnswered(s *Session) bool {
	for _, p := range s.Players {
		if !p.Answered {
			return false
		}
	}
	return true
}

// QuizList sends the joinable lobbies.
func (m *Manager) QuizList(chatID string) {
	m.mu.Lock()
	var open []*Session
	for _, s := range m.store.All() {
		if s.Kind == KindQuiz && s.State == Waiting && len(s.Players) < m.cfg.MaxPlayers {
			open = append(open, s)
		}
	}
	text := FormatQuizList(open, m.cfg.MaxPlayers)
	m.mu.Unlock()
	m.notify(chatID, text, nil)
}

// QuizLeaderboard sends the persisted global standings.
func (m *Manager) QuizLeaderboard(chatID string) {
	m.notify(chatID, FormatQuizLeaderboard(m.recorder.QuizBoard()), nil)
}

// roundPrep carries what the question fetch needs, so the fetch can run
// without holding the manager lock.
type roundPrep struct {
	s          *Session
	gen        int
	category   string
	difficulty string
}

// prepareRoundLocked resets the answered flags and snapshots the round
// parameters for beginRound.
func (m *Manager) prepareRoundLocked(s *Session) roundPrep {
	for _, p := range s.Players {
		p.Answered = false
	}
	return roundPrep{
		s:          s,
		gen:        s.gen,
		category:   s.Quiz.Category,
		difficulty: s.Quiz.Difficulty,
	}
}

// beginRound fetches the question with the lock released, then arms the
// round. The fetch can take seconds on a degraded network; other
// sessions keep processing meanwhile. A session that terminated or was
// superseded while the fetch ran is left alone.
func (m *Manager) beginRound(p roundPrep) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	q := m.source.Fetch(ctx, p.category, p.difficulty)
	cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	s := p.s
	cur, ok := m.store.Get(s.ID)
	if !ok || cur != s || s.gen != p.gen || s.State != Active {
		return
	}

	now := m.now()
	s.Quiz.Current = &QuizRound{Question: q, Deadline: now.Add(m.cfg.QuestionTime)}
	s.Touch(now)

	m.notify(s.ChatID, FormatQuestion(s, m.cfg.Rounds, int(m.cfg.QuestionTime/time.Second)), nil)
	m.scheduleLocked(s, m.cfg.QuestionTime, func(s *Session) {
		m.closeRoundLocked(s, false)
	})
}

// closeRoundLocked ends the current round, either early (everyone
// answered) or on countdown expiry, and chains the next round or the
// end of the game.
func (m *Manager) closeRoundLocked(s *Session, early bool) {
	cur := s.Quiz.Current
	if cur == nil {
		return
	}
	s.Quiz.Current = nil
	s.Touch(m.now())

	m.notify(s.ChatID, FormatRoundClose(early, cur.Question, s.Players), nil)

	if s.Quiz.Round < m.cfg.Rounds {
		s.Quiz.Round++
		m.scheduleLocked(s, m.cfg.RoundDelay, func(s *Session) {
			go m.beginRound(m.prepareRoundLocked(s))
		})
		return
	}
	m.endQuizLocked(s)
}

// endQuizLocked records the final scores and closes the session. Every
// player sharing the top score is credited a win.
func (m *Manager) endQuizLocked(s *Session) {
	top := 0
	for _, p := range s.Players {
		if p.Score > top {
			top = p.Score
		}
	}
	var winners []*Player
	for _, p := range s.Players {
		if p.Score == top {
			winners = append(winners, p)
		}
	}

	m.recorder.RecordQuiz(s.Players, winners)
	m.notify(s.ChatID, FormatQuizEnd(s, winners), playerIDs(s))
	m.terminate(s, ReasonComplete)
}

func (m *Manager) answerLocked(s *Session, senderID string, choice int) error {
	p := s.Player(senderID)
	if p == nil {
		return ErrNotInSession
	}
	cur := s.Quiz.Current
	now := m.now()
	if cur == nil || now.After(cur.Deadline) {
		return ErrNoActiveQuestion
	}
	if p.Answered {
		return ErrAlreadyAnswered
	}
	if choice < 1 || choice > len(cur.Question.Options) {
		return ErrInvalidChoice
	}

	p.Answered = true
	s.Touch(now)

	if choice-1 == cur.Question.CorrectIndex {
		p.Score += PointsForDifficulty(s.Quiz.Difficulty)
		m.notify(s.ChatID, "✅ Correct answer, "+p.Name+"! Points added.", []string{p.ID})
	} else {
		m.notify(s.ChatID, "❌ Incorrect answer, "+p.Name+"!", []string{p.ID})
	}

	if allAnswered(s) {
		m.closeRoundLocked(s, true)
	}
	return nil
}

// scheduleLocked arms the session's single pending timer. A timer that
// fires after the session terminated, or after it was superseded by a
// newer one, does nothing.
func (m *Manager) scheduleLocked(s *Session, d time.Duration, fn func(*Session)) {
	s.cancelTimer()
	gen := s.gen
	id := s.ID
	s.timer = time.AfterFunc(d, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		cur, ok := m.store.Get(id)
		if !ok || cur != s || cur.gen != gen || cur.State != Active {
			return
		}
		fn(cur)
	})
}
