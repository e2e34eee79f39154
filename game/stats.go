package game

import (
	"sync"

	waLog "go.mau.fi/whatsmeow/util/log"

	"go-wagames/storage"
)

// Recorder updates the persisted player records when a session reaches
// a terminal state. The underlying storage has no atomic update
// primitive, so every load-modify-write cycle runs under one mutex;
// a crash between load and rewrite loses that single update.
type Recorder struct {
	mu    sync.Mutex
	store storage.Store
	log   waLog.Logger
}

func NewRecorder(store storage.Store, log waLog.Logger) *Recorder {
	return &Recorder{store: store, log: log}
}

// RecordTTTResult credits a win and a loss.
func (r *Recorder) RecordTTTResult(winnerID, loserID string) {
	r.updateTTT(func(stats storage.TTTStats) {
		w := tttRecord(stats, winnerID)
		w.Wins++
		w.Games++
		l := tttRecord(stats, loserID)
		l.Losses++
		l.Games++
	})
}

// RecordTTTDraw credits both players a draw.
func (r *Recorder) RecordTTTDraw(aID, bID string) {
	r.updateTTT(func(stats storage.TTTStats) {
		for _, id := range []string{aID, bID} {
			rec := tttRecord(stats, id)
			rec.Draws++
			rec.Games++
		}
	})
}

func (r *Recorder) TTTStats(playerID string) storage.TTTRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats, err := r.store.LoadTTTStats()
	if err != nil {
		r.log.Warnf("load tictactoe stats: %v", err)
		return storage.TTTRecord{}
	}
	if rec, ok := stats[shortID(playerID)]; ok {
		return *rec
	}
	return storage.TTTRecord{}
}

func (r *Recorder) TTTAll() storage.TTTStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats, err := r.store.LoadTTTStats()
	if err != nil {
		r.log.Warnf("load tictactoe stats: %v", err)
		return make(storage.TTTStats)
	}
	return stats
}

func (r *Recorder) updateTTT(mutate func(storage.TTTStats)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats, err := r.store.LoadTTTStats()
	if err != nil {
		r.log.Warnf("load tictactoe stats: %v", err)
		stats = make(storage.TTTStats)
	}
	mutate(stats)
	if err := r.store.SaveTTTStats(stats); err != nil {
		r.log.Errorf("save tictactoe stats: %v", err)
	}
}

func tttRecord(stats storage.TTTStats, playerID string) *storage.TTTRecord {
	key := shortID(playerID)
	rec, ok := stats[key]
	if !ok {
		rec = &storage.TTTRecord{}
		stats[key] = rec
	}
	return rec
}

// RecordQuiz adds every player's final score to the leaderboard,
// credits each winner a win and bumps the global match counter.
func (r *Recorder) RecordQuiz(players []*Player, winners []*Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	board, err := r.store.LoadQuizBoard()
	if err != nil {
		r.log.Warnf("load quiz leaderboard: %v", err)
		board = storage.NewQuizBoard()
	}

	for _, p := range players {
		rec := quizRecord(board, p)
		rec.Points += p.Score
	}
	for _, w := range winners {
		quizRecord(board, w).Wins++
	}
	board.Stats.TotalMatches++

	if err := r.store.SaveQuizBoard(board); err != nil {
		r.log.Errorf("save quiz leaderboard: %v", err)
	}
}

func (r *Recorder) QuizBoard() storage.QuizBoard {
	r.mu.Lock()
	defer r.mu.Unlock()
	board, err := r.store.LoadQuizBoard()
	if err != nil {
		r.log.Warnf("load quiz leaderboard: %v", err)
		return storage.NewQuizBoard()
	}
	return board
}

func quizRecord(board storage.QuizBoard, p *Player) *storage.QuizRecord {
	key := shortID(p.ID)
	rec, ok := board.Leaderboard[key]
	if !ok {
		rec = &storage.QuizRecord{Name: p.Name}
		board.Leaderboard[key] = rec
	}
	if rec.Name == "" {
		rec.Name = p.Name
	}
	return rec
}
