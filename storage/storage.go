// Package storage persists game statistics as whole JSON documents:
// each document is read fully and rewritten fully on every mutation.
// A crash between load and rewrite loses that one update; callers
// accept this in exchange for keeping the files human-readable.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"

	waLog "go.mau.fi/whatsmeow/util/log"
)

const (
	tttStatsFile  = "tictactoe_stats.json"
	quizBoardFile = "wcg_leaderboard.json"
)

// Store is the persistence boundary of the game engines. Implementations
// must treat a missing or malformed document as empty rather than failing.
type Store interface {
	LoadTTTStats() (TTTStats, error)
	SaveTTTStats(TTTStats) error
	LoadQuizBoard() (QuizBoard, error)
	SaveQuizBoard(QuizBoard) error
}

type FileStore struct {
	dir string
	log waLog.Logger
}

func NewFileStore(dir string, log waLog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir, log: log}, nil
}

func (f *FileStore) LoadTTTStats() (TTTStats, error) {
	stats := make(TTTStats)
	if !f.loadDocument(tttStatsFile, &stats) || stats == nil {
		stats = make(TTTStats)
	}
	return stats, nil
}

func (f *FileStore) SaveTTTStats(stats TTTStats) error {
	return f.saveDocument(tttStatsFile, stats)
}

func (f *FileStore) LoadQuizBoard() (QuizBoard, error) {
	board := NewQuizBoard()
	if !f.loadDocument(quizBoardFile, &board) {
		board = NewQuizBoard()
	}
	if board.Leaderboard == nil {
		board.Leaderboard = make(map[string]*QuizRecord)
	}
	return board, nil
}

func (f *FileStore) SaveQuizBoard(board QuizBoard) error {
	return f.saveDocument(quizBoardFile, board)
}

// loadDocument fills v from the named file. A missing file is normal on
// first run; a corrupt one is logged and left to be overwritten by the
// next save. Returns false when v may be partially populated and the
// caller must discard it: a type mismatch mid-document leaves the
// entries decoded before the bad one in place.
func (f *FileStore) loadDocument(name string, v any) bool {
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		if !os.IsNotExist(err) {
			f.log.Warnf("read %s: %v", name, err)
		}
		return true
	}
	if err := json.Unmarshal(data, v); err != nil {
		f.log.Warnf("%s is corrupted, starting from empty: %v", name, err)
		return false
	}
	return true
}

func (f *FileStore) saveDocument(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(f.dir, name), data, 0644)
}
