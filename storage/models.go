package storage

// TTTRecord holds one player's accumulated Tic-Tac-Toe results.
type TTTRecord struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`
	Games  int `json:"games"`
}

// TTTStats is the whole tictactoe_stats.json document, keyed by player id.
type TTTStats map[string]*TTTRecord

// QuizRecord holds one player's accumulated quiz results.
type QuizRecord struct {
	Name   string `json:"name"`
	Wins   int    `json:"wins"`
	Points int    `json:"points"`
}

type QuizGlobals struct {
	TotalMatches int `json:"totalMatches"`
}

// QuizBoard is the whole wcg_leaderboard.json document.
type QuizBoard struct {
	Leaderboard map[string]*QuizRecord `json:"leaderboard"`
	Stats       QuizGlobals            `json:"stats"`
}

func NewQuizBoard() QuizBoard {
	return QuizBoard{Leaderboard: make(map[string]*QuizRecord)}
}
