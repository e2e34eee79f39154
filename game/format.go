package game

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go-wagames/storage"
	"go-wagames/trivia"
)

// Everything in this file is pure rendering: session snapshot in,
// display string out.

var cellGlyphs = map[Mark]string{
	MarkX: "❎",
	MarkO: "⭕",
}

var digitGlyphs = [9]string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣"}

func cellGlyph(b Board, i int) string {
	if g, ok := cellGlyphs[b[i]]; ok {
		return g
	}
	return digitGlyphs[i]
}

// FormatBoard renders the 3x3 grid with numbered empty cells.
func FormatBoard(b Board) string {
	g := func(i int) string { return cellGlyph(b, i) }
	return strings.TrimSpace(fmt.Sprintf(`
╔═══╦═══╦═══╗
║ %s ║ %s ║ %s ║
╠═══╬═══╬═══╣
║ %s ║ %s ║ %s ║
╠═══╬═══╬═══╣
║ %s ║ %s ║ %s ║
╚═══╩═══╩═══╝`,
		g(0), g(1), g(2), g(3), g(4), g(5), g(6), g(7), g(8)))
}

func FormatTTTInvite(s *Session) string {
	creator := shortID(s.Creator().ID)
	if s.Name != "" {
		return fmt.Sprintf("🎯 *TicTacToe Challenge Created!*\n\n▢ Room: \"%s\"\n▢ Created by: @%s\n\nType `.ttt %s` to accept the challenge!",
			s.Name, creator, s.Name)
	}
	return fmt.Sprintf("🎯 *Waiting for TicTacToe opponent*\n\nType `.ttt` to play against @%s!", creator)
}

func FormatTTTStart(s *Session, rec *Recorder) string {
	x, o := s.Players[0], s.Players[1]
	current := shortID(s.Players[s.TTT.Turn].ID)
	return fmt.Sprintf(`🎮 *TicTacToe Game Started!*

▢ Player ❎: @%s
▢ Player ⭕: @%s

%s
%s

Waiting for @%s's move...

%s

▢ *Room ID:* %s
▢ *Rules:*
• Type a number (1-9) to place your symbol
• Make 3 in a row to win
• Type *surrender* to quit
• Game auto-ends after 30 minutes`,
		shortID(x.ID), shortID(o.ID),
		statsLine(x.ID, rec), statsLine(o.ID, rec),
		current, FormatBoard(s.TTT.Board), s.ID)
}

// FormatTTTBoard wraps a status line with the room header, board and
// player roster.
func FormatTTTBoard(s *Session, status string) string {
	room := "Room " + s.ID
	if s.Name != "" {
		room = "\"" + s.Name + "\""
	}
	footer := "• Type a number (1-9) to play\n• Type *surrender* to quit"
	if s.TTT.finished() {
		footer = "🏆 Game Over!"
	}
	return fmt.Sprintf("🎮 *TicTacToe Game* - %s\n\n%s\n\n%s\n\n▢ Player ❎: @%s\n▢ Player ⭕: @%s\n\n%s",
		room, status, FormatBoard(s.TTT.Board),
		shortID(s.Players[0].ID), shortID(s.Players[1].ID), footer)
}

func FormatTTTWin(winner, loser *Player, rec *Recorder) string {
	return fmt.Sprintf("🎉 @%s wins!\n\n%s", shortID(winner.ID), statsUpdate(winner, loser, rec))
}

func FormatTTTSurrender(winner, loser *Player, rec *Recorder) string {
	return fmt.Sprintf("🏳️ *Game Over - Surrender*\n\n@%s surrendered!\n@%s wins!\n\n%s",
		shortID(loser.ID), shortID(winner.ID), statsUpdate(winner, loser, rec))
}

func statsLine(playerID string, rec *Recorder) string {
	r := rec.TTTStats(playerID)
	if r.Games == 0 {
		return fmt.Sprintf("📊 %s: New player", shortID(playerID))
	}
	return fmt.Sprintf("📊 %s: %dW %dL %dD (%s%% win rate)",
		shortID(playerID), r.Wins, r.Losses, r.Draws, winRate(r))
}

func statsUpdate(winner, loser *Player, rec *Recorder) string {
	return fmt.Sprintf("📈 Stats updated:\n• @%s: %s%% win rate\n• @%s: %s%% win rate",
		shortID(winner.ID), winRate(rec.TTTStats(winner.ID)),
		shortID(loser.ID), winRate(rec.TTTStats(loser.ID)))
}

func winRate(r storage.TTTRecord) string {
	if r.Games == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(r.Wins)/float64(r.Games)*100)
}

func FormatTTTStats(playerID string, r storage.TTTRecord) string {
	return fmt.Sprintf(`📊 *TicTacToe Statistics* - @%s

🏆 Wins: %d
💔 Losses: %d
🤝 Draws: %d
🎯 Total Games: %d
📈 Win Rate: %s%%

*Rank:* %s`,
		playerID, r.Wins, r.Losses, r.Draws, r.Games, winRate(r), rank(r.Wins))
}

func rank(wins int) string {
	switch {
	case wins >= 100:
		return "TicTacToe Grand Master 🏆"
	case wins >= 50:
		return "TicTacToe Master 🎯"
	case wins >= 25:
		return "Skilled Player ⭐"
	case wins >= 10:
		return "Experienced Player 🔥"
	case wins >= 5:
		return "Rookie Player 🌱"
	default:
		return "New Player 🎮"
	}
}

func medal(i int) string {
	switch i {
	case 0:
		return "🥇"
	case 1:
		return "🥈"
	case 2:
		return "🥉"
	default:
		return "▫️"
	}
}

func FormatTTTLeaderboard(stats storage.TTTStats) string {
	type entry struct {
		id  string
		rec *storage.TTTRecord
	}
	entries := make([]entry, 0, len(stats))
	for id, rec := range stats {
		entries = append(entries, entry{id, rec})
	}
	if len(entries) == 0 {
		return "🏆 *TicTacToe Leaderboard*\n\nNo games played yet!"
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].rec.Wins != entries[j].rec.Wins {
			return entries[i].rec.Wins > entries[j].rec.Wins
		}
		return entries[i].rec.Losses < entries[j].rec.Losses
	})
	if len(entries) > 10 {
		entries = entries[:10]
	}

	var b strings.Builder
	b.WriteString("🏆 *TicTacToe Leaderboard*\n\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "%s %d. @%s - %dW %dL (%s%%)\n",
			medal(i), i+1, e.id, e.rec.Wins, e.rec.Losses, winRate(*e.rec))
	}
	return strings.TrimRight(b.String(), "\n")
}

func FormatActiveTTT(sessions []*Session, now time.Time) string {
	if len(sessions) == 0 {
		return "🎮 *Active TicTacToe Games*\n\nNo active games right now!"
	}
	var b strings.Builder
	b.WriteString("🎮 *Active TicTacToe Games*\n\n")
	for i, s := range sessions {
		name := s.Name
		if name == "" {
			name = "Room " + s.ID
		}
		minutes := int(now.Sub(s.CreatedAt).Minutes())
		fmt.Fprintf(&b, "%d. %s\n   👥 @%s vs @%s\n   ⏰ %dm | Turn: @%s\n\n",
			i+1, name, shortID(s.Players[0].ID), shortID(s.Players[1].ID),
			minutes, shortID(s.Players[s.TTT.Turn].ID))
	}
	return strings.TrimRight(b.String(), "\n")
}

func FormatQuizCreated(s *Session, maxPlayers int) string {
	return fmt.Sprintf("🎮 *New %s Game Created!*\n\nDifficulty: %s\nPlayers: 1/%d\n\nOthers can join using:\n.wcg join %s\n\nStart the game with:\n.wcg start",
		trivia.DisplayNames[s.Quiz.Category], strings.ToUpper(s.Quiz.Difficulty), maxPlayers, s.ID)
}

func FormatQuizStarting(s *Session) string {
	var names []string
	for _, p := range s.Players {
		names = append(names, "• "+p.Name)
	}
	return fmt.Sprintf("🎉 Game starting! %s - %s difficulty\n\nPlayers:\n%s\n\nFirst question coming up...",
		trivia.DisplayNames[s.Quiz.Category], strings.ToUpper(s.Quiz.Difficulty), strings.Join(names, "\n"))
}

func FormatQuestion(s *Session, totalRounds, seconds int) string {
	q := s.Quiz.Current.Question
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 *%s*\n", trivia.DisplayNames[s.Quiz.Category])
	fmt.Fprintf(&b, "🔹 Round %d of %d\n", s.Quiz.Round, totalRounds)
	fmt.Fprintf(&b, "🔹 Difficulty: %s\n\n", strings.ToUpper(s.Quiz.Difficulty))
	fmt.Fprintf(&b, "❓ %s\n\n", q.Text)
	for i, opt := range q.Options {
		fmt.Fprintf(&b, "%d. %s\n", i+1, opt)
	}
	fmt.Fprintf(&b, "\nYou have %d seconds to answer!", seconds)
	return b.String()
}

// FormatScores renders the running scores sorted descending with medal
// markers for the top 3.
func FormatScores(players []*Player) string {
	sorted := make([]*Player, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	lines := make([]string, len(sorted))
	for i, p := range sorted {
		lines[i] = fmt.Sprintf("%s %s: %d points", medal(i), p.Name, p.Score)
	}
	return strings.Join(lines, "\n")
}

func FormatRoundClose(early bool, q trivia.Question, players []*Player) string {
	header := "⏰ Time's up!"
	if early {
		header = "🏆 All players answered!"
	}
	return fmt.Sprintf("%s The correct answer was: %s\n\nScores:\n%s", header, q.Correct(), FormatScores(players))
}

func FormatQuizEnd(s *Session, winners []*Player) string {
	var names []string
	for _, w := range winners {
		names = append(names, w.Name)
	}
	score := 0
	if len(winners) > 0 {
		score = winners[0].Score
	}
	label := "Winner"
	if len(winners) > 1 {
		label = "Winners (tie)"
	}
	return fmt.Sprintf("🏁 *Game Over!* 🏁\n\n🎉 %s: %s with %d points!\n\nFinal Scores:\n%s\n\nUse .wcg leaderboard to see overall standings",
		label, strings.Join(names, ", "), score, FormatScores(s.Players))
}

func FormatQuizList(open []*Session, maxPlayers int) string {
	if len(open) == 0 {
		return "ℹ️ No available games at the moment. Create one with .wcg create!"
	}
	var b strings.Builder
	b.WriteString("🎲 *Available Games*\n\n")
	for i, s := range open {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, trivia.DisplayNames[s.Quiz.Category], strings.ToUpper(s.Quiz.Difficulty))
		fmt.Fprintf(&b, "   👥 Players: %d/%d\n", len(s.Players), maxPlayers)
		fmt.Fprintf(&b, "   🆔 Join with: .wcg join %s\n\n", s.ID)
	}
	return strings.TrimRight(b.String(), "\n")
}

func FormatQuizLeaderboard(board storage.QuizBoard) string {
	entries := make([]*storage.QuizRecord, 0, len(board.Leaderboard))
	for _, rec := range board.Leaderboard {
		entries = append(entries, rec)
	}
	if len(entries) == 0 {
		return "ℹ️ No leaderboard data yet. Play some games first!"
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Points > entries[j].Points })
	if len(entries) > 10 {
		entries = entries[:10]
	}

	var b strings.Builder
	b.WriteString("🏆 *Global Leaderboard* 🏆\n\n")
	for i, rec := range entries {
		fmt.Fprintf(&b, "%s %s: %d points (%d wins)\n", medal(i), rec.Name, rec.Points, rec.Wins)
	}
	fmt.Fprintf(&b, "\nTotal matches played: %d", board.Stats.TotalMatches)
	return b.String()
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
