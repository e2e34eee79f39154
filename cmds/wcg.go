package cmds

import (
	"errors"
	"fmt"
	"strings"

	"go-wagames/game"
	"go-wagames/trivia"
)

var wcgHelpMsg = fmt.Sprintf(`🎮 *World Challenge Game Commands* 🎮

🔹 *.wcg create [category] [difficulty]* - Create new game
🔹 *.wcg join [gameID]* - Join existing game
🔹 *.wcg start* - Start game (creator only)
🔹 *.wcg leave* - Leave current game
🔹 *.wcg list* - List available games
🔹 *.wcg leaderboard* - Show leaderboard

📌 *Categories*: %s
📌 *Reply with numbers* (1-4) to answer questions`,
	strings.Join(categoryNames(), ", "))

func categoryNames() []string {
	return []string{trivia.CategoryTrivia, trivia.CategoryMath}
}

type WcgCommand struct {
	cmdBase
}

func NewWcgCommand() *WcgCommand {
	return &WcgCommand{
		cmdBase: cmdBase{
			Name:    "wcg",
			HelpMsg: wcgHelpMsg,
			MaxArgs: 3,
			MinArgs: 0,
		},
	}
}

func (cmd *WcgCommand) Self() *cmdBase {
	return &cmd.cmdBase
}

func (cmd *WcgCommand) Exec(r *Registry, args []string, src *srcMsg) {
	action := ""
	if len(args) > 0 {
		action = strings.ToLower(args[0])
	}

	var err error
	switch action {
	case "create":
		if len(args) < 3 {
			r.send(src.ChatID, cmd.HelpMsg, nil)
			return
		}
		category, difficulty := strings.ToLower(args[1]), strings.ToLower(args[2])
		if e := r.games.QuizCreate(src.ChatID, src.SenderID, src.SenderName, category, difficulty); e != nil {
			r.send(src.ChatID, quizCreateErrorText(e, category), nil)
			return
		}
	case "join":
		if len(args) < 2 {
			r.send(src.ChatID, cmd.HelpMsg, nil)
			return
		}
		err = r.games.QuizJoin(src.ChatID, src.SenderID, src.SenderName, args[1])
	case "start":
		err = r.games.QuizStart(src.ChatID, src.SenderID)
	case "leave":
		err = r.games.QuizLeave(src.ChatID, src.SenderID, src.SenderName)
	case "list":
		r.games.QuizList(src.ChatID)
	case "leaderboard":
		r.games.QuizLeaderboard(src.ChatID)
	default:
		r.send(src.ChatID, cmd.HelpMsg, nil)
	}

	if err != nil {
		r.send(src.ChatID, errorText(err), nil)
	}
}

func quizCreateErrorText(err error, category string) string {
	switch {
	case errors.Is(err, game.ErrInvalidCategory):
		return "❌ Invalid category. Available: " + strings.Join(categoryNames(), ", ")
	case errors.Is(err, game.ErrInvalidDifficulty):
		return "❌ Invalid difficulty. Available: " + strings.Join(trivia.Difficulties[category], ", ")
	default:
		return errorText(err)
	}
}
