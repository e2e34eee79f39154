package cmds

import "strings"

const tttHelpMsg = `Play Tic-Tac-Toe against another player.
Usage: .ttt [room name]
       .ttt stats       - your win/loss record
       .ttt leaderboard - top players
       .ttt list        - active games

Without a room name, .ttt joins any open challenge or creates one.
During a game, type a number (1-9) to play or *surrender* to quit.`

type TTTCommand struct {
	cmdBase
}

func NewTTTCommand() *TTTCommand {
	return &TTTCommand{
		cmdBase: cmdBase{
			Name:    "ttt",
			HelpMsg: tttHelpMsg,
			MaxArgs: 0, // room names may span any number of words
			MinArgs: 0,
		},
	}
}

func (cmd *TTTCommand) Self() *cmdBase {
	return &cmd.cmdBase
}

func (cmd *TTTCommand) Exec(r *Registry, args []string, src *srcMsg) {
	sub := ""
	if len(args) > 0 {
		sub = strings.ToLower(args[0])
	}

	switch sub {
	case "stats":
		r.games.TTTStats(src.ChatID, src.SenderID)
	case "leaderboard":
		r.games.TTTLeaderboard(src.ChatID)
	case "list":
		r.games.TTTList(src.ChatID)
	default:
		roomName := strings.Join(args, " ")
		if err := r.games.TTTChallenge(src.ChatID, src.SenderID, src.SenderName, roomName); err != nil {
			r.send(src.ChatID, errorText(err), nil)
		}
	}
}
