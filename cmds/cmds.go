package cmds

import (
	"errors"
	"strings"

	"github.com/google/shlex"
	waLog "go.mau.fi/whatsmeow/util/log"

	"go-wagames/game"
	"go-wagames/wabot"
)

const commandPrefix = '.'

type srcMsg struct {
	SenderID   string
	ChatID     string
	SenderName string
}

type command interface {
	Self() *cmdBase
	Exec(r *Registry, args []string, src *srcMsg)
}

type cmdBase struct {
	Name    string // Command name
	HelpMsg string // Help message
	MaxArgs int    // Maximum number of arguments
	MinArgs int    // Minimum number of arguments
}

// Registry maps command names to handlers. The game manager is injected
// rather than reached through package state, so tests can run a router
// against an isolated store.
type Registry struct {
	games  *game.Manager
	send   game.NotifyFunc
	cmdMap map[string]command
	log    waLog.Logger
}

func NewRegistry(games *game.Manager, send game.NotifyFunc, log waLog.Logger) *Registry {
	return &Registry{
		games: games,
		send:  send,
		log:   log,
		cmdMap: map[string]command{
			"ttt": NewTTTCommand(),
			"wcg": NewWcgCommand(),
		},
	}
}

// Handle routes one inbound message: dot-commands to their handlers,
// everything else offered to the game manager as a free-text reply.
func (r *Registry) Handle(msg *wabot.Message) bool /* is command */ {
	src := &srcMsg{
		SenderID:   msg.SenderID,
		ChatID:     msg.ChatID,
		SenderName: senderName(msg),
	}

	// A failure inside a session operation must not leave the session
	// stuck in Active; the timeout sweep alone is too slow a backstop.
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Errorf("panic handling %q from %s: %v", msg.Text, msg.SenderID, rec)
			r.games.Abandon(src.SenderID)
		}
	}()

	cmdName, raw, ok := parseCmd(msg.Text)
	if !ok {
		handled, err := r.games.HandleText(src.ChatID, src.SenderID, src.SenderName, msg.Text)
		if handled && err != nil {
			r.send(src.ChatID, errorText(err), nil)
		}
		return false
	}

	cmd, exists := r.cmdMap[cmdName]
	if !exists {
		return false
	}
	base := cmd.Self()

	args, err := shlex.Split(raw)
	if err != nil {
		r.send(src.ChatID, base.HelpMsg, nil)
		return true
	}
	if len(args) < base.MinArgs || (base.MaxArgs > 0 && len(args) > base.MaxArgs) {
		r.send(src.ChatID, base.HelpMsg, nil)
		return true
	}
	if isHelpRequest(args) {
		r.send(src.ChatID, base.HelpMsg, nil)
		return true
	}

	cmd.Exec(r, args, src)
	return true
}

func parseCmd(text string) (name, rest string, ok bool) {
	text = strings.TrimSpace(text)
	if len(text) < 2 || text[0] != commandPrefix {
		return "", "", false
	}
	text = text[1:]
	if i := strings.IndexByte(text, ' '); i >= 0 {
		return strings.ToLower(text[:i]), text[i+1:], true
	}
	return strings.ToLower(text), "", true
}

func isHelpRequest(args []string) bool {
	if len(args) == 0 {
		return false
	}
	return args[0] == "-h" || args[0] == "-?" || args[0] == "--help"
}

func senderName(msg *wabot.Message) string {
	if msg.SenderName != "" {
		return msg.SenderName
	}
	if i := strings.IndexByte(msg.SenderID, '@'); i >= 0 {
		return msg.SenderID[:i]
	}
	return msg.SenderID
}

// errorText translates engine errors into the short messages players
// see. Unknown errors get a generic line and a log entry upstream.
func errorText(err error) string {
	switch {
	case errors.Is(err, game.ErrAlreadyInSession):
		return "⚠️ You are already in a game! Finish it or type *surrender* / use .wcg leave first."
	case errors.Is(err, game.ErrSessionNotFound):
		return "❌ Game not found. Use .wcg list to see available games."
	case errors.Is(err, game.ErrSessionFull):
		return "❌ This game is already full."
	case errors.Is(err, game.ErrNotYourTurn):
		return "⌛ Not your turn! Wait for your opponent to play."
	case errors.Is(err, game.ErrCellOccupied):
		return "❌ Invalid move! That position is already taken."
	case errors.Is(err, game.ErrInvalidCell):
		return "❌ Please pick a cell between 1 and 9."
	case errors.Is(err, game.ErrInvalidChoice):
		return "❌ Please answer with a number between 1-4."
	case errors.Is(err, game.ErrAlreadyAnswered):
		return "⚠️ You already answered this question."
	case errors.Is(err, game.ErrNoActiveQuestion):
		return "⏳ No active question or time has expired."
	case errors.Is(err, game.ErrNotInSession):
		return "❌ You are not part of this game."
	case errors.Is(err, game.ErrNotCreator):
		return "❌ You are not the creator of any active game here."
	case errors.Is(err, game.ErrNotEnoughPlayers):
		return "❌ You need at least 2 players to start. Wait for others to join!"
	case errors.Is(err, game.ErrAlreadyStarted):
		return "❌ That game has already started."
	case errors.Is(err, game.ErrGameOver):
		return "🏆 That game is already over."
	default:
		return "❌ An error occurred. Please try again later."
	}
}
