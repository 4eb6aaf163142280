package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pixil98/go-shard/internal/instance"
)

// ConsoleSenderID identifies the local server console. The console always
// has admin privileges.
const ConsoleSenderID = "console"

const helpText = `Instance Management Commands:
  instance create <name> [description] - Create a new instance
  instance list - List all instances
  instance info [name] - Show instance information
  instance join <name> - Join an instance
  instance leave - Leave current instance
  instance delete <name> - Delete an instance (admin only)
  instance reset <name> - Reset instance data (admin only)
  instance stats [name] - Show instance statistics

Examples:
  instance create MyInstance "A private game instance"
  instance join MyInstance
  instance list
`

// Handler executes instance management commands against the registry on
// behalf of a sender. Output goes to the writer; invalid input comes back
// as a *UserError so sessions can show it without treating it as a fault.
type Handler struct {
	reg    *instance.Registry
	admins map[string]struct{}
}

func NewHandler(reg *instance.Registry, admins []string) *Handler {
	h := &Handler{
		reg:    reg,
		admins: make(map[string]struct{}, len(admins)),
	}
	for _, id := range admins {
		if id != "" {
			h.admins[id] = struct{}{}
		}
	}
	return h
}

// Exec executes a command line. The command name is matched
// case-insensitively; "inst" is an alias for "instance".
func (h *Handler) Exec(ctx context.Context, w io.Writer, senderID, cmdName string, args ...string) error {
	switch strings.ToLower(cmdName) {
	case "help":
		fmt.Fprint(w, helpText)
		return nil
	case "instance", "inst":
	default:
		return NewUserError(fmt.Sprintf("Unknown command: %s", cmdName))
	}

	if len(args) == 0 {
		fmt.Fprint(w, helpText)
		return nil
	}

	sub := strings.ToLower(args[0])
	rest := args[1:]

	switch sub {
	case "create":
		return h.execCreate(w, senderID, rest)
	case "list":
		return h.execList(w)
	case "info":
		return h.execInfo(w, senderID, rest)
	case "join":
		return h.execJoin(w, senderID, rest)
	case "leave":
		return h.execLeave(w, senderID)
	case "delete", "remove":
		return h.execDelete(w, senderID, rest)
	case "reset":
		return h.execReset(w, senderID, rest)
	case "stats":
		return h.execStats(w, senderID, rest)
	case "help":
		fmt.Fprint(w, helpText)
		return nil
	default:
		return NewUserError(fmt.Sprintf("Unknown subcommand: %s", sub))
	}
}

// isAdmin reports whether the sender may run privileged subcommands.
func (h *Handler) isAdmin(senderID string) bool {
	if senderID == ConsoleSenderID {
		return true
	}
	_, ok := h.admins[senderID]
	return ok
}
