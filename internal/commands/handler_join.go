package commands

import (
	"fmt"
	"io"
)

// execJoin moves the sender into the named instance.
func (h *Handler) execJoin(w io.Writer, senderID string, args []string) error {
	if len(args) < 1 {
		return NewUserError("Usage: instance join <name>")
	}

	name := args[0]
	inst := h.reg.GetInstanceByName(name)
	if inst == nil {
		return NewUserError(fmt.Sprintf("Instance not found: %s", name))
	}

	if !h.reg.AssignPlayerToInstance(senderID, inst.ID()) {
		return NewUserError(fmt.Sprintf("Failed to join instance: %s (may be full)", name))
	}

	fmt.Fprintf(w, "Joined instance: %s\n", name)
	return nil
}
