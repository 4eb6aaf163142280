package commands

import (
	"fmt"
	"io"
)

// execReset wipes the named instance's members and progress. Admin only.
func (h *Handler) execReset(w io.Writer, senderID string, args []string) error {
	if !h.isAdmin(senderID) {
		return NewUserError("This command requires admin privileges")
	}
	if len(args) < 1 {
		return NewUserError("Usage: instance reset <name>")
	}

	name := args[0]
	inst := h.reg.GetInstanceByName(name)
	if inst == nil {
		return NewUserError(fmt.Sprintf("Instance not found: %s", name))
	}

	h.reg.ResetInstance(inst.ID())
	fmt.Fprintf(w, "Reset instance: %s\n", name)
	return nil
}
