package commands

import (
	"fmt"
	"io"
)

// execDelete removes the named instance. Admin only.
func (h *Handler) execDelete(w io.Writer, senderID string, args []string) error {
	if !h.isAdmin(senderID) {
		return NewUserError("This command requires admin privileges")
	}
	if len(args) < 1 {
		return NewUserError("Usage: instance delete <name>")
	}

	name := args[0]
	inst := h.reg.GetInstanceByName(name)
	if inst == nil {
		return NewUserError(fmt.Sprintf("Instance not found: %s", name))
	}

	if !h.reg.DeleteInstance(inst.ID()) {
		return NewUserError(fmt.Sprintf("Failed to delete instance: %s", name))
	}

	fmt.Fprintf(w, "Deleted instance: %s\n", name)
	return nil
}
