package commands

import (
	"fmt"
	"io"
	"strings"
)

// execCreate creates a new instance owned by the sender. Everything after
// the name becomes the description.
func (h *Handler) execCreate(w io.Writer, senderID string, args []string) error {
	if len(args) < 1 {
		return NewUserError("Usage: instance create <name> [description]")
	}

	name := args[0]
	description := strings.Join(args[1:], " ")

	inst := h.reg.CreateInstance(name, senderID, description)
	if inst == nil {
		return NewUserError(fmt.Sprintf("Failed to create instance: %s (may already exist)", name))
	}

	fmt.Fprintf(w, "Created instance: %s\n", name)
	fmt.Fprintf(w, "Instance ID: %s\n", inst.ID())
	return nil
}
