package commands

import (
	"fmt"
	"io"

	"github.com/pixil98/go-shard/internal/instance"
)

// execLeave moves the sender back to the default instance.
func (h *Handler) execLeave(w io.Writer, senderID string) error {
	current := h.reg.GetPlayerInstance(senderID)
	if current == nil || current.ID() == instance.DefaultInstanceID {
		return NewUserError("You are not in any instance")
	}

	if !h.reg.AssignPlayerToInstance(senderID, instance.DefaultInstanceID) {
		return NewUserError("Failed to leave instance")
	}

	fmt.Fprintf(w, "Left instance: %s\n", current.Name())
	return nil
}
