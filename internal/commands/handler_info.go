package commands

import (
	"fmt"
	"io"

	"github.com/pixil98/go-shard/internal/instance"
)

// execInfo shows the stats block for a named instance, or for the sender's
// current instance when no name is given.
func (h *Handler) execInfo(w io.Writer, senderID string, args []string) error {
	var inst *instance.Instance
	if len(args) < 1 {
		inst = h.reg.GetPlayerInstance(senderID)
	} else {
		inst = h.reg.GetInstanceByName(args[0])
	}

	if inst == nil {
		return NewUserError("Instance not found")
	}

	fmt.Fprintln(w, inst.Stats())
	return nil
}
