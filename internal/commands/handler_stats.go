package commands

import (
	"fmt"
	"io"

	"github.com/pixil98/go-shard/internal/instance"
)

// execStats shows system-wide statistics, or a specific instance's stats
// block when a name is given.
func (h *Handler) execStats(w io.Writer, senderID string, args []string) error {
	if len(args) >= 1 {
		return h.execInfo(w, senderID, args)
	}

	fmt.Fprintln(w, "Instance System Statistics:")
	fmt.Fprintf(w, "  Total Instances: %d\n", h.reg.InstanceCount())
	fmt.Fprintf(w, "  Default Instance: %s\n", instance.DefaultInstanceID)
	return nil
}
