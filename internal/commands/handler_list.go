package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// execList prints a summary of every registered instance, sorted by name.
func (h *Handler) execList(w io.Writer) error {
	instances := h.reg.GetAllInstances()
	if len(instances) == 0 {
		fmt.Fprintln(w, "No instances found")
		return nil
	}

	sort.Slice(instances, func(i, j int) bool {
		return strings.ToLower(instances[i].Name()) < strings.ToLower(instances[j].Name())
	})

	fmt.Fprintf(w, "Total Instances: %d\n", len(instances))
	fmt.Fprintln(w, strings.Repeat("-", 41))

	for _, inst := range instances {
		status := "Active"
		if !inst.Active {
			status = "Inactive"
		}
		players := fmt.Sprintf("%d", inst.PlayerCount())
		if inst.MaxPlayers > 0 {
			players = fmt.Sprintf("%d/%d", inst.PlayerCount(), inst.MaxPlayers)
		}

		fmt.Fprintf(w, "* %s [%s]\n", inst.Name(), status)
		fmt.Fprintf(w, "  ID: %s\n", inst.ID())
		fmt.Fprintf(w, "  Players: %s\n", players)
		if inst.Description != "" {
			fmt.Fprintf(w, "  Description: %s\n", inst.Description)
		}
		fmt.Fprintln(w)
	}
	return nil
}
