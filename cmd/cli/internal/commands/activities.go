package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/secunda/directory/internal/api"
)

type ActivitiesCmd struct {
	ClientFlags `embed:""`
	Parent      string `help:"Show this root activity and its descendants instead of all roots" default:""`
}

func (c *ActivitiesCmd) Run(ctx context.Context, globals *Globals) error {
	resp, err := c.client(globals).ListActivities(ctx, c.Parent)
	if err != nil {
		return fmt.Errorf("failed to list activities: %w", err)
	}

	printActivities(os.Stdout, resp)
	return nil
}

func printActivities(w io.Writer, resp *api.ActivitiesResponse) {
	if resp.Parent == "" {
		fmt.Fprintln(w, "Root activities:")
	} else {
		fmt.Fprintf(w, "Activities under %s:\n", resp.Parent)
	}
	if len(resp.Activities) == 0 {
		fmt.Fprintln(w, "No activities found.")
		return
	}

	fmt.Fprintf(w, "%-36s %-30s %s\n", "Activity ID", "Name", "Parent ID")
	printSeparator(w)
	for _, a := range resp.Activities {
		parent := "-"
		if a.ParentID != nil {
			parent = a.ParentID.String()
		}
		fmt.Fprintf(w, "%-36s %-30s %s\n", a.ID, a.Name, parent)
	}
}
