package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/secunda/directory/internal/api"
)

type NearbyCmd struct {
	ClientFlags `embed:""`
	BuildingID  string  `arg:"" help:"ID of the building at the center"`
	Radius      float64 `help:"Search radius in meters, zero uses the server default" default:"0"`
	Limit       int     `help:"Maximum number of buildings, zero uses the server default" default:"0"`
}

func (c *NearbyCmd) Run(ctx context.Context, globals *Globals) error {
	id, err := parseID(c.BuildingID)
	if err != nil {
		return err
	}

	resp, err := c.client(globals).Nearby(ctx, id, c.Radius, c.Limit)
	if err != nil {
		return fmt.Errorf("failed to list nearby buildings: %w", err)
	}

	printNearby(os.Stdout, resp)
	return nil
}

func printNearby(w io.Writer, resp *api.NearbyResponse) {
	fmt.Fprintf(w, "Buildings within %.0fm of %s:\n", resp.RadiusMeters, resp.Center.Address)
	if len(resp.Buildings) == 0 {
		fmt.Fprintln(w, "No buildings found.")
		return
	}

	fmt.Fprintf(w, "%-36s %10s  %-40s %s\n", "Building ID", "Distance", "Address", "Organizations")
	printSeparator(w)
	for _, b := range resp.Buildings {
		fmt.Fprintf(w, "%-36s %9.1fm  %-40s %d\n", b.ID, b.DistanceMeters, b.Address, len(b.Organizations))
		for _, o := range b.Organizations {
			fmt.Fprintf(w, "    %-36s %s\n", o.ID, o.Name)
		}
	}
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", raw, err)
	}
	return id, nil
}
