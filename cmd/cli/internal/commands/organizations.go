package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/secunda/directory/internal/api"
)

type AddressCmd struct {
	ClientFlags `embed:""`
	Address     string `arg:"" help:"Exact building address"`
}

func (c *AddressCmd) Run(ctx context.Context, globals *Globals) error {
	resp, err := c.client(globals).OrganizationsByAddress(ctx, c.Address)
	if err != nil {
		return fmt.Errorf("failed to list organizations: %w", err)
	}

	printAddressOrganizations(os.Stdout, resp)
	return nil
}

func printAddressOrganizations(w io.Writer, resp *api.AddressOrganizationsResponse) {
	fmt.Fprintf(w, "Organizations at %s:\n", resp.Address)
	if len(resp.Organizations) == 0 {
		fmt.Fprintln(w, "No organizations found.")
		return
	}

	fmt.Fprintf(w, "%-36s %-30s %s\n", "Organization ID", "Name", "Coordinate")
	printSeparator(w)
	for _, o := range resp.Organizations {
		fmt.Fprintf(w, "%-36s %-30s %s\n", o.OrganizationID, o.OrganizationName, coordinateString(o.Coordinate))
	}
}

type ActivityCmd struct {
	ClientFlags `embed:""`
	Name        string `arg:"" help:"Activity name, at any level"`
}

func (c *ActivityCmd) Run(ctx context.Context, globals *Globals) error {
	resp, err := c.client(globals).OrganizationsByActivity(ctx, c.Name)
	if err != nil {
		return fmt.Errorf("failed to list organizations: %w", err)
	}

	fmt.Printf("Organizations tagged %s:\n", resp.Activity)
	printOrganizationRefs(os.Stdout, resp.Organizations)
	return nil
}

type TreeCmd struct {
	ClientFlags `embed:""`
	Name        string `arg:"" help:"Root activity name"`
}

func (c *TreeCmd) Run(ctx context.Context, globals *Globals) error {
	resp, err := c.client(globals).OrganizationsByActivityTree(ctx, c.Name)
	if err != nil {
		return fmt.Errorf("failed to list organizations: %w", err)
	}

	printTreeOrganizations(os.Stdout, resp)
	return nil
}

func printTreeOrganizations(w io.Writer, resp *api.ActivityTreeOrganizationsResponse) {
	fmt.Fprintf(w, "Organizations under %s:\n", resp.Activity)
	if len(resp.Organizations) == 0 {
		fmt.Fprintln(w, "No organizations found.")
		return
	}

	fmt.Fprintf(w, "%-36s %-30s %s\n", "Organization ID", "Name", "Activities")
	printSeparator(w)
	for _, o := range resp.Organizations {
		fmt.Fprintf(w, "%-36s %-30s %s\n", o.ID, o.Name, strings.Join(o.Activities, ", "))
	}
}

type SearchCmd struct {
	ClientFlags `embed:""`
	Query       string `arg:"" help:"Name fragment, case insensitive"`
	Limit       int    `help:"Maximum number of results" default:"20"`
}

func (c *SearchCmd) Run(ctx context.Context, globals *Globals) error {
	resp, err := c.client(globals).SearchOrganizations(ctx, c.Query, c.Limit)
	if err != nil {
		return fmt.Errorf("failed to search organizations: %w", err)
	}

	fmt.Printf("Organizations matching %q (%d):\n", resp.Query, resp.Count)
	for i, o := range resp.Organizations {
		if i > 0 {
			fmt.Println()
		}
		printOrganization(os.Stdout, &o)
	}
	return nil
}

type OrgCmd struct {
	ClientFlags `embed:""`
	ID          string `arg:"" help:"Organization ID"`
}

func (c *OrgCmd) Run(ctx context.Context, globals *Globals) error {
	id, err := parseID(c.ID)
	if err != nil {
		return err
	}

	org, err := c.client(globals).GetOrganization(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get organization: %w", err)
	}

	printOrganization(os.Stdout, org)
	return nil
}

func printOrganization(w io.Writer, org *api.Organization) {
	fmt.Fprintf(w, "%-12s %s\n", "ID:", org.ID)
	fmt.Fprintf(w, "%-12s %s\n", "Name:", org.Name)
	fmt.Fprintf(w, "%-12s %s (%s)\n", "Building:", org.Building.Address, coordinateString(org.Building.Coordinate))
	fmt.Fprintf(w, "%-12s %s\n", "Phones:", joinOrDash(org.PhoneNumbers))
	fmt.Fprintf(w, "%-12s %s\n", "Activities:", joinOrDash(org.Activities))
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
