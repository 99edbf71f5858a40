package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/secunda/directory/cmd/cli/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Address    commands.AddressCmd    `cmd:"" help:"List organizations at an address"`
		Activity   commands.ActivityCmd   `cmd:"" help:"List organizations tagged with an activity"`
		Tree       commands.TreeCmd       `cmd:"" help:"List organizations in an activity tree"`
		Nearby     commands.NearbyCmd     `cmd:"" help:"List buildings around a building"`
		Search     commands.SearchCmd     `cmd:"" help:"Search organizations by name"`
		Activities commands.ActivitiesCmd `cmd:"" help:"List activities"`
		Org        commands.OrgCmd        `cmd:"" help:"Show an organization"`
		Debug      bool                   `help:"Enable debug mode."`
		Version    kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("directory-cli"),
		kong.Vars{
			"version":   version,
			"cache_dir": commands.DefaultCacheDir(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
