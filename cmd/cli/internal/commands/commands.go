package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/secunda/directory/internal/api"
	"github.com/secunda/directory/internal/client"
)

type Globals struct {
	Debug   bool
	Version string
}

// ClientFlags are shared by every command that calls the server.
type ClientFlags struct {
	Server   string        `help:"Server URL" default:"http://localhost:8080" env:"DIRECTORY_SERVER"`
	Timeout  time.Duration `help:"request timeout" default:"30s"`
	CacheDir string        `help:"HTTP cache directory, empty keeps the cache in memory" default:"${cache_dir}" env:"DIRECTORY_CACHE_DIR"`
}

func (f *ClientFlags) client(globals *Globals) *client.Client {
	if globals.Debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	return client.New(client.Config{
		ServerURL: f.Server,
		Timeout:   f.Timeout,
		CacheDir:  f.CacheDir,
		Debug:     globals.Debug,
	})
}

// DefaultCacheDir is the per-user HTTP cache location, or empty when the
// platform has none.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "directory-cli", "http")
}

const separatorWidth = 110

func printSeparator(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("─", separatorWidth))
}

func printOrganizationRefs(w io.Writer, orgs []api.OrganizationRef) {
	if len(orgs) == 0 {
		fmt.Fprintln(w, "No organizations found.")
		return
	}

	fmt.Fprintf(w, "%-36s %s\n", "Organization ID", "Name")
	printSeparator(w)
	for _, o := range orgs {
		fmt.Fprintf(w, "%-36s %s\n", o.ID, o.Name)
	}
}

func coordinateString(c *string) string {
	if c == nil {
		return "-"
	}
	return *c
}
