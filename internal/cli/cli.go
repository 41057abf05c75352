package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/adlio/schemer"
)

// Context contains the objects shared by all commands. It is passed around
// to avoid direct dependencies on the process environment, which makes
// testing easier.
type Context struct {
	Ctx    context.Context // global context
	Logger *slog.Logger    // global logger
	Stdout io.Writer
}

// CLI is the command line interface of schemer.
type CLI struct {
	Sync   Sync   `kong:"cmd,help='Reconcile database tables with declaration files.'"`
	Render Render `kong:"cmd,help='Print the create table migration of declaration files.'"`

	Log struct {
		Level slog.Level `enum:"DEBUG,INFO,WARN,ERROR" default:"INFO" help:"Set the app logging level."`
	} `embed:"" prefix:"log-"`
	Version kong.VersionFlag `kong:"help='Output version and exit.'"`

	kong *kong.Kong
	kctx *kong.Context
}

// New initializes the command-line interface.
func New(version string, options ...kong.Option) (*CLI, error) {
	c := &CLI{}
	options = append([]kong.Option{
		kong.Name("schemer"),
		kong.Description("Keep database tables in step with their declared columns."),
		kong.UsageOnError(),
		kong.DefaultEnvars("SCHEMER"),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Vars{"version": version},
	}, options...)

	kparser, err := kong.New(c, options...)
	if err != nil {
		return nil, fmt.Errorf("failed creating the Kong parser: %w", err)
	}
	c.kong = kparser

	return c, nil
}

// Parse the given command line arguments. This method must be called before
// Execute.
func (c *CLI) Parse(args []string) error {
	kctx, err := c.kong.Parse(args)
	if err != nil {
		return fmt.Errorf("failed parsing CLI arguments: %w", err)
	}
	c.kctx = kctx

	return nil
}

// Execute starts the command execution. Parse must be called before this method.
func (c *CLI) Execute(appCtx *Context) error {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	c.kong.Stdout = appCtx.Stdout

	//nolint:wrapcheck // Commands wrap their own errors.
	return c.kctx.Run(appCtx)
}

// loadDefinitions reads the declaration files at each path. Directories
// contribute every .yml and .yaml file they contain.
func loadDefinitions(paths []string) ([]*schemer.Definition, error) {
	definitions := make([]*schemer.Definition, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed reading declarations: %w", err)
		}

		if info.IsDir() {
			defs, err := schemer.DefinitionsFromDirectoryPath(path)
			if err != nil {
				return nil, err
			}
			definitions = append(definitions, defs...)
			continue
		}

		def, err := schemer.DefinitionFromFilePath(path)
		if err != nil {
			return nil, err
		}
		definitions = append(definitions, def)
	}

	if len(definitions) == 0 {
		return nil, fmt.Errorf("no declaration files found in %v", paths)
	}

	return definitions, nil
}
