package builtin

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/opencode-ai/runhost/internal/binder"
	"github.com/opencode-ai/runhost/internal/command"
)

// GlobConfig configures the glob command.
type GlobConfig struct {
	Pattern string
	Root    string
	Exclude []string
}

var globTable = binder.NewTable(
	binder.String("Pattern", func(c *GlobConfig) *string { return &c.Pattern }).
		Require().Describe("pattern to match, ** matches any number of directories"),
	binder.Path("Root", func(c *GlobConfig) *string { return &c.Root }).
		Describe("directory to search (default .)"),
	binder.Strings("Exclude", func(c *GlobConfig) *[]string { return &c.Exclude }).
		Describe("comma separated patterns to leave out"),
)

// GlobCommand prints the files under Root matching Pattern.
type GlobCommand struct {
	cfg *GlobConfig
	out io.Writer
}

func (c *GlobCommand) Execute(ctx context.Context) error {
	matches, err := doublestar.Glob(os.DirFS(c.cfg.Root), c.cfg.Pattern)
	if err != nil {
		return fmt.Errorf("glob %s: %w", c.cfg.Pattern, err)
	}

next:
	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, exclude := range c.cfg.Exclude {
			if ok, _ := doublestar.Match(exclude, match); ok {
				continue next
			}
		}
		fmt.Fprintln(c.out, match)
	}
	return nil
}

func globRegistration(out io.Writer) command.Registration {
	return command.Define(command.NameOf(&GlobCommand{}), globTable,
		func(cfg *GlobConfig) (command.Command, error) {
			if !doublestar.ValidatePattern(cfg.Pattern) {
				return nil, fmt.Errorf("invalid pattern: %s", cfg.Pattern)
			}
			return &GlobCommand{cfg: cfg, out: out}, nil
		},
		command.WithDescription("list files matching a pattern"),
		command.WithDefaults(func(c *GlobConfig) { c.Root = "." }),
	)
}
