package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/kailabs/kapsel/internal/config"
	"github.com/kailabs/kapsel/internal/errors"
	"github.com/kailabs/kapsel/internal/index"
	"github.com/kailabs/kapsel/internal/ops"
	"github.com/kailabs/kapsel/internal/web"
)

func newCLIApp(db *sql.DB, idx *index.Index, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "kapsel",
		Usage:   "Knowledge capsule store",
		Version: Version,
		Commands: []*cli.Command{
			createCmd(db, idx),
			getCmd(db),
			updateCmd(db),
			listCmd(db),
			searchCmd(db, idx),
			collideCmd(db),
			fuseCmd(db, idx),
			reproduceCmd(db, idx),
			verifyCmd(db),
			traceCmd(db),
			statusCmd(db, idx),
			collisionsCmd(db),
			exportCmd(db, cfg),
			importCmd(db, idx, cfg),
			uiCmd(db, idx),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// createCmd creates the create command.
func createCmd(db *sql.DB, idx *index.Index) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a new capsule (details may be piped via stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "summary", Aliases: []string{"s"}, Required: true, Usage: "One-line core insight"},
			&cli.Float64Flag{Name: "confidence", Aliases: []string{"c"}, Value: 0.5, Usage: "Confidence score in [0,1]"},
			&cli.StringFlag{Name: "domain", Aliases: []string{"d"}, Required: true, Usage: "Primary domain"},
			&cli.StringFlag{Name: "discipline", Required: true, Usage: "Discipline within the domain"},
			&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
			&cli.StringFlag{Name: "sources", Usage: "Comma-separated sources"},
			&cli.StringFlag{Name: "related", Usage: "Comma-separated related capsule ids"},
			&cli.StringFlag{Name: "discovered-by", Usage: "Discoverer (defaults to unknown)"},
			&cli.StringFlag{Name: "method", Usage: "Discovery method"},
			&cli.StringFlag{Name: "source", Usage: "Original source"},
		},
		Action: func(c *cli.Context) error {
			var details string
			if stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(fmt.Errorf("failed to read stdin: %w", err))
				}
				details = text
			}

			created, err := ops.Create(db, idx, ops.CreateInput{
				Summary:         c.String("summary"),
				Details:         details,
				Confidence:      c.Float64("confidence"),
				Sources:         splitCommas(c.String("sources")),
				Domain:          c.String("domain"),
				Discipline:      c.String("discipline"),
				Tags:            splitCommas(c.String("tags")),
				RelatedIDs:      splitCommas(c.String("related")),
				DiscoveredBy:    c.String("discovered-by"),
				DiscoveryMethod: c.String("method"),
				OriginalSource:  c.String("source"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(created)
		},
	}
}

// getCmd creates the get command.
func getCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch a capsule by id",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewValidation("usage: kapsel get <id>"))
			}
			capsule, err := ops.Get(db, ops.GetInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(capsule)
		},
	}
}

// updateCmd creates the update command.
func updateCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Revise a capsule's details (piped via stdin) and/or append improvement notes",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "notes", Usage: "Comma-separated improvement notes"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewValidation("usage: kapsel update <id>"))
			}

			input := ops.UpdateInput{
				ID:               c.Args().First(),
				ImprovementNotes: splitCommas(c.String("notes")),
			}
			if stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(fmt.Errorf("failed to read stdin: %w", err))
				}
				input.NewDetails = &text
			}

			updated, err := ops.Update(db, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(updated)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List capsule summaries in insertion order",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "domain", Aliases: []string{"d"}, Usage: "Filter by domain"},
			&cli.IntFlag{Name: "limit", Value: ops.DefaultListLimit, Usage: "Page size"},
			&cli.IntFlag{Name: "offset", Usage: "Page offset"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ListInput{
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			}
			if d := c.String("domain"); d != "" {
				input.Domain = &d
			}

			out, err := ops.List(db, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(out)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(db *sql.DB, idx *index.Index) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search capsules by keyword (domain, discipline, or tag)",
		ArgsUsage: "<keyword>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewValidation("usage: kapsel search <keyword>"))
			}
			out, err := ops.SearchByKeyword(db, idx, ops.SearchInput{Keyword: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(out)
		},
	}
}

// collideCmd creates the collide command.
func collideCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "collide",
		Usage:     "Score the collision between two capsules and append it to the log",
		ArgsUsage: "<id1> <id2>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return outputError(errors.NewValidation("usage: kapsel collide <id1> <id2>"))
			}
			collision, err := ops.Collide(db, ops.CollideInput{
				ID1: c.Args().Get(0),
				ID2: c.Args().Get(1),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(collision)
		},
	}
}

// fuseCmd creates the fuse command.
func fuseCmd(db *sql.DB, idx *index.Index) *cli.Command {
	return &cli.Command{
		Name:      "fuse",
		Usage:     "Fuse two or more capsules into a new cross-domain capsule",
		ArgsUsage: "<id>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "method", Aliases: []string{"m"}, Required: true, Usage: "Fusion method"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return outputError(errors.NewValidation("usage: kapsel fuse --method <method> <id1> <id2> [...]"))
			}
			fused, err := ops.Fuse(db, idx, ops.FuseInput{
				IDs:    c.Args().Slice(),
				Method: c.String("method"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(fused)
		},
	}
}

// reproduceCmd creates the reproduce command.
func reproduceCmd(db *sql.DB, idx *index.Index) *cli.Command {
	return &cli.Command{
		Name:  "reproduce",
		Usage: "Record a historical insight with a modern analysis (text may be piped via stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "Historical text (or pipe via stdin)"},
			&cli.StringFlag{Name: "analysis", Aliases: []string{"a"}, Required: true, Usage: "Modern analysis of the text"},
			&cli.StringFlag{Name: "domain", Aliases: []string{"d"}, Required: true, Usage: "Domain of the historical insight"},
		},
		Action: func(c *cli.Context) error {
			text := c.String("text")
			if text == "" && stdinHasData() {
				piped, err := readStdin()
				if err != nil {
					return outputError(fmt.Errorf("failed to read stdin: %w", err))
				}
				text = piped
			}
			created, err := ops.Reproduce(db, idx, ops.ReproduceInput{
				HistoricalText: text,
				ModernAnalysis: c.String("analysis"),
				Domain:         c.String("domain"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(created)
		},
	}
}

// verifyCmd creates the verify command.
func verifyCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Mark a capsule verified or rejected",
		ArgsUsage: "<id> <verified|rejected>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return outputError(errors.NewValidation("usage: kapsel verify <id> <verified|rejected>"))
			}
			out, err := ops.Verify(db, ops.VerifyInput{
				ID:     c.Args().Get(0),
				Result: c.Args().Get(1),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(out)
		},
	}
}

// traceCmd creates the trace command.
func traceCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "trace",
		Usage:     "Show a capsule's origin and evolution history",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewValidation("usage: kapsel trace <id>"))
			}
			out, err := ops.Trace(db, ops.TraceInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(out)
		},
	}
}

// statusCmd creates the status command.
func statusCmd(db *sql.DB, idx *index.Index) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show store totals",
		Action: func(c *cli.Context) error {
			out, err := ops.Status(db, idx)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(out)
		},
	}
}

// collisionsCmd creates the collisions command.
func collisionsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "collisions",
		Usage: "Page through the collision log, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: ops.DefaultCollisionLimit, Usage: "Page size"},
			&cli.IntFlag{Name: "offset", Usage: "Page offset"},
		},
		Action: func(c *cli.Context) error {
			out, err := ops.Collisions(db, ops.CollisionsInput{
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(out)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export all capsules to a JSONL or markdown file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output path (defaults to ~/.kapsel/exports)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "jsonl", Usage: "Export format: jsonl|markdown"},
		},
		Action: func(c *cli.Context) error {
			out, err := ops.Export(c.Context, db, cfg, ops.ExportInput{
				Path:   c.String("path"),
				Format: ops.ExportFormat(c.String("format")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(out)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB, idx *index.Index, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import capsules from a JSONL export file",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Duplicate handling: error|skip"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewValidation("usage: kapsel import <path>"))
			}
			out, err := ops.Import(db, idx, cfg, ops.ImportInput{
				Path: c.Args().First(),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(out)
		},
	}
}

// uiCmd creates the ui command, which serves the read-only web UI.
func uiCmd(db *sql.DB, idx *index.Index) *cli.Command {
	return &cli.Command{
		Name:  "ui",
		Usage: "Serve the read-only web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Value: 7411, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, idx, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// outputJSON prints v as indented JSON on stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if kErr, ok := err.(*errors.KapselError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", kErr.Code, kErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// splitCommas splits a comma-separated string, trimming each element.
func splitCommas(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
