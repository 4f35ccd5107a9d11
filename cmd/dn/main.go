package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

const searchHelp = `Every pattern must match. A pattern is [prefix:]pattern[:flags].
   Prefixes:
     (none)  all text of the note, ignoring case
     ti      title
     ta      tags
     nb      notebook
     cr      created
     up      updated
   Flags:
     B | b   on or after / before, for cr and up
     i | I   ignore / respect case, for ti, ta and nb
     w | W   whole / partial word, for ti, ta and nb
   Timestamps may be truncated: 2021, 2021-06, 2021-06-01, 2021-06-01 09:30.
   Examples:
     dn s powershell
     dn s ti:powershell ta:ps1:w
     dn s powershell "up:2022-01-12:b"
     dn s cr:2021:B`

func newCommand() *cli.Command {
	indexUsage := "[index]"
	return &cli.Command{
		Name:  "dn",
		Usage: "Manage plain-text notes from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "$XDG_CONFIG_HOME/donno/config.yaml",
				Sources:     cli.EnvVars("DONNO_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "add",
				Aliases: []string{"a"},
				Usage:   "Add a new note in the editor",
				Action:  addNote,
			},
			{
				Name:      "list",
				Aliases:   []string{"l"},
				Usage:     "List the most recently updated notes",
				ArgsUsage: "[number]",
				Action:    listNotes,
			},
			{
				Name:        "search",
				Aliases:     []string{"s"},
				Usage:       "Search notes",
				ArgsUsage:   "pattern...",
				Description: searchHelp,
				Action:      searchNotes,
			},
			{
				Name:      "view",
				Aliases:   []string{"v"},
				Usage:     "Open a note from the last listing in the viewer",
				ArgsUsage: indexUsage,
				Action:    viewNote,
			},
			{
				Name:      "edit",
				Aliases:   []string{"e"},
				Usage:     "Edit a note from the last listing",
				ArgsUsage: indexUsage,
				Action:    editNote,
			},
			{
				Name:      "delete",
				Aliases:   []string{"del"},
				Usage:     "Delete a note from the last listing",
				ArgsUsage: indexUsage,
				Action:    deleteNote,
			},
			{
				Name:    "list-notebook",
				Aliases: []string{"lnb"},
				Usage:   "List notebooks with note counts",
				Action:  listNotebooks,
			},
			{
				Name:    "config",
				Aliases: []string{"conf"},
				Usage:   "Get or set configuration",
				Commands: []*cli.Command{
					{
						Name:      "get",
						Usage:     "Print all configuration, or one key",
						ArgsUsage: "[key]",
						Action:    configGet,
					},
					{
						Name:      "set",
						Usage:     "Set one key and save the configuration",
						ArgsUsage: "key value",
						Action:    configSet,
					},
				},
			},
			{
				Name:      "backup",
				Aliases:   []string{"b"},
				Usage:     "Commit and push notes to the remote repository",
				ArgsUsage: "[message]",
				Action:    backup,
			},
			{
				Name:    "sync",
				Aliases: []string{"y"},
				Usage:   "Pull notes from the remote repository",
				Action:  syncNotes,
			},
			{
				Name:   "serve",
				Usage:  "Serve the read-only HTTP API",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools on stdin/stdout",
				Action: serveMCP,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("dn failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
