package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/starford/donno/internal"
	"github.com/starford/donno/internal/checksum"
	"github.com/starford/donno/internal/models"
	"github.com/starford/donno/internal/parser"
	"github.com/starford/donno/internal/vcs"
	pkgconfig "github.com/starford/donno/pkg/config"
)

func addNote(ctx context.Context, cmd *cli.Command) error {
	e, comps, err := open(cmd)
	if err != nil {
		return err
	}
	defer comps.Close()

	draft, err := os.CreateTemp("", "donno-draft-*.md")
	if err != nil {
		return fmt.Errorf("create draft: %w", err)
	}
	draftPath := draft.Name()
	_, err = draft.Write(parser.Template(e.cfg.Notes.DefaultNotebook, models.Now()))
	if cerr := draft.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write draft: %w", err)
	}

	if err := runEditor(ctx, e.cfg.Editor.Command, draftPath); err != nil {
		return fmt.Errorf("%w (draft kept at %s)", err, draftPath)
	}
	data, err := os.ReadFile(draftPath)
	if err != nil {
		return fmt.Errorf("read draft: %w", err)
	}
	note, err := parser.Parse(data)
	if err != nil {
		return fmt.Errorf("%w (draft kept at %s)", err, draftPath)
	}
	path, err := comps.Notes.Create(ctx, *note)
	if err != nil {
		return fmt.Errorf("%w (draft kept at %s)", err, draftPath)
	}
	_ = os.Remove(draftPath)
	fmt.Fprintf(e.out, "added: %s\n", filepath.Base(path))
	return nil
}

func listNotes(ctx context.Context, cmd *cli.Command) error {
	limit, err := limitArg(cmd)
	if err != nil {
		return err
	}
	e, comps, err := open(cmd)
	if err != nil {
		return err
	}
	defer comps.Close()

	res, err := comps.Notes.List(ctx, limit)
	if err != nil {
		return err
	}
	printSkipped(e.errOut, res.Failed)
	printListing(e.out, res.Notes)
	return nil
}

func searchNotes(ctx context.Context, cmd *cli.Command) error {
	patterns := cmd.Args().Slice()
	if len(patterns) == 0 {
		return errors.New("search needs at least one pattern, see dn search --help")
	}
	e, comps, err := open(cmd)
	if err != nil {
		return err
	}
	defer comps.Close()

	res, err := comps.Notes.Search(ctx, patterns)
	if err != nil {
		return err
	}
	printSkipped(e.errOut, res.Failed)
	printListing(e.out, res.Notes)
	return nil
}

func viewNote(ctx context.Context, cmd *cli.Command) error {
	ordinal, err := indexArg(cmd)
	if err != nil {
		return err
	}
	e, comps, err := openExisting(cmd)
	if err != nil {
		return err
	}
	defer comps.Close()

	path, err := comps.Notes.ResolvePath(ctx, ordinal)
	if err != nil {
		return err
	}
	return runEditor(ctx, e.cfg.Editor.Viewer, path)
}

func editNote(ctx context.Context, cmd *cli.Command) error {
	ordinal, err := indexArg(cmd)
	if err != nil {
		return err
	}
	e, comps, err := openExisting(cmd)
	if err != nil {
		return err
	}
	defer comps.Close()

	path, err := comps.Notes.ResolvePath(ctx, ordinal)
	if err != nil {
		return err
	}
	before, err := comps.Store.Read(path)
	if err != nil {
		return err
	}
	if err := runEditor(ctx, e.cfg.Editor.Command, path); err != nil {
		return err
	}
	after, err := comps.Store.Read(path)
	if err != nil {
		return err
	}
	if checksum.Sum(before) == checksum.Sum(after) {
		fmt.Fprintln(e.out, "no changes")
		return nil
	}
	n, err := comps.Notes.Touch(ctx, path, comps.Notes.MarkUpdated())
	if err != nil {
		return fmt.Errorf("note saved but not stamped: %w", err)
	}
	fmt.Fprintf(e.out, "updated: %s\n", n.Title)
	return nil
}

func deleteNote(ctx context.Context, cmd *cli.Command) error {
	ordinal, err := indexArg(cmd)
	if err != nil {
		return err
	}
	e, comps, err := openExisting(cmd)
	if err != nil {
		return err
	}
	defer comps.Close()

	path, err := comps.Notes.ResolvePath(ctx, ordinal)
	if err != nil {
		return err
	}
	label := filepath.Base(path)
	if n, err := comps.Notes.Read(ctx, path); err == nil {
		label = n.Title
	}
	if err := comps.Notes.Delete(ctx, path); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "deleted: %s\n", label)
	return nil
}

func listNotebooks(ctx context.Context, cmd *cli.Command) error {
	e, comps, err := open(cmd)
	if err != nil {
		return err
	}
	defer comps.Close()

	nbs, err := comps.Notes.Notebooks(ctx)
	if err != nil {
		return err
	}
	printNotebooks(e.out, nbs)
	return nil
}

func configGet(_ context.Context, cmd *cli.Command) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	keys := internal.Keys()
	if key := cmd.Args().First(); key != "" {
		keys = []string{key}
	}
	for _, k := range keys {
		v, err := e.cfg.Get(k)
		if err != nil {
			return err
		}
		if cmd.Args().Present() {
			fmt.Fprintln(e.out, v)
		} else {
			fmt.Fprintf(e.out, "%s = %s\n", k, v)
		}
	}
	return nil
}

func configSet(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 2 {
		return errors.New("usage: dn config set key value")
	}
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	key, value := cmd.Args().Get(0), cmd.Args().Get(1)
	if err := e.cfg.Set(key, value); err != nil {
		return err
	}
	if err := pkgconfig.Save(e.cfgPath, e.cfg); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s = %s\n", key, value)
	return nil
}

func backup(ctx context.Context, cmd *cli.Command) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	repo, err := vcs.New(ctx, e.cfg.Notes.Path, e.logger)
	if err != nil {
		return err
	}
	message := cmd.Args().First()
	if message == "" {
		message = "backup " + models.FormatTime(models.Now())
	}
	if err := repo.Backup(ctx, message); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "backup done")
	return nil
}

func syncNotes(ctx context.Context, cmd *cli.Command) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	repo, err := vcs.New(ctx, e.cfg.Notes.Path, e.logger)
	if err != nil {
		return err
	}
	if err := repo.Sync(ctx); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "sync done")
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(e.cfg.App.LogLevel, e.out)
	if err := internal.Run(ctx, internal.WithConfig(e.cfg), internal.WithLogger(logger)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(e.cfg), internal.WithLogger(e.logger))
}
