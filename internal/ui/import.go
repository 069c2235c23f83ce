package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/studydesk/internal/conflict"
	"github.com/javiermolinar/studydesk/internal/db"
	"github.com/javiermolinar/studydesk/internal/task"
)

func (a *App) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <database_path>",
		Short: "Import tasks from another database",
		Long: `Import all tasks from another studydesk database into the current one.

Tasks keep their IDs; a task whose ID already exists is skipped. Imported
tasks are stored even when they overlap existing ones, and the number of
imported open sessions that now overlap something is reported.`,
		Example: `  studydesk import /path/to/laptop.db`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			destPath, err := resolvePath(a.config.Storage.DBPath)
			if err != nil {
				return err
			}
			if sourcePath == destPath {
				return fmt.Errorf("source database matches current database")
			}

			info, err := os.Stat(sourcePath)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("source database does not exist: %s", sourcePath)
				}
				return fmt.Errorf("checking source database: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("source database path is a directory: %s", sourcePath)
			}

			res, err := importTasks(cmd.Context(), a.repo, sourcePath, a.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d tasks from %s", res.Imported, sourcePath)
			if res.Skipped > 0 {
				fmt.Fprintf(out, " (%d already present)", res.Skipped)
			}
			fmt.Fprintln(out)
			if res.Conflicting > 0 {
				fmt.Fprintf(out, "%s %d imported sessions overlap other open sessions; run 'studydesk list --all' to review\n",
					formatWarn("!"), res.Conflicting)
			}
			return nil
		},
	}

	return cmd
}

type importResult struct {
	Imported    int
	Skipped     int
	Conflicting int
}

func importTasks(ctx context.Context, dest task.Repository, sourcePath string, logger *zap.Logger) (importResult, error) {
	var res importResult

	sourceRepo, err := db.New(sourcePath, db.WithLogger(logger))
	if err != nil {
		return res, fmt.Errorf("opening source database: %w", err)
	}
	defer func() { _ = sourceRepo.Close() }()

	tasks, err := sourceRepo.ListTasks(ctx)
	if err != nil {
		return res, fmt.Errorf("listing source tasks: %w", err)
	}

	var fresh []*task.Task
	for _, t := range tasks {
		_, err := dest.GetTask(ctx, t.ID)
		switch {
		case err == nil:
			res.Skipped++
		case errors.Is(err, task.ErrTaskNotFound):
			fresh = append(fresh, t)
		default:
			return res, fmt.Errorf("looking up task %s: %w", t.ID, err)
		}
	}
	if len(fresh) == 0 {
		return res, nil
	}

	if err := dest.CreateTasks(ctx, fresh); err != nil {
		return res, fmt.Errorf("importing tasks: %w", err)
	}
	res.Imported = len(fresh)

	snapshot, err := dest.ListTasks(ctx)
	if err != nil {
		return res, fmt.Errorf("listing tasks: %w", err)
	}
	for _, t := range fresh {
		if !t.IsOpen() {
			continue
		}
		clash, err := conflict.HasConflict(snapshot, *t.Start, t.EffectiveDuration(), t.ID)
		if err != nil {
			return res, err
		}
		if clash {
			res.Conflicting++
		}
	}

	logger.Info("tasks imported",
		zap.String("source", sourcePath),
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
		zap.Int("conflicting", res.Conflicting),
	)
	return res, nil
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}
