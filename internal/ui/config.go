package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/studydesk/internal/config"
)

func (a *App) configCmd() *cobra.Command {
	var (
		initFile bool
		edit     bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Show the configuration file and its current values.

--init writes a file with default values when none exists.
--edit prompts for each value and saves the result.`,
		Example: `  studydesk config
  studydesk config --init
  studydesk config --edit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			path := a.configPath
			fmt.Fprintf(out, "Config file: %s\n\n", path)

			cfg, err := config.LoadFrom(path)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			_, statErr := os.Stat(path)
			exists := statErr == nil

			if initFile {
				if exists {
					fmt.Fprintln(out, "Config file already exists; leaving it unchanged.")
				} else {
					if err := cfg.SaveTo(path); err != nil {
						return fmt.Errorf("saving config: %w", err)
					}
					fmt.Fprintf(out, "Created %s\n\n", path)
				}
			}

			printConfig(out, cfg)
			if !edit {
				return nil
			}

			reader := bufio.NewReader(cmd.InOrStdin())
			fmt.Fprintln(out)
			if err := editConfig(out, reader, cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			if err := cfg.SaveTo(path); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}

			fmt.Fprintln(out, "\nConfiguration saved!")
			return nil
		},
	}

	cmd.Flags().BoolVar(&initFile, "init", false, "Write a default config file if none exists")
	cmd.Flags().BoolVar(&edit, "edit", false, "Edit the configuration interactively")
	return cmd
}

func editConfig(w io.Writer, reader *bufio.Reader, cfg *config.Config) error {
	var err error

	cfg.Schedule.DayStart = promptValue(w, reader, "Day start", cfg.Schedule.DayStart)
	cfg.Schedule.DayEnd = promptValue(w, reader, "Day end", cfg.Schedule.DayEnd)
	cfg.Schedule.StudyDays = promptSlice(w, reader, "Study days (comma-separated)", cfg.Schedule.StudyDays)
	if cfg.Scheduler.BufferMinutes, err = promptInt(w, reader, "Buffer after conflicts (minutes)", cfg.Scheduler.BufferMinutes); err != nil {
		return err
	}
	if cfg.Scheduler.MaxAttempts, err = promptInt(w, reader, "Max search attempts", cfg.Scheduler.MaxAttempts); err != nil {
		return err
	}
	if cfg.Scheduler.DefaultDuration, err = promptInt(w, reader, "Default duration (minutes)", cfg.Scheduler.DefaultDuration); err != nil {
		return err
	}
	cfg.LLM.Provider = promptValue(w, reader, "LLM provider (openai, ollama, lmstudio)", cfg.LLM.Provider)
	cfg.LLM.Model = promptValue(w, reader, "LLM model", cfg.LLM.Model)
	cfg.LLM.BaseURL = promptValue(w, reader, "LLM base URL (Ollama/LM Studio)", cfg.LLM.BaseURL)
	cfg.Storage.DBPath = promptValue(w, reader, "Database path", cfg.Storage.DBPath)
	cfg.UI.Theme = strings.ToLower(promptValue(w, reader, "UI theme (dark, light)", cfg.UI.Theme))
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Current configuration:")
	fmt.Fprintln(w, "──────────────────────")
	fmt.Fprintln(w, "[schedule]")
	fmt.Fprintf(w, "  day_start        = %s\n", cfg.Schedule.DayStart)
	fmt.Fprintf(w, "  day_end          = %s\n", cfg.Schedule.DayEnd)
	fmt.Fprintf(w, "  study_days       = %s\n", strings.Join(cfg.Schedule.StudyDays, ", "))
	fmt.Fprintln(w, "\n[scheduler]")
	fmt.Fprintf(w, "  buffer_minutes   = %d\n", cfg.Scheduler.BufferMinutes)
	fmt.Fprintf(w, "  max_attempts     = %d\n", cfg.Scheduler.MaxAttempts)
	fmt.Fprintf(w, "  default_duration = %d\n", cfg.Scheduler.DefaultDuration)
	fmt.Fprintln(w, "\n[llm]")
	fmt.Fprintf(w, "  provider         = %s\n", cfg.LLM.Provider)
	fmt.Fprintf(w, "  model            = %s\n", cfg.LLM.Model)
	fmt.Fprintf(w, "  base_url         = %s\n", cfg.LLM.BaseURL)
	fmt.Fprintln(w, "\n[storage]")
	fmt.Fprintf(w, "  db_path          = %s\n", cfg.Storage.DBPath)
	fmt.Fprintln(w, "\n[log]")
	fmt.Fprintf(w, "  level            = %s\n", cfg.Log.Level)
	fmt.Fprintf(w, "  encoding         = %s\n", cfg.Log.Encoding)
	fmt.Fprintf(w, "  file             = %s\n", cfg.Log.File)
	fmt.Fprintln(w, "\n[ui]")
	fmt.Fprintf(w, "  theme            = %s\n", cfg.UI.Theme)
}

func promptValue(w io.Writer, reader *bufio.Reader, label, current string) string {
	if current == "" {
		fmt.Fprintf(w, "  %s: ", label)
	} else {
		fmt.Fprintf(w, "  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptInt(w io.Writer, reader *bufio.Reader, label string, current int) (int, error) {
	value := promptValue(w, reader, label, strconv.Itoa(current))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", strings.ToLower(label), value)
	}
	return n, nil
}

func promptSlice(w io.Writer, reader *bufio.Reader, label string, current []string) []string {
	fmt.Fprintf(w, "  %s [%s]: ", label, strings.Join(current, ", "))
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
