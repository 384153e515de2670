package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mfenderov/chrono/internal/commands"
	"github.com/mfenderov/chrono/internal/config"
	"github.com/mfenderov/chrono/internal/event"
	"github.com/mfenderov/chrono/internal/pipeline"
	"github.com/mfenderov/chrono/internal/project"
	"github.com/mfenderov/chrono/internal/shell"
	"github.com/mfenderov/chrono/internal/sleep"
	"github.com/mfenderov/chrono/internal/snapshot"
	"github.com/mfenderov/chrono/internal/storage"
)

var (
	dbPath       string
	projectName  string
	settingsPath string
	schedulePath string
	verbose      bool
	Version      = "dev"
	logger       = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	entityStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("78"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "chrono",
	Short: "Command-driven personal time tracker",
	Long: titleStyle.Render("chrono") + " - track your days one command at a time\n\n" +
		"Events, notes, sport and sleep are kept per day in a local SQLite\n" +
		"database. Commands can be chained into aliases with |>.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetLevel(log.DebugLevel)
		}
	},
	RunE: runShell,
}

func init() {
	home := os.Getenv("HOME")
	defaultDB := filepath.Join(home, ".chrono", "chrono.db")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "path to database file")
	rootCmd.PersistentFlags().StringVarP(&projectName, "project", "p", "default", "project name")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", filepath.Join(home, ".chrono", "settings.yaml"), "settings file (yaml or json)")
	rootCmd.PersistentFlags().StringVar(&schedulePath, "schedule", filepath.Join(home, ".chrono", "schedule.yaml"), "weekly schedule file (yaml or json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	execCmd.Flags().String("ref", "", "reference date (defaults to today)")
	initCmd.Flags().String("name", "", "project name (defaults to --project)")
	importCmd.Flags().String("from", "", "project file to import")
	importCmd.Flags().String("name", "", "store under this name instead of the file's")
	_ = importCmd.MarkFlagRequired("from")
	exportCmd.Flags().String("to", "", "destination file")
	_ = exportCmd.MarkFlagRequired("to")
	sessionsCmd.Flags().Int("limit", 10, "maximum sessions to show")
	sessionsCmd.Flags().String("status", "", "filter by status (active, completed)")
	sessionsCmd.Flags().Bool("lines", false, "print the lines of each session")

	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

func getStore() (*storage.Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return storage.NewStore(dbPath)
}

// newEnv loads settings and schedule and the current project. The returned
// interpreter dispatches against the env.
func newEnv(ctx context.Context, store *storage.Store, out io.Writer) (*commands.Env, *pipeline.Interpreter, error) {
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return nil, nil, err
	}
	schedule, err := config.LoadSchedule(schedulePath)
	if err != nil {
		return nil, nil, err
	}

	env := commands.NewEnv(project.New(projectName, projectName))
	env.Store = store
	env.Settings = settings
	env.SettingsPath = settingsPath
	env.Schedule = schedule
	env.Logger = logger
	env.Out = out
	if settings.Oura.Enabled {
		env.Sleep = sleep.NewClient(settings.Oura.BaseURL, settings.Oura.Token, settings.OuraTimeout()).WithLogger(logger)
	}

	if err := env.Load(ctx, projectName); err != nil {
		return nil, nil, err
	}
	reg, err := commands.NewRegistry(env)
	if err != nil {
		return nil, nil, err
	}
	return env, pipeline.NewInterpreter(reg, env, logger), nil
}

func todayRef() string {
	return event.DateKey(time.Now())
}

// --- Shell ---

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive command loop (default)",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	store, err := getStore()
	if err != nil {
		return err
	}
	defer store.Close()

	env, interp, err := newEnv(ctx, store, cmd.OutOrStdout())
	if err != nil {
		logger.Error("Failed to load project", "name", projectName, "err", err)
		return err
	}

	logger.Info("Project loaded",
		"name", entityStyle.Render(env.Project.Name),
		"days", env.Project.Len())

	sh := shell.New(env, interp, cmd.InOrStdin())
	if _, err := sh.Run(ctx, todayRef()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// --- Exec ---

var execCmd = &cobra.Command{
	Use:   "exec <line>",
	Short: "Run one command line and save the project",
	Long: `Run one command line and save the project.

A single argument is taken as the whole line. Several arguments are joined,
quoting those that contain whitespace.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := getStore()
		if err != nil {
			return err
		}
		defer store.Close()

		env, interp, err := newEnv(ctx, store, cmd.OutOrStdout())
		if err != nil {
			return err
		}

		ref, _ := cmd.Flags().GetString("ref")
		if ref == "" {
			ref = todayRef()
		}
		next, err := interp.Execute(ctx, ref, joinArgs(args))
		if err != nil && !errors.Is(err, pipeline.ErrQuit) {
			return err
		}
		if err := env.Save(ctx); err != nil {
			return err
		}
		logger.Debug("Executed", "ref", next)
		return nil
	},
}

// joinArgs rebuilds a command line from shell arguments so Tokenize splits it
// back into the same arguments.
func joinArgs(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	quoted := make([]string, len(args))
	for i, a := range args {
		if (a == "" || strings.ContainsFunc(a, unicode.IsSpace)) && !strings.Contains(a, `"`) {
			a = `"` + a + `"`
		}
		quoted[i] = a
	}
	return strings.Join(quoted, " ")
}

// --- Init ---

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the database and an empty project",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStore()
		if err != nil {
			return err
		}
		defer store.Close()

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = projectName
		}
		ctx := cmd.Context()
		_, err = store.LoadProject(ctx, name)
		switch {
		case err == nil:
			logger.Info("Project exists", "name", entityStyle.Render(name))
			return nil
		case !errors.Is(err, storage.ErrNotFound):
			return err
		}

		if err := store.SaveProject(ctx, snapshot.FromProject(project.New(name, name))); err != nil {
			return err
		}
		logger.Info("Database initialized",
			"path", dimStyle.Render(dbPath),
			"project", entityStyle.Render(name))
		return nil
	},
}

// --- Import / Export ---

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a project file into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		name, _ := cmd.Flags().GetString("name")

		snap, err := snapshot.ReadFile(from)
		if err != nil {
			return err
		}
		if name != "" {
			snap.Name = name
		}
		if snap.Name == "" {
			snap.Name = projectName
		}
		// reject files that would not load
		if _, err := snap.ToProject(); err != nil {
			return fmt.Errorf("failed to import %s: %w", from, err)
		}

		store, err := getStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SaveProject(cmd.Context(), snap); err != nil {
			return err
		}
		logger.Info("Imported project",
			"name", entityStyle.Render(snap.Name),
			"days", len(snap.Days),
			"notes", len(snap.Todo))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the current project to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		to, _ := cmd.Flags().GetString("to")

		store, err := getStore()
		if err != nil {
			return err
		}
		defer store.Close()

		snap, err := store.LoadProject(cmd.Context(), projectName)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				logger.Error("Project not found", "name", projectName)
			}
			return err
		}
		if err := snapshot.WriteFile(to, snap); err != nil {
			return err
		}
		logger.Info("Exported project",
			"name", entityStyle.Render(snap.Name),
			"path", dimStyle.Render(to))
		return nil
	},
}

// --- Projects / Stats ---

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List stored projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStore()
		if err != nil {
			return err
		}
		defer store.Close()

		infos, err := store.ListProjects(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(infos) == 0 {
			fmt.Fprintln(out, dimStyle.Render("No projects"))
			return nil
		}
		for _, info := range infos {
			fmt.Fprintf(out, "%s %s %s\n",
				entityStyle.Render(info.Name),
				dimStyle.Render(strconv.Itoa(info.Days)+" days"),
				dimStyle.Render(info.SavedAt))
		}
		return nil
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Show recent shell sessions of the project",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		status, _ := cmd.Flags().GetString("status")
		withLines, _ := cmd.Flags().GetBool("lines")

		store, err := getStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		sessions, err := store.ListSessions(ctx, projectName, status, limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, dimStyle.Render("No sessions"))
			return nil
		}
		for _, s := range sessions {
			fmt.Fprintf(out, "%s %s %s\n",
				entityStyle.Render(s.StartedAt.Local().Format("2006-01-02 15:04")),
				dimStyle.Render(s.Status),
				dimStyle.Render(strconv.Itoa(s.LineCount)+" lines"))
			if !withLines {
				continue
			}
			lines, err := store.SessionLines(ctx, s.ID)
			if err != nil {
				return err
			}
			for _, l := range lines {
				row := "  " + dimStyle.Render(l.Ref+":") + " " + l.Line
				if l.Error != "" {
					row += " " + dimStyle.Render("("+l.Error+")")
				}
				fmt.Fprintln(out, row)
			}
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStore()
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.GetStats(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render("Database Statistics"))
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  "+dimStyle.Render("Path:")+"          "+dbPath)
		fmt.Fprintln(out, "  "+dimStyle.Render("Projects:")+"      "+successStyle.Render(strconv.Itoa(stats.Projects)))
		fmt.Fprintln(out, "  "+dimStyle.Render("Days:")+"          "+successStyle.Render(strconv.Itoa(stats.Days)))
		fmt.Fprintln(out, "  "+dimStyle.Render("Events:")+"        "+successStyle.Render(strconv.Itoa(stats.Events)))
		fmt.Fprintln(out, "  "+dimStyle.Render("Notes:")+"         "+successStyle.Render(strconv.Itoa(stats.Notes)))
		fmt.Fprintln(out, "  "+dimStyle.Render("Silent events:")+" "+successStyle.Render(strconv.Itoa(stats.SilentEvents)))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render("chrono")+" "+dimStyle.Render(Version))
	},
}
