package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/cinelens/cinelens/internal/client"
	"github.com/cinelens/cinelens/internal/store"
)

// Options holds shared configuration for the analyze and report commands
type Options struct {
	InputPath  string
	Title      string
	OutputPath string
	MakePDF    bool
	ReportID   string
}

var (
	// DB is the optional analysis-history connection shared by subcommands.
	// Nil when no database is configured; everything except history/reset
	// works without it.
	DB *store.Store
	// dbURL is the connection string
	dbURL string
	// serverURL overrides the backend endpoint (default: CINELENS_SERVER env)
	serverURL string
	// verbose raises the log level to debug
	verbose bool
)

// Version is the application version.
const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "cinelens",
	Short:   "Cinematography analysis client: upload clips, stream live analysis, build PDF reports",
	Version: Version, // This enables the --version flag
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		})))

		// If no flag was provided, try to build the connection string from the environment
		if dbURL == "" {
			if host := os.Getenv("POSTGRES_HOST"); host != "" {
				user := os.Getenv("POSTGRES_USER")
				pass := os.Getenv("POSTGRES_PASSWORD")
				name := os.Getenv("POSTGRES_DB")
				port := os.Getenv("POSTGRES_PORT")
				if port == "" {
					port = "5432"
				}
				dbURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, pass, host, port, name)
			}
		}

		// The history store is opt-in; skip the connection entirely when
		// nothing is configured.
		if dbURL == "" {
			return nil
		}
		var err error
		DB, err = store.New(cmd.Context(), dbURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if DB != nil {
			// Use Background here because the main context might be cancelled already (due to Ctrl+C)
			// and we still need to send the "Close" command to the DB.
			DB.Close(context.Background())
		}
	},
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// This tells Cobra not to print the version in the help text, which is cleaner.
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newClient builds a backend client honoring the --server flag.
func newClient() *client.Client {
	opts := []client.Option{client.WithLogger(slog.Default())}
	if serverURL != "" {
		opts = append(opts, client.WithBaseURL(serverURL))
	}
	return client.New(opts...)
}

// requireDB guards commands that cannot run without the history store.
func requireDB() error {
	if DB == nil {
		return fmt.Errorf("no database configured: pass --db or set POSTGRES_HOST")
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "PostgreSQL connection string for the analysis history (optional)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Analysis backend URL (default: CINELENS_SERVER env or http://localhost:8000)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
}
