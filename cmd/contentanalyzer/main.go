package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/TobiSchelling/ContentAnalyzer/internal/config"
	"github.com/TobiSchelling/ContentAnalyzer/internal/database"
	"github.com/TobiSchelling/ContentAnalyzer/internal/history"
	"github.com/TobiSchelling/ContentAnalyzer/internal/prefs"
	"github.com/TobiSchelling/ContentAnalyzer/internal/remote"
	"github.com/TobiSchelling/ContentAnalyzer/internal/render"
	"github.com/TobiSchelling/ContentAnalyzer/internal/server"
	"github.com/TobiSchelling/ContentAnalyzer/internal/session"
	"github.com/TobiSchelling/ContentAnalyzer/internal/toast"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
	cfgSource  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "contentanalyzer",
	Short:   "Analyze social posts and documents",
	Long:    "contentanalyzer extracts text from PDFs and images through an analysis service, scores it, and keeps a local history of results.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfgSource = path

		if verbose || strings.EqualFold(cfg.Logging.Level, "DEBUG") {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(prefsCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("contentanalyzer", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/contentanalyzer/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Printf("Edit it to point api.base_url at your analysis service, or set %s.\n", config.APIBaseEnv)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show service, storage and preference status",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, db, err := openSession()
		if err != nil {
			return err
		}
		defer db.Close()

		client := remote.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
		reachable := "unreachable"
		if client.Ping(cmd.Context()) {
			reachable = "reachable"
		}

		keys, err := db.Keys()
		if err != nil {
			return fmt.Errorf("listing stored keys: %w", err)
		}

		source := cfgSource
		if source == "" {
			source = "built-in defaults"
		}
		snap := sess.Snapshot()

		fmt.Println("Config:")
		fmt.Printf("  Source: %s\n", source)
		fmt.Printf("  Service: %s (%s)\n", cfg.API.BaseURL, reachable)
		fmt.Printf("  Timeout: %s\n", cfg.API.Timeout)
		fmt.Println("\nStorage:")
		fmt.Printf("  Database: %s\n", db.Path())
		fmt.Printf("  Keys: %s\n", strings.Join(keys, ", "))
		fmt.Printf("  History entries: %d\n", len(snap.History))
		fmt.Println("\nPreferences:")
		fmt.Printf("  Dark mode: %t\n", snap.DarkMode)
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, db, err := openSession()
		if err != nil {
			return err
		}
		defer db.Close()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(sess, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8010, "Port to run server on")
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return database.OpenDir(dataDir)
}

// openSession opens the store and returns an initialized session. Toasts are
// printed to stdout as they appear.
func openSession() (*session.Session, *database.DB, error) {
	db, err := openDB()
	if err != nil {
		return nil, nil, err
	}

	sess := session.New(session.Deps{
		Pipeline: remote.NewClient(cfg.API.BaseURL, cfg.API.Timeout),
		History:  history.NewStore(db),
		Prefs:    prefs.NewStore(db),
		Toasts:   toast.NewRegister(cfg.Toast.Duration),
	})
	if err := sess.Init(); err != nil {
		db.Close()
		return nil, nil, err
	}

	sess.Toasts().OnChange(func(t *toast.Toast) {
		if t != nil {
			fmt.Println(theme(sess).Toast(t))
		}
	})
	return sess, db, nil
}

func theme(sess *session.Session) render.Theme {
	return render.NewTheme(sess.Snapshot().DarkMode)
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}
