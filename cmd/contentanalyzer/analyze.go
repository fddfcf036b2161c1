package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/TobiSchelling/ContentAnalyzer/internal/export"
	"github.com/TobiSchelling/ContentAnalyzer/internal/feed"
	"github.com/TobiSchelling/ContentAnalyzer/internal/remote"
	"github.com/TobiSchelling/ContentAnalyzer/internal/session"
	"github.com/spf13/cobra"
)

// --- analyze command ---

var (
	exportFormats []string
	exportDir     string
	waitToast     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Extract and analyze a PDF or image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exporters, err := newExporters(exportFormats)
		if err != nil {
			return err
		}

		target, err := remote.LoadUploadTarget(args[0])
		if err != nil {
			return err
		}
		if !target.Supported() {
			log.Printf("%s has an unsupported extension; the service may reject it", target.Name)
		}

		sess, db, err := openSession()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := signalContext(cmd)
		defer cancel()

		if err := sess.Select(target); err != nil {
			return err
		}
		fmt.Println(theme(sess).File(target))

		runErr := sess.Upload(ctx)
		snap := sess.Snapshot()
		fmt.Println()
		fmt.Println(theme(sess).Result(snap))

		if runErr == nil {
			if err := writeExports(exporters, snap); err != nil {
				return err
			}
		}
		if waitToast {
			time.Sleep(sess.Toasts().Duration())
		}
		return runErr
	},
}

func init() {
	analyzeCmd.Flags().StringSliceVar(&exportFormats, "export", nil, "Export formats: "+strings.Join(export.Formats, ", "))
	analyzeCmd.Flags().StringVar(&exportDir, "out", "", "Directory for exports (default: output.export_dir)")
	analyzeCmd.Flags().BoolVar(&waitToast, "wait-toast", false, "Keep running until the last notification expires")
}

func newExporters(formats []string) ([]export.Exporter, error) {
	var out []export.Exporter
	for _, f := range formats {
		exp, err := export.NewExporter(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		out = append(out, exp)
	}
	return out, nil
}

func writeExports(exporters []export.Exporter, snap session.Snapshot) error {
	if len(exporters) == 0 {
		return nil
	}
	dir := exportDir
	if dir == "" {
		dir = cfg.GetExportDir()
	}

	fmt.Println()
	for _, exp := range exporters {
		path, err := export.WriteFile(exp, snap, dir)
		var expErr *export.ExportError
		if errors.As(err, &expErr) {
			fmt.Printf("Skipped %s: %v\n", exp.FileName(snap), expErr.Err)
			continue
		}
		if err != nil {
			return err
		}
		fmt.Printf("Exported %s\n", path)
	}
	return nil
}

// --- history command ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear the analysis history",
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyListCmd.RunE(cmd, args)
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past analyses, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, db, err := openSession()
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Println(theme(sess).History(sess.Snapshot().History))
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all history entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, db, err := openSession()
		if err != nil {
			return err
		}
		defer db.Close()

		return sess.ClearHistory()
	},
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
}

// --- prefs command ---

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Manage preferences",
}

var prefsDarkModeCmd = &cobra.Command{
	Use:       "dark-mode [on|off|toggle]",
	Short:     "Show or change the dark-mode preference",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off", "toggle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, db, err := openSession()
		if err != nil {
			return err
		}
		defer db.Close()

		if len(args) == 0 {
			fmt.Printf("Dark mode: %t\n", sess.Snapshot().DarkMode)
			return nil
		}

		switch args[0] {
		case "toggle":
			_, err = sess.ToggleDarkMode()
			return err
		case "on":
			err = sess.SetDarkMode(true)
		case "off":
			err = sess.SetDarkMode(false)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Dark mode: %t\n", sess.Snapshot().DarkMode)
		return nil
	},
}

func init() {
	prefsCmd.AddCommand(prefsDarkModeCmd)
}

// --- feed command ---

var (
	feedMax  int
	feedFull bool
)

var feedCmd = &cobra.Command{
	Use:   "feed [url]",
	Short: "Analyze the posts of an RSS/Atom feed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, db, err := openSession()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := signalContext(cmd)
		defer cancel()

		maxPosts := cfg.Feed.MaxPosts
		if cmd.Flags().Changed("max") {
			maxPosts = feedMax
		}
		reader := feed.NewReader(feed.Options{
			MaxPosts:      maxPosts,
			Full:          feedFull,
			MinPostLength: cfg.Feed.MinPostLength,
			FetchTimeout:  cfg.Feed.FetchTimeout,
		})

		fmt.Printf("Reading %s...\n", args[0])
		posts, err := reader.Read(ctx, args[0])
		if err != nil {
			return err
		}
		if len(posts) == 0 {
			fmt.Println("No posts with text found.")
			return nil
		}

		result := feed.Analyze(ctx, sess, posts, func(p feed.Post, err error) {
			if err != nil {
				return
			}
			fmt.Printf("\n%s\n%s\n", p.Name(), theme(sess).Stats(sess.Snapshot().Stats))
		})

		fmt.Println("\nFeed analysis complete:")
		fmt.Printf("  Analyzed: %d\n", result.Analyzed)
		fmt.Printf("  Failed: %d\n", result.Failed)
		return nil
	},
}

func init() {
	feedCmd.Flags().IntVar(&feedMax, "max", 20, "Maximum number of posts to analyze")
	feedCmd.Flags().BoolVar(&feedFull, "full", false, "Fetch the linked page when a post is only a teaser")
}
