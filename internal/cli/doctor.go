package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/folio/internal/blog"
	"github.com/ppiankov/folio/internal/cache"
	"github.com/ppiankov/folio/internal/config"
	"github.com/spf13/cobra"
)

const doctorFeedTimeout = 15 * time.Second

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check config, cache backend and feed reachability",
	RunE:  doctorAction,
}

func doctorAction(cmd *cobra.Command, _ []string) error {
	ok := true

	// Config dir
	if info, err := os.Stat(configDir); err != nil || !info.IsDir() {
		printInfo("config directory %s not found, using defaults (run folio init)", configDir)
	} else {
		printCheck(true, "config directory %s", configDir)
	}

	// Config file
	cfg, err := config.LoadOrDefault(configDir)
	if err != nil {
		printCheck(false, "config.yaml: %v", err)
		return fmt.Errorf("some checks failed")
	}
	printCheck(true, "config (feed %s, mode %s, cache %s)", cfg.Feed.URL, cfg.Feed.Mode, cfg.Cache.Backend)

	// Cache backend
	backend, err := openBackend(cfg.Cache)
	if err != nil {
		printCheck(false, "cache backend %s: %v", cfg.Cache.Backend, err)
		ok = false
	} else {
		defer func() { _ = backend.Close() }()
		if pinger, isPinger := backend.(interface{ Ping(context.Context) error }); isPinger {
			if err := pinger.Ping(cmd.Context()); err != nil {
				printCheck(false, "cache backend %s: %v", backend.Name(), err)
				ok = false
			} else {
				printCheck(true, "cache backend %s %s", backend.Name(), cfg.Cache.Redis.Addr)
			}
		} else {
			printCheck(true, "cache backend %s %s", backend.Name(), cfg.Cache.Path)
		}

		if entry, found := cache.New(backend).Inspect(cmd.Context()); found {
			printInfo("cached entry: %d articles saved %s", len(entry.Data), entry.SavedAt().UTC().Format(time.RFC3339))
		}
	}

	// Feed
	adapter, err := newAdapter(cfg.Feed)
	if err != nil {
		printCheck(false, "feed adapter: %v", err)
		ok = false
	} else {
		ctx, cancel := context.WithTimeout(cmd.Context(), doctorFeedTimeout)
		items, err := adapter.Items(ctx, cfg.Feed.URL)
		cancel()
		if err != nil {
			printCheck(false, "feed %s via %s: %v", cfg.Feed.URL, adapter.Name(), err)
			ok = false
		} else {
			printCheck(true, "feed %s via %s (%d items)", cfg.Feed.URL, adapter.Name(), len(items))
		}
	}

	// Blog document (info-level, non-fatal)
	if entries, err := blog.LoadFile(cfg.Blog.Path); err != nil {
		printInfo("blog document %s: %v", cfg.Blog.Path, err)
	} else {
		printCheck(true, "blog document %s (%d articles)", cfg.Blog.Path, len(entries))
	}

	if !ok {
		return fmt.Errorf("some checks failed")
	}
	fmt.Println("\nAll checks passed.")
	return nil
}

func printCheck(pass bool, format string, args ...any) {
	mark := "FAIL"
	if pass {
		mark = " OK "
	}
	fmt.Printf("[%s] %s\n", mark, fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Printf("[INFO] %s\n", fmt.Sprintf(format, args...))
}
