package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/ppiankov/folio/internal/cache"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the article cache",
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cached entry",
	RunE:  cacheShowAction,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the cached entry",
	RunE:  cacheClearAction,
}

func init() {
	cacheCmd.AddCommand(cacheShowCmd, cacheClearCmd)
}

func cacheShowAction(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("backend: %s\n", a.store.Backend().Name())
	fmt.Printf("key:     %s\n", cache.Key)

	entry, ok := a.store.Inspect(cmd.Context())
	if !ok {
		fmt.Println("No cached articles.")
		return nil
	}

	state := "fresh"
	if a.store.Expired(entry) {
		state = "expired"
	}
	saved := entry.SavedAt()
	fmt.Printf("saved:   %s (%s)\n", saved.UTC().Format("2006-01-02 15:04:05 MST"), humanize.Time(saved))
	fmt.Printf("state:   %s (ttl %s)\n", state, cache.TTL)
	fmt.Printf("count:   %d articles\n", len(entry.Data))
	for _, art := range entry.Data {
		fmt.Printf("  - %s\n", art.Title)
	}
	return nil
}

func cacheClearAction(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	a.store.Clear(cmd.Context())
	fmt.Printf("Cleared %s cache.\n", a.store.Backend().Name())
	return nil
}
