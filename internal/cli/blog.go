package cli

import (
	"fmt"

	"github.com/ppiankov/folio/internal/blog"
	"github.com/spf13/cobra"
)

var blogCmd = &cobra.Command{
	Use:   "blog",
	Short: "List the articles in the static blog document",
	RunE:  blogAction,
}

func blogAction(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	entries, err := blog.LoadFile(cfg.Blog.Path)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Printf("No articles in %s.\n", cfg.Blog.Path)
		return nil
	}
	fmt.Printf("%d articles in %s\n\n", len(entries), cfg.Blog.Path)
	for _, e := range entries {
		fmt.Printf("  [%s] %s\n", e.Source, e.Title)
		if e.Image != "" {
			fmt.Printf("      image: %s\n", e.Image)
		}
	}
	return nil
}
