package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/folio/internal/render"
	"github.com/spf13/cobra"
)

var (
	fetchFormat  string
	noColor      bool
	fetchRefresh bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the article list and print it",
	RunE:  fetchAction,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchFormat, "format", "", "output format: terminal, json, markdown")
	fetchCmd.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI colors")
	fetchCmd.Flags().BoolVar(&fetchRefresh, "refresh", false, "ignore the cache and fetch from the network")
}

func fetchAction(cmd *cobra.Command, _ []string) error {
	formatter, ok := render.New(fetchFormat, !noColor)
	if !ok {
		return fmt.Errorf("unknown format %q (want terminal, json or markdown)", fetchFormat)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if fetchRefresh {
		a.store.Clear(ctx)
	}

	res := a.client.FetchArticles(ctx)

	in := render.Input{
		Feed:     a.client.FeedURL(),
		Source:   string(res.Origin),
		Articles: res.Articles,
	}
	if res.Err != nil {
		in.Error = res.Err.Error()
	}
	return formatter.Format(os.Stdout, in)
}
