package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/ppiankov/folio/internal/feed"
	"github.com/ppiankov/folio/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the article API over HTTP",
	RunE:  serveAction,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func serveAction(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	gin.SetMode(gin.ReleaseMode)
	loader := feed.NewLoader(a.client, a.log)
	defer loader.Close()

	srv := server.New(loader, a.store, server.Options{
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		BlogPath:       a.cfg.Blog.Path,
		Logger:         a.log,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Warm the cache so the first page view does not wait on the feed.
	go loader.Refresh(ctx)

	return srv.Run(ctx, addr)
}
