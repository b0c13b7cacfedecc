package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/fredcamaral/slidemark/internal/adapters/primary/http"
	"github.com/fredcamaral/slidemark/internal/adapters/secondary/browser"
	"github.com/fredcamaral/slidemark/internal/adapters/secondary/export"
	"github.com/fredcamaral/slidemark/internal/adapters/secondary/monitoring"
	"github.com/fredcamaral/slidemark/internal/adapters/secondary/watcher"
	"github.com/fredcamaral/slidemark/internal/domain/services"
)

// liveReloadPath is where the preview page connects for reload events
const liveReloadPath = "/ws"

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Serve a live preview of a markdown deck",
		Long: `Start a local HTTP server showing the deck as HTML. The page reloads
whenever the markdown file changes. The slide model is available at
/api/presentation, the last violations at /api/violations and reload
statistics at /api/health.

Example:
  slidemark preview deck.md
  slidemark preview deck.md --port 8080 --open`,
		Args: cobra.ExactArgs(1),
		RunE: runPreview,
	}

	addParseFlags(cmd)
	cmd.Flags().IntP("port", "p", 0, "Port to serve on (overrides config)")
	cmd.Flags().String("host", "", "Host to bind to (overrides config)")
	cmd.Flags().Bool("open", false, "Open the preview in a browser once the server is up")

	return cmd
}

func runPreview(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	a, err := setup(cmd, inputPath)
	if err != nil {
		return err
	}
	defer a.close()

	p, err := startPreview(cmd.Context(), a, inputPath)
	if err != nil {
		return err
	}

	url := "http://" + p.server.Addr().String() + "/"
	fmt.Fprintf(cmd.OutOrStdout(), "Previewing %s at %s\n", inputPath, url)

	if open, _ := cmd.Flags().GetBool("open"); open {
		if err := browser.NewOpener().Open(cmd.Context(), url); err != nil {
			a.logger.Warn("Failed to open browser", slog.String("error", err.Error()))
		}
	}

	<-cmd.Context().Done()
	a.logger.Info("Shutting down preview")

	// The command context is already cancelled; shutdown gets its own
	return p.stop(context.Background())
}

// preview ties the server to the live reload loop
type preview struct {
	server *httpadapter.Server
	live   *services.LiveReloadService
}

// startPreview parses the deck once, starts the server and begins watching
// the file. A deck that fails to parse is still served: the page shows a
// placeholder until the next successful save.
func startPreview(ctx context.Context, a *app, inputPath string) (*preview, error) {
	if inputPath == stdinPath {
		return nil, errors.New("preview needs a file to watch")
	}

	presentations := a.presentations()
	deck := export.NewHTMLGenerator(export.WithLiveReload(liveReloadPath))
	stats := monitoring.NewPreviewStats()
	server := httpadapter.NewServer(&a.config.Server, deck, a.logger)
	server.SetMetrics(stats)

	start := time.Now()
	result, err := presentations.LoadPresentation(ctx, inputPath)
	stats.RecordReload(time.Since(start), err)
	if err != nil {
		a.logger.Error("Initial parse failed", slog.String("error", err.Error()))
	} else {
		logViolations(a.logger, result)
		server.SetPresentation(result)
	}

	if err := server.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting preview server: %w", err)
	}

	live := services.NewLiveReloadService(watcher.New(a.config.Watcher, a.logger), server, presentations, a.logger)
	live.SetMetrics(stats)
	if err := live.Start(ctx, inputPath); err != nil {
		_ = server.Stop(context.Background())
		return nil, fmt.Errorf("watching %s: %w", inputPath, err)
	}

	return &preview{server: server, live: live}, nil
}

func (p *preview) stop(ctx context.Context) error {
	return errors.Join(p.live.Stop(), p.server.Stop(ctx))
}
