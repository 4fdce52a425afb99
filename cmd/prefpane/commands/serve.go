package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/prefpane/prefpane/internal/logging"
	"github.com/prefpane/prefpane/internal/server"
	"github.com/prefpane/prefpane/internal/settings/schema"
	"github.com/prefpane/prefpane/internal/settings/source"
)

var (
	servePort     int
	serveHost     string
	serveDefaults string
	serveSchema   string
	serveWatch    bool
	serveCORS     bool
	serveTTL      time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host the settings API over HTTP",
	Long: `Start the settings server. Clients open sessions against the loaded
defaults, edit overrides, and stream changes over SSE.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to listen on")
	serveCmd.Flags().StringVarP(&serveDefaults, "defaults", "d", "", "Defaults document, JSON or JSONC (built-in when omitted)")
	serveCmd.Flags().StringVar(&serveSchema, "schema", "", "JSON Schema file (built-in when omitted)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload defaults when the file changes")
	serveCmd.Flags().BoolVar(&serveCORS, "cors", true, "Enable CORS")
	serveCmd.Flags().DurationVar(&serveTTL, "session-ttl", 0, "Evict idle sessions after this duration (0 keeps them)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logging.Component("cli")
	ctx := cmd.Context()

	raw, err := loadRaw(ctx, serveDefaults)
	if err != nil {
		return err
	}

	var sch *schema.Schema
	if serveSchema != "" || serveDefaults == "" {
		sch, err = loadSchema(ctx, serveSchema)
		if err != nil {
			return err
		}
	}

	base, err := server.NewBase(raw, sch)
	if err != nil {
		return err
	}

	cfg := server.DefaultConfig()
	cfg.Host = serveHost
	cfg.Port = servePort
	cfg.EnableCORS = serveCORS
	cfg.SessionTTL = serveTTL

	srv := server.New(cfg, base)

	if serveWatch {
		if serveDefaults == "" || isURL(serveDefaults) {
			log.Warn().Msg("--watch needs a defaults file, ignoring")
		} else {
			watcher, err := source.NewWatcher(serveDefaults)
			if err != nil {
				return err
			}
			defer watcher.Close()
			go watchDefaults(srv, watcher, sch)
		}
	}

	go func() {
		log.Info().Str("version", version).Int("port", servePort).Msg("starting server")
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// watchDefaults rebuilds the base bundle on every debounced file
// change. A defaults file that no longer parses keeps the old bundle.
func watchDefaults(srv *server.Server, watcher *source.Watcher, sch *schema.Schema) {
	log := logging.Component("cli")

	for {
		select {
		case ev, ok := <-watcher.Events():
			if !ok {
				return
			}
			raw, err := source.NewFileSource(ev.Path).Load(context.Background())
			if err != nil {
				log.Warn().Err(err).Msg("defaults re-read failed")
				continue
			}
			base, err := server.NewBase(raw, sch)
			if err != nil {
				log.Warn().Err(err).Msg("defaults re-parse failed")
				continue
			}
			srv.ReloadBase(base)
		case err, ok := <-watcher.Errors():
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("watcher error")
		}
	}
}
