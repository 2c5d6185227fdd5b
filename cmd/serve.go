package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Fatimaq07/Humans-WInning-AI/internal/config"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/content"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/effect"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/metrics"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/server"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/site"
	"github.com/Fatimaq07/Humans-WInning-AI/internal/submit"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the site with live forms, effects and content reload",
	Long: `The serve command renders pages on request, accepts the volunteer,
auth and newsletter forms, animates every effect surface and serves its
current frame as SVG. When contentDir holds on-disk trees they are watched
and the site reloads after each burst of changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ln, err := net.Listen("tcp", appConfig.Server.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", appConfig.Server.Addr, err)
		}
		return runServe(cmd.Context(), appConfig, logger, ln)
	},
}

// runServe serves on ln until ctx is done, then shuts the server down and
// unmounts every effect surface.
func runServe(ctx context.Context, cfg config.Config, log *zap.Logger, ln net.Listener) error {
	s, err := newSite(cfg, log)
	if err != nil {
		ln.Close()
		return err
	}
	m := metrics.New()

	sub, err := submit.Open(ctx, cfg.Submissions, log)
	if err != nil {
		ln.Close()
		return err
	}
	defer sub.Close()

	stage := effect.NewStage(effect.DefaultViewport, effect.WithAttachHook(m.SetSurfaces))
	defer stage.Close()
	surfaces := make([]*effect.Surface, 0, len(site.Effects()))
	for _, e := range site.Effects() {
		sf, err := stage.MountPreset(e.Name, e.Preset)
		if err != nil {
			ln.Close()
			return err
		}
		surfaces = append(surfaces, sf)
	}

	httpSrv := &http.Server{
		Handler: server.New(server.Options{
			Config:    cfg,
			Site:      s,
			Submitter: sub,
			Stage:     stage,
			Metrics:   m,
			Logger:    log,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, sf := range surfaces {
		g.Go(func() error {
			err := effect.Drive(ctx, sf, cfg.Server.FrameInterval, cfg.Server.PosterInterval)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if dirs := s.Sources().Dirs; len(dirs) > 0 {
		g.Go(func() error {
			return content.Watch(ctx, dirs, content.DefaultDebounce, log, func() {
				err := s.Reload()
				m.Reload(err)
				if err != nil {
					log.Error("content reload failed, keeping previous content", zap.Error(err))
					return
				}
				log.Info("content reloaded")
			})
		})
	}

	g.Go(func() error {
		log.Info("serving site", zap.String("addr", ln.Addr().String()), zap.Int("effects", len(surfaces)))
		if err := httpSrv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().String("content", "", "directory holding content, layouts and static trees")
	rootCmd.AddCommand(serveCmd)
}
