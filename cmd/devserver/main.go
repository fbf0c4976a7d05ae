package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/andresuchdata/reactive-resume/backend-go/internal/devserver"
	"github.com/andresuchdata/reactive-resume/backend-go/pkg/logger"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func main() {
	app := &cli.App{
		Name:  "devserver",
		Usage: "Serve the built client and artboard apps with their proxy rules",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "app",
				Usage: "App to serve (client, artboard); repeat for several",
				Value: cli.NewStringSlice(devserver.AppClient, devserver.AppArtboard),
			},
			&cli.StringFlag{
				Name:    "root",
				Usage:   "Directory to start the workspace root search from",
				Value:   ".",
				EnvVars: []string{"WORKSPACE_ROOT"},
			},
			&cli.StringFlag{
				Name:  "dist",
				Usage: "Directory holding one built app per subdirectory",
				Value: "dist/apps",
			},
			&cli.StringFlag{
				Name:    "version",
				Usage:   "Value exposed to the client as appVersion",
				Value:   "dev",
				EnvVars: []string{"npm_package_version"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("devserver failed")
	}
}

func run(c *cli.Context) error {
	logger.SetLevel(c.String("log-level"))

	root := devserver.WorkspaceRoot(c.String("root"))
	apps := devserver.Apps(root, c.String("version"))

	dist := c.String("dist")
	if !filepath.IsAbs(dist) {
		dist = filepath.Join(root, dist)
	}

	var servers []*http.Server
	for _, name := range c.StringSlice("app") {
		app, err := devserver.Lookup(apps, name)
		if err != nil {
			return err
		}

		handler, err := devserver.NewHandler(app, filepath.Join(dist, app.Name))
		if err != nil {
			return fmt.Errorf("%s: %w", app.Name, err)
		}

		servers = append(servers, &http.Server{
			Addr:              app.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			logger.Log.Info().Str("addr", srv.Addr).Msg("Starting dev server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Log.Error().Err(err).Str("addr", srv.Addr).Msg("Dev server forced to shutdown")
			}
		}
		return nil
	})

	return g.Wait()
}
