package main

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/ayusman/gesturedrive/internal/action"
	"github.com/ayusman/gesturedrive/internal/app"
	"github.com/ayusman/gesturedrive/internal/highscore"
	"github.com/ayusman/gesturedrive/internal/race"
	"github.com/ayusman/gesturedrive/internal/race/screen"
)

// RaceCmd runs the car game.
type RaceCmd struct {
	Seed  *uint64 `kong:"help='Fixed obstacle layout seed (optional)'"`
	Serve bool    `kong:"help='Start the debug HTTP server'"`
}

func (c *RaceCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	if c.Serve {
		cfg.Server.Enabled = true
	}

	images, err := race.LoadImages(cfg.Race.AssetDir)
	if err != nil {
		return err
	}

	board, err := highscore.Open(cfg.HighScorePath())
	if errors.Is(err, highscore.ErrCorrupt) {
		logger.Warn("high score reset", "path", board.Path(), "err", err)
	} else if err != nil {
		return err
	}

	svc, err := app.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	opts := []race.SessionOption{race.WithRuns(svc.Store.Runs())}
	switch {
	case c.Seed != nil:
		opts = append(opts, race.WithSeed(*c.Seed))
	case cfg.Race.Seed != 0:
		opts = append(opts, race.WithSeed(uint64(cfg.Race.Seed)))
	}
	session := race.NewSession(board, logger, opts...)

	processor := svc.Processor(true)
	defer processor.Close()

	feed := app.NewRace(app.RaceConfig{
		Camera:    svc.Camera(),
		CameraID:  cfg.Camera.ID,
		Processor: processor,
		Frames:    svc.Frames,
		Hub:       svc.Hub,
		Logger:    logger,
	})

	ctx, stop := signalContext()
	defer stop()

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error { return svc.Serve(gctx) })

	runErr := feed.Run(gctx, func(ctx context.Context, source func() action.Pair) error {
		return screen.Run(screen.NewGame(ctx, session, source, images))
	})

	stop()
	if err := grp.Wait(); runErr == nil {
		runErr = err
	}
	return runErr
}
