package main

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ayusman/gesturedrive/internal/app"
	"github.com/ayusman/gesturedrive/internal/input"
	"github.com/ayusman/gesturedrive/internal/overlay"
	"github.com/ayusman/gesturedrive/internal/tray"
)

const windowTitle = "gesturedrive"

// DriveCmd runs the keyboard controller.
type DriveCmd struct {
	Headless bool `kong:"help='Run from the system tray without the camera window'"`
	Serve    bool `kong:"help='Start the debug HTTP server'"`
}

func (c *DriveCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	if c.Headless {
		cfg.ShowCamera = false
	}
	if c.Serve {
		cfg.Server.Enabled = true
	}

	injector, err := input.NewInjector(runtime.GOOS)
	if err != nil {
		return fmt.Errorf("key injection: %w", err)
	}

	svc, err := app.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	processor := svc.Processor(false)
	defer processor.Close()

	dc := app.DriveConfig{
		Camera:     svc.Camera(),
		CameraID:   cfg.Camera.ID,
		Processor:  processor,
		Controller: input.NewController(injector, logger),
		Frames:     svc.Frames,
		Hub:        svc.Hub,
		Sessions:   svc.Store.Sessions(),
		Logger:     logger,
	}

	ctx, stop := signalContext()
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error { return svc.Serve(gctx) })

	var runErr error
	if cfg.ShowCamera {
		win := overlay.NewWindow(windowTitle)
		defer win.Close()
		dc.Display = win
		runErr = app.NewDrive(dc).Run(gctx)
	} else {
		runErr = runHeadless(gctx, cancel, dc)
	}

	cancel()
	if err := grp.Wait(); runErr == nil {
		runErr = err
	}
	return runErr
}

// runHeadless drives from a background goroutine while the tray owns the
// main thread. Quitting from the tray cancels the drive.
func runHeadless(ctx context.Context, cancel context.CancelFunc, dc app.DriveConfig) error {
	t := tray.New(windowTitle)
	dc.OnRule = t.SetLastAction
	drive := app.NewDrive(dc)
	t.OnToggle(drive.SetEnabled)
	t.OnQuit(cancel)

	done := make(chan error, 1)
	go func() {
		done <- drive.Run(ctx)
		t.Quit()
	}()

	t.Run()
	cancel()
	return <-done
}
