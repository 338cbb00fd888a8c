// Package app wires configuration, image loading, enhancement, the browsing
// session and the Fyne window together.
package app

import (
	"context"
	"fmt"

	"mri-enhancer/internal/browser"
	"mri-enhancer/internal/config"
	"mri-enhancer/internal/gui"
	"mri-enhancer/internal/imageset"
	"mri-enhancer/internal/logger"
	"mri-enhancer/internal/opencv/memory"
	"mri-enhancer/internal/processing/enhance"
	"mri-enhancer/internal/shutdown"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
)

const (
	AppName    = "MRI Image Enhancement and Thresholding"
	AppID      = "com.imageprocessing.mri-enhancer"
	AppVersion = "1.0.0"
)

type Application struct {
	fyneApp fyne.App
	window  fyne.Window
	config  *config.Config
	logger  logger.Logger

	memoryManager *memory.Manager
	images        *imageset.Collection
	pipeline      *enhance.Pipeline
	session       *browser.Session
	guiManager    *gui.Manager
	shutdown      *shutdown.Manager
}

// NewApplication loads the images and builds the window. A folder without
// images is reported as imageset.ErrEmptyCollection before any window is
// created.
func NewApplication(cfg *config.Config) (*Application, error) {
	log, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	a, err := newCore(cfg, log)
	if err != nil {
		return nil, err
	}

	if err := a.setupWindow(fyneapp.NewWithID(AppID)); err != nil {
		a.logger.Error("Application", err, nil)
		a.shutdown.Shutdown()
		return nil, err
	}

	a.logger.Info("Application", "initialization complete", nil)
	return a, nil
}

// NewLogger builds the zerolog logger described by cfg.Log.
func NewLogger(cfg *config.Config) (logger.Logger, error) {
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logger.New(level, cfg.Log.JSON), nil
}

// newCore sets up everything that does not need a display.
func newCore(cfg *config.Config, log logger.Logger) (*Application, error) {
	log.Info("Application", "starting application", map[string]interface{}{
		"version": AppVersion,
		"folder":  cfg.Folder,
	})

	a := &Application{
		config:        cfg,
		logger:        log,
		memoryManager: memory.NewManager(log),
		shutdown:      shutdown.NewManager(log),
	}
	a.shutdown.Register(a.memoryManager)

	loader := imageset.NewLoader(cfg.NormalizedExtensions(), log, a.memoryManager)
	a.images = loader.Load(cfg.Folder)
	a.shutdown.Register(a.images)

	if err := a.images.Validate(); err != nil {
		err = fmt.Errorf("no images to display in %q: %w", cfg.Folder, err)
		log.Error("Application", err, map[string]interface{}{
			"folder":     cfg.Folder,
			"extensions": cfg.Extensions,
		})
		a.shutdown.Shutdown()
		return nil, err
	}

	a.pipeline = enhance.NewPipeline(pipelineParams(cfg), log)
	return a, nil
}

func pipelineParams(cfg *config.Config) enhance.Params {
	return enhance.Params{
		SigmaColor:     cfg.Bilateral.SigmaColor,
		SigmaSpatial:   cfg.Bilateral.SigmaSpatial,
		PatchSize:      cfg.NLMeans.PatchSize,
		PatchDistance:  cfg.NLMeans.PatchDistance,
		StrengthFactor: cfg.NLMeans.StrengthFactor,
		ClipLimit:      cfg.CLAHE.ClipLimit,
		TileGrid:       cfg.CLAHE.TileGrid,
	}
}

func (a *Application) setupWindow(fyneApp fyne.App) error {
	a.fyneApp = fyneApp
	a.window = fyneApp.NewWindow(AppName)
	a.window.Resize(fyne.NewSize(a.config.Window.Width, a.config.Window.Height))
	a.window.CenterOnScreen()
	a.window.SetMaster()

	a.guiManager = gui.NewManager(a.window, a.logger, a.config.Threshold, a.config.Window.MaxPanelSize)

	session, err := browser.NewSession(a.images, a.pipeline, a.guiManager, a.logger, a.config.Threshold)
	if err != nil {
		return err
	}
	a.session = session
	a.shutdown.Register(a.session)
	a.shutdown.Register(a.guiManager)

	a.guiManager.SetEventHandler(func(ev browser.Event) error {
		return a.session.Dispatch(a.ctx(), ev)
	})

	if err := a.session.Start(a.ctx()); err != nil {
		return fmt.Errorf("failed to display first image: %w", err)
	}

	a.window.SetContent(a.guiManager.GetMainContainer())
	return nil
}

func (a *Application) ctx() context.Context {
	return a.shutdown.Context()
}

// Run shows the window and blocks until it is closed or the process is
// interrupted.
func (a *Application) Run() error {
	stop := a.shutdown.Listen(func() {
		fyne.Do(func() {
			a.shutdown.Shutdown()
			a.fyneApp.Quit()
		})
	})
	defer stop()

	a.window.SetCloseIntercept(func() {
		a.logger.Info("Application", "shutdown requested", nil)
		a.shutdown.Shutdown()
		a.window.Close()
	})

	a.logger.Info("Application", "GUI displayed", map[string]interface{}{
		"images": a.images.Len(),
	})
	a.window.ShowAndRun()

	a.shutdown.Shutdown()
	return nil
}
