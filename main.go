package main

import (
	"context"
	"log/slog"
	"os"

	"fyne.io/fyne/v2/app"

	"github.com/ytget/fbgrabber/internal/config"
	"github.com/ytget/fbgrabber/internal/download"
	"github.com/ytget/fbgrabber/internal/logger"
	"github.com/ytget/fbgrabber/internal/platform"
	"github.com/ytget/fbgrabber/internal/queue"
	"github.com/ytget/fbgrabber/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const AppID = "com.ytget.fbgrabber"

func main() {
	if err := config.LoadEnvFiles(".env"); err != nil {
		slog.Warn("failed to load .env", "error", err)
	}
	log := logger.Setup(logger.Config{
		Level:  os.Getenv(config.EnvPrefix + "LOG_LEVEL"),
		Format: os.Getenv(config.EnvPrefix + "LOG_FORMAT"),
	})
	log.Info("FB Grabber starting", "version", version)

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewCompactTheme())
	if icon, err := ui.LoadLogoResource(); err == nil {
		myApp.SetIcon(icon)
	}
	myWindow := myApp.NewWindow("")

	settings := config.NewSettings(myApp)
	cfg := settings.QueueConfig()
	if err := platform.CreateDirectoryIfNotExists(cfg.DownloadDir); err != nil {
		log.Error("failed to ensure downloads dir", "dir", cfg.DownloadDir, "error", err)
	}

	service := download.NewService(log)
	service.SetCookiesFile(cfg.CookiesFile)
	resolver := download.NewCachedResolver(service, download.DefaultCatalogTTL, download.DefaultCatalogCleanup)

	root := ui.NewRootUI(myWindow, myApp, settings, platform.NewPlaylistExpander(log), service, log)
	orchestrator := queue.NewOrchestrator(resolver, service, root, cfg, log)
	root.Bind(orchestrator)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := orchestrator.Run(ctx); err != nil {
			log.Error("queue stopped", "error", err)
		}
	}()

	myWindow.ShowAndRun()

	cancel()
	orchestrator.Close()
	log.Info("FB Grabber stopped")
}
