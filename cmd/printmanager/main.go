// PrintManager — 3D Print Shop Manager
//
// A cross-platform desktop application for pricing 3D prints from sliced
// G-code and tracking filament spool inventory.
//
// Build:
//   go build -o printmanager ./cmd/printmanager
//
// Cross-compile:
//   GOOS=windows GOARCH=amd64 go build -o printmanager.exe ./cmd/printmanager
//   GOOS=darwin  GOARCH=amd64 go build -o printmanager-darwin ./cmd/printmanager
//
// Using fyne-cross (recommended for proper packaging):
//   go install github.com/fyne-io/fyne-cross@latest
//   fyne-cross windows -arch=amd64
//   fyne-cross darwin  -arch=amd64,arm64

package main

import (
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"go.uber.org/zap"

	"github.com/Knopersikcuo/printmanager/internal/config"
	"github.com/Knopersikcuo/printmanager/internal/logger"
	"github.com/Knopersikcuo/printmanager/internal/store"
	"github.com/Knopersikcuo/printmanager/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString("failed to build logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	st, err := store.Open(cfg.DataDir, log)
	if err != nil {
		log.Fatal("failed to open data directory", zap.String("dir", cfg.DataDir), zap.Error(err))
	}
	log.Info("store opened", zap.String("dir", cfg.DataDir))

	application := app.NewWithID("com.knopersikcuo.printmanager")
	window := application.NewWindow("PrintManager — 3D Print Shop Manager")

	appUI, err := ui.NewApp(window, st, log)
	if err != nil {
		log.Fatal("failed to initialize application", zap.Error(err))
	}
	appUI.SetupMenus()
	window.SetContent(appUI.Build())
	window.Resize(fyne.NewSize(1280, 800))
	window.CenterOnScreen()
	window.Show()

	application.Run()
}
