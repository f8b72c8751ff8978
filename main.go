package main

import (
	"embed"
	"errors"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"launchpad/internal/app"
	"launchpad/internal/logging"
	"launchpad/internal/utils"

	"github.com/wailsapp/wails/v3/pkg/application"
)

//go:embed all:frontend/dist
var assets embed.FS

const singleInstanceName = "Local\\LaunchpadSingleInstance"

func getFFmpegPath() string {
	exePath, err := os.Executable()
	if err == nil {
		exeDir := filepath.Dir(exePath)
		ffmpegPath := filepath.Join(exeDir, "ffmpeg.exe")
		if _, err := os.Stat(ffmpegPath); err == nil {
			return ffmpegPath
		}

		ffmpegPath = filepath.Join(exeDir, "bin", "ffmpeg.exe")
		if _, err := os.Stat(ffmpegPath); err == nil {
			return ffmpegPath
		}
	}

	if _, err := os.Stat("bin/ffmpeg.exe"); err == nil {
		return "bin/ffmpeg.exe"
	}
	if _, err := os.Stat("ffmpeg.exe"); err == nil {
		return "ffmpeg.exe"
	}

	// hope it's in PATH
	return "ffmpeg"
}

func main() {
	logsDir, err := utils.GetLogsDir()
	if err != nil {
		log.Printf("Failed to get logs dir: %v", err)
	}
	if err := logging.Setup(logging.GetDefaultLogPath(logsDir), "info"); err != nil {
		log.Printf("Failed to setup logging: %v", err)
	}
	defer logging.Close()

	instance, err := utils.AcquireSingleInstance(singleInstanceName)
	if errors.Is(err, utils.ErrAlreadyRunning) {
		slog.Info("launchpad is already running")
		return
	}
	if err != nil {
		slog.Warn("single instance check failed", "error", err)
	} else {
		defer instance.Release()
	}

	ffmpegPath := getFFmpegPath()
	slog.Info("Using FFmpeg", "path", ffmpegPath)

	service := app.New(app.Options{
		FFmpegPath: ffmpegPath,
		Logger:     slog.Default(),
	})

	appInstance := application.New(application.Options{
		Name:        "Launchpad",
		Description: "Game launcher with instant replay clips",
		Services: []application.Service{
			application.NewService(service),
		},
		Assets: application.AssetOptions{
			Handler: app.NewAssetHandler(assets, service.Registry()),
		},
		Mac: application.MacOptions{
			ApplicationShouldTerminateAfterLastWindowClosed: true,
		},
	})

	service.SetApp(appInstance)

	appInstance.Window.NewWithOptions(application.WebviewWindowOptions{
		Title:            "Launchpad",
		Width:            1280,
		Height:           800,
		MinWidth:         960,
		MinHeight:        600,
		Frameless:        true,
		BackgroundColour: application.NewRGBA(15, 15, 20, 255),
		URL:              "/",
	})

	if err := appInstance.Run(); err != nil {
		log.Fatal(err)
	}
}
