// Package main implements the nesl NES emulator executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/majestic53/nesl-sub001/internal/app"
	"github.com/majestic53/nesl-sub001/internal/diag"
	"github.com/majestic53/nesl-sub001/internal/version"
)

func main() {
	var (
		romFile    = flag.String("rom", "", "Path to NES ROM file (optional for GUI mode)")
		configFile = flag.String("config", "", "Path to configuration file")
		debug      = flag.Bool("debug", false, "Enable debug logging")
		nogui      = flag.Bool("nogui", false, "Run without GUI (headless mode)")
		help       = flag.Bool("help", false, "Show help message")
		showVer    = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}

	if *showVer {
		version.PrintBuildInfo()
		os.Exit(0)
	}

	setupGracefulShutdown()

	fmt.Println("nesl - NES emulator starting")

	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}

	application, err := app.NewApplicationWithMode(configPath, *nogui)
	if err != nil {
		log.Fatalf("failed to create application: %v", err)
	}

	if *nogui {
		application.GetConfig().Video.Backend = "headless"
	}

	defer func() {
		if err := application.Cleanup(); err != nil {
			log.Printf("application cleanup error: %v", err)
		}
	}()

	if *debug {
		application.GetConfig().UpdateDebug(true, true, true)
	}

	if *romFile != "" {
		fmt.Printf("loading ROM: %s\n", *romFile)
		if err := application.LoadROM(*romFile); err != nil {
			log.Fatalf("failed to load ROM: %v", err)
		}
	}

	if *nogui {
		if *romFile == "" {
			log.Fatal("ROM file required for headless mode")
		}
		runHeadless(application)
	} else if err := runGUI(application); err != nil {
		log.Fatalf("GUI mode failed: %v", err)
	}

	if message, ok := diag.GetError(); ok {
		fmt.Fprintln(os.Stderr, message)
		os.Exit(1)
	}

	fmt.Println("nesl shutting down")
}

// runGUI starts the windowed application and blocks until it exits.
func runGUI(application *app.Application) error {
	config := application.GetConfig()
	width, height := config.GetWindowResolution()
	fmt.Printf("window: %dx%d (scale %dx)\n", width, height, config.Window.Scale)
	fmt.Printf("audio: %s, %d Hz\n", enabledString(config.Audio.Enabled), config.Audio.SampleRate)

	if err := application.Run(); err != nil {
		return fmt.Errorf("application run failed: %v", err)
	}

	fmt.Printf("frames rendered: %d, uptime: %v, average fps: %.1f\n",
		application.GetFrameCount(), application.GetUptime(), application.GetFPS())
	return nil
}

// runHeadless drives the bus directly without a window, for scripted
// testing and automation.
func runHeadless(application *app.Application) {
	bus := application.GetBus()
	if bus == nil {
		log.Fatal("bus not initialized")
	}

	const targetFrames = 120
	for frame := 0; frame < targetFrames; frame++ {
		bus.RunFrame()
		if frame%30 == 29 {
			fmt.Printf("%d/%d frames completed\n", frame+1, targetFrames)
		}
	}
}

func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Println("\ninterrupt received, shutting down")
		os.Exit(0)
	}()
}

func enabledString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func printUsage() {
	fmt.Println("nesl - a Go NES/Famicom emulator core")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  nesl [options]                    start GUI mode without a ROM")
	fmt.Println("  nesl -rom <file> [options]        start with a ROM loaded")
	fmt.Println("  nesl -nogui -rom <file> [options] run headless mode")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("CONTROLS (default):")
	fmt.Println("  Player 1: Arrow keys / WASD - D-Pad, J - A, K - B, Enter - Start, Space - Select")
	fmt.Println("  Player 2: number keys 1-8")
	fmt.Println("  Escape (2x within 3s) - soft reset")
}
