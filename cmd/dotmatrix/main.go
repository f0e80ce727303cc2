package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli"
	"github.com/valerio/go-dotmatrix/dotmatrix"
	"github.com/valerio/go-dotmatrix/dotmatrix/display"
	"github.com/valerio/go-dotmatrix/dotmatrix/render"
)

func main() {
	app := cli.NewApp()
	app.Name = "dotmatrix"
	app.Description = "A cycle-accurate emulator for the original monochrome handheld"
	app.Usage = "dotmatrix [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without a display",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
			Value: 0,
		},
		cli.BoolFlag{
			Name:  "sdl",
			Usage: "Render into an SDL2 window instead of the terminal",
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "Window scale factor for the SDL2 display",
			Value: 4,
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
	}
	app.Action = runEmulator

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	dmg, err := dotmatrix.NewWithFile(romPath)
	if err != nil {
		return err
	}

	switch {
	case c.Bool("headless"):
		return runHeadless(c, dmg, romPath)
	case c.Bool("sdl"):
		return runSDL(dmg, romPath, c.Int("scale"))
	default:
		renderer, err := render.NewTerminalRenderer(dmg)
		if err != nil {
			return err
		}
		return renderer.Run()
	}
}

func runHeadless(c *cli.Context, dmg *dotmatrix.DMG, romPath string) error {
	frames := c.Int("frames")
	if frames <= 0 {
		return errors.New("headless mode requires --frames option with a positive value")
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	slog.SetDefault(slog.New(handler))

	snapshotInterval := c.Int("snapshot-interval")
	snapshotDir := c.String("snapshot-dir")
	if snapshotInterval > 0 && snapshotDir == "" {
		tempDir, err := os.MkdirTemp("", "dotmatrix-snapshots-*")
		if err != nil {
			return fmt.Errorf("failed to create snapshot directory: %v", err)
		}
		snapshotDir = tempDir
	}
	if snapshotDir != "" {
		if err := os.MkdirAll(snapshotDir, 0755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %v", err)
		}
	}

	romName := strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath))
	slog.Info("Running headless mode", "frames", frames, "snapshot_interval", snapshotInterval, "snapshot_dir", snapshotDir)

	for i := 0; i < frames; i++ {
		if err := dmg.RunFrame(); err != nil {
			return err
		}

		if snapshotInterval > 0 && (i+1)%snapshotInterval == 0 {
			path := filepath.Join(snapshotDir, fmt.Sprintf("%s_frame_%d.txt", romName, i+1))
			snapshot := render.FrameSnapshot(dmg.Framebuffer())
			if err := os.WriteFile(path, []byte(snapshot), 0644); err != nil {
				slog.Error("Failed to save snapshot", "frame", i+1, "path", path, "error", err)
			} else {
				slog.Info("Saved frame snapshot", "frame", i+1, "path", path)
			}
		}
	}

	if log := dmg.SerialLog(); log != "" {
		fmt.Print(log)
	}
	slog.Info("Headless execution completed", "frames", frames)
	return nil
}

func runSDL(dmg *dotmatrix.DMG, romPath string, scale int) error {
	window := display.NewWindow()
	if err := window.Init(filepath.Base(romPath), scale); err != nil {
		return err
	}
	defer window.Cleanup()

	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	for range ticker.C {
		if err := dmg.RunFrame(); err != nil {
			return err
		}
		pressed, quit := window.Update(dmg.Framebuffer())
		if quit {
			return nil
		}
		dmg.UpdateButtons(pressed)
	}
	return nil
}
