package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/charlesvestal/move-anything-nam/cmd"
	"github.com/charlesvestal/move-anything-nam/internal/catalog"
	"github.com/charlesvestal/move-anything-nam/internal/config"
	"github.com/charlesvestal/move-anything-nam/internal/engine"
	"github.com/charlesvestal/move-anything-nam/internal/fx"
	applog "github.com/charlesvestal/move-anything-nam/internal/log"
	"github.com/charlesvestal/move-anything-nam/internal/transport"
	"github.com/charlesvestal/move-anything-nam/internal/tui"
	"github.com/charlesvestal/move-anything-nam/pkg/build"
)

// main drives the standalone runner. The hosted plugin build goes through
// internal/host instead and never touches any of this.
//
// 1. Startup (cold path): build info, CLI + YAML config, PortAudio init.
// 2. Concurrent (hot path): instance created, duplex stream running,
//    control server and terminal browser serving selections.
// 3. Shutdown (cold path): stop recording, stop the stream, drain the
//    instance (waits out any in-flight model load).
func main() {
	build.Initialize()

	opts, err := cmd.ParseArgs()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	applyOverrides(cfg, opts)

	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	if cfg.Debug || opts.Verbose {
		applog.SetLevel(applog.LevelDebug)
	}

	switch opts.Command {
	case "list":
		listCatalogs(cfg.ModuleDir)
		return
	case "devices":
		listDevices()
		return
	}

	// Help and version output land here without the root command running.
	if !opts.RunLive {
		return
	}

	run(cfg, opts)
}

// applyOverrides layers CLI flags over the YAML config.
func applyOverrides(cfg *config.Config, opts *cmd.Options) {
	if opts.ModuleDir != "" {
		cfg.ModuleDir = opts.ModuleDir
	}
	if opts.InputDevice != -1 {
		cfg.Audio.InputDevice = opts.InputDevice
	}
	if opts.OutputDevice != -1 {
		cfg.Audio.OutputDevice = opts.OutputDevice
	}
	if opts.Record {
		cfg.Recording.Enabled = true
	}
	if opts.OutputFile != "" {
		cfg.Recording.OutputFile = opts.OutputFile
	}
	if opts.ControlAddr != "" {
		cfg.Control.Enabled = true
		cfg.Control.Addr = opts.ControlAddr
	}
	if cfg.Recording.Enabled && cfg.Recording.OutputFile == "" {
		cfg.Recording.OutputFile = "nam-" +
			time.Now().UTC().Format("02-01-2006-150405") + ".wav"
	}
}

func listCatalogs(moduleDir string) {
	fmt.Println("Models:")
	for i, e := range catalog.ScanModels(moduleDir + "/" + config.ModelsDirName) {
		fmt.Printf("  [%d] %s\n", i, e.Name)
	}
	fmt.Println("Cabinets:")
	for i, e := range catalog.ScanCabs(moduleDir + "/" + config.CabsDirName) {
		fmt.Printf("  [%d] %s\n", i, e.Name)
	}
}

func listDevices() {
	if err := engine.Initialize(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer engine.Terminate()

	devices, err := engine.ListDevices()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for _, d := range devices {
		fmt.Printf("[%d] %s (in:%d out:%d @ %.0f Hz)\n",
			d.ID, d.Name, d.MaxInputChannels, d.MaxOutputChannels, d.DefaultSampleRate)
	}
}

func run(cfg *config.Config, opts *cmd.Options) {
	if err := engine.Initialize(); err != nil {
		applog.Error(err)
		os.Exit(1)
	}
	defer engine.Terminate()

	inst := fx.New(cfg.ModuleDir, fx.Options{})
	defer inst.Close()

	eng, err := engine.New(cfg, inst)
	if err != nil {
		applog.Error(err)
		os.Exit(1)
	}

	if err := eng.Start(); err != nil {
		applog.Error(err)
		os.Exit(1)
	}
	defer func() {
		if err := eng.Close(); err != nil {
			applog.Errorf("error closing engine: %v", err)
		}
	}()

	if cfg.Recording.Enabled {
		if err := eng.StartRecording(cfg.Recording.OutputFile); err != nil {
			applog.Error(err)
			os.Exit(1)
		}
		defer fmt.Printf("\nRecording saved to: %s\n", cfg.Recording.OutputFile)
	}

	if cfg.Control.Enabled {
		cs := transport.NewControlServer(cfg.Control.Addr, inst)
		defer cs.Close()
	}

	if opts.Headless {
		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGTERM)
		<-done
		return
	}

	browser := tui.NewBrowser(inst,
		cfg.ModuleDir+"/"+config.ModelsDirName,
		cfg.ModuleDir+"/"+config.CabsDirName)
	if _, err := tea.NewProgram(browser).Run(); err != nil {
		applog.Error(err)
		os.Exit(1)
	}
}
