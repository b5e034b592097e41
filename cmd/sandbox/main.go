package main

import (
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/oliverbestmann/rigid/internal/level"
	"github.com/oliverbestmann/rigid/internal/watch"
	"github.com/oliverbestmann/rigid/physics"
	"github.com/oliverbestmann/rigid/physics/chipmunk"
	"github.com/oliverbestmann/rigid/scene"
	"github.com/pkg/profile"
)

type options struct {
	ConfigPath string
	ScenePath  string
	Profile    bool
	Verbose    bool
}

func main() {
	var opts options

	flag.StringVar(&opts.ConfigPath, "config", "", "physics configuration, reloaded on change. Uses the embedded default if empty")
	flag.StringVar(&opts.ScenePath, "scene", "", "scene description. Uses the embedded default if empty")
	flag.BoolVar(&opts.Profile, "profile", false, "write a cpu profile")
	flag.BoolVar(&opts.Verbose, "verbose", false, "log every contact point")
	flag.Parse()

	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	if err := run(opts); err != nil {
		slog.Error("Sandbox failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.Profile {
		defer profile.Start(profile.CPUProfile).Stop()
	}

	config, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	// without a simulation the scene still runs, physics is skipped
	var sim physics.Simulation

	space, err := chipmunk.New(config)
	if err != nil {
		slog.Warn("Physics simulation is not available", slog.Any("err", err))
	} else {
		sim = space
	}

	s := scene.New()

	engine, err := physics.NewEngine(sim, physics.SceneHost{Scene: s}, config)
	if err != nil {
		return err
	}

	s.OnDespawn(engine.Forget)

	spawned, err := loadScene(s, engine, opts.ScenePath)
	if err != nil {
		return err
	}

	slog.Info("Scene loaded", slog.Int("entities", len(spawned)))

	if opts.Verbose {
		scene.ObserveGlobal(s, func(on scene.On[physics.GlobalContact]) {
			slog.Debug("Contact",
				slog.Any("a", on.Event.A),
				slog.Any("b", on.Event.B),
				slog.String("point", on.Event.Point.String()),
			)
		})
	}

	g := &game{scene: s, engine: engine, space: space}

	if opts.ConfigPath != "" {
		watcher, err := watch.Files(opts.ConfigPath)
		if err != nil {
			return fmt.Errorf("watch %s: %w", opts.ConfigPath, err)
		}

		defer watcher.Close()

		g.configChanges = watcher.Changes
	}

	ebiten.SetWindowTitle("rigid sandbox")
	ebiten.SetWindowSize(1280, 720)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	return ebiten.RunGame(g)
}

func loadConfig(path string) (physics.Config, error) {
	if path != "" {
		return physics.LoadConfig(path)
	}

	data, err := fs.ReadFile(assets, "physics.yaml")
	if err != nil {
		return physics.Config{}, err
	}

	return physics.ParseConfig(data)
}

func loadScene(s *scene.Scene, engine *physics.Engine, path string) (level.Spawned, error) {
	fsys, name := assets, "scene.yaml"
	if path != "" {
		// scripts are resolved relative to the scene file
		fsys, name = os.DirFS(filepath.Dir(path)), filepath.Base(path)
	}

	def, err := level.Load(fsys, name)
	if err != nil {
		return nil, err
	}

	return def.Spawn(s, engine, fsys)
}
