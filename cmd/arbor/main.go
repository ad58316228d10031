package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/phanxgames/arbor"
	"github.com/phanxgames/arbor/console"
	"github.com/phanxgames/arbor/cue"
	"github.com/phanxgames/arbor/frontend"
)

var (
	configFile string
	width      int
	height     int
	title      string
	seed       int64
	silent     bool
	replayFile string
	tickRate   float64
)

// main is the entry point for the arbor installation runner.
func main() {
	rootCmd := &cobra.Command{
		Use:   "arbor",
		Short: "interactive particle tree installation",
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (defaults to built-in tuning)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "random seed (0 = entropy)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the installation window",
		RunE:  runWindow,
	}
	runCmd.Flags().IntVar(&width, "width", 1280, "window width")
	runCmd.Flags().IntVar(&height, "height", 720, "window height")
	runCmd.Flags().StringVar(&title, "title", "arbor", "window title")
	runCmd.Flags().BoolVar(&silent, "silent", false, "skip audio device setup")
	rootCmd.AddCommand(runCmd)

	consoleCmd := &cobra.Command{
		Use:   "console",
		Short: "run the headless operator console",
		RunE:  runConsole,
	}
	consoleCmd.Flags().StringVar(&replayFile, "replay", "", "landmark replay script to drive gestures from")
	consoleCmd.Flags().Float64Var(&tickRate, "tps", 30, "engine ticks per second")
	rootCmd.AddCommand(consoleCmd)

	genCmd := &cobra.Command{
		Use:   "gen [path]",
		Short: "write the default config as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return arbor.SaveConfig(args[0], arbor.DefaultConfig())
		},
	}
	rootCmd.AddCommand(genCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*arbor.Config, error) {
	cfg := arbor.DefaultConfig()
	if configFile != "" {
		var err error
		cfg, err = arbor.LoadConfig(configFile)
		if err != nil {
			return nil, err
		}
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	return cfg, nil
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	engine, err := arbor.NewEngine(cfg)
	if err != nil {
		return err
	}

	if !silent {
		player := cue.NewPlayer()
		// No audio device is a degraded experience, not a fatal one.
		if err := player.Initialize(); err != nil {
			log.Printf("arbor: audio unavailable, running silent: %v", err)
		} else {
			engine.SetCuePlayer(player)
		}
	}

	return frontend.Run(engine, frontend.Options{
		Title:  title,
		Width:  width,
		Height: height,
	})
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	engine, err := arbor.NewEngine(cfg)
	if err != nil {
		return err
	}

	opts := console.Options{TicksPerSecond: tickRate}
	if replayFile != "" {
		replay, err := arbor.LoadReplay(replayFile)
		if err != nil {
			return err
		}
		opts.Replay = replay
	}
	return console.Run(engine, opts)
}
