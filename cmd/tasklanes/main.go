package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"tasklanes/internal/board"
	"tasklanes/internal/config"
	"tasklanes/internal/logging"
	"tasklanes/internal/storage"
	"tasklanes/internal/task"
	"tasklanes/internal/transition"
	"tasklanes/internal/ui"
)

var version = "dev"

func main() {
	configPath := flag.String("config", config.ResolveConfigPath(), "path to the config file")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("tasklanes", version)
		return
	}

	cfg, err := config.LoadOrCreate(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, logCloser, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		fmt.Printf("failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()
	logger.Info("starting", "version", version, "config", *configPath, "db", cfg.DBPath, "slot", cfg.Slot)

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		fmt.Printf("failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	slot := db.Slot(cfg.Slot)
	store, err := task.Open(slot, task.WithLogger(logger))
	if err != nil {
		// the store still opens empty
		logger.Error("load tasks", "slot", slot.Name(), "err", err)
	}
	ready := []interface{}{"slot", slot.Name(), "tasks", store.Len()}
	if at, ok, err := slot.UpdatedAt(); err != nil {
		logger.Warn("read slot timestamp", "slot", slot.Name(), "err", err)
	} else if ok {
		ready = append(ready, "last_saved", at.Local().Format(time.DateTime))
	}
	logger.Info("board ready", ready...)

	b := board.New(store,
		board.WithLogger(logger),
		board.WithSessionOptions(transition.WithDelay(cfg.Delay())),
	)
	if err := ui.Run(b, cfg, logger); err != nil {
		logger.Error("ui exited", "err", err)
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}
