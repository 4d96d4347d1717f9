// Package main is the entry point for Lumina.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lumina-go/application"
	"lumina-go/core/eventbus"
	"lumina-go/domain/scenario"
	"lumina-go/infrastructure/logging"
	"lumina-go/resources"
)

func main() {
	scenarioName := flag.String("scenario", "skirmish", "name of the scenario to replay")
	tickEvery := flag.Duration("tick", time.Second/60, "main loop tick interval")
	maxTicks := flag.Int("max-ticks", 0, "stop after this many ticks (0 = no cap)")
	flag.Parse()

	// Initialize logging (dev: console only, prod: rotating file)
	logger, closeLog, err := logging.Setup(nil)
	if err != nil {
		// Fallback to stderr if logging setup fails
		os.Stderr.WriteString("Failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closeLog()

	logger.Info("Starting Lumina")

	// Load scenarios
	scenarioRegistry := scenario.NewRegistry()
	scenarioLoader := scenario.NewLoader(scenarioRegistry)
	if err := scenarioLoader.LoadFromFS(resources.ScenarioFiles); err != nil {
		logger.Error("Failed to load scenarios", "error", err)
		os.Exit(1)
	}
	logger.Info("Scenarios loaded", "count", scenarioRegistry.Count(), "names", scenarioRegistry.List())

	// Initialize event bus
	bus := eventbus.New(&eventbus.Config{Logger: logger})

	// Initialize runtime
	runtime, err := application.New(&application.Config{
		Bus:       bus,
		Scenarios: scenarioRegistry,
		Logger:    logger,
		TickEvery: *tickEvery,
		MaxTicks:  *maxTicks,
		InitialHealth: map[string]int{
			"orc":  100,
			"hero": 100,
		},
	})
	if err != nil {
		logger.Error("Failed to initialize runtime", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithAttrs(ctx, "scenario", *scenarioName)

	if err := runtime.Run(ctx, *scenarioName); err != nil {
		logger.Error("Run failed", "error", err)
		os.Exit(1)
	}

	stats := bus.Stats()
	logger.Info("Application shutdown complete",
		"ticks", runtime.Ticks(),
		"dispatched", stats.Dispatched,
		"handled", stats.Handled,
		"unhandled", stats.Unhandled,
	)
}
