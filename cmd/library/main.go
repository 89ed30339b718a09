package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pollex.nl/library"
	"pollex.nl/library/catalogue"
	"pollex.nl/library/internal/config"
	"pollex.nl/library/internal/console"
	"pollex.nl/library/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to the config file (default: ./library.yaml if present)")
	rebuild := flag.Bool("rebuild", false, "Drop and recreate the schema before showing the menu")
	flag.Parse()

	if err := run(*configPath, *rebuild); err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", console.ErrorColor, err, console.ResetColor)
		os.Exit(1)
	}
}

func run(configPath string, rebuild bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Logs go to stderr so they do not interleave with the menu.
	log := logger.New(cfg.Log, os.Stderr)

	policy, err := catalogue.ParseDeletePolicy(cfg.Catalogue.AuthorDeletePolicy)
	if err != nil {
		return err
	}

	store, err := library.Open(cfg.Store, log)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat := catalogue.New(store, catalogue.Options{AuthorDeletePolicy: policy})
	if rebuild {
		if err := cat.Rebuild(ctx); err != nil {
			return err
		}
	}

	return console.New(cat, os.Stdin, os.Stdout, log).Run(ctx)
}
