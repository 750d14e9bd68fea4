package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/odvcencio/hubmount/pkg/cache"
	"github.com/odvcencio/hubmount/pkg/github"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "hubmount",
		Short: "Mount a GitHub repository as a content-addressed git object store",
	}
	root.PersistentFlags().StringVar(&configPath, "config", ".hubmount.toml", "config file path")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newCatFileCmd())
	root.AddCommand(newHasCmd())
	root.AddCommand(newLsRefsCmd())
	root.AddCommand(newUpdateRefCmd())
	root.AddCommand(newDeleteRefCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("hubmount 0.1.0-dev")
		},
	}
}

func openStore() (*github.Store, error) {
	cfg, err := github.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	opts := github.Options{
		Logger: slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
	if cfg.CacheDir != "" {
		opts.Cache = cache.NewStore(cfg.CacheDir)
	}
	return github.NewStore(cfg, opts)
}
