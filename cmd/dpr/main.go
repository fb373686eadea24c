// Command dpr is the field client for daily progress reports.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/sitemaster/dpr/internal/api"
	"github.com/sitemaster/dpr/internal/cli"
	"github.com/sitemaster/dpr/internal/log"
	"github.com/sitemaster/dpr/internal/service"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := api.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	log.Init(os.Stderr, cfg.LogLevel)

	client := api.NewClient(cfg, api.NewLogObserver(log.Logger()))
	records := service.NewRecordService(client, nil, service.NewLogUseCaseObserver(log.Logger()))

	app := &cli.App{
		Records: records,
		Author:  cfg.Author,
		IsInteractive: func() bool {
			fd := os.Stdin.Fd()
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
	}
	return cli.Execute(app)
}
