package main

import (
	"time"

	"ticker-desk/src/apiclient"
	"ticker-desk/src/server"

	"github.com/spf13/cobra"
)

func runWeb(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup("web")
	if err != nil {
		return err
	}
	defer log.Sync()

	if portFlag != 0 {
		cfg.Port = portFlag
	}

	api := apiclient.NewBackendClient(cfg.APIBase, time.Duration(cfg.RequestTimeout)*time.Second, log)
	srv, err := server.NewWebServer(cfg.MConfig, api, log)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	return srv.Run(ctx)
}
