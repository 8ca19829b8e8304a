package main

import (
	"context"
	"fmt"

	"github.com/harunnryd/studioport/internal/config"
	"github.com/harunnryd/studioport/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the conversion HTTP service",
	Long: `Serve exposes POST /api/v1/convert and GET /health until interrupted.
The request body is {"tools": [...], "transcript": [...], "params": {...}}.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loadedCfg, err := loadConfigForCommand(cmd)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		srv, err := server.New(loadedCfg.Server, paramsFromConfig(loadedCfg), factoryFromConfig(loadedCfg))
		if err != nil {
			return err
		}

		handler := NewSignalHandler(commandContext(cmd))
		handler.Start()
		defer handler.Stop()

		if err := srv.Start(handler.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Listening on %s\n", srv.Addr())

		<-handler.Context().Done()
		return srv.Stop(context.Background())
	},
}

func init() {
	serveCmd.Flags().Int("server.port", config.DefaultServerPort, "server port")
	rootCmd.AddCommand(serveCmd)
}
