package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"guildcore/internal/app"
	"guildcore/internal/host"
	"guildcore/internal/logging"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		addr        string
		cors        string
		hostVersion string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the runtime and serve the admin API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.resolve(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.AdminAddr = addr
			}
			if cmd.Flags().Changed("cors-origins") {
				cfg.CORSOrigins = splitCSV(cors)
			}
			log, levels := logging.NewSwitched(logging.Options{
				Debug:  cfg.Debug,
				Level:  cfg.LogLevel,
				Pretty: cfg.LogPretty,
				Writer: cmd.ErrOrStderr(),
			})
			h := host.NewMemory(host.WithInfo(host.Info{Type: host.TypePaper, Version: hostVersion}))
			a, err := app.New(app.Options{Config: cfg, Host: h, Logger: log, Levels: levels})
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Admin API listen address (overrides admin_addr)")
	cmd.Flags().StringVar(&cors, "cors-origins", "", "Comma separated CORS origins for the admin API")
	cmd.Flags().StringVar(&hostVersion, "host-version", "1.20.4", "Version the in-memory host reports")
	return cmd
}
