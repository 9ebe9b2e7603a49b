package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"guildcore/internal/config"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	configPath string
	debug      bool
	logLevel   string
	pretty     bool
}

// resolve loads the configuration and applies flag overrides on top.
func (o *rootOptions) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Resolve(o.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Debug = o.debug
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("pretty") {
		cfg.LogPretty = o.pretty
	}
	return cfg, nil
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "guildd",
		Short:         "Guild panel runtime and admin API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (.yaml|.yml|.json|.toml); default searches guildcore.yaml, guildcore.toml, ~/.config/guildcore/config.yaml")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error|off")
	root.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "Human-readable log output")

	root.AddCommand(newServeCmd(opts), newSimulateCmd(opts), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the guildd version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "guildd %s\n", version)
			return err
		},
	}
}

// splitCSV splits a comma separated flag value, dropping empty items.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "guildd:", err)
		os.Exit(1)
	}
}
