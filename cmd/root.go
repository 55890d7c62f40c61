package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/regmsg/internal/config"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "regmsg",
		Short: "Regmsg - display configuration over IPC",
		Long: `Regmsg queries and configures display settings (mode, resolution,
rotation, output, screenshots, touchscreen mapping) through a long-running
daemon that owns the display backend. The daemon answers requests over a
local Unix socket; this binary is also the client and an interactive shell.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				config.SetConfigPath(configPath)
			}
			return config.Init()
		},
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(setupCmd)
	addClientCommands(rootCmd)
}

// Exit with error message
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
