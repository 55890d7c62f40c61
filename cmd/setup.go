package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/bnema/regmsg/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration setup",
	Long:  `Walk through the daemon settings interactively and write the TOML config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()

		socketPath := cfg.Daemon.SocketPath
		screenshotDir := cfg.Screen.ScreenshotDir
		maxResolution := cfg.Screen.MaxResolution
		confirm := true

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Daemon socket path").
					Description("Unix socket the daemon listens on").
					Value(&socketPath),
				huh.NewInput().
					Title("Screenshot directory").
					Description("Where getScreenshot saves captures").
					Value(&screenshotDir),
				huh.NewInput().
					Title("Maximum resolution").
					Description("Upper bound applied by minToMaxResolution (WxH)").
					Value(&maxResolution),
				huh.NewConfirm().
					Title(fmt.Sprintf("Write configuration to %s?", config.GetConfigPath())).
					Value(&confirm),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}
		if !confirm {
			fmt.Println("Setup cancelled, nothing written")
			return nil
		}

		if err := config.UpdateDaemon(config.DaemonConfig{SocketPath: socketPath}); err != nil {
			return err
		}
		screenCfg := cfg.Screen
		screenCfg.ScreenshotDir = screenshotDir
		screenCfg.MaxResolution = maxResolution
		if err := config.UpdateScreen(screenCfg); err != nil {
			return err
		}

		fmt.Printf("Configuration written to %s\n", config.GetConfigPath())
		return nil
	},
}
