package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/regmsg/internal/config"
	"github.com/bnema/regmsg/internal/ipc"
)

// send forwards one command line to the daemon and prints the reply.
// An "Error: " reply is surfaced as a command error so the process
// exits non-zero.
func send(line string) error {
	client := ipc.NewClient(config.Get().Daemon.SocketPath)
	reply, err := client.Send(line)
	if err != nil {
		return err
	}
	if rest, ok := strings.CutPrefix(reply, "Error: "); ok {
		return errors.New(rest)
	}
	fmt.Println(reply)
	return nil
}

// simpleCommand builds a subcommand forwarding its bare name.
func simpleCommand(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(name)
		},
	}
}

// screenCommand builds a query subcommand with an optional screen
// filter, forwarded as trailing "--screen X" text.
func screenCommand(name, short string) *cobra.Command {
	var screen string
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			line := name
			if screen != "" {
				line += " --screen " + screen
			}
			return send(line)
		},
	}
	cmd.Flags().StringVarP(&screen, "screen", "s", "", "target a specific screen")
	return cmd
}

// setterCommand builds a subcommand taking one value plus an optional
// screen filter.
func setterCommand(name, short, valueName string) *cobra.Command {
	var screen string
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <%s>", name, valueName),
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line := name + " " + args[0]
			if screen != "" {
				line += " --screen " + screen
			}
			return send(line)
		},
	}
	cmd.Flags().StringVarP(&screen, "screen", "s", "", "target a specific screen")
	return cmd
}

func addClientCommands(root *cobra.Command) {
	root.AddCommand(
		simpleCommand("listCommands", "List all available commands"),
		simpleCommand("listOutputs", "List all available display outputs"),
		simpleCommand("currentOutput", "Show the current output"),
		simpleCommand("currentBackend", "Show the current window system"),
		simpleCommand("getScreenshot", "Take a screenshot of the current screen"),
		simpleCommand("mapTouchScreen", "Map the touchscreen to the correct display"),
		simpleCommand("getController", "Show all controller configurations"),

		screenCommand("listModes", "List available display modes"),
		screenCommand("currentMode", "Show the current display mode"),
		screenCommand("currentResolution", "Show the current resolution"),
		screenCommand("currentRotation", "Show the current rotation"),
		screenCommand("currentRefresh", "Show the current refresh rate"),
		screenCommand("minToMaxResolution", "Clamp the resolution to the configured maximum"),

		setterCommand("setMode", "Set the display mode (e.g. 1920x1080@60 or max-1920x1080)", "mode"),
		setterCommand("setRotation", "Set the screen rotation (0, 90, 180, 270)", "rotation"),

		&cobra.Command{
			Use:   "setOutput <mode>",
			Short: "Apply a mode to all connected outputs (WxH@R or WxH)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return send("setOutput " + args[0])
			},
		},
		&cobra.Command{
			Use:   "addController <index> <guid>",
			Short: "Register a controller by index and GUID",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return send("addController " + args[0] + " " + args[1])
			},
		},
		&cobra.Command{
			Use:   "removeController <guid>",
			Short: "Remove a controller by GUID",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return send("removeController " + args[0])
			},
		},
	)
}
