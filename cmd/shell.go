package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/bnema/regmsg/internal/config"
	"github.com/bnema/regmsg/internal/ipc"
)

var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	timingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	greetingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive shell over the daemon",
	Long: `Open an interactive shell that forwards commands to the running daemon.
Type 'help' for the daemon's command list, 'clear' to clear the screen
and 'exit' to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := ipc.NewClient(config.Get().Daemon.SocketPath)

		// Preflight so a missing daemon fails before the prompt shows.
		if _, err := client.Send("listCommands"); err != nil {
			exitError("%v", err)
		}

		hostname, err := os.Hostname()
		if err != nil {
			hostname = "regmsg"
		}
		prompt := promptStyle.Render(fmt.Sprintf("[%s]> ", hostname))

		fmt.Println(greetingStyle.Render("Connected to regmsg daemon. Type 'help' for commands, 'exit' to quit."))

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print(prompt)
			if !scanner.Scan() {
				fmt.Println()
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())

			switch line {
			case "":
				continue
			case "exit", "quit":
				return nil
			case "clear":
				fmt.Print("\033[2J\033[H")
				continue
			case "help":
				line = "listCommands"
			}

			start := time.Now()
			reply, err := client.Send(line)
			elapsed := time.Since(start)
			if err != nil {
				fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
				continue
			}
			if strings.HasPrefix(reply, "Error: ") {
				fmt.Println(errorStyle.Render(reply))
			} else {
				fmt.Println(reply)
			}
			fmt.Println(timingStyle.Render(fmt.Sprintf("(%s)", elapsed.Round(time.Millisecond))))
		}
	},
}
