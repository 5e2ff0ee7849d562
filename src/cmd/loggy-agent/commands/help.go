package commands

import (
	"fmt"
	"sort"
	"strings"
)

// generalHelpTemplate is the default help message shown when no specific command is requested.
const generalHelpTemplate = `Loggy Agent: a client-side event aggregator.

Usage:
  <producer> | loggy-agent [options]
  loggy-agent [command] [options]

Commands:
%s

Application Options:
  -config <path>           Path to configuration file (default: ~/.config/loggy.toml)
  -app <name>              Application name events are shipped under
  -endpoint <url>          Collector endpoint (http://, https:// or tcp://)
  -quiet                   Suppress agent output except shipped events
  -version                 Display version information and exit

Logging Options:
  -log-output <mode>       file, stdout, stderr, both, none
  -log-level <level>       debug, info, warn, error
  -log-dir <path>          Log directory for file output

For command-specific help:
  loggy-agent help <command>
  loggy-agent <command> --help

Configuration Sources (Precedence: CLI > Env > File > Defaults):
  - CLI flags override all other settings
  - Environment variables (LOGGY_*) override file settings
  - TOML configuration file is the primary method

Examples:
  # Ship a service's output under the name 'billing'
  billing-svc 2>&1 | loggy-agent --app billing

  # Run a local collector for development
  loggy-agent listen --port 1065

For detailed configuration options, please refer to the documentation.
`

// HelpCommand handles the display of general or command-specific help messages.
type HelpCommand struct {
	router *CommandRouter
}

// NewHelpCommand creates a new help command handler.
func NewHelpCommand(router *CommandRouter) *HelpCommand {
	return &HelpCommand{router: router}
}

// Execute displays the appropriate help message based on the provided arguments.
func (c *HelpCommand) Execute(args []string) error {
	// Check if help is requested for a specific command
	if len(args) > 0 && args[0] != "" {
		cmdName := args[0]

		if handler, exists := c.router.GetCommand(cmdName); exists {
			fmt.Print(handler.Help())
			return nil
		}

		return fmt.Errorf("unknown command: %s", cmdName)
	}

	// Display general help with command list
	fmt.Printf(generalHelpTemplate, c.formatCommandList())
	return nil
}

// Description returns a brief one-line description of the command.
func (c *HelpCommand) Description() string {
	return "Display help information"
}

// Help returns the detailed help text for the 'help' command itself.
func (c *HelpCommand) Help() string {
	return `Help Command - Display help information

Usage:
  loggy-agent help              Show general help
  loggy-agent help <command>    Show help for a specific command

Examples:
  loggy-agent help              # Show general help
  loggy-agent help auth         # Show auth command help
  loggy-agent auth --help       # Alternative way to get command help
`
}

// formatCommandList creates a formatted and aligned list of all available commands.
func (c *HelpCommand) formatCommandList() string {
	commands := c.router.GetCommands()

	// Sort command names for consistent output
	names := make([]string, 0, len(commands))
	maxLen := 0
	for name := range commands {
		names = append(names, name)
		if len(name) > maxLen {
			maxLen = len(name)
		}
	}
	sort.Strings(names)

	// Format each command with aligned descriptions
	var lines []string
	for _, name := range names {
		handler := commands[name]
		padding := strings.Repeat(" ", maxLen-len(name)+2)
		lines = append(lines, fmt.Sprintf("  %s%s%s", name, padding, handler.Description()))
	}

	return strings.Join(lines, "\n")
}
