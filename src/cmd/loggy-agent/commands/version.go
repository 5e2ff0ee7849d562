package commands

import (
	"fmt"

	"github.com/denull/loggy-agent/src/internal/version"
)

// VersionCommand handles version display
type VersionCommand struct{}

// NewVersionCommand creates a new version command
func NewVersionCommand() *VersionCommand {
	return &VersionCommand{}
}

func (c *VersionCommand) Execute(args []string) error {
	fmt.Println(version.String())
	return nil
}

func (c *VersionCommand) Description() string {
	return "Show version information"
}

func (c *VersionCommand) Help() string {
	return `Version Command - Show loggy-agent version information

Usage:
  loggy-agent version
  loggy-agent --version

Output includes:
  - Version number
  - Build date
  - Git commit hash (if available)
  - Go version used for compilation
`
}
