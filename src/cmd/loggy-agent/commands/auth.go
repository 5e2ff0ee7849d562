package commands

import (
	"github.com/denull/loggy-agent/src/internal/auth"
)

// AuthCommand handles credential generation for agent and collector
type AuthCommand struct {
	gen *auth.GeneratorCommand
}

// NewAuthCommand creates a new auth command
func NewAuthCommand() *AuthCommand {
	return &AuthCommand{
		gen: auth.NewGeneratorCommand(),
	}
}

func (c *AuthCommand) Execute(args []string) error {
	return c.gen.Execute(args)
}

func (c *AuthCommand) Description() string {
	return "Generate authentication credentials (tokens, hashes)"
}

func (c *AuthCommand) Help() string {
	return `Auth Command - Generate authentication credentials

Usage:
  loggy-agent auth [options]

Credential Types:
  Bearer Token:
    - Random cryptographic token for the agent side ([remote] token)
    - Argon2id hash of it for the collector side ([listen] token_hashes)

Options:
  -t                       Generate a random bearer token
  -l <bytes>               Token length in bytes (default: 32)
  -s                       Hash an existing token (prompts for it)

Examples:
  # Generate a token plus its collector-side hash
  loggy-agent auth -t

  # Generate a 64-byte token
  loggy-agent auth -t -l 64

  # Hash a token you already distribute
  loggy-agent auth -s

Output:
  The command outputs configuration snippets ready to paste into
  loggy.toml on both sides, plus the raw token value.

Security Notes:
  - Tokens travel in the Authorization header; use HTTPS endpoints
  - Store raw tokens securely and never commit them to version control
  - The collector stores only hashes; a lost token cannot be recovered
`
}
