package auth

import (
	"flag"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/denull/loggy-agent/src/internal/core"

	"golang.org/x/term"
)

// GeneratorCommand implements the credential generation subcommand:
// random bearer tokens for agents and Argon2id hashes for the
// collector side of the config.
type GeneratorCommand struct {
	output io.Writer
	errOut io.Writer
}

func NewGeneratorCommand() *GeneratorCommand {
	return &GeneratorCommand{
		output: os.Stdout,
		errOut: os.Stderr,
	}
}

func (g *GeneratorCommand) Execute(args []string) error {
	cmd := flag.NewFlagSet("auth", flag.ContinueOnError)
	cmd.SetOutput(g.errOut)

	var (
		genToken = cmd.Bool("t", false, "Generate random bearer token")
		tokenLen = cmd.Int("l", core.DefaultTokenLength, "Token length in bytes")
		hashOnly = cmd.Bool("s", false, "Hash an existing token (prompts for it)")
	)

	cmd.Usage = func() {
		fmt.Fprintln(g.errOut, "Generate authentication credentials for loggy-agent")
		fmt.Fprintln(g.errOut, "\nUsage: loggy-agent auth [options]")
		fmt.Fprintln(g.errOut, "\nExamples:")
		fmt.Fprintln(g.errOut, "  # Generate a bearer token plus its collector-side hash")
		fmt.Fprintln(g.errOut, "  loggy-agent auth -t")
		fmt.Fprintln(g.errOut, "  ")
		fmt.Fprintln(g.errOut, "  # Generate a 64-byte token")
		fmt.Fprintln(g.errOut, "  loggy-agent auth -t -l 64")
		fmt.Fprintln(g.errOut, "  ")
		fmt.Fprintln(g.errOut, "  # Hash a token you already distribute")
		fmt.Fprintln(g.errOut, "  loggy-agent auth -s")
		fmt.Fprintln(g.errOut, "\nOptions:")
		cmd.PrintDefaults()
	}

	if err := cmd.Parse(args); err != nil {
		return err
	}

	if *hashOnly {
		return g.hashExistingToken()
	}
	if *genToken {
		return g.generateToken(*tokenLen)
	}

	cmd.Usage()
	return fmt.Errorf("choose -t to generate a token or -s to hash one")
}

func (g *GeneratorCommand) generateToken(length int) error {
	if length < 16 {
		fmt.Fprintln(g.errOut, "Warning: tokens < 16 bytes are cryptographically weak")
	}

	token, err := GenerateToken(length)
	if err != nil {
		return err
	}
	phc, err := HashToken(token)
	if err != nil {
		return err
	}

	fmt.Fprintln(g.output, "\n# Agent side (loggy.toml):")
	fmt.Fprintln(g.output, "[remote]")
	fmt.Fprintf(g.output, "token = %q\n\n", token)

	fmt.Fprintln(g.output, "# Collector side (loggy.toml):")
	fmt.Fprintln(g.output, "[listen]")
	fmt.Fprintf(g.output, "token_hashes = [%q]\n\n", phc)

	fmt.Fprintln(g.output, "# Generated Token:")
	fmt.Fprintf(g.output, "%s\n", token)

	return nil
}

func (g *GeneratorCommand) hashExistingToken() error {
	tok1 := g.promptToken("Enter token: ")
	tok2 := g.promptToken("Confirm token: ")
	if tok1 != tok2 {
		return fmt.Errorf("tokens don't match")
	}
	if tok1 == "" {
		return fmt.Errorf("token cannot be empty")
	}

	phc, err := HashToken(tok1)
	if err != nil {
		return err
	}

	fmt.Fprintln(g.output, "\n# Collector side (loggy.toml):")
	fmt.Fprintln(g.output, "[listen]")
	fmt.Fprintf(g.output, "token_hashes = [%q]\n", phc)

	return nil
}

func (g *GeneratorCommand) promptToken(prompt string) string {
	fmt.Fprint(g.errOut, prompt)
	token, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(g.errOut)
	if err != nil {
		fmt.Fprintf(g.errOut, "Failed to read token: %v\n", err)
		os.Exit(1)
	}
	return string(token)
}
