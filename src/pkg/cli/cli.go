// Package cli provides the interactive readline interface of the
// application.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"chapterforge/local-app/src/pkg/adapter"
	"chapterforge/local-app/src/pkg/log"
)

// CLI represents the command-line interface
type CLI struct {
	cliAdapter *adapter.CLIAdapter
	sessionID  string
	rl         *readline.Instance
	logger     *log.Logger
}

// NewCLI creates a new CLI instance with its own session
func NewCLI(cliAdapter *adapter.CLIAdapter, logger *log.Logger) (*CLI, error) {
	sessionID, err := cliAdapter.SessionAdd()
	if err != nil {
		return nil, fmt.Errorf("failed to create CLI session: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize readline: %w", err)
	}

	return &CLI{
		cliAdapter: cliAdapter,
		sessionID:  sessionID,
		rl:         rl,
		logger:     logger,
	}, nil
}

// Run starts the CLI and handles user input until exit
func (c *CLI) Run(ctx context.Context) error {
	fmt.Println("Welcome to Chapterforge CLI!")
	fmt.Println("Type 'help' for a list of commands or 'exit' to quit.")

	defer func() {
		c.cliAdapter.SessionDelete(c.sessionID)
		if err := c.rl.Close(); err != nil {
			c.logger.Warn(ctx, "Failed to close readline", log.Fields{"error": err})
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		c.rl.SetPrompt(c.cliAdapter.PromptGet(c.sessionID))
		input, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			return nil
		}

		if strings.HasPrefix(input, "help") {
			c.printHelp(strings.Fields(input)[1:])
			continue
		}

		result, err := c.cliAdapter.ProcessInput(c.sessionID, input)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		if s, ok := result.(string); ok && s == "exit" {
			return nil
		}
		if result != nil {
			fmt.Printf("%v\n", result)
		}
	}
}
