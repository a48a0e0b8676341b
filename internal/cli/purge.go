package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ilya-bc/backstage/internal/visits"
)

// setBackend allows tests to inject a persistence backend.
func (c *PurgeCommand) setBackend(b visits.Backend) {
	c.backend = b
}

// Execute implements the go-flags Commander interface for PurgeCommand.
func (c *PurgeCommand) Execute(args []string) error {
	if !c.All {
		return fmt.Errorf("purge requires --all flag for safety")
	}

	// Confirmation prompt unless --force
	if !c.Force {
		fmt.Println("⚠ WARNING: This will permanently delete ALL tracked visits.")
		fmt.Println()
		fmt.Println("This action cannot be undone.")
		fmt.Println()
		fmt.Print(`Type "PURGE" to confirm: `)

		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			return fmt.Errorf("aborted: no input received")
		}
		input := strings.TrimSpace(scanner.Text())
		if input != "PURGE" {
			return fmt.Errorf("aborted: confirmation text did not match")
		}
	}

	b := c.backend
	if b == nil {
		cfg, err := loadConfig(c.globals)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		opened, cleanup, err := openBackend(cfg)
		if err != nil {
			return fmt.Errorf("opening backend: %w", err)
		}
		defer cleanup()
		b = opened
	}

	ctx := context.Background()
	if err := b.PersistAll(ctx, nil); err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		out := map[string]interface{}{
			"purged":  true,
			"message": "all visits deleted",
		}
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(out)
	}

	fmt.Println("Purged all visits. The working set is empty.")
	return nil
}
