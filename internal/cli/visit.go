package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ilya-bc/backstage/internal/visits"
)

// Execute implements the go-flags Commander interface for VisitCommand.
func (c *VisitCommand) Execute(args []string) error {
	if c.EntityRef == "" {
		return fmt.Errorf("--entity is required for visit command")
	}
	if c.Pathname == "" {
		return fmt.Errorf("--pathname is required for visit command")
	}

	store := c.store
	if store == nil {
		opened, cleanup, err := openStore(c.globals)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer cleanup()
		store = opened
	}

	return c.executeWithStore(store)
}

// executeWithStore runs the visit logic against a provided store (used by tests).
func (c *VisitCommand) executeWithStore(store *visits.Store) error {
	ctx := context.Background()

	saved, err := store.SaveVisit(ctx, visits.Candidate{
		EntityRef: c.EntityRef,
		Pathname:  c.Pathname,
		Name:      c.Name,
	})
	if err != nil {
		return fmt.Errorf("saving visit: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(saved)
	}

	fmt.Printf("Recorded visit %s (%s)\n", saved.ID, formatMillis(saved.Timestamp))
	fmt.Printf("  Entity:   %s\n", saved.EntityRef)
	fmt.Printf("  Pathname: %s\n", saved.Pathname)
	fmt.Printf("  Name:     %s\n", saved.Name)
	fmt.Printf("  Hits:     %d\n", saved.Hits)

	return nil
}
