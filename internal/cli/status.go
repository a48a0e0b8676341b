package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ilya-bc/backstage/internal/visits"
)

const topVisitedCount = 5

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version     string      `json:"version"`
	TotalVisits int         `json:"total_visits"`
	TotalHits   int64       `json:"total_hits"`
	Oldest      string      `json:"oldest,omitempty"`
	Newest      string      `json:"newest,omitempty"`
	TopVisited  []jsonVisit `json:"top_visited"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
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

// executeWithStore runs status against a provided store (used by tests).
func (c *StatusCommand) executeWithStore(store *visits.Store) error {
	ctx := context.Background()

	// Oldest last: the default listing is timestamp descending.
	all, err := store.ListVisits(ctx, visits.Query{})
	if err != nil {
		return fmt.Errorf("get visits: %w", err)
	}

	top, err := store.ListVisits(ctx, visits.Query{
		OrderBy: []visits.OrderBy{
			{Field: visits.FieldHits, Descending: true},
			{Field: visits.FieldTimestamp, Descending: true},
		},
	})
	if err != nil {
		return fmt.Errorf("get top visited: %w", err)
	}
	if len(top) > topVisitedCount {
		top = top[:topVisitedCount]
	}

	var totalHits int64
	for _, v := range all {
		totalHits += v.Hits
	}

	if c.globals != nil && c.globals.JSON {
		return c.printStatusJSON(all, top, totalHits)
	}
	return c.printStatusHuman(all, top, totalHits)
}

func (c *StatusCommand) printStatusHuman(all, top []visits.Visit, totalHits int64) error {
	fmt.Println("Visits Status")
	fmt.Println("=============")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Tracked:       %d\n", len(all))
	fmt.Printf("Total hits:    %d\n", totalHits)

	if len(all) > 0 {
		fmt.Printf("Newest:        %s\n", formatMillis(all[0].Timestamp))
		fmt.Printf("Oldest:        %s\n", formatMillis(all[len(all)-1].Timestamp))

		fmt.Println()
		fmt.Println("Most Visited:")
		for _, v := range top {
			fmt.Printf("  %-40s %d\n", v.Name, v.Hits)
		}
	}

	return nil
}

func (c *StatusCommand) printStatusJSON(all, top []visits.Visit, totalHits int64) error {
	out := statusJSON{
		Version:     c.version,
		TotalVisits: len(all),
		TotalHits:   totalHits,
		TopVisited:  make([]jsonVisit, len(top)),
	}

	if len(all) > 0 {
		out.Newest = time.UnixMilli(all[0].Timestamp).UTC().Format(time.RFC3339)
		out.Oldest = time.UnixMilli(all[len(all)-1].Timestamp).UTC().Format(time.RFC3339)
	}

	for i, v := range top {
		out.TopVisited[i] = jsonVisit{
			ID:        v.ID,
			EntityRef: v.EntityRef,
			Pathname:  v.Pathname,
			Name:      v.Name,
			Timestamp: time.UnixMilli(v.Timestamp).UTC().Format(time.RFC3339),
			Hits:      v.Hits,
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
