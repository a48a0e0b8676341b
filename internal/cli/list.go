package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ilya-bc/backstage/internal/visits"
)

// Execute implements the go-flags Commander interface for ListCommand.
func (c *ListCommand) Execute(args []string) error {
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

// executeWithStore runs the listing against a provided store (used by tests).
func (c *ListCommand) executeWithStore(store *visits.Store) error {
	query := visits.Query{}

	for _, s := range c.OrderBy {
		key, err := parseOrderBy(s)
		if err != nil {
			return err
		}
		query.OrderBy = append(query.OrderBy, key)
	}
	for _, s := range c.Filter {
		f, err := parseFilter(s)
		if err != nil {
			return err
		}
		query.FilterBy = append(query.FilterBy, f)
	}

	ctx := context.Background()
	results, err := store.ListVisits(ctx, query)
	if err != nil {
		return fmt.Errorf("listing visits: %w", err)
	}

	if c.Limit > 0 && len(results) > c.Limit {
		results = results[:c.Limit]
	}

	if c.globals != nil && c.globals.JSON {
		return c.printJSON(results)
	}
	return c.printHuman(results)
}

func (c *ListCommand) printHuman(results []visits.Visit) error {
	if len(results) == 0 {
		fmt.Println("No visits recorded.")
		return nil
	}

	visitWord := "visits"
	if len(results) == 1 {
		visitWord = "visit"
	}
	fmt.Printf("%d %s\n\n", len(results), visitWord)

	for i, v := range results {
		fmt.Printf("%d. %s\n", i+1, v.Name)
		fmt.Printf("   %s · %s\n", v.EntityRef, v.Pathname)

		hitWord := "hits"
		if v.Hits == 1 {
			hitWord = "hit"
		}
		fmt.Printf("   %s · %d %s\n", formatMillis(v.Timestamp), v.Hits, hitWord)

		if i < len(results)-1 {
			fmt.Println()
		}
	}

	return nil
}

type jsonVisit struct {
	ID        string `json:"id"`
	EntityRef string `json:"entityRef"`
	Pathname  string `json:"pathname"`
	Name      string `json:"name"`
	Timestamp string `json:"timestamp"`
	Hits      int64  `json:"hits"`
}

type jsonListOutput struct {
	Count  int         `json:"count"`
	Visits []jsonVisit `json:"visits"`
}

func (c *ListCommand) printJSON(results []visits.Visit) error {
	out := jsonListOutput{
		Count:  len(results),
		Visits: make([]jsonVisit, len(results)),
	}

	for i, v := range results {
		out.Visits[i] = jsonVisit{
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
