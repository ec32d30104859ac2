package main

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"

	"github.com/vaultgate/gemini-gateway/configstore"
)

// cmdPoolStatus renders the primary credential pool as a table, then
// prints the pool size, retry budget, fallback key and fallback model set
// as plain lines, never printing credential values in full. The rotation
// cursor is not shown.
func cmdPoolStatus(ctx context.Context, store configstore.Store) {
	pool, err := store.GetPrimaryPool(ctx)
	if err != nil {
		fatalf("failed to load primary pool: %v", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Credential"})
	for _, entry := range pool {
		table.Append([]string{entry.ID, mask(entry.Credential)})
	}
	table.Render()

	budget, err := store.GetRetryBudget(ctx)
	if err != nil {
		fatalf("failed to load retry budget: %v", err)
	}
	fallback, err := store.GetFallbackKey(ctx)
	if err != nil {
		fatalf("failed to load fallback key: %v", err)
	}
	models, err := store.GetFallbackModelSet(ctx)
	if err != nil {
		fatalf("failed to load fallback model set: %v", err)
	}

	fmt.Printf("pool size:     %d\n", len(pool))
	fmt.Printf("retry budget:  %d\n", budget)
	fmt.Printf("fallback key:  %s\n", mask(fallback))
	fmt.Printf("fallback models: %v\n", models)
}

func mask(credential string) string {
	if credential == "" {
		return "(none)"
	}
	if len(credential) <= 8 {
		return "****"
	}
	return credential[:4] + "..." + credential[len(credential)-4:]
}
