// Command admin is an operator CLI over the gateway's ConfigStore,
// grounded on the teacher's channel-management controllers but
// reshaped into a one-shot CLI rather than the teacher's web console.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"

	"github.com/vaultgate/gemini-gateway/configstore"
	"github.com/vaultgate/gemini-gateway/internal/env"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	store, err := configstore.Open(env.String("GATEWAY_DSN", ""))
	if err != nil {
		fatalf("failed to open config store: %v", err)
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "pool-status":
		cmdPoolStatus(ctx, store)
	case "pool-add":
		cmdPoolAdd(ctx, store, os.Args[2:])
	case "pool-remove":
		cmdPoolRemove(ctx, store, os.Args[2:])
	case "set-password":
		cmdSetPassword(ctx, store, os.Args[2:])
	case "set-trigger-key":
		cmdSetTriggerKey(ctx, store, os.Args[2:])
	case "set-fallback-key":
		cmdSetFallbackKey(ctx, store, os.Args[2:])
	case "set-retry-budget":
		cmdSetRetryBudget(ctx, store, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: admin <command> [args]

commands:
  pool-status                      list the primary credential pool
  pool-add <credential>            add a credential to the primary pool
  pool-remove <id>                 remove a credential by id
  set-password <plaintext>         set the admin password hash
  set-trigger-key <key>            set the pool-mode trigger key
  set-fallback-key <key>           set the fallback credential
  set-retry-budget <n>             set the retry budget`)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func cmdPoolAdd(ctx context.Context, store configstore.Store, args []string) {
	if len(args) != 1 {
		fatalf("usage: admin pool-add <credential>")
	}
	id := uuid.NewString()
	if err := store.AddPrimaryEntries(ctx, map[string]string{id: args[0]}); err != nil {
		fatalf("failed to add pool entry: %v", err)
	}
	fmt.Printf("added pool entry %s\n", id)
}

func cmdPoolRemove(ctx context.Context, store configstore.Store, args []string) {
	if len(args) != 1 {
		fatalf("usage: admin pool-remove <id>")
	}
	if err := store.RemovePrimaryEntry(ctx, args[0]); err != nil {
		fatalf("failed to remove pool entry: %v", err)
	}
	fmt.Printf("removed pool entry %s\n", args[0])
}

func cmdSetPassword(ctx context.Context, store configstore.Store, args []string) {
	if len(args) != 1 {
		fatalf("usage: admin set-password <plaintext>")
	}
	hash, err := configstore.HashAdminPassword(args[0])
	if err != nil {
		fatalf("failed to hash password: %v", err)
	}
	if err := store.SetAdminHash(ctx, hash); err != nil {
		fatalf("failed to set admin hash: %v", err)
	}
	fmt.Println("admin password updated")
}

func cmdSetTriggerKey(ctx context.Context, store configstore.Store, args []string) {
	if len(args) != 1 {
		fatalf("usage: admin set-trigger-key <key>")
	}
	if err := store.SetTriggerKey(ctx, &args[0]); err != nil {
		fatalf("failed to set trigger key: %v", err)
	}
	fmt.Println("trigger key updated")
}

func cmdSetFallbackKey(ctx context.Context, store configstore.Store, args []string) {
	if len(args) != 1 {
		fatalf("usage: admin set-fallback-key <key>")
	}
	if err := store.SetFallbackKey(ctx, &args[0]); err != nil {
		fatalf("failed to set fallback key: %v", err)
	}
	fmt.Println("fallback key updated")
}

func cmdSetRetryBudget(ctx context.Context, store configstore.Store, args []string) {
	if len(args) != 1 {
		fatalf("usage: admin set-retry-budget <n>")
	}
	var n int
	if _, err := fmt.Sscanf(args[0], "%d", &n); err != nil {
		fatalf("invalid retry budget %q: %v", args[0], err)
	}
	if err := store.SetRetryBudget(ctx, n); err != nil {
		fatalf("failed to set retry budget: %v", err)
	}
	fmt.Printf("retry budget set to %d\n", n)
}
