// Command address-probe runs a single address lookup from the command line.
// Useful for checking connectivity and cache behavior without a form client.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"addressfill_backend/internal/lookup"
	"addressfill_backend/platform/config"
	"addressfill_backend/platform/logger"
	"addressfill_backend/platform/normalize"
	"addressfill_backend/platform/validator"
)

func main() {
	postcode := flag.String("postcode", "", "postal code, e.g. 1234AB")
	number := flag.String("number", "", "house number, e.g. 10")
	timeout := flag.Duration("timeout", 15*time.Second, "overall probe timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	log := logger.New(cfg.Env)

	pc := normalize.Postcode(*postcode)
	if !normalize.ValidPostcode(pc) {
		fmt.Fprintf(os.Stderr, "invalid postal code %q: expected four digits followed by two letters\n", *postcode)
		os.Exit(2)
	}
	if *number == "" {
		fmt.Fprintln(os.Stderr, "house number is required")
		os.Exit(2)
	}

	lookupModule := lookup.NewModule(cfg, validator.New(), log)
	defer func() { _ = lookupModule.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fields, err := lookupModule.Service().Lookup(ctx, pc, *number)
	if err != nil {
		log.Error("lookup failed", "postcode", pc, "number", *number, "error", err)
		os.Exit(1)
	}

	if len(fields) == 0 {
		fmt.Printf("no address found for %s %s\n", pc, *number)
		return
	}
	for _, key := range []string{"street", "houseNumber", "postalCode", "city", "municipality"} {
		if value, ok := fields[key]; ok {
			fmt.Printf("%-14s %s\n", key, value)
		}
	}
}
