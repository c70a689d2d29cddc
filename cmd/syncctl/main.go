package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/client"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/config"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	snapshot := flag.Bool("snapshot", false, "Print the sync queue snapshot")
	runSync := flag.Bool("sync", false, "Drain the sync queue now")
	retry := flag.Bool("retry", false, "Retry failed operations, then drain")
	clearQueue := flag.Bool("clear", false, "Remove every queued operation (asks for confirmation)")
	yes := flag.Bool("yes", false, "Skip the -clear confirmation prompt")
	prefetchKey := flag.String("prefetch", "", "Warm the cache for a read key (collection:id or collection?{json})")
	online := flag.Bool("online", false, "Force the connectivity monitor online")

	// stdout carries the JSON reports; logs go to sync.log instead
	log := logger.NewFileLogger("syncctl")
	cfg, err := config.GetConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	// one-shot process: connectivity is explicit, never probed
	cfg.Netmon.Manual = true
	if *online {
		cfg.Netmon.StartOffline = false
	}

	selected := 0
	for _, on := range []bool{*snapshot, *runSync, *retry, *clearQueue, *prefetchKey != ""} {
		if on {
			selected++
		}
	}
	if selected == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if selected > 1 {
		log.Fatal().Msg("pick exactly one of -snapshot, -sync, -retry, -clear, -prefetch")
	}

	app, err := client.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build sync core")
	}

	ctx := context.Background()
	if err = app.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("start sync core")
	}

	switch {
	case *snapshot:
		err = printJSON(app.SyncSnapshot())
	case *runSync:
		err = doSync(ctx, app)
	case *retry:
		err = doRetry(ctx, app)
	case *clearQueue:
		err = doClear(ctx, app, *yes)
	case *prefetchKey != "":
		err = doPrefetch(ctx, app, *prefetchKey)
	}

	if closeErr := app.Close(); closeErr != nil {
		log.Error().Err(closeErr).Msg("close sync core")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("syncctl")
	}
}

func doSync(ctx context.Context, app *client.App) error {
	report, err := app.ManualSync(ctx)
	if err != nil {
		return err
	}
	return printJSON(report)
}

func doRetry(ctx context.Context, app *client.App) error {
	report, err := app.RetryFailed(ctx)
	if err != nil {
		return err
	}
	return printJSON(report)
}

func doClear(ctx context.Context, app *client.App, skipPrompt bool) error {
	if !skipPrompt && !confirmClear(os.Stdin) {
		fmt.Println("aborted")
		return nil
	}

	removed, err := app.ClearQueue(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("removed %d operations\n", removed)
	return nil
}

func doPrefetch(ctx context.Context, app *client.App, key string) error {
	raw, err := app.Read(ctx, key)
	if err != nil {
		return fmt.Errorf("prefetch %s: %w", key, err)
	}

	fmt.Printf("prefetched %s (%d bytes)\n", key, len(raw))
	return nil
}

// confirmClear reads one line and accepts only a literal "yes". Cleared
// operations are already applied locally and will never reach the remote.
func confirmClear(in io.Reader) bool {
	fmt.Print(`Cleared operations never reach the remote. Type "yes" to confirm: `)

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}
	return strings.TrimSpace(scanner.Text()) == "yes"
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))
	return nil
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	// stderr, so piped report output stays parseable
	fmt.Fprintf(os.Stderr, "Build version: %s\n", buildVersion)
	fmt.Fprintf(os.Stderr, "Build date: %s\n", buildDate)
	fmt.Fprintf(os.Stderr, "Build commit: %s\n", buildCommit)
}
