// Command scorectl prints the aggregated scores of a sync session or a snapshot file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alex-pricope/teacher-evaluation-system/export"
	"github.com/alex-pricope/teacher-evaluation-system/scoring"
	"github.com/alex-pricope/teacher-evaluation-system/syncer"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

type options struct {
	token    string
	remote   string
	binURL   string
	redisURL string
	file     string
	csvPath  string
	timeout  time.Duration
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	opts := options{}
	flag.StringVar(&opts.token, "token", os.Getenv("SYNC_TOKEN"), "session token to pull")
	flag.StringVar(&opts.remote, "remote", envOr("SYNC_REMOTE", "bin"), "remote kind: bin or redis")
	flag.StringVar(&opts.binURL, "bin-url", envOr("SYNC_BINURL", syncer.DefaultBinURL), "base URL of the bin service")
	flag.StringVar(&opts.redisURL, "redis-url", os.Getenv("SYNC_REDISURL"), "redis URL for the redis remote")
	flag.StringVar(&opts.file, "file", "", "read a snapshot JSON file instead of a remote")
	flag.StringVar(&opts.csvPath, "csv", "", "also write the raw submissions as CSV to this path")
	flag.DurationVar(&opts.timeout, "timeout", 15*time.Second, "remote timeout")
	flag.Parse()

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func run(ctx context.Context, opts options, w io.Writer) error {
	snap, err := loadSnapshot(ctx, opts)
	if err != nil {
		return err
	}

	view := scoring.Recompute(snap.Submissions, nil)
	finals := view.Finals()
	stats := scoring.Summarize(view, snap.Submissions)

	color.New(color.FgCyan).Fprintln(w, "\n=== Teacher Evaluation Summary ===")
	if len(finals) == 0 {
		color.New(color.FgYellow).Fprintln(w, "No submissions found.")
	} else {
		export.WriteSummaryTable(w, finals)
	}
	color.New(color.FgGreen).Fprintf(w, "%d judgements, %d candidates, mean raw total %.1f, highest %.1f\n",
		stats.Judgements, stats.Candidates, stats.MeanRawTotal, stats.HighestTotal)

	if opts.csvPath == "" {
		return nil
	}
	f, err := os.Create(opts.csvPath)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()
	if err := export.WriteCSV(f, snap.Submissions); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(w, "Wrote %d submissions to %s\n", len(snap.Submissions), opts.csvPath)
	return nil
}

func loadSnapshot(ctx context.Context, opts options) (*syncer.Snapshot, error) {
	if opts.file != "" {
		raw, err := os.ReadFile(opts.file)
		if err != nil {
			return nil, fmt.Errorf("read snapshot: %w", err)
		}
		var snap syncer.Snapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		return &snap, nil
	}

	if opts.token == "" {
		return nil, errors.New("either -file or -token is required")
	}

	var remote syncer.Remote
	switch opts.remote {
	case "redis":
		r, err := syncer.NewRedisRemote(opts.redisURL)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		remote = r
	case "bin":
		remote = syncer.NewBinRemote(opts.binURL, opts.timeout)
	default:
		return nil, fmt.Errorf("unknown remote %q", opts.remote)
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()
	return remote.Pull(ctx, opts.token)
}
