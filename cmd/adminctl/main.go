package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stagewave/catalog-sync/internal/conf"
	"github.com/stagewave/catalog-sync/internal/fileserver"
	"github.com/stagewave/catalog-sync/internal/pkg/logger"
)

// adminctl drives the file server's admin API from the command line:
// the operator-facing counterpart of the reconciliation webhooks.
//
// Usage:
//
//	adminctl [-config config.yaml] <command> [flags]
//
// Commands: dashboard, files, orphans, cleanup, delete, temp, kill,
// logs, watch.

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: adminctl [-config file] <command> [flags]

Commands:
  dashboard              show server state snapshot
  files                  list physical files (-type, -detailed)
  orphans                list files with no catalog record
  cleanup                remove orphaned files (-apply to disable dry run, -max-size)
  delete                 delete named files (args are paths)
  temp                   clean temp directory (-force)
  kill                   kill all running processing jobs
  logs                   tail server logs (-lines)
  watch                  poll the dashboard until interrupted (-interval)
`)
	os.Exit(2)
}

func main() {
	configFile := flag.String("config", "config.yaml", "config file path")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	command := flag.Arg(0)
	args := flag.Args()[1:]

	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  "warn",
		Format: "console",
		Output: "console",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	client, err := fileserver.New(&fileserver.Config{
		BaseURL: config.FileServer.BaseURL,
		APIKey:  config.FileServer.APIKey,
		Timeout: config.FileServer.Timeout,
	}, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create admin client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx := context.Background()

	if err := run(ctx, client, log, command, args); err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", command, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *fileserver.Client, log *logger.Logger, command string, args []string) error {
	switch command {
	case "dashboard":
		return showDashboard(ctx, client)
	case "files":
		return listFiles(ctx, client, args)
	case "orphans":
		return showOrphans(ctx, client)
	case "cleanup":
		return runCleanup(ctx, client, args)
	case "delete":
		return deleteFiles(ctx, client, args)
	case "temp":
		return cleanTemp(ctx, client, args)
	case "kill":
		return killProcesses(ctx, client)
	case "logs":
		return tailLogs(ctx, client, args)
	case "watch":
		return watchDashboard(ctx, client, log, args)
	default:
		usage()
		return nil
	}
}

func showDashboard(ctx context.Context, client *fileserver.Client) error {
	snapshot, err := client.GetDashboard(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("uptime:        %s\n", (time.Duration(snapshot.UptimeSeconds) * time.Second).String())
	fmt.Printf("requests:      %d total, %d failed (%.1f%% success)\n",
		snapshot.Requests.Total, snapshot.Requests.Failed, snapshot.Requests.SuccessRate*100)
	fmt.Printf("queue depth:   %d\n", snapshot.QueueDepth)
	fmt.Printf("memory:        %s / %s\n", formatBytes(snapshot.Memory.UsedBytes), formatBytes(snapshot.Memory.TotalBytes))
	fmt.Printf("disk:          %s used, %s free\n", formatBytes(snapshot.Disk.UsedBytes), formatBytes(snapshot.Disk.FreeBytes))
	return nil
}

func listFiles(ctx context.Context, client *fileserver.Client, args []string) error {
	fs := flag.NewFlagSet("files", flag.ExitOnError)
	fileType := fs.String("type", "", "filter by type (video, music)")
	detailed := fs.Bool("detailed", false, "include per-file detail")
	fs.Parse(args)

	listing, err := client.ListFiles(ctx, *fileType, *detailed)
	if err != nil {
		return err
	}

	for _, f := range listing.Files {
		if *detailed {
			fmt.Printf("%-8s %10s  %s\n", f.Type, formatBytes(f.SizeBytes), f.Path)
		} else {
			fmt.Println(f.Path)
		}
	}
	fmt.Printf("%d files, %s total\n", listing.TotalCount, formatBytes(listing.TotalSize))
	return nil
}

func showOrphans(ctx context.Context, client *fileserver.Client) error {
	set, err := client.FindOrphanedFiles(ctx)
	if err != nil {
		return err
	}

	for _, f := range set.VideoFiles {
		fmt.Printf("video  %10s  %s\n", formatBytes(f.SizeBytes), f.Path)
	}
	for _, f := range set.MusicFiles {
		fmt.Printf("music  %10s  %s\n", formatBytes(f.SizeBytes), f.Path)
	}
	fmt.Printf("%d orphaned files, %s reclaimable\n", set.Count(), formatBytes(set.TotalSize))
	return nil
}

func runCleanup(ctx context.Context, client *fileserver.Client, args []string) error {
	fs := flag.NewFlagSet("cleanup", flag.ExitOnError)
	apply := fs.Bool("apply", false, "actually delete (default is a dry run)")
	maxSize := fs.Int64("max-size", 0, "cap deleted bytes (0 = no cap)")
	fs.Parse(args)

	report, err := client.CleanupFiles(ctx, !*apply, *maxSize)
	if err != nil {
		return err
	}

	printCleanupReport(report)
	return nil
}

func deleteFiles(ctx context.Context, client *fileserver.Client, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("delete requires at least one path argument")
	}

	report, err := client.DeleteFiles(ctx, args)
	if err != nil {
		return err
	}

	printCleanupReport(report)
	return nil
}

func printCleanupReport(report *fileserver.CleanupReport) {
	mode := "deleted"
	if report.DryRun {
		mode = "would delete"
	}
	for _, entry := range report.Deleted {
		fmt.Printf("%s %10s  %s\n", mode, formatBytes(entry.SizeBytes), entry.Path)
	}
	for _, entry := range report.Failed {
		fmt.Printf("failed %s: %s\n", entry.Path, entry.Reason)
	}
	for _, entry := range report.Skipped {
		fmt.Printf("skipped %s: %s\n", entry.Path, entry.Reason)
	}
	fmt.Printf("%s %s (%d files, %d failed, %d skipped)\n",
		mode, formatBytes(report.SpaceFreed), len(report.Deleted), len(report.Failed), len(report.Skipped))
}

func cleanTemp(ctx context.Context, client *fileserver.Client, args []string) error {
	fs := flag.NewFlagSet("temp", flag.ExitOnError)
	force := fs.Bool("force", false, "remove entries still inside the grace period")
	fs.Parse(args)

	report, err := client.CleanupTempFiles(ctx, *force)
	if err != nil {
		return err
	}

	fmt.Printf("removed %d temp entries, freed %s\n", report.RemovedCount, formatBytes(report.SpaceFreed))
	return nil
}

func killProcesses(ctx context.Context, client *fileserver.Client) error {
	report, err := client.KillAllProcesses(ctx)
	if err != nil {
		return err
	}

	for _, p := range report.Processes {
		fmt.Println("killed", p)
	}
	fmt.Printf("%d processes killed\n", report.KilledCount)
	return nil
}

func tailLogs(ctx context.Context, client *fileserver.Client, args []string) error {
	fs := flag.NewFlagSet("logs", flag.ExitOnError)
	lines := fs.Int("lines", 100, "number of lines to fetch")
	fs.Parse(args)

	logs, err := client.GetLogs(ctx, *lines)
	if err != nil {
		return err
	}

	for _, line := range logs.Lines {
		fmt.Println(line)
	}
	return nil
}

func watchDashboard(ctx context.Context, client *fileserver.Client, log *logger.Logger, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	interval := fs.Duration("interval", 10*time.Second, "poll interval")
	fs.Parse(args)

	poller := fileserver.NewPoller(*interval, func(ctx context.Context) error {
		snapshot, err := client.GetDashboard(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("[%s] queue=%d requests=%d success=%.1f%% disk free=%s\n",
			time.Now().Format("15:04:05"),
			snapshot.QueueDepth,
			snapshot.Requests.Total,
			snapshot.Requests.SuccessRate*100,
			formatBytes(snapshot.Disk.FreeBytes),
		)
		return nil
	}, log)

	if err := poller.Start(ctx); err != nil {
		return err
	}
	defer poller.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	return nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
