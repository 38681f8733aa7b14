package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/ghalamif/CipherPulse"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		err = runCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "volumes":
		err = volumesCommand(os.Args[2:])
	case "stats":
		err = statsCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatalf("cipherpulse %s: %v", cmd, err)
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to configuration file (built-in defaults when empty)")
	storagePath := fs.String("storage-path", "", "Directory the disk encryption probe writes its reference file into")
	exportList := fs.String("export", "", "Comma-separated export formats (png,log,timescale,sqlite); prompts when empty")
	metricsAddr := fs.String("metrics-addr", "", "Metrics listen address, overrides metrics.addr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := cipherpulse.LoadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *storagePath != "" {
		cfg.Storage.Path = *storagePath
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}
	if *exportList != "" {
		formats, err := cipherpulse.ParseFormats(*exportList)
		if err != nil {
			return err
		}
		cfg.Export.Formats = formats
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	printVolumes(cfg.Counters.ProcPath)

	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	sess, err := cipherpulse.NewSession(cfg, cipherpulse.WithProgress(os.Stdout, interactive))
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sess.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
		}
	}()

	fmt.Println("Starting real-time system monitoring. Press Ctrl+C to stop and save.")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	ts, err := sess.Run(ctx)
	// a second interrupt during export terminates the process
	stop()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Monitoring stopped.")
	if report, err := sess.Summary(); err == nil {
		report.WriteTo(os.Stdout)
	}

	formats := exportFormats(cfg.Export.Formats, os.Stdin, os.Stdout, os.Stderr)
	if len(formats) == 0 {
		return nil
	}

	artifacts, err := sess.Export(ts, formats)
	for _, a := range artifacts {
		fmt.Println(savedMessage(a))
	}
	if err != nil {
		// exporting is best effort once sampling has stopped
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
	}
	return nil
}

func savedMessage(a cipherpulse.Artifact) string {
	switch a.Format {
	case cipherpulse.FormatPNG:
		return "Graph saved as " + a.Location
	case cipherpulse.FormatLog:
		return "Log saved as " + a.Location
	default:
		return fmt.Sprintf("%s export written to %s", a.Format, a.Location)
	}
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *cfgPath == "" {
		return errors.New("-config is required")
	}

	if _, err := cipherpulse.LoadConfig(*cfgPath); err != nil {
		return err
	}
	fmt.Printf("config %s looks good\n", *cfgPath)
	return nil
}

func volumesCommand(args []string) error {
	fs := flag.NewFlagSet("volumes", flag.ExitOnError)
	procPath := fs.String("proc", "/proc", "procfs mount point")
	if err := fs.Parse(args); err != nil {
		return err
	}

	vols, err := cipherpulse.ListVolumes(*procPath)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DEVICE\tMOUNT POINT\tTYPE")
	for _, v := range vols {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Device, v.MountPoint, v.FSType)
	}
	return tw.Flush()
}

func printVolumes(procPath string) {
	vols, err := cipherpulse.ListVolumes(procPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list volumes: %v\n", err)
		return
	}
	fmt.Println("Available volumes:")
	for _, v := range vols {
		fmt.Printf("  %s (%s, %s)\n", v.MountPoint, v.Device, v.FSType)
	}
}

func statsCommand(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	url := fs.String("url", "http://localhost:9109/metrics", "Prometheus metrics endpoint")
	interval := fs.Duration("interval", 2*time.Second, "Refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Printf("Streaming metrics from %s (Ctrl+C to stop)\n", *url)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printMetricsSnapshot(*url); err != nil {
				fmt.Fprintf(os.Stderr, "stats error: %v\n", err)
			}
		}
	}
}

var statsTargets = []string{
	"cipherpulse_cycles_total",
	"cipherpulse_series_samples",
	"cipherpulse_cycle_interval_seconds",
	"cipherpulse_probe_failures_total",
	"cipherpulse_counter_read_failures_total",
}

func printMetricsSnapshot(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	values, err := scrapeValues(bufio.NewScanner(resp.Body), statsTargets)
	if err != nil {
		return err
	}

	fmt.Printf("[%s] cycles=%.0f samples=%.0f interval=%.3fs probe_failures=%.0f counter_failures=%.0f\n",
		time.Now().Format(time.RFC3339),
		values["cipherpulse_cycles_total"],
		values["cipherpulse_series_samples"],
		values["cipherpulse_cycle_interval_seconds"],
		values["cipherpulse_probe_failures_total"],
		values["cipherpulse_counter_read_failures_total"],
	)
	return nil
}

// scrapeValues picks unlabelled samples for keys out of a text exposition.
func scrapeValues(scanner *bufio.Scanner, keys []string) (map[string]float64, error) {
	values := make(map[string]float64, len(keys))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		for _, key := range keys {
			if strings.HasPrefix(line, key+" ") {
				var value float64
				if _, err := fmt.Sscanf(line, key+" %g", &value); err == nil {
					values[key] = value
				}
			}
		}
	}
	return values, scanner.Err()
}

func printUsage() {
	fmt.Printf(`CipherPulse CLI

Usage:
  cipherpulse <command> [flags]

Commands:
  run        Sample cipher, network and disk throughput until interrupted, then export
  validate   Load and validate a config file without sampling
  volumes    List mounted volumes a storage path can point at
  stats      Poll the Prometheus metrics endpoint and print live counters

Examples:
  cipherpulse run -storage-path /mnt/data
  cipherpulse run -config ./config.yaml -export png,log
  cipherpulse validate -config ./config.yaml
  cipherpulse stats -url http://localhost:9109/metrics -interval 1s
`)
}
