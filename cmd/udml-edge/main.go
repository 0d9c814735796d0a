package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	udmlcore "github.com/udmtek/udml-core"
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
	case "translate":
		err = translateCommand(os.Args[2:])
	case "analyze":
		err = analyzeCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
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
		log.Fatalf("udml-edge %s: %v", cmd, err)
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/config.yaml", "Path to monitor configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	flow, err := udmlcore.Conf(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return flow.Run(ctx)
}

func translateCommand(args []string) error {
	fs := flag.NewFlagSet("translate", flag.ExitOnError)
	vendor := fs.String("vendor", "siemens", "Vendor family of the source program")
	model := fs.String("model", "", "Controller model hint passed to the decoder")
	in := fs.String("in", "", "Path to the vendor program export")
	out := fs.String("out", "", "Output path for the unified document (stdout when empty)")
	optimize := fs.Bool("optimize", false, "Run the semantics-preserving optimizer before export")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("-in is required")
	}

	raw, err := os.ReadFile(*in)
	if err != nil {
		return err
	}

	prog, err := udmlcore.TranslateSource(udmlcore.Vendor(*vendor), raw, *model)
	if err != nil {
		return fmt.Errorf("translate: %w", err)
	}
	if *optimize {
		prog = udmlcore.OptimizeProgram(prog)
	}

	doc, err := udmlcore.MarshalProgram(prog)
	if err != nil {
		return err
	}

	if *out == "" {
		_, err = os.Stdout.Write(doc)
		return err
	}
	if err := os.WriteFile(*out, doc, 0o644); err != nil {
		return err
	}

	report := udmlcore.AnalyzeComplexity(prog)
	fmt.Printf("translated %d blocks, cyclomatic complexity %d -> %s\n",
		len(prog.Blocks), report.Cyclomatic, *out)
	return nil
}

func analyzeCommand(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	in := fs.String("in", "", "Path to a diagnostic snapshot JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("-in is required")
	}

	raw, err := os.ReadFile(*in)
	if err != nil {
		return err
	}

	var snap udmlcore.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	faults, err := udmlcore.AnalyzeFaults(ctx, &snap, udmlcore.DefaultThresholds())
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(faults)
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/config.yaml", "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := udmlcore.LoadConfig(*cfgPath); err != nil {
		return err
	}
	fmt.Printf("config %s looks good\n", *cfgPath)
	return nil
}

func statsCommand(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	url := fs.String("url", "http://localhost:9100/metrics", "Prometheus metrics endpoint")
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

func printMetricsSnapshot(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	targets := map[string]float64{
		"udml_snapshots_analyzed_total": 0,
		"udml_faults_detected_total":    0,
		"udml_queue_length":             0,
		"udml_journal_size_bytes":       0,
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		for key := range targets {
			if strings.HasPrefix(line, key+" ") {
				var value float64
				if _, err := fmt.Sscanf(line, key+" %f", &value); err == nil {
					targets[key] = value
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Printf("[%s] analyzed=%f faults=%f queue=%f journal_bytes=%f\n",
		time.Now().Format(time.RFC3339),
		targets["udml_snapshots_analyzed_total"],
		targets["udml_faults_detected_total"],
		targets["udml_queue_length"],
		targets["udml_journal_size_bytes"],
	)
	return nil
}

func printUsage() {
	fmt.Printf(`udml-edge CLI

Usage:
  udml-edge <command> [flags]

Commands:
  run        Start the monitor runtime using the provided config
  translate  Decode a vendor program and export the unified document
  analyze    Run root cause analysis over a snapshot JSON file
  validate   Load and validate a config file without starting the runtime
  stats      Poll the Prometheus metrics endpoint and print live counters

Examples:
  udml-edge run -config ./data/config.yaml
  udml-edge translate -vendor siemens -in program.awl -out program.udml.json
  udml-edge analyze -in snapshot.json
  udml-edge validate -config ./data/config.yaml
  udml-edge stats -url http://localhost:9100/metrics -interval 1s
`)
}
