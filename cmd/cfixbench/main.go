// Command cfixbench replays a workload file against a Table and reports
// timing and cache-locality stats.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"
	"github.com/tailscale/hujson"

	"github.com/fabinv/cfix"
)

// fileConfig mirrors cfix.Config for HuJSON decoding; snake_case field
// names match this project's config-file convention.
type fileConfig struct {
	Start   *uint32  `json:"start,omitempty"`
	Data    *uint32  `json:"data,omitempty"`
	Depth   *uint32  `json:"depth,omitempty"`
	Lower   *float64 `json:"lower,omitempty"`
	Upper   *float64 `json:"upper,omitempty"`
	Growth  *float64 `json:"growth,omitempty"`
	Attempt *float64 `json:"attempt,omitempty"`
	Random  *float64 `json:"random,omitempty"`
}

func (fc fileConfig) apply(cfg cfix.Config) cfix.Config {
	if fc.Start != nil {
		cfg.Start = *fc.Start
	}
	if fc.Data != nil {
		cfg.Data = *fc.Data
	}
	if fc.Depth != nil {
		cfg.Depth = *fc.Depth
	}
	if fc.Lower != nil {
		cfg.Lower = *fc.Lower
	}
	if fc.Upper != nil {
		cfg.Upper = *fc.Upper
	}
	if fc.Growth != nil {
		cfg.Growth = *fc.Growth
	}
	if fc.Attempt != nil {
		cfg.Attempt = *fc.Attempt
	}
	if fc.Random != nil {
		cfg.Random = *fc.Random
	}
	return cfg
}

func loadConfig(path string) (cfix.Config, error) {
	cfg := cfix.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfix.Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return cfix.Config{}, fmt.Errorf("invalid HuJSON in %s: %w", path, err)
	}

	var fc fileConfig
	if err := json.Unmarshal(standardized, &fc); err != nil {
		return cfix.Config{}, fmt.Errorf("invalid config JSON in %s: %w", path, err)
	}

	return fc.apply(cfg), nil
}

type op struct {
	kind string
	key  uint32
}

func loadWorkload(path string) ([]op, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening workload %s: %w", path, err)
	}
	defer f.Close()

	var ops []op
	scanner := bufio.NewScanner(f)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s:%d: expected \"<op> <key>\", got %q", path, lineNo, line)
		}
		key, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid key %q: %w", path, lineNo, fields[1], err)
		}
		switch fields[0] {
		case "insert", "delete", "lookup":
		default:
			return nil, fmt.Errorf("%s:%d: unknown op %q", path, lineNo, fields[0])
		}
		ops = append(ops, op{kind: fields[0], key: uint32(key)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading workload %s: %w", path, err)
	}
	return ops, nil
}

func run() error {
	var (
		configPath   = flag.String("config", "", "HuJSON file overriding the default table config")
		workloadPath = flag.String("workload", "", "workload file: one \"insert|delete|lookup <key>\" op per line (required)")
		ratio        = flag.Float64("ratio", 0, "if > 0, rebuild(ratio) the table after replaying the workload")
		reportOut    = flag.String("report-out", "", "write the final report to this path atomically instead of stdout")
	)
	flag.Parse()

	if *workloadPath == "" {
		return fmt.Errorf("--workload is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ops, err := loadWorkload(*workloadPath)
	if err != nil {
		return err
	}

	tbl, err := cfix.New(cfg)
	if err != nil {
		return err
	}
	defer tbl.Close()

	var inserted, deleted, looked, hits int
	data := make([]uint32, cfg.Data)

	start := time.Now()
	for _, o := range ops {
		switch o.kind {
		case "insert":
			if tbl.Insert(o.key, data) {
				inserted++
			}
		case "delete":
			if tbl.Delete(o.key) {
				deleted++
			}
		case "lookup":
			looked++
			if tbl.Lookup(o.key, data) {
				hits++
			}
		}
	}
	elapsed := time.Since(start)

	if *ratio > 0 {
		if err := tbl.Rebuild(*ratio); err != nil {
			return err
		}
	}

	stats := tbl.Stats()

	var report bytes.Buffer
	fmt.Fprintf(&report, "ops: %d (insert=%d delete=%d lookup=%d hits=%d) in %s\n", len(ops), inserted, deleted, looked, hits, elapsed)
	fmt.Fprintf(&report, "keys=%d bins=%d fill=%.4f\n", tbl.Keys(), tbl.Bins(), float64(tbl.Keys())/(float64(tbl.Bins())*float64(cfix.BinCapacity)))
	fmt.Fprintf(&report, "primary-resident=%d/%d\n", stats.Primary, tbl.Keys())
	for occupancy, count := range stats.Hist {
		if count == 0 {
			continue
		}
		fmt.Fprintf(&report, "hist[%2d] = %d\n", occupancy, count)
	}

	if *reportOut == "" {
		_, err := os.Stdout.Write(report.Bytes())
		return err
	}
	return atomic.WriteFile(*reportOut, &report)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "cfixbench:", err)
		os.Exit(1)
	}
}
