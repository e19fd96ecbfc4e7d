package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/israelbalog04/acer-music-sub000/config"
	"github.com/israelbalog04/acer-music-sub000/gate"
	"github.com/israelbalog04/acer-music-sub000/stats"
)

var (
	probeCount       int
	probeConcurrency int
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Fire a burst of pings through the pool and print the outcome",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		if probeCount <= 0 || probeConcurrency <= 0 {
			return fmt.Errorf("--n and --concurrency must be positive")
		}
		ctx := cmd.Context()

		cfg, err := config.FromEnv(ctx)
		if err != nil {
			return err
		}
		rt, err := newRuntime(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := rt.close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
				err = cerr
			}
		}()

		if err := rt.pool.Connect(ctx); err != nil {
			return fmt.Errorf("connect: %w", err)
		}

		report, err := probe(ctx, rt, probeCount, probeConcurrency)
		if err != nil {
			return err
		}
		return writeReport(cmd.OutOrStdout(), report)
	},
}

func init() {
	probeCmd.Flags().IntVar(&probeCount, "n", 100, "number of pings to send")
	probeCmd.Flags().IntVar(&probeConcurrency, "concurrency", 10, "number of concurrent callers")
}

type probeReport struct {
	Sent   int            `json:"sent"`
	Failed int            `json:"failed"`
	Gate   gate.Stats     `json:"gate"`
	Ledger stats.Counters `json:"ledger"`
}

func probe(ctx context.Context, rt *runtime, n, concurrency int) (probeReport, error) {
	jobs := make(chan struct{})
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				if err := rt.pool.Ping(ctx); err != nil {
					mu.Lock()
					failed++
					mu.Unlock()
				}
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- struct{}{}
	}
	close(jobs)
	wg.Wait()

	report := probeReport{Sent: n, Failed: failed, Gate: rt.pool.Stats()}
	switch {
	case rt.memory != nil:
		report.Ledger = rt.memory.Total()
	case rt.rdb != nil:
		total, err := stats.NewRedisRecorder(rt.rdb).Total(ctx)
		if err != nil {
			return report, err
		}
		report.Ledger = total
	}
	return report, nil
}

func writeReport(w io.Writer, report probeReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
