package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mdgt/rutube-saver/internal/config"
	"github.com/mdgt/rutube-saver/internal/download"
	"github.com/mdgt/rutube-saver/internal/history"
	"github.com/mdgt/rutube-saver/internal/linkextract"
	"github.com/mdgt/rutube-saver/internal/model"
	"github.com/mdgt/rutube-saver/internal/platform"
)

func newGetCommand(app *appContext) *cobra.Command {
	var (
		inputPath string
		outputDir string
		workers   int
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "get [url...]",
		Short: "Download Rutube links",
		Long: `Download every Rutube link found in the arguments, an input file, or
standard input. Links are extracted from arbitrary text, so pasting a page
fragment or a chat log works as well as passing bare URLs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			links, err := collectLinks(args, inputPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if len(links) == 0 {
				return fmt.Errorf("no rutube links found in input")
			}

			cfg := app.cfg
			if outputDir == "" {
				outputDir = cfg.OutputDir
			}
			if workers == 0 {
				workers = cfg.Workers
			}
			if workers < config.MinWorkers || workers > config.MaxWorkers {
				return fmt.Errorf("workers must be between %d and %d, got %d",
					config.MinWorkers, config.MaxWorkers, workers)
			}

			if err := platform.EnsureDir(outputDir); err != nil {
				return err
			}

			mgr := download.NewManager(platform.NewYTDLPFetcher(), outputDir, workers, app.logger)
			mgr.SetObserver(newConsoleObserver(app.logger, cfg.ProgressStep))

			if !noHistory {
				store, openErr := history.Open(cfg.HistoryDB)
				if openErr != nil {
					app.logger.Warn("history disabled", "error", openErr)
				} else {
					defer store.Close()
					mgr.SetHistory(store)
				}
			}

			mgr.AddURLs(links)

			// A single interrupt stops politely: queued items are skipped,
			// in-flight downloads finish. The fetch context stays live so
			// nothing is cut off mid-file.
			interrupts := make(chan os.Signal, 1)
			signal.Notify(interrupts, os.Interrupt)
			defer signal.Stop(interrupts)
			go func() {
				if _, ok := <-interrupts; ok {
					app.logger.Info("interrupt received, finishing in-flight downloads")
					mgr.Stop()
				}
			}()

			if err := mgr.Start(cmd.Context()); err != nil {
				return err
			}
			mgr.Wait()

			items := mgr.Items()
			fmt.Fprintln(cmd.OutOrStdout(), summaryTable(items))

			if failed := countFailed(items); failed > 0 {
				return fmt.Errorf("%d of %d downloads failed", failed, len(items))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "File to extract links from (\"-\" for stdin)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default from config)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent downloads, 1 to 16 (default from config)")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record completed downloads")

	return cmd
}

// collectLinks gathers Rutube links from command arguments, then an input
// file when given. With neither, standard input is consumed.
func collectLinks(args []string, inputPath string, stdin io.Reader) ([]string, error) {
	var lines []string
	lines = append(lines, args...)

	switch {
	case inputPath == "-":
		read, err := readLines(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		lines = append(lines, read...)
	case inputPath != "":
		f, err := os.Open(inputPath)
		if err != nil {
			return nil, fmt.Errorf("open input file: %w", err)
		}
		defer f.Close()
		read, err := readLines(f)
		if err != nil {
			return nil, fmt.Errorf("read input file: %w", err)
		}
		lines = append(lines, read...)
	case len(args) == 0:
		read, err := readLines(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		lines = append(lines, read...)
	}

	return linkextract.ExtractLines(lines), nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

func summaryTable(items []model.QueueItem) string {
	rows := make([][]string, 0, len(items))
	for i := range items {
		it := &items[i]
		detail := it.OutputPath
		if it.LastError != "" {
			detail = it.LastError
		}
		rows = append(rows, []string{
			it.DisplayName(),
			it.Status.String(),
			strconv.Itoa(it.Percent) + "%",
			detail,
		})
	}
	return renderTable(
		[]string{"Item", "Status", "Progress", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func countFailed(items []model.QueueItem) int {
	failed := 0
	for _, it := range items {
		if it.Status == model.StatusError || it.Status == model.StatusUnavailable {
			failed++
		}
	}
	return failed
}
