package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/viper"

	"github.com/clara/maestro/internal/sync"
	"github.com/clara/maestro/internal/util"
)

// newProgressRenderer returns a progress callback and a finish function.
// The bar renders only on a terminal and outside quiet mode.
func newProgressRenderer(description string) (sync.ProgressFunc, func()) {
	isTTY := util.IsTerminal(os.Stderr.Fd())
	if !isTTY || viper.GetBool("quiet") {
		return nil, func() {}
	}

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)

	onProgress := func(percent int) {
		bar.Set(percent)
	}

	return onProgress, func() { bar.Finish() }
}

// printReport prints the per-step outcome summary of a push or pull.
func printReport(report *sync.Report, duration time.Duration) {
	ok := 0
	for _, s := range report.Steps {
		if s.Outcome == sync.OutcomeOK {
			ok++
		}
	}
	failures := report.Failures()
	skipped := report.Skipped()

	fmt.Printf("Completed in %v: %d steps ok, %d failed, %d skipped, %s transferred\n",
		duration.Round(time.Millisecond), ok, len(failures), len(skipped),
		humanize.Bytes(uint64(report.BytesTransferred)))

	if len(failures) > 0 {
		fmt.Println("Failures:")
		for i, s := range failures {
			if i >= 10 {
				fmt.Printf("  ... and %d more\n", len(failures)-10)
				break
			}
			fmt.Printf("  %s %s: %v\n", s.Kind, s.EntityID, s.Err)
		}
	}
}
