// Package progress reports traversal progress on a terminal.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/schollz/progressbar/v3"
)

// Tracker counts traversed files behind a spinner, since the number of
// reachable files is unknown until the walk ends.
type Tracker struct {
	bar   *progressbar.ProgressBar
	label string
	out   io.Writer
	count atomic.Int64
}

// NewSpinner creates a spinner on stderr.
func NewSpinner(label string) *Tracker {
	return NewSpinnerTo(os.Stderr, label)
}

// NewSpinnerTo creates a spinner writing to w.
func NewSpinnerTo(w io.Writer, label string) *Tracker {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return &Tracker{bar: bar, label: label, out: w}
}

// Observe records one traversed file. It matches the detector's observer
// signature.
func (t *Tracker) Observe(path string) {
	t.count.Add(1)
	_ = t.bar.Add(1)
}

// Count returns how many files were observed.
func (t *Tracker) Count() int {
	return int(t.count.Load())
}

// FinishSuccess clears the spinner completely (no output).
func (t *Tracker) FinishSuccess() {
	_ = t.bar.Finish()
	_ = t.bar.Clear()
}

// FinishError clears the spinner and prints an error message.
func (t *Tracker) FinishError(err error) {
	_ = t.bar.Finish()
	_ = t.bar.Clear()
	fmt.Fprintf(t.out, "  %s error: %v\n", t.label, err)
}
