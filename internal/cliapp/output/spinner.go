package output

import (
	"os"

	"github.com/schollz/progressbar/v3"
)

// Spinner wraps an indeterminate progressbar/v3 bar for the "waiting on
// the daemon to spawn" window in auto-spawn mode, grounded on
// five82-spindle's dependency on the same package for its own long-
// running operations.
type Spinner struct {
	bar *progressbar.ProgressBar
}

// NewSpinner builds a Spinner writing to stderr (stdout is reserved for
// command output) with the given message. Returns nil if stderr is not a
// terminal, so callers can treat a nil *Spinner as "do nothing".
func NewSpinner(message string) *Spinner {
	if fi, err := os.Stderr.Stat(); err != nil || (fi.Mode()&os.ModeCharDevice) == 0 {
		return nil
	}
	return &Spinner{
		bar: progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription(message),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		),
	}
}

// Tick advances the spinner one frame. Safe to call on a nil Spinner.
func (s *Spinner) Tick() {
	if s == nil {
		return
	}
	s.bar.Add(1)
}

// Stop finishes and clears the spinner. Safe to call on a nil Spinner.
func (s *Spinner) Stop() {
	if s == nil {
		return
	}
	s.bar.Finish()
}
