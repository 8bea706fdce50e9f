package utils

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// Standard progress bar descriptions
const (
	DescPulling     = "Pulling"
	DescDownloading = "Downloading"
	DescExtracting  = "Extracting"
	DescPublishing  = "Publishing"
	DescBatch       = "Sources"
)

// NewProgressBarTo creates a consistently styled progress bar on w.
//
// Parameters:
//   - total: Total number of items. Use -1 for unknown totals (spinner mode).
//   - description: Text shown before the bar (e.g., DescPulling, DescBatch).
//
// A pull renders as a spinner whose description follows the pipeline
// stage; a batch renders as a bar counting finished sources.
func NewProgressBarTo(w io.Writer, total int, description string) *progressbar.ProgressBar {
	opts := []progressbar.Option{
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
	}

	if total < 0 {
		opts = append(opts,
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetRenderBlankState(true),
		)
	} else {
		opts = append(opts,
			progressbar.OptionShowIts(),
		)
	}

	return progressbar.NewOptions(total, opts...)
}
