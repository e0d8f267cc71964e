package ioimport

import (
	"github.com/cheggaaa/pb/v3"
)

// newBar creates a progress bar that clears itself once finished, so
// the stage messages around it stay readable.
func newBar(prefix string, total int) *pb.ProgressBar {
	bar := pb.Full.Start(total)
	bar.Set("prefix", prefix)
	bar.Set(pb.CleanOnFinish, true)
	return bar
}
