package media

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kbukum/transcriptor/errors"
	"github.com/kbukum/transcriptor/process"
)

// probeDuration asks ffprobe for the media duration in seconds.
func (n *Normalizer) probeDuration(ctx context.Context, path string) (float64, error) {
	result, err := process.Run(ctx, process.Command{
		Binary: n.cfg.FFprobeBinary,
		Args: []string{
			"-v", "quiet",
			"-show_entries", "format=duration",
			"-of", "csv=p=0",
			path,
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, errors.ExtractionFailed(n.cfg.FFprobeBinary, err)
	}

	raw := strings.TrimSpace(string(result.Stdout))
	dur, parseErr := strconv.ParseFloat(raw, 64)
	if parseErr != nil {
		return 0, errors.ExtractionFailed(n.cfg.FFprobeBinary,
			fmt.Errorf("unparseable duration %q: %w", raw, parseErr))
	}
	return dur, nil
}
