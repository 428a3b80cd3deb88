package netcfg

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ExecuteSequence runs the steps of seq strictly in order. The first
// failing strict step stops the sequence and comes back as a CommandError;
// best-effort steps may fail without consequence. Results of the steps
// that ran are returned either way.
func ExecuteSequence(ctx context.Context, r Runner, seq Sequence) ([]Result, error) {
	results := make([]Result, 0, len(seq.Steps))
	for _, step := range seq.Steps {
		log.Debugf("run: %s", step)
		res, err := r.Run(ctx, step.Argv)
		if err != nil {
			return results, err
		}
		results = append(results, res)
		if res.ExitCode == 0 {
			continue
		}
		if step.BestEffort {
			log.Debugf("tolerated: %s: exit status %d", step, res.ExitCode)
			continue
		}
		return results, CommandError{
			Cmd:      step.String(),
			ExitCode: res.ExitCode,
			Stderr:   strings.TrimSpace(res.Stderr),
		}
	}
	return results, nil
}

// Execute runs every sequence even when an earlier one failed, mirroring
// the per-interface independence of the bandwidth mode, and returns the
// first error encountered.
func Execute(ctx context.Context, r Runner, seqs []Sequence) error {
	var firstErr error
	for _, seq := range seqs {
		if _, err := ExecuteSequence(ctx, r, seq); err != nil {
			log.Debugf("%s: %v", seq.Label, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
