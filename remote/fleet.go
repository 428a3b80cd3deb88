package remote

import (
	"context"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mpnetctl/mpnetctl/netcfg"
)

const defaultParallel = 8

// Event reports fleet progress: one event per finished step, and one
// terminal event per host with Done set.
type Event struct {
	HostIndex int
	Host      Host
	Steps     int    // steps finished on this host so far
	Output    string // stdout of the step, for show-style commands
	Err       error  // terminal outcome, nil when the host succeeded
	Done      bool
}

// RunnerCloser is what Connect hands back: a runner bound to one host plus
// its teardown.
type RunnerCloser interface {
	netcfg.Runner
	Close() error
}

// Fleet applies command sequences to many hosts concurrently. Hosts never
// cancel each other: a failing host leaves the rest running, and whatever
// it already applied stays applied.
type Fleet struct {
	// Connect opens the transport to one host. Left nil it dials SSH;
	// tests drop in fakes here.
	Connect  func(Host) (RunnerCloser, error)
	Parallel int
	Report   func(Event)
}

// Run configures every host with seqs and returns the first error any
// host hit.
func (f *Fleet) Run(ctx context.Context, hosts []Host, seqs []netcfg.Sequence) error {
	connect := f.Connect
	if connect == nil {
		connect = func(h Host) (RunnerCloser, error) { return Dial(h) }
	}
	report := f.Report
	if report == nil {
		report = func(Event) {}
	}
	limit := f.Parallel
	if limit < 1 {
		limit = defaultParallel
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i := range hosts {
		i, h := i, hosts[i]
		g.Go(func() error {
			err := runHost(ctx, connect, report, i, h, seqs)
			if err != nil {
				log.Warnf("%v: %v", h, err)
			}
			report(Event{HostIndex: i, Host: h, Err: err, Done: true})
			return err
		})
	}
	return g.Wait()
}

func runHost(ctx context.Context, connect func(Host) (RunnerCloser, error), report func(Event), idx int, h Host, seqs []netcfg.Sequence) error {
	r, err := connect(h)
	if err != nil {
		return err
	}
	defer r.Close()
	log.Debugf("connected to %v", h)

	steps := 0
	counted := stepRunner{inner: r, after: func(res netcfg.Result) {
		steps++
		report(Event{HostIndex: idx, Host: h, Steps: steps, Output: res.Stdout})
	}}
	return netcfg.Execute(ctx, counted, seqs)
}

// stepRunner reports after every command so progress can be drawn per
// step, whatever sequence the step belongs to.
type stepRunner struct {
	inner netcfg.Runner
	after func(netcfg.Result)
}

func (s stepRunner) Run(ctx context.Context, argv []string) (netcfg.Result, error) {
	res, err := s.inner.Run(ctx, argv)
	if err == nil {
		s.after(res)
	}
	return res, err
}
