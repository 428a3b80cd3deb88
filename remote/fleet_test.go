package remote

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mpnetctl/mpnetctl/netcfg"
)

// fakeHostRunner stands in for an SSH connection. It records the commands
// it ran and fails the one named in fail with exit 1.
type fakeHostRunner struct {
	mu     sync.Mutex
	fail   string
	ran    []string
	closed bool
}

func (f *fakeHostRunner) Run(_ context.Context, argv []string) (netcfg.Result, error) {
	cmd := strings.Join(argv, " ")
	f.mu.Lock()
	f.ran = append(f.ran, cmd)
	f.mu.Unlock()
	if cmd == f.fail {
		return netcfg.Result{ExitCode: 1, Stderr: "RTNETLINK answers: invalid argument\n"}, nil
	}
	return netcfg.Result{}, nil
}

func (f *fakeHostRunner) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeHostRunner) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ran...)
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) record(ev Event) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

func (l *eventLog) terminal() map[int]Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	term := make(map[int]Event)
	for _, ev := range l.events {
		if ev.Done {
			term[ev.HostIndex] = ev
		}
	}
	return term
}

func testHosts() []Host {
	return []Host{
		{Name: "a", Addr: "10.0.0.1", Port: 22, User: "root"},
		{Name: "b", Addr: "10.0.0.2", Port: 22, User: "root"},
		{Name: "c", Addr: "10.0.0.3", Port: 22, User: "root"},
	}
}

func TestFleetRunsEveryHost(t *testing.T) {
	hosts := testHosts()
	runners := make(map[string]*fakeHostRunner)
	var mu sync.Mutex
	logbook := &eventLog{}

	fleet := &Fleet{
		Connect: func(h Host) (RunnerCloser, error) {
			r := &fakeHostRunner{}
			mu.Lock()
			runners[h.Name] = r
			mu.Unlock()
			return r, nil
		},
		Parallel: 2,
		Report:   logbook.record,
	}

	seqs := netcfg.BandwidthRequest{Iface1: "eth0", Rate1: 100, Iface2: "eth1", Rate2: 50}.Commands()
	require.NoError(t, fleet.Run(context.Background(), hosts, seqs))

	require.Len(t, runners, 3)
	for name, r := range runners {
		require.Len(t, r.commands(), 4, "host %v", name)
		require.True(t, r.closed, "host %v left open", name)
	}

	term := logbook.terminal()
	require.Len(t, term, 3)
	for _, ev := range term {
		require.NoError(t, ev.Err)
	}
}

func TestFleetFailingHostDoesNotStopOthers(t *testing.T) {
	hosts := testHosts()
	runners := make(map[string]*fakeHostRunner)
	var mu sync.Mutex
	logbook := &eventLog{}

	fleet := &Fleet{
		Connect: func(h Host) (RunnerCloser, error) {
			r := &fakeHostRunner{}
			if h.Name == "b" {
				r.fail = "ip mptcp limits set subflow 2"
			}
			mu.Lock()
			runners[h.Name] = r
			mu.Unlock()
			return r, nil
		},
		Parallel: 3,
		Report:   logbook.record,
	}

	seqs := netcfg.MPTCPServerRequest{Addr: "192.168.40.21", Iface: "eth1", Subflows: 2}.Commands()
	err := fleet.Run(context.Background(), hosts, seqs)
	var cerr netcfg.CommandError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, 1, cerr.ExitCode)

	// the failing host stopped mid-sequence, the others finished
	require.Len(t, runners["b"].commands(), 1)
	require.Len(t, runners["a"].commands(), 2)
	require.Len(t, runners["c"].commands(), 2)

	term := logbook.terminal()
	require.Len(t, term, 3)
	require.Error(t, term[1].Err)
	require.NoError(t, term[0].Err)
	require.NoError(t, term[2].Err)
}

func TestFleetConnectFailureIsIsolated(t *testing.T) {
	hosts := testHosts()
	runners := make(map[string]*fakeHostRunner)
	var mu sync.Mutex
	dialErr := errors.New("connect: connection refused")

	fleet := &Fleet{
		Connect: func(h Host) (RunnerCloser, error) {
			if h.Name == "a" {
				return nil, dialErr
			}
			r := &fakeHostRunner{}
			mu.Lock()
			runners[h.Name] = r
			mu.Unlock()
			return r, nil
		},
		Parallel: 1,
	}

	seqs := netcfg.MPTCPClientRequest{Subflows: 2}.Commands()
	err := fleet.Run(context.Background(), hosts, seqs)
	require.ErrorIs(t, err, dialErr)

	require.NotContains(t, runners, "a")
	require.Len(t, runners["b"].commands(), 1)
	require.Len(t, runners["c"].commands(), 1)
}

func TestFleetReportsStepProgress(t *testing.T) {
	logbook := &eventLog{}
	fleet := &Fleet{
		Connect: func(Host) (RunnerCloser, error) {
			return &fakeHostRunner{}, nil
		},
		Parallel: 1,
		Report:   logbook.record,
	}

	seqs := netcfg.BandwidthRequest{Iface1: "eth0", Rate1: 100, Iface2: "eth1", Rate2: 50}.Commands()
	require.NoError(t, fleet.Run(context.Background(), testHosts()[:1], seqs))

	var steps []int
	for _, ev := range logbook.events {
		if !ev.Done {
			steps = append(steps, ev.Steps)
		}
	}
	require.Equal(t, []int{1, 2, 3, 4}, steps)
}
