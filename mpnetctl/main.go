package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/logrusorgru/aurora"
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/mpnetctl/mpnetctl/netcfg"
	"github.com/mpnetctl/mpnetctl/remote"
)

const version = "mpnetctl v0.2"

func main() {
	var opts netcfg.Options
	opts.Flags(flag.CommandLine)

	dryRun := flag.Bool("dry-run", false, "print the commands without running them")
	remoteTarget := flag.String("remote", "", "configure a remote host, user@host[:port]")
	hostsFile := flag.String("hosts", "", "configure every host in a JSON host list")
	sshKey := flag.String("ssh-key", remote.DefaultKeyPath(), "private key for --remote and --hosts")
	parallel := flag.Int("parallel", 8, "hosts configured concurrently with --hosts")
	progress := flag.Bool("progress", false, "draw a per-host progress board with --hosts")
	verbose := flag.BoolP("verbose", "v", false, "log every command before it runs")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if *remoteTarget != "" && *hostsFile != "" {
		usageError(netcfg.ValidationError{Reason: "--remote and --hosts cannot be combined"})
	}

	req, err := netcfg.ParseRequest(opts)
	if err != nil {
		usageError(err)
	}
	seqs := req.Commands()

	if *dryRun {
		for _, seq := range seqs {
			for _, step := range seq.Steps {
				fmt.Println(step)
			}
		}
		return
	}

	ctx := context.Background()
	switch {
	case *hostsFile != "":
		// debug logs and the board fight over the terminal
		board := *progress && !*verbose
		err = runFleet(ctx, *hostsFile, *sshKey, *parallel, board, seqs)
	case *remoteTarget != "":
		err = runRemote(ctx, *remoteTarget, *sshKey, seqs)
	default:
		err = runSequences(ctx, netcfg.LocalRunner{}, seqs)
	}
	if err != nil {
		os.Exit(exitCode(err))
	}
}

func usageError(err error) {
	fmt.Fprintf(os.Stderr, "mpnetctl: %v\n", err)
	fmt.Fprintln(os.Stderr, "usage: mpnetctl -m bandwidth|mptcp-client|mptcp-server|clear|status [flags]")
	fmt.Fprintln(os.Stderr, "run mpnetctl --help for the flag list")
	os.Exit(2)
}

// runSequences applies seqs through r, printing captured output and one
// colored line per sequence. Every sequence is attempted even after a
// failure; the first error is what the caller gets.
func runSequences(ctx context.Context, r netcfg.Runner, seqs []netcfg.Sequence) error {
	var firstErr error
	for _, seq := range seqs {
		results, err := netcfg.ExecuteSequence(ctx, r, seq)
		for _, res := range results {
			if res.Stdout != "" {
				fmt.Print(res.Stdout)
			}
		}
		if err != nil {
			fmt.Printf("%v %v: %v\n", aurora.Red("failed"), seq.Label, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fmt.Printf("%v %v\n", aurora.Green("ok"), seq.Label)
	}
	return firstErr
}

func runRemote(ctx context.Context, target, keyPath string, seqs []netcfg.Sequence) error {
	host, err := remote.ParseTarget(target, keyPath)
	if err != nil {
		usageError(err)
	}
	r, err := remote.Dial(host)
	if err != nil {
		log.Error(err)
		return err
	}
	defer r.Close()
	log.Debugf("connected to %v", host)
	return runSequences(ctx, r, seqs)
}

func runFleet(ctx context.Context, path, keyPath string, parallel int, board bool, seqs []netcfg.Sequence) error {
	hosts, err := remote.LoadHosts(path, keyPath)
	if err != nil {
		log.Error(err)
		return err
	}
	fleet := &remote.Fleet{Parallel: parallel}

	if board {
		events := make(chan remote.Event, len(hosts)*(netcfg.TotalSteps(seqs)+1))
		done := make(chan struct{})
		go func() {
			drawBoard(hosts, netcfg.TotalSteps(seqs), events)
			close(done)
		}()
		// command output would wreck the board; hold it until the end
		outputs := make([]string, len(hosts))
		var mu sync.Mutex
		fleet.Report = func(ev remote.Event) {
			if ev.Output != "" {
				mu.Lock()
				outputs[ev.HostIndex] += ev.Output
				mu.Unlock()
			}
			events <- ev
		}
		err = fleet.Run(ctx, hosts, seqs)
		close(events)
		<-done
		for i, out := range outputs {
			if out != "" {
				fmt.Printf("---- %v\n%v", hosts[i].Name, out)
			}
		}
		return err
	}

	fleet.Report = func(ev remote.Event) {
		switch {
		case ev.Done && ev.Err != nil:
			fmt.Printf("%v %v: %v\n", aurora.Red("failed"), ev.Host, ev.Err)
		case ev.Done:
			fmt.Printf("%v %v\n", aurora.Green("ok"), ev.Host)
		case ev.Output != "":
			fmt.Printf("---- %v\n%v", ev.Host, ev.Output)
		}
	}
	return fleet.Run(ctx, hosts, seqs)
}

// exitCode turns the error taxonomy into a process exit status: flag
// problems exit 2 as usage errors conventionally do, a failed command
// propagates its own exit code, a missing tool exits 127 like a shell,
// and everything else exits 1.
func exitCode(err error) int {
	var verr netcfg.ValidationError
	if errors.As(err, &verr) {
		return 2
	}
	var cerr netcfg.CommandError
	if errors.As(err, &cerr) && cerr.ExitCode > 0 {
		return cerr.ExitCode
	}
	var nferr netcfg.NotFoundError
	if errors.As(err, &nferr) {
		return 127
	}
	return 1
}
