package netcfg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBandwidthCommands(t *testing.T) {
	req, err := ParseRequest(Options{
		Mode:        "bandwidth",
		Iface1:      "eth0",
		BW1:         "100",
		Iface2:      "eth1",
		BW2:         "50",
		MaxSubflows: DefaultSubflows,
	})
	require.NoError(t, err)

	seqs := req.Commands()
	require.Len(t, seqs, 2)

	first := seqs[0]
	require.Len(t, first.Steps, 2)
	require.True(t, first.Steps[0].BestEffort)
	require.Equal(t, []string{"tc", "qdisc", "del", "dev", "eth0", "root"}, first.Steps[0].Argv)
	require.False(t, first.Steps[1].BestEffort)
	require.Equal(t, []string{
		"tc", "qdisc", "add", "dev", "eth0", "root", "tbf",
		"rate", "100mbit", "burst", "256mbit", "latency", "600ms",
	}, first.Steps[1].Argv)

	second := seqs[1]
	require.Equal(t, []string{"tc", "qdisc", "del", "dev", "eth1", "root"}, second.Steps[0].Argv)
	require.Equal(t, []string{
		"tc", "qdisc", "add", "dev", "eth1", "root", "tbf",
		"rate", "50mbit", "burst", "256mbit", "latency", "600ms",
	}, second.Steps[1].Argv)
}

func TestClearCommands(t *testing.T) {
	req, err := ParseRequest(Options{Mode: "clear", Iface1: "eth0", Iface2: "eth1", ClearMPTCP: true, MaxSubflows: DefaultSubflows})
	require.NoError(t, err)

	seqs := req.Commands()
	require.Len(t, seqs, 3)
	require.Equal(t, []string{"tc", "qdisc", "del", "dev", "eth0", "root"}, seqs[0].Steps[0].Argv)
	require.True(t, seqs[0].Steps[0].BestEffort)
	require.Equal(t, []string{"tc", "qdisc", "del", "dev", "eth1", "root"}, seqs[1].Steps[0].Argv)
	require.Equal(t, []string{"ip", "mptcp", "endpoint", "flush"}, seqs[2].Steps[0].Argv)
	require.Equal(t, []string{"ip", "mptcp", "limits", "set", "subflow", "0", "add_addr_accepted", "0"}, seqs[2].Steps[1].Argv)
	require.False(t, seqs[2].Steps[0].BestEffort)
}

func TestStatusCommands(t *testing.T) {
	req, err := ParseRequest(Options{Mode: "status", Iface1: "eth0", MaxSubflows: DefaultSubflows})
	require.NoError(t, err)

	seqs := req.Commands()
	require.Len(t, seqs, 2)
	require.Equal(t, []string{"tc", "qdisc", "show", "dev", "eth0"}, seqs[0].Steps[0].Argv)
	require.Equal(t, []string{"ip", "mptcp", "limits", "show"}, seqs[1].Steps[0].Argv)
	require.Equal(t, []string{"ip", "mptcp", "endpoint", "show"}, seqs[1].Steps[1].Argv)
}

func TestTotalSteps(t *testing.T) {
	req, err := ParseRequest(Options{
		Mode:        "bandwidth",
		Iface1:      "eth0",
		BW1:         "100",
		Iface2:      "eth1",
		BW2:         "50",
		MaxSubflows: DefaultSubflows,
	})
	require.NoError(t, err)
	require.Equal(t, 4, TotalSteps(req.Commands()))
}
