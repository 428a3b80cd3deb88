package netcfg

import "strconv"

// MPTCPClientSequence raises the path manager limits on the client side:
// n extra subflows may be opened and n advertised addresses accepted, set
// in a single limits call.
func MPTCPClientSequence(n int) Sequence {
	lim := strconv.Itoa(n)
	return Sequence{
		Label: "mptcp client limits",
		Steps: []Invocation{
			{Argv: []string{"ip", "mptcp", "limits", "set", "subflow", lim, "add_addr_accepted", lim}},
		},
	}
}

// MPTCPServerSequence raises the subflow limit and registers addr on iface
// as a signal endpoint, which makes the kernel advertise it to peers.
func MPTCPServerSequence(addr, iface string, n int) Sequence {
	return Sequence{
		Label: "mptcp server endpoint " + addr + " on " + iface,
		Steps: []Invocation{
			{Argv: []string{"ip", "mptcp", "limits", "set", "subflow", strconv.Itoa(n)}},
			{Argv: []string{"ip", "mptcp", "endpoint", "add", addr, "dev", iface, "signal"}},
		},
	}
}

// MPTCPResetSequence flushes every registered endpoint and zeroes the
// limits, returning the path manager to its boot state. Both steps are
// strict.
func MPTCPResetSequence() Sequence {
	return Sequence{
		Label: "reset mptcp state",
		Steps: []Invocation{
			{Argv: []string{"ip", "mptcp", "endpoint", "flush"}},
			{Argv: []string{"ip", "mptcp", "limits", "set", "subflow", "0", "add_addr_accepted", "0"}},
		},
	}
}

// MPTCPStatusSequence shows the limits and the registered endpoints.
func MPTCPStatusSequence() Sequence {
	return Sequence{
		Label: "mptcp status",
		Steps: []Invocation{
			{Argv: []string{"ip", "mptcp", "limits", "show"}},
			{Argv: []string{"ip", "mptcp", "endpoint", "show"}},
		},
	}
}
