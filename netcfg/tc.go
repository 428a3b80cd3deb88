package netcfg

import "strconv"

// Burst and latency of the tbf qdisc are fixed; only the rate varies per
// interface. The burst must stay well above the largest configured rate or
// tbf throttles below it.
const (
	tbfBurst   = "256mbit"
	tbfLatency = "600ms"
)

// ShapeSequence builds the steps that cap iface at mbit: delete whatever
// root qdisc is installed, then attach a tbf with the requested rate. The
// delete is best effort because a freshly booted interface has no explicit
// root qdisc to remove.
func ShapeSequence(iface string, mbit int) Sequence {
	rate := strconv.Itoa(mbit) + "mbit"
	return Sequence{
		Label: "shape " + iface + " to " + rate,
		Steps: []Invocation{
			{Argv: []string{"tc", "qdisc", "del", "dev", iface, "root"}, BestEffort: true},
			{Argv: []string{"tc", "qdisc", "add", "dev", iface, "root", "tbf",
				"rate", rate, "burst", tbfBurst, "latency", tbfLatency}},
		},
	}
}

// ClearSequence removes the root qdisc from iface, tolerating the case
// where nothing is installed.
func ClearSequence(iface string) Sequence {
	return Sequence{
		Label: "clear shaping on " + iface,
		Steps: []Invocation{
			{Argv: []string{"tc", "qdisc", "del", "dev", iface, "root"}, BestEffort: true},
		},
	}
}

// QdiscStatusSequence shows the qdiscs installed on iface.
func QdiscStatusSequence(iface string) Sequence {
	return Sequence{
		Label: "qdisc status of " + iface,
		Steps: []Invocation{
			{Argv: []string{"tc", "qdisc", "show", "dev", iface}},
		},
	}
}
