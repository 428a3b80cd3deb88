package netcfg

import (
	"net"
	"strconv"

	"github.com/spf13/pflag"
)

// Mode selects which flags are required and which commands get built.
type Mode string

const (
	// ModeBandwidth caps the rate of two interfaces with tbf qdiscs.
	ModeBandwidth Mode = "bandwidth"
	// ModeMPTCPClient raises the kernel limits so the host can open
	// extra subflows and accept advertised addresses.
	ModeMPTCPClient Mode = "mptcp-client"
	// ModeMPTCPServer raises the subflow limit and announces an extra
	// address for clients to connect to.
	ModeMPTCPServer Mode = "mptcp-server"
	// ModeClear removes the shaping and MPTCP state the other modes set.
	ModeClear Mode = "clear"
	// ModeStatus shows the current qdisc and MPTCP configuration.
	ModeStatus Mode = "status"
)

// DefaultSubflows is the subflow and add_addr_accepted limit used when
// --max-subflows is not given: one extra path next to the initial subflow.
const DefaultSubflows = 2

// Options carries the raw flag values for every mode. Bandwidths stay
// strings here; ParseRequest validates them into numbers.
type Options struct {
	Mode         string
	Iface1       string
	BW1          string
	Iface2       string
	BW2          string
	SubflowIP    string
	SubflowIface string
	MaxSubflows  int
	ClearMPTCP   bool
}

// Flags registers the mode selection and its parameters on fs.
func (o *Options) Flags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.Mode, "mode", "m", "", "operation mode: bandwidth, mptcp-client, mptcp-server, clear, status")
	fs.StringVar(&o.Iface1, "iface1", "", "first network interface")
	fs.StringVar(&o.BW1, "bw1", "", "bandwidth cap for the first interface, in Mbit")
	fs.StringVar(&o.Iface2, "iface2", "", "second network interface")
	fs.StringVar(&o.BW2, "bw2", "", "bandwidth cap for the second interface, in Mbit")
	fs.StringVar(&o.SubflowIP, "subflow-ip", "", "address to announce for extra subflows (mptcp-server)")
	fs.StringVar(&o.SubflowIface, "subflow-iface", "", "interface carrying the announced address (mptcp-server)")
	fs.IntVar(&o.MaxSubflows, "max-subflows", DefaultSubflows, "kernel limit for additional subflows, at least 1")
	fs.BoolVar(&o.ClearMPTCP, "mptcp", false, "clear mode: also flush MPTCP endpoints and zero the limits")
}

// Request is one validated invocation of the tool. Commands only builds
// argv vectors; nothing runs until they are handed to a Runner.
type Request interface {
	Mode() Mode
	Commands() []Sequence
}

// ParseRequest checks opts against the rules of the selected mode and
// returns the matching request. Every rejection is a ValidationError, and
// flags that a mode does not use are ignored rather than rejected.
func ParseRequest(opts Options) (Request, error) {
	if opts.MaxSubflows < 1 {
		return nil, ValidationError{Flag: "max-subflows", Reason: "must be at least 1"}
	}
	switch Mode(opts.Mode) {
	case ModeBandwidth:
		return parseBandwidth(opts)
	case ModeMPTCPClient:
		return MPTCPClientRequest{Subflows: opts.MaxSubflows}, nil
	case ModeMPTCPServer:
		return parseMPTCPServer(opts)
	case ModeClear:
		return parseClear(opts)
	case ModeStatus:
		return StatusRequest{Ifaces: ifaceList(opts)}, nil
	case "":
		return nil, ValidationError{Flag: "mode", Reason: "is required"}
	default:
		return nil, ValidationError{Flag: "mode", Reason: "unknown mode " + strconv.Quote(opts.Mode)}
	}
}

func parseBandwidth(opts Options) (Request, error) {
	if opts.Iface1 == "" || opts.BW1 == "" || opts.Iface2 == "" || opts.BW2 == "" {
		return nil, ValidationError{Flag: "mode", Reason: "bandwidth requires --iface1, --bw1, --iface2 and --bw2"}
	}
	rate1, err := parseRate("bw1", opts.BW1)
	if err != nil {
		return nil, err
	}
	rate2, err := parseRate("bw2", opts.BW2)
	if err != nil {
		return nil, err
	}
	return BandwidthRequest{Iface1: opts.Iface1, Rate1: rate1, Iface2: opts.Iface2, Rate2: rate2}, nil
}

func parseRate(flag, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, ValidationError{Flag: flag, Reason: "bandwidth must be an integer, got " + strconv.Quote(value)}
	}
	if n <= 0 {
		return 0, ValidationError{Flag: flag, Reason: "bandwidth must be positive, got " + value}
	}
	return n, nil
}

func parseMPTCPServer(opts Options) (Request, error) {
	if opts.SubflowIP == "" || opts.SubflowIface == "" {
		return nil, ValidationError{Flag: "mode", Reason: "mptcp-server requires --subflow-ip and --subflow-iface"}
	}
	if net.ParseIP(opts.SubflowIP) == nil {
		return nil, ValidationError{Flag: "subflow-ip", Reason: "not an IP address: " + strconv.Quote(opts.SubflowIP)}
	}
	return MPTCPServerRequest{Addr: opts.SubflowIP, Iface: opts.SubflowIface, Subflows: opts.MaxSubflows}, nil
}

func parseClear(opts Options) (Request, error) {
	ifaces := ifaceList(opts)
	if len(ifaces) == 0 && !opts.ClearMPTCP {
		return nil, ValidationError{Flag: "mode", Reason: "clear requires --iface1, --iface2 or --mptcp"}
	}
	return ClearRequest{Ifaces: ifaces, MPTCP: opts.ClearMPTCP}, nil
}

func ifaceList(opts Options) []string {
	var ifaces []string
	if opts.Iface1 != "" {
		ifaces = append(ifaces, opts.Iface1)
	}
	if opts.Iface2 != "" {
		ifaces = append(ifaces, opts.Iface2)
	}
	return ifaces
}

// BandwidthRequest caps Iface1 at Rate1 and Iface2 at Rate2, both in Mbit.
type BandwidthRequest struct {
	Iface1 string
	Rate1  int
	Iface2 string
	Rate2  int
}

func (r BandwidthRequest) Mode() Mode { return ModeBandwidth }

// Commands builds one shaping sequence per interface, first interface
// first. A failure on one interface does not stop the other.
func (r BandwidthRequest) Commands() []Sequence {
	return []Sequence{
		ShapeSequence(r.Iface1, r.Rate1),
		ShapeSequence(r.Iface2, r.Rate2),
	}
}

// MPTCPClientRequest prepares a host to grow connections outward.
type MPTCPClientRequest struct {
	Subflows int
}

func (r MPTCPClientRequest) Mode() Mode { return ModeMPTCPClient }

func (r MPTCPClientRequest) Commands() []Sequence {
	return []Sequence{MPTCPClientSequence(r.Subflows)}
}

// MPTCPServerRequest announces Addr on Iface so clients can open subflows
// to it. Addr is kept exactly as the user typed it; validation only checks
// that it parses as an IP.
type MPTCPServerRequest struct {
	Addr     string
	Iface    string
	Subflows int
}

func (r MPTCPServerRequest) Mode() Mode { return ModeMPTCPServer }

func (r MPTCPServerRequest) Commands() []Sequence {
	return []Sequence{MPTCPServerSequence(r.Addr, r.Iface, r.Subflows)}
}

// ClearRequest removes shaping from the named interfaces and, when MPTCP
// is set, resets the path manager state too.
type ClearRequest struct {
	Ifaces []string
	MPTCP  bool
}

func (r ClearRequest) Mode() Mode { return ModeClear }

func (r ClearRequest) Commands() []Sequence {
	var seqs []Sequence
	for _, iface := range r.Ifaces {
		seqs = append(seqs, ClearSequence(iface))
	}
	if r.MPTCP {
		seqs = append(seqs, MPTCPResetSequence())
	}
	return seqs
}

// StatusRequest inspects the qdiscs of the named interfaces (if any) and
// always the MPTCP limits and endpoints.
type StatusRequest struct {
	Ifaces []string
}

func (r StatusRequest) Mode() Mode { return ModeStatus }

func (r StatusRequest) Commands() []Sequence {
	var seqs []Sequence
	for _, iface := range r.Ifaces {
		seqs = append(seqs, QdiscStatusSequence(iface))
	}
	seqs = append(seqs, MPTCPStatusSequence())
	return seqs
}
