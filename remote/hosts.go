package remote

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mpnetctl/mpnetctl/netcfg"
)

const defaultPort = 22

// Host is one machine the tool configures over SSH. The JSON shape matches
// the host list files the lab tooling already passes around.
type Host struct {
	Name    string `json:"name,omitempty"`
	Addr    string `json:"addr"`
	Port    int    `json:"port,omitempty"`
	User    string `json:"user"`
	KeyPath string `json:"keypath,omitempty"`
}

func (h Host) String() string {
	if h.Name != "" && h.Name != h.Addr {
		return h.Name + " (" + h.Addr + ")"
	}
	return h.Addr
}

// ParseTarget parses a --remote value of the form user@host[:port]. A bare
// IPv6 address is taken whole; only a single colon is read as a port
// separator.
func ParseTarget(target, keyPath string) (Host, error) {
	user, hostport, ok := strings.Cut(target, "@")
	if !ok || user == "" || hostport == "" {
		return Host{}, netcfg.ValidationError{Flag: "remote", Reason: "expected user@host[:port], got " + strconv.Quote(target)}
	}

	h := Host{User: user, Addr: hostport, Port: defaultPort, KeyPath: keyPath}
	if strings.Count(hostport, ":") == 1 {
		addr, port, _ := strings.Cut(hostport, ":")
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return Host{}, netcfg.ValidationError{Flag: "remote", Reason: "bad port " + strconv.Quote(port)}
		}
		if addr == "" {
			return Host{}, netcfg.ValidationError{Flag: "remote", Reason: "expected user@host[:port], got " + strconv.Quote(target)}
		}
		h.Addr, h.Port = addr, n
	}
	h.Name = h.Addr
	return h, nil
}

// LoadHosts reads a JSON host list. Entries may leave out name, port and
// keypath; missing keypaths fall back to fallbackKey.
func LoadHosts(path, fallbackKey string) ([]Host, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var hosts []Host
	if err := json.NewDecoder(f).Decode(&hosts); err != nil {
		return nil, fmt.Errorf("decoding %v: %w", path, err)
	}
	if len(hosts) == 0 {
		return nil, fmt.Errorf("%v: no hosts listed", path)
	}
	for i := range hosts {
		h := &hosts[i]
		if h.Addr == "" {
			return nil, fmt.Errorf("%v: host %d: missing addr", path, i)
		}
		if h.User == "" {
			return nil, fmt.Errorf("%v: host %d (%v): missing user", path, i, h.Addr)
		}
		if h.Port == 0 {
			h.Port = defaultPort
		}
		if h.Name == "" {
			h.Name = h.Addr
		}
		if h.KeyPath == "" {
			h.KeyPath = fallbackKey
		}
	}
	return hosts, nil
}
