package remote

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kballard/go-shellquote"
	"golang.org/x/crypto/ssh"

	"github.com/mpnetctl/mpnetctl/netcfg"
)

// shells report a missing command as 127
const exitNotFound = 127

// DefaultKeyPath returns the private key used when neither the host entry
// nor --ssh-key names one: $MPNETCTL_SSH_KEY if set, else ~/.ssh/id_rsa.
func DefaultKeyPath() string {
	if p := os.Getenv("MPNETCTL_SSH_KEY"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ssh", "id_rsa")
}

func loadKey(path string) (ssh.AuthMethod, error) {
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("parsing key %v: %w", path, err)
	}
	return ssh.PublicKeys(signer), nil
}

// Dial opens the SSH connection to h and wraps it in a Runner.
// TODO: pin host keys once the lab machines stop being reimaged weekly.
func Dial(h Host) (*Runner, error) {
	auth, err := loadKey(h.KeyPath)
	if err != nil {
		return nil, err
	}
	config := &ssh.ClientConfig{
		User: h.User,
		Auth: []ssh.AuthMethod{
			auth,
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	fulladdr := net.JoinHostPort(h.Addr, strconv.Itoa(h.Port))
	client, err := ssh.Dial("tcp", fulladdr, config)
	if err != nil {
		return nil, fmt.Errorf("dialing %v: %w", h, err)
	}
	return &Runner{client: client}, nil
}

// Runner executes commands on one remote host. A session carries exactly
// one command, so every Run opens its own.
type Runner struct {
	client *ssh.Client
}

func (r *Runner) Close() error {
	return r.client.Close()
}

func (r *Runner) Run(ctx context.Context, argv []string) (netcfg.Result, error) {
	sess, err := r.client.NewSession()
	if err != nil {
		return netcfg.Result{}, fmt.Errorf("opening session: %w", err)
	}
	defer sess.Close()

	var stdout, stderr bytes.Buffer
	sess.Stdout = &stdout
	sess.Stderr = &stderr

	err = sess.Run(shellquote.Join(argv...))
	res := netcfg.Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		e, is := err.(*ssh.ExitError)
		if !is {
			return res, err
		}
		res.ExitCode = e.ExitStatus()
		if res.ExitCode == exitNotFound {
			return res, netcfg.NotFoundError{Tool: argv[0]}
		}
	}
	return res, nil
}
