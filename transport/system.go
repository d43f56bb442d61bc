package transport

import (
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/creack/pty"

	"github.com/netdrv/netdrv/errs"
)

// System is a Transport that shells out to the system's ssh or telnet
// binary under a pseudo-terminal, the same way an operator driving the
// device from a terminal would. It answers in-channel authentication
// prompts itself via the wrapping Channel, so InChannelAuthData reports
// the credentials needed for that.
type System struct {
	args   Args
	ssh    SSHArgs
	useSSH bool

	cmd  *exec.Cmd
	ptmx *os.File

	incoming chan []byte
	readErr  chan error
	stop     chan struct{}

	mu    sync.Mutex
	alive bool
}

// NewSystemSSH returns a System transport that drives `ssh` under a PTY.
func NewSystemSSH(args Args, ssh SSHArgs) *System {
	return &System{args: args, ssh: ssh, useSSH: true}
}

// NewSystemTelnet returns a System transport that drives `telnet` under a
// PTY.
func NewSystemTelnet(args Args) *System {
	return &System{args: args}
}

// buildArgs assembles the deterministic command-line arguments for the
// underlying ssh or telnet binary.
func (s *System) buildArgs() (binary string, argv []string) {
	if !s.useSSH {
		return "telnet", []string{s.args.Host, strconv.Itoa(s.args.Port)}
	}

	argv = []string{
		"-o", "ServerAliveInterval=10",
		"-p", strconv.Itoa(s.args.Port),
	}

	if !s.ssh.StrictKey {
		argv = append(argv, "-o", "StrictHostKeyChecking=no", "-o", "UserKnownHostsFile=/dev/null")
	} else if s.ssh.KnownHostsFilePath != "" {
		argv = append(argv, "-o", "UserKnownHostsFile="+s.ssh.KnownHostsFilePath)
	}

	if s.ssh.ConfigFilePath != "" {
		argv = append(argv, "-F", s.ssh.ConfigFilePath)
	}

	if s.ssh.PrivateKeyPath != "" {
		argv = append(argv, "-i", s.ssh.PrivateKeyPath)
	}

	target := s.args.Host
	if s.args.User != "" {
		target = s.args.User + "@" + s.args.Host
	}
	argv = append(argv, target)

	return "ssh", argv
}

// Open spawns the ssh or telnet binary under a PTY sized to
// Args.TermWidth x Args.TermHeight.
func (s *System) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	binary, argv := s.buildArgs()

	path, err := exec.LookPath(binary)
	if err != nil {
		return errs.Wrapf("transport: system: %s not found on PATH", err, binary)
	}

	cmd := exec.Command(path, argv...)
	cmd.Env = append(os.Environ(), "TERM=xterm")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(s.args.TermHeight),
		Cols: uint16(s.args.TermWidth),
	})
	if err != nil {
		return errs.Wrap("transport: system: starting pty", err)
	}

	s.cmd = cmd
	s.ptmx = ptmx
	s.alive = true
	s.incoming = make(chan []byte, 64)
	s.readErr = make(chan error, 1)
	s.stop = make(chan struct{})

	go s.readPTY()

	return nil
}

// readPTY runs for the process lifetime, pulling bytes off the PTY master
// and handing them to Read/ReadN through a buffered channel so those
// calls never block on the underlying (blocking) file descriptor.
func (s *System) readPTY() {
	buf := make([]byte, s.args.ReadSize)

	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])

			select {
			case s.incoming <- chunk:
			case <-s.stop:
				return
			}
		}

		if err != nil {
			select {
			case s.readErr <- err:
			default:
			}
			return
		}
	}
}

// Close terminates the underlying process and releases its PTY.
func (s *System) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alive = false

	if s.stop != nil {
		close(s.stop)
	}

	var closeErr error
	if s.ptmx != nil {
		closeErr = s.ptmx.Close()
	}
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
		_ = s.cmd.Wait()
	}

	return closeErr
}

// Alive reports whether the underlying process is still believed to be
// running.
func (s *System) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alive
}

// Read returns whatever bytes the background reader has buffered, as
// ReadN(Args.ReadSize), without blocking. It returns an empty slice if
// nothing is currently available.
func (s *System) Read() ([]byte, error) {
	return s.ReadN(s.args.ReadSize)
}

// ReadN returns buffered chunks without blocking, stopping once at least
// n bytes are gathered. Chunks are not split, so the result can exceed n.
func (s *System) ReadN(n int) ([]byte, error) {
	s.mu.Lock()
	incoming := s.incoming
	readErrCh := s.readErr
	s.mu.Unlock()

	if incoming == nil {
		return nil, errs.New("transport: system: not open")
	}

	var out []byte

	for len(out) < n {
		select {
		case chunk := <-incoming:
			out = append(out, chunk...)
		case err := <-readErrCh:
			s.mu.Lock()
			s.alive = false
			s.mu.Unlock()
			if len(out) > 0 {
				return out, nil
			}
			return nil, errs.Wrap("transport: system: read", err)
		default:
			return out, nil
		}
	}

	return out, nil
}

// Write sends b to the PTY master, which the spawned ssh/telnet process
// reads as its stdin.
func (s *System) Write(b []byte) error {
	s.mu.Lock()
	ptmx := s.ptmx
	s.mu.Unlock()

	if ptmx == nil {
		return errs.New("transport: system: not open")
	}

	if _, err := ptmx.Write(b); err != nil {
		return errs.Wrap("transport: system: write", err)
	}

	return nil
}

func (s *System) Host() string { return s.args.Host }
func (s *System) Port() int    { return s.args.Port }

// InChannelAuthData reports the credentials the wrapping Channel should
// use to answer in-band prompts: telnet always prompts in-band for both
// username and password, while ssh only prompts in-band for a password
// or key passphrase (the username travels on the ssh command line).
func (s *System) InChannelAuthData() InChannelAuthData {
	authType := AuthTypeTelnet
	if s.useSSH {
		authType = AuthTypeSSH
	}

	return InChannelAuthData{
		AuthType:             authType,
		User:                 s.args.User,
		Password:             s.args.Password,
		PrivateKeyPassphrase: s.ssh.PrivateKeyPassphrase,
	}
}
