package transport

import (
	"io"
	"net"
	"os"
	"strconv"
	"sync"

	"golang.org/x/crypto/ssh"

	"github.com/netdrv/netdrv/errs"
)

// NativeSSH is a Transport backed by golang.org/x/crypto/ssh instead of a
// spawned ssh binary. It authenticates out of band as part of Open, so
// the Channel wrapping it should be built with Args.AuthBypass set.
type NativeSSH struct {
	args Args
	ssh  SSHArgs

	client  *ssh.Client
	session *ssh.Session

	stdin  io.WriteCloser
	stdout io.Reader

	incoming chan []byte
	readErr  chan error
	stop     chan struct{}

	mu    sync.Mutex
	alive bool
}

// NewNativeSSH returns a NativeSSH transport for args/ssh.
func NewNativeSSH(args Args, sshArgs SSHArgs) *NativeSSH {
	return &NativeSSH{args: args, ssh: sshArgs}
}

func (t *NativeSSH) hostKeyCallback() ssh.HostKeyCallback {
	if !t.ssh.StrictKey {
		return ssh.InsecureIgnoreHostKey()
	}
	if t.ssh.KnownHostsFilePath != "" {
		cb, err := knownHostsCallback(t.ssh.KnownHostsFilePath)
		if err == nil {
			return cb
		}
	}
	return ssh.InsecureIgnoreHostKey()
}

func (t *NativeSSH) authMethods() ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if t.ssh.PrivateKeyPath != "" {
		keyBytes, err := os.ReadFile(t.ssh.PrivateKeyPath)
		if err != nil {
			return nil, errs.Wrap("transport: nativessh: reading private key", err)
		}

		var signer ssh.Signer
		if t.ssh.PrivateKeyPassphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(keyBytes, []byte(t.ssh.PrivateKeyPassphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(keyBytes)
		}
		if err != nil {
			return nil, errs.Wrap("transport: nativessh: parsing private key", err)
		}

		methods = append(methods, ssh.PublicKeys(signer))
	}

	if t.args.Password != "" {
		methods = append(methods, ssh.Password(t.args.Password))
	}

	return methods, nil
}

// Open dials the device, authenticates, and requests an interactive
// shell under a PTY.
func (t *NativeSSH) Open() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	methods, err := t.authMethods()
	if err != nil {
		return err
	}

	cfg := &ssh.ClientConfig{
		User:            t.args.User,
		Auth:            methods,
		HostKeyCallback: t.hostKeyCallback(),
		Timeout:         t.args.TimeoutSocket,
	}

	addr := net.JoinHostPort(t.args.Host, strconv.Itoa(t.args.Port))

	client, err := ssh.Dial("tcp", addr, cfg)
	if err != nil {
		return errs.Wrap("transport: nativessh: dial", err)
	}

	session, err := client.NewSession()
	if err != nil {
		_ = client.Close()
		return errs.Wrap("transport: nativessh: new session", err)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}

	if err := session.RequestPty("xterm", t.args.TermHeight, t.args.TermWidth, modes); err != nil {
		_ = session.Close()
		_ = client.Close()
		return errs.Wrap("transport: nativessh: request pty", err)
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		_ = session.Close()
		_ = client.Close()
		return errs.Wrap("transport: nativessh: stdin pipe", err)
	}

	stdout, err := session.StdoutPipe()
	if err != nil {
		_ = session.Close()
		_ = client.Close()
		return errs.Wrap("transport: nativessh: stdout pipe", err)
	}

	if err := session.Shell(); err != nil {
		_ = session.Close()
		_ = client.Close()
		return errs.Wrap("transport: nativessh: starting shell", err)
	}

	t.client = client
	t.session = session
	t.stdin = stdin
	t.stdout = stdout
	t.alive = true
	t.incoming = make(chan []byte, 64)
	t.readErr = make(chan error, 1)
	t.stop = make(chan struct{})

	go t.readLoop()

	return nil
}

func (t *NativeSSH) readLoop() {
	buf := make([]byte, t.args.ReadSize)

	for {
		n, err := t.stdout.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])

			select {
			case t.incoming <- chunk:
			case <-t.stop:
				return
			}
		}

		if err != nil {
			select {
			case t.readErr <- err:
			default:
			}
			return
		}
	}
}

// Close tears down the session and the underlying SSH connection.
func (t *NativeSSH) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.alive = false

	if t.stop != nil {
		close(t.stop)
	}

	if t.session != nil {
		_ = t.session.Close()
	}
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}

// Alive reports whether the SSH session is still believed to be up.
func (t *NativeSSH) Alive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.alive
}

// Read returns whatever bytes the background reader has buffered, as
// ReadN(Args.ReadSize), without blocking.
func (t *NativeSSH) Read() ([]byte, error) {
	return t.ReadN(t.args.ReadSize)
}

// ReadN returns buffered chunks without blocking, stopping once at least
// n bytes are gathered. Chunks are not split, so the result can exceed n.
func (t *NativeSSH) ReadN(n int) ([]byte, error) {
	t.mu.Lock()
	incoming := t.incoming
	readErrCh := t.readErr
	t.mu.Unlock()

	if incoming == nil {
		return nil, errs.New("transport: nativessh: not open")
	}

	var out []byte

	for len(out) < n {
		select {
		case chunk := <-incoming:
			out = append(out, chunk...)
		case err := <-readErrCh:
			t.mu.Lock()
			t.alive = false
			t.mu.Unlock()
			if len(out) > 0 {
				return out, nil
			}
			return nil, errs.Wrap("transport: nativessh: read", err)
		default:
			return out, nil
		}
	}

	return out, nil
}

// Write sends b to the remote shell's stdin.
func (t *NativeSSH) Write(b []byte) error {
	t.mu.Lock()
	stdin := t.stdin
	t.mu.Unlock()

	if stdin == nil {
		return errs.New("transport: nativessh: not open")
	}

	if _, err := stdin.Write(b); err != nil {
		return errs.Wrap("transport: nativessh: write", err)
	}

	return nil
}

func (t *NativeSSH) Host() string { return t.args.Host }
func (t *NativeSSH) Port() int    { return t.args.Port }

// InChannelAuthData reports no in-band authentication: NativeSSH
// authenticates out of band during Open, so the wrapping Channel should
// be built with Args.AuthBypass set and will never call Authenticate.
func (t *NativeSSH) InChannelAuthData() InChannelAuthData {
	return InChannelAuthData{AuthType: AuthTypeSSH}
}
