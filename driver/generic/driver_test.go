package generic

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/netdrv/netdrv/channel"
	"github.com/netdrv/netdrv/transport"
)

// fakeTransport is a minimal scripted transport.Transport for exercising
// Driver without any real I/O.
type fakeTransport struct {
	mu      sync.Mutex
	pending [][]byte

	onWrite func(b []byte)
}

func (f *fakeTransport) queue(b []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, b)
}

func (f *fakeTransport) Open() error  { return nil }
func (f *fakeTransport) Close() error { return nil }
func (f *fakeTransport) Alive() bool  { return true }

func (f *fakeTransport) Read() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.pending) == 0 {
		return nil, nil
	}
	b := f.pending[0]
	f.pending = f.pending[1:]
	return b, nil
}

func (f *fakeTransport) ReadN(n int) ([]byte, error) { return f.Read() }

func (f *fakeTransport) Write(b []byte) error {
	if f.onWrite != nil {
		f.onWrite(b)
	}
	return nil
}

func (f *fakeTransport) Host() string { return "switch1" }
func (f *fakeTransport) Port() int    { return 22 }

func (f *fakeTransport) InChannelAuthData() transport.InChannelAuthData {
	return transport.InChannelAuthData{}
}

func newTestDriver(t *testing.T, args *Args) (*Driver, *fakeTransport) {
	t.Helper()

	ft := &fakeTransport{}
	cargs := channel.NewArgs()
	cargs.ReadDelay = time.Millisecond
	cargs.AuthBypass = true

	ch := channel.New(ft, cargs)

	if args == nil {
		args = NewArgs("switch1")
	}

	return New(args, ch), ft
}

func TestOpenRunsOnOpenAfterAuthenticate(t *testing.T) {
	var onOpenCalled bool

	args := NewArgs("switch1")
	args.OnOpen = func(d *Driver) error {
		onOpenCalled = true
		return nil
	}

	d, _ := newTestDriver(t, args)

	if err := d.Open(context.Background(), transport.InChannelAuthData{}); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	if !onOpenCalled {
		t.Fatal("expected OnOpen hook to run")
	}
}

func TestCloseRunsOnCloseNotOnOpen(t *testing.T) {
	var onOpenCalled, onCloseCalled bool

	args := NewArgs("switch1")
	args.OnOpen = func(d *Driver) error {
		onOpenCalled = true
		return nil
	}
	args.OnClose = func(d *Driver) error {
		onCloseCalled = true
		return nil
	}

	d, _ := newTestDriver(t, args)

	if err := d.Open(context.Background(), transport.InChannelAuthData{}); err != nil {
		t.Fatalf("Open: %v", err)
	}
	onOpenCalled = false // reset so Close can't be satisfied by Open's own call

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if !onCloseCalled {
		t.Fatal("expected OnClose hook to run on Close")
	}
	if onOpenCalled {
		t.Fatal("Close must not invoke OnOpen")
	}
}

func TestSendCommandChecksFailedWhenContains(t *testing.T) {
	args := NewArgs("switch1")
	args.FailedWhenContains = []string{"% Invalid input"}

	d, ft := newTestDriver(t, args)
	if err := d.Open(context.Background(), transport.InChannelAuthData{}); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	ft.onWrite = func(b []byte) {
		ft.queue(b)
		ft.queue([]byte("% Invalid input detected at '^' marker.\n"))
		ft.queue([]byte("switch1#"))
	}

	resp, err := d.SendCommand(context.Background(), "show bogus")
	if err != nil {
		t.Fatalf("SendCommand: %v", err)
	}
	if !resp.Failed {
		t.Fatal("expected response to be marked failed")
	}
	if !strings.Contains(resp.Result, "Invalid input") {
		t.Fatalf("expected result to retain device output, got %q", resp.Result)
	}
}

func TestSendCommandsStopsOnFailed(t *testing.T) {
	args := NewArgs("switch1")
	args.FailedWhenContains = []string{"% Invalid input"}

	d, ft := newTestDriver(t, args)
	if err := d.Open(context.Background(), transport.InChannelAuthData{}); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	// Output only follows the return character, so count commands by
	// returns rather than by writes (SendInput writes input and return
	// separately).
	call := 0
	ft.onWrite = func(b []byte) {
		ft.queue(b)
		if string(b) != "\n" {
			return
		}
		call++
		if call == 1 {
			ft.queue([]byte("% Invalid input detected at '^' marker.\n"))
		} else {
			ft.queue([]byte("ok output\n"))
		}
		ft.queue([]byte("switch1#"))
	}

	multi, err := d.SendCommandsWithOptions(context.Background(), []string{"bogus", "show version"}, OperationOptions{StopOnFailed: true})
	if err != nil {
		t.Fatalf("SendCommandsWithOptions: %v", err)
	}

	if len(multi.Responses) != 1 {
		t.Fatalf("expected send commands to stop after first failure, got %d responses", len(multi.Responses))
	}
	if !multi.Failed() {
		t.Fatal("expected batch to be marked failed")
	}
}
