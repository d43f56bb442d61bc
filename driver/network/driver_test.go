package network

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/netdrv/netdrv/channel"
	"github.com/netdrv/netdrv/driver/generic"
	"github.com/netdrv/netdrv/transport"
)

// scriptedTransport is a minimal transport.Transport that echoes every
// write back, and, once a written line is terminated by a return
// character, looks the accumulated line up in onCommand and queues the
// matching canned response -- mirroring a real device, which only
// produces a command's output after the return key lands, not as soon as
// the command text itself is written. A bare return with no entry in
// onCommand re-prints prompt, the device's current prompt, which each
// canned response replaces.
type scriptedTransport struct {
	mu      sync.Mutex
	pending [][]byte
	line    []byte
	prompt  []byte

	onCommand map[string][]byte
}

func (s *scriptedTransport) queue(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, b)
}

func (s *scriptedTransport) Open() error  { return nil }
func (s *scriptedTransport) Close() error { return nil }
func (s *scriptedTransport) Alive() bool  { return true }

func (s *scriptedTransport) Read() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return nil, nil
	}

	b := s.pending[0]
	s.pending = s.pending[1:]

	return b, nil
}

func (s *scriptedTransport) ReadN(n int) ([]byte, error) { return s.Read() }

func (s *scriptedTransport) Write(b []byte) error {
	s.queue(b)

	s.mu.Lock()
	s.line = append(s.line, b...)
	nl := strings.IndexByte(string(s.line), '\n')
	if nl < 0 {
		s.mu.Unlock()
		return nil
	}
	cmd := string(s.line[:nl])
	s.line = s.line[nl+1:]

	resp, ok := s.onCommand[cmd]
	if ok {
		s.prompt = resp
	} else if cmd == "" && s.prompt != nil {
		resp, ok = s.prompt, true
	}
	s.mu.Unlock()

	if ok {
		s.queue(resp)
	}

	return nil
}

func (s *scriptedTransport) Host() string { return "fake" }
func (s *scriptedTransport) Port() int    { return 22 }

func (s *scriptedTransport) InChannelAuthData() transport.InChannelAuthData {
	return transport.InChannelAuthData{}
}

func testLevels(t *testing.T) []PrivilegeLevel {
	t.Helper()

	return []PrivilegeLevel{
		{
			Name:                   "exec",
			Pattern:                regexp.MustCompile(`(?m)^switch1>\s*$`),
			PreviousPrivilegeLevel: "",
			Escalate:               "enable",
			Deescalate:             "",
		},
		{
			Name:                   "privilege-exec",
			Pattern:                regexp.MustCompile(`(?m)^switch1#\s*$`),
			PreviousPrivilegeLevel: "exec",
			Escalate:               "enable",
			Deescalate:             "disable",
		},
	}
}

func newTestDriver(t *testing.T, st *scriptedTransport) *Driver {
	t.Helper()

	cargs := channel.NewArgs()
	cargs.ReadDelay = time.Millisecond
	cargs.AuthBypass = true

	ch := channel.New(st, cargs)

	gd := generic.New(generic.NewArgs("fake"), ch)

	d := New(&Args{
		PrivilegeLevels:              testLevels(t),
		DefaultDesiredPrivilegeLevel: "privilege-exec",
	}, gd)

	if err := d.Open(context.Background(), transport.InChannelAuthData{}); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	return d
}

func TestAcquirePrivilegeLevelEscalates(t *testing.T) {
	st := &scriptedTransport{
		prompt: []byte("switch1>"),
		onCommand: map[string][]byte{
			"enable": []byte("switch1#"),
		},
	}
	st.queue([]byte("switch1>"))

	d := newTestDriver(t, st)

	if err := d.AcquirePrivilegeLevel(context.Background(), "privilege-exec"); err != nil {
		t.Fatalf("AcquirePrivilegeLevel: %v", err)
	}

	if d.currentPrivilegeLevel != "privilege-exec" {
		t.Fatalf("got current privilege level %q, want privilege-exec", d.currentPrivilegeLevel)
	}
}

func TestSendCommandAcquiresDefaultPrivilegeLevel(t *testing.T) {
	st := &scriptedTransport{
		prompt: []byte("switch1>"),
		onCommand: map[string][]byte{
			"enable":       []byte("switch1#"),
			"show version": []byte("switch1#"),
		},
	}
	st.queue([]byte("switch1>"))

	d := newTestDriver(t, st)

	resp, err := d.SendCommand(context.Background(), "show version")
	if err != nil {
		t.Fatalf("SendCommand: %v", err)
	}
	if resp.Failed {
		t.Fatalf("unexpected failed response: %+v", resp)
	}
}

// TestEscalatePrivilegeLevelWithSecondaryPassword exercises the
// interactive escalation path: the device answers "enable" with a
// password prompt, and only reaches the target prompt once the
// secondary password has been sent too.
func TestEscalatePrivilegeLevelWithSecondaryPassword(t *testing.T) {
	levels := []PrivilegeLevel{
		{
			Name:                   "exec",
			Pattern:                regexp.MustCompile(`(?m)^switch1>\s*$`),
			PreviousPrivilegeLevel: "",
			Escalate:               "enable",
			Deescalate:             "",
		},
		{
			Name:                   "privilege-exec",
			Pattern:                regexp.MustCompile(`(?m)^switch1#\s*$`),
			PreviousPrivilegeLevel: "exec",
			Escalate:               "enable",
			EscalateAuth:           true,
			EscalatePrompt:         "Password:",
			Deescalate:             "disable",
		},
	}

	st := &scriptedTransport{
		prompt: []byte("switch1>"),
		onCommand: map[string][]byte{
			"enable":   []byte("Password:"),
			"cisco123": []byte("switch1#"),
		},
	}
	st.queue([]byte("switch1>"))

	cargs := channel.NewArgs()
	cargs.ReadDelay = time.Millisecond
	cargs.AuthBypass = true

	ch := channel.New(st, cargs)
	gd := generic.New(generic.NewArgs("fake"), ch)

	d := New(&Args{
		PrivilegeLevels:              levels,
		DefaultDesiredPrivilegeLevel: "privilege-exec",
		SecondaryPassword:            "cisco123",
	}, gd)

	if err := d.Open(context.Background(), transport.InChannelAuthData{}); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := d.AcquirePrivilegeLevel(ctx, "privilege-exec"); err != nil {
		t.Fatalf("AcquirePrivilegeLevel: %v", err)
	}

	if d.currentPrivilegeLevel != "privilege-exec" {
		t.Fatalf("got current privilege level %q, want privilege-exec", d.currentPrivilegeLevel)
	}
}
