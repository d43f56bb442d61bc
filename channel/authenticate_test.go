package channel

import (
	"context"
	"testing"
	"time"

	"github.com/netdrv/netdrv/transport"
)

func TestAuthenticateTelnetHappyPath(t *testing.T) {
	ft := newFakeTransport()
	args := NewArgs()
	args.ReadDelay = time.Millisecond

	ch := New(ft, args)
	if err := ch.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = ch.Close() })

	ft.queue([]byte("Username: "))

	step := 0
	ft.onWrite = func(f *fakeTransport, b []byte) {
		step++
		switch step {
		case 1: // username sent
			f.queue([]byte("Password: "))
		case 2: // password sent
			f.queue([]byte("switch1#"))
		}
	}

	auth := transport.InChannelAuthData{
		AuthType: transport.AuthTypeTelnet,
		User:     "admin",
		Password: "hunter2",
	}

	if err := ch.Authenticate(context.Background(), auth); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
}

func TestAuthenticateBoundedFailure(t *testing.T) {
	ft := newFakeTransport()
	args := NewArgs()
	args.ReadDelay = time.Millisecond

	ch := New(ft, args)
	if err := ch.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = ch.Close() })

	ft.queue([]byte("Password: "))

	// device keeps re-prompting for a password no matter what we send.
	ft.onWrite = func(f *fakeTransport, b []byte) {
		f.queue([]byte("Password: "))
	}

	auth := transport.InChannelAuthData{
		AuthType: transport.AuthTypeSSH,
		Password: "wrong",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := ch.Authenticate(ctx, auth); err == nil {
		t.Fatal("expected bounded auth failure, got nil error")
	}
}
