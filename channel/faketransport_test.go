package channel

import (
	"sync"

	"github.com/netdrv/netdrv/transport"
)

// fakeTransport is a scripted transport.Transport used to drive Channel
// tests without a real device: each Write is handed to onWrite, which can
// queue up bytes for subsequent Reads to return (e.g. echoing the input
// back followed by a prompt).
type fakeTransport struct {
	mu      sync.Mutex
	pending [][]byte
	writes  [][]byte

	onWrite func(f *fakeTransport, b []byte)

	authData transport.InChannelAuthData

	alive bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{alive: true}
}

func (f *fakeTransport) queue(b []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, b)
}

func (f *fakeTransport) Open() error  { return nil }
func (f *fakeTransport) Close() error { f.mu.Lock(); f.alive = false; f.mu.Unlock(); return nil }
func (f *fakeTransport) Alive() bool  { f.mu.Lock(); defer f.mu.Unlock(); return f.alive }

func (f *fakeTransport) Read() ([]byte, error) {
	return f.ReadN(8192)
}

func (f *fakeTransport) ReadN(n int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.pending) == 0 {
		return nil, nil
	}

	b := f.pending[0]
	f.pending = f.pending[1:]

	if len(b) > n {
		f.pending = append([][]byte{b[n:]}, f.pending...)
		b = b[:n]
	}

	return b, nil
}

func (f *fakeTransport) Write(b []byte) error {
	f.mu.Lock()
	f.writes = append(f.writes, append([]byte(nil), b...))
	f.mu.Unlock()

	if f.onWrite != nil {
		f.onWrite(f, b)
	}

	return nil
}

func (f *fakeTransport) Host() string { return "fake" }
func (f *fakeTransport) Port() int    { return 22 }

func (f *fakeTransport) InChannelAuthData() transport.InChannelAuthData {
	return f.authData
}
