package channel

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/netdrv/netdrv/errs"
	"github.com/netdrv/netdrv/logging"
	"github.com/netdrv/netdrv/transport"
)

// Channel is the lowest-level collaborator in netdrv: it owns a Transport,
// runs a background read loop that drains the transport into an internal
// queue, and exposes the read-until and send primitives that drivers build
// on. A Channel has no notion of command semantics or privilege levels --
// that belongs to the driver packages.
type Channel struct {
	args      *Args
	transport transport.Transport

	sessionID string

	queue *queue

	writeMu sync.Mutex

	done chan struct{}
	errs chan error

	closeOnce sync.Once
}

// New wraps t in a Channel configured by args. A nil args uses netdrv's
// defaults. Each Channel gets a random session ID, attached to every log
// line it emits, so one device's log output can be told apart from
// another's when several channels are open at once.
func New(t transport.Transport, args *Args) *Channel {
	if args == nil {
		args = NewArgs()
	}
	args.fillDefaults()

	return &Channel{
		args:      args,
		transport: t,
		sessionID: uuid.New().String(),
		queue:     newQueue(),
		done:      make(chan struct{}),
		errs:      make(chan error, 1),
	}
}

// Open opens the underlying transport and starts the background read loop.
// It does not perform in-channel authentication; callers that need that
// should call Authenticate afterward.
func (c *Channel) Open() error {
	if err := c.transport.Open(); err != nil {
		return errs.Wrap("channel: opening transport", err)
	}

	c.log().Debug("channel opened", "host", c.transport.Host(), "port", c.transport.Port())

	go c.readLoop()

	return nil
}

// Close stops the read loop and closes the underlying transport. Close is
// idempotent.
func (c *Channel) Close() error {
	var closeErr error

	c.closeOnce.Do(func() {
		c.log().Debug("channel closing")
		close(c.done)
		closeErr = c.transport.Close()
	})

	return closeErr
}

// write sends b to the transport, guarded against concurrent writers.
func (c *Channel) write(b []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.transport.Write(b); err != nil {
		return errs.Wrap("channel: write", err)
	}

	return nil
}

// writeAndReturn writes b followed by the configured return character.
func (c *Channel) writeAndReturn(b []byte) error {
	return c.write(append(append([]byte(nil), b...), []byte(c.args.ReturnChar)...))
}

// readLoop runs for the lifetime of the Channel, pulling bytes off the
// transport and pushing them onto the internal queue. A transport read
// failure is reported on errs, but the loop keeps running -- it only
// stops once Close is called -- since a momentary read error shouldn't
// permanently kill the channel's ability to notice the device recover.
func (c *Channel) readLoop() {
	for {
		select {
		case <-c.done:
			return
		default:
		}

		b, err := c.transport.Read()
		if err != nil {
			c.log().Debug("read loop encountered an error, continuing after read delay", "err", err)
			select {
			case c.errs <- errs.Wrap("channel: read loop", err):
			default:
			}
			time.Sleep(c.args.ReadDelay)
			continue
		}

		if len(b) > 0 {
			c.queue.enqueue(stripANSI(b))
		} else {
			time.Sleep(c.args.ReadDelay)
		}
	}
}

// readErr returns a queued read-loop failure, if any, without blocking.
func (c *Channel) readErr() error {
	select {
	case err := <-c.errs:
		return err
	default:
		return nil
	}
}

// drainQueue pulls every chunk currently queued and concatenates them.
func (c *Channel) drainQueue() []byte {
	var out []byte
	for {
		b := c.queue.dequeue()
		if b == nil {
			return out
		}
		out = append(out, b...)
	}
}

// requeue pushes unconsumed residue back to the front of the queue so the
// next read sees it first.
func (c *Channel) requeue(b []byte) {
	if len(b) == 0 {
		return
	}
	c.queue.requeue(b)
}

// Transport returns the underlying transport, mainly so builders can
// report which concrete implementation they wired up.
func (c *Channel) Transport() transport.Transport {
	return c.transport
}

func (c *Channel) checkAlive() error {
	if !c.transport.Alive() {
		return errs.New("channel: transport is no longer alive")
	}
	return nil
}

func (c *Channel) log() *slog.Logger {
	return logging.Log().With("session_id", c.sessionID)
}
