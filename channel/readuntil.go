package channel

import (
	"context"
	"regexp"
	"time"

	"github.com/netdrv/netdrv/errs"
)

// readUntil accumulates bytes from the queue until match reports a hit
// against the buffer accumulated so far, ctx is done, the read loop
// reports a transport failure, or the transport dies. On success it
// returns the full buffer accumulated, including the matched tail and
// every other byte drained from the queue in the same pass; nothing is
// pushed back onto the queue.
func (c *Channel) readUntil(ctx context.Context, match func(buf []byte) bool) ([]byte, error) {
	return c.readUntilChunked(ctx, nil, match)
}

// readUntilChunked is readUntil with each newly-drained chunk passed
// through chunkFilter (if non-nil) before being appended to the
// accumulator. ReadUntilPrompt and ReadUntilAnyPrompt use this to trim
// each chunk the way process_read_buf does in the original implementation;
// ReadUntilExplicit and ReadUntilFuzzy pass no filter, since they need to
// see every byte of the echoed input to confirm it.
func (c *Channel) readUntilChunked(ctx context.Context, chunkFilter func([]byte) []byte, match func(buf []byte) bool) ([]byte, error) {
	var buf []byte

	for {
		chunk := c.drainQueue()
		if len(chunk) > 0 {
			if chunkFilter != nil {
				chunk = chunkFilter(chunk)
			}

			buf = append(buf, chunk...)

			if match(buf) {
				return buf, nil
			}
		}

		if err := c.readErr(); err != nil {
			return buf, err
		}

		if err := c.checkAlive(); err != nil {
			return buf, err
		}

		select {
		case <-ctx.Done():
			return buf, errs.Wrap("channel: read until", ctx.Err())
		case <-c.done:
			return buf, errs.New("channel: closed while reading")
		default:
		}

		time.Sleep(c.args.ReadDelay)
	}
}

// searchWindow returns the trailing n bytes of buf, or buf itself if it is
// shorter than n.
func searchWindow(buf []byte, n int) []byte {
	if n <= 0 || len(buf) <= n {
		return buf
	}
	return buf[len(buf)-n:]
}

// trimReadChunk keeps only the trailing PromptSearchDepth bytes of a
// newly-read chunk and, within that window, discards everything before
// the first linefeed -- a partial line at the front of the window is more
// likely to be a truncated fragment of real output than a prompt, and
// matching against it risks a false-positive prompt detection. Mirrors
// the original implementation's process_read_buf.
func (c *Channel) trimReadChunk(chunk []byte) []byte {
	if len(chunk) <= c.args.PromptSearchDepth {
		return chunk
	}

	window := chunk[len(chunk)-c.args.PromptSearchDepth:]

	for i, b := range window {
		if b == newLineByte {
			return window[i:]
		}
	}

	return window
}

// ReadUntilPrompt reads until the channel's configured prompt pattern
// matches within the trailing PromptSearchDepth bytes of the accumulated
// buffer.
func (c *Channel) ReadUntilPrompt(ctx context.Context) ([]byte, error) {
	return c.readUntilChunked(ctx, c.trimReadChunk, func(buf []byte) bool {
		return c.args.PromptPattern.Match(searchWindow(buf, c.args.PromptSearchDepth))
	})
}

// ReadUntilAnyPrompt reads until any of patterns matches within the
// trailing PromptSearchDepth bytes of the accumulated buffer. It is used
// by the network driver to watch for several privilege-level prompts at
// once.
func (c *Channel) ReadUntilAnyPrompt(ctx context.Context, patterns []*regexp.Regexp) ([]byte, error) {
	return c.readUntilChunked(ctx, c.trimReadChunk, func(buf []byte) bool {
		window := searchWindow(buf, c.args.PromptSearchDepth)
		for _, p := range patterns {
			if p.Match(window) {
				return true
			}
		}
		return false
	})
}

// ReadUntilExplicit reads until needle appears contiguously anywhere in
// the accumulated buffer.
func (c *Channel) ReadUntilExplicit(ctx context.Context, needle []byte) ([]byte, error) {
	return c.readUntil(ctx, func(buf []byte) bool {
		return isSub(buf, needle)
	})
}

// ReadUntilFuzzy reads until every byte of needle has appeared in the
// accumulated buffer in order, not necessarily contiguously. This
// tolerates devices that interleave pagination markers, bolding, or
// cursor-move sequences into an echoed command.
func (c *Channel) ReadUntilFuzzy(ctx context.Context, needle []byte) ([]byte, error) {
	return c.readUntil(ctx, func(buf []byte) bool {
		return roughlyContains(needle, buf)
	})
}
