package channel

import (
	"context"
	"regexp"

	"github.com/netdrv/netdrv/errs"
)

var trimBytes = []byte{'\r', '\n', ' ', '\t'}

// SendInput writes input, waits for the device to echo it back, then
// writes a return character and reads until the prompt reappears (or,
// with OperationOptions.Eager set, returns right after writing the
// return, without waiting for the prompt). The returned bytes have the echoed input line removed and,
// unless OperationOptions.StripPrompt is false, the trailing prompt line
// removed too.
func (c *Channel) SendInput(ctx context.Context, input string, opts OperationOptions) ([]byte, error) {
	return c.SendInputBytes(ctx, []byte(input), opts)
}

// SendInputBytes is SendInput taking the input as raw bytes.
func (c *Channel) SendInputBytes(ctx context.Context, input []byte, opts OperationOptions) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.timeout(c))
	defer cancel()

	if err := c.write(input); err != nil {
		return nil, errs.Wrap("channel: send input", err)
	}

	buf, err := c.ReadUntilFuzzy(ctx, input)
	if err != nil {
		return nil, errs.Wrap("channel: send input: confirming echo", err)
	}

	if err := c.write([]byte(c.args.ReturnChar)); err != nil {
		return nil, errs.Wrap("channel: send input", err)
	}

	if opts.Eager {
		return processSendResult(buf, input, nil), nil
	}

	prompt := opts.promptPattern(c)

	buf, err = c.readUntilChunked(ctx, c.trimReadChunk, func(b []byte) bool {
		return prompt.Match(searchWindow(b, c.args.PromptSearchDepth))
	})
	if err != nil {
		return nil, errs.Wrap("channel: send input: waiting for prompt", err)
	}

	var stripPattern *regexp.Regexp
	if opts.stripPrompt(c) {
		stripPattern = prompt
	}

	return processSendResult(buf, input, stripPattern), nil
}

// processSendResult trims the echoed input line from the front of buf
// and, if promptPattern is non-nil, the trailing prompt line from the
// back, then trims surrounding whitespace.
func processSendResult(buf, input []byte, promptPattern *regexp.Regexp) []byte {
	out := buf

	if idx := indexOfLineContaining(out, input); idx >= 0 {
		out = out[idx:]
	}

	if promptPattern != nil {
		if loc := promptPattern.FindIndex(out); loc != nil {
			out = out[:loc[0]]
		}
	}

	return trimCutset(out, trimBytes)
}

// indexOfLineContaining returns the offset of the first byte following
// the line that contains needle, or -1 if needle isn't found. It searches
// contiguously first (the common case) and falls back to a fuzzy match
// so echoed input interleaved with control bytes still gets stripped.
func indexOfLineContaining(buf, needle []byte) int {
	if len(needle) == 0 {
		return -1
	}

	for i := 0; i+len(needle) <= len(buf); i++ {
		if hasPrefix(buf[i:], needle) {
			return lineEnd(buf, i+len(needle))
		}
	}

	// Fuzzy fallback: find the shortest prefix of buf that roughly
	// contains needle in order, and cut after its line.
	for i := 1; i <= len(buf); i++ {
		if roughlyContains(needle, buf[:i]) {
			return lineEnd(buf, i)
		}
	}

	return -1
}

// lineEnd returns the offset of the byte following the first newline at
// or after from, or len(buf) if there is none.
func lineEnd(buf []byte, from int) int {
	for i := from; i < len(buf); i++ {
		if buf[i] == newLineByte {
			return i + 1
		}
	}
	return len(buf)
}
