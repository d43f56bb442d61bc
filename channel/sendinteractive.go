package channel

import (
	"context"
	"regexp"

	"github.com/netdrv/netdrv/errs"
)

// Event is one step of an interactive exchange: send ChannelInput, then
// wait for the device's response to match Expect, compiled as a regex,
// before moving on to the next event. An empty Expect falls back to the
// channel's configured prompt pattern. HideInput suppresses the
// echo-confirmation wait for input the device won't echo back, such as a
// password.
type Event struct {
	ChannelInput string
	Expect       string
	HideInput    bool
}

// Events is an ordered list of interactive Events.
type Events []Event

// SendInteractive drives a scripted interactive exchange such as a "copy
// running-config startup-config" confirmation or a password sub-prompt.
// For each event, SendInteractive writes ChannelInput, confirms it was
// echoed back (unless HideInput or ChannelInput is empty), writes a
// return, then waits for Expect -- or, if Expect is empty, the channel's
// prompt pattern -- to match the device's output.
//
// If an event's pattern already matches output gathered while waiting on
// an earlier event, SendInteractive short-circuits the remaining wait for
// that earlier event and moves on immediately -- except for the final
// event, whose pattern is always waited for in full, since there is
// nothing after it to short-circuit into.
func (c *Channel) SendInteractive(ctx context.Context, events Events, opts OperationOptions) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.timeout(c))
	defer cancel()

	var result []byte

	for idx, ev := range events {
		pattern, err := eventPattern(ev.Expect, opts.promptPattern(c))
		if err != nil {
			return result, errs.Wrapf("channel: send interactive: compiling event %d response", err, idx)
		}

		if err := c.write([]byte(ev.ChannelInput)); err != nil {
			return result, errs.Wrap("channel: send interactive", err)
		}

		if ev.ChannelInput != "" && !ev.HideInput {
			buf, err := c.ReadUntilExplicit(ctx, []byte(ev.ChannelInput))
			if err != nil {
				return result, errs.Wrap("channel: send interactive: confirming echo", err)
			}
			result = append(result, buf...)
		}

		if err := c.write([]byte(c.args.ReturnChar)); err != nil {
			return result, errs.Wrap("channel: send interactive", err)
		}

		var nextPattern *regexp.Regexp
		if idx < len(events)-1 {
			nextPattern, err = eventPattern(events[idx+1].Expect, opts.promptPattern(c))
			if err != nil {
				return result, errs.Wrapf("channel: send interactive: compiling event %d response", err, idx+1)
			}
		}

		buf, err := c.readUntilEventExpect(ctx, pattern, nextPattern)
		if err != nil {
			return result, errs.Wrap("channel: send interactive", err)
		}

		result = append(result, buf...)
	}

	return result, nil
}

// eventPattern compiles expect as a regex, falling back to fallback when
// expect is empty.
func eventPattern(expect string, fallback *regexp.Regexp) (*regexp.Regexp, error) {
	if expect == "" {
		return fallback, nil
	}

	p, err := regexp.Compile(expect)
	if err != nil {
		return nil, errs.Wrap("channel: compiling event response", err)
	}

	return p, nil
}

// readUntilEventExpect waits until pattern matches the accumulated
// buffer. When nextPattern is non-nil -- i.e. this is not the last event
// -- it also returns early if nextPattern matches first, since that means
// the device has already moved past this event's prompt by the time
// SendInteractive got around to checking.
func (c *Channel) readUntilEventExpect(ctx context.Context, pattern, nextPattern *regexp.Regexp) ([]byte, error) {
	return c.readUntilChunked(ctx, c.trimReadChunk, func(buf []byte) bool {
		window := searchWindow(buf, c.args.PromptSearchDepth)
		if pattern != nil && pattern.Match(window) {
			return true
		}
		if nextPattern != nil && nextPattern.Match(window) {
			return true
		}
		return false
	})
}

// interactivePromptPatterns returns base followed by extra, for watching
// several interactive prompts at once alongside the channel's normal
// prompt pattern. It is unexported and nothing in netdrv calls it.
func interactivePromptPatterns(base *regexp.Regexp, extra ...*regexp.Regexp) []*regexp.Regexp {
	return append([]*regexp.Regexp{base}, extra...)
}
