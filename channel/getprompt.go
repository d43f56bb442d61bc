package channel

import (
	"context"
	"regexp"
)

// SetPromptPattern replaces the channel's prompt pattern. The network
// driver uses this to install a combined pattern matching any of a
// device's privilege-level prompts.
func (c *Channel) SetPromptPattern(p *regexp.Regexp) {
	c.args.PromptPattern = p
}

// GetPrompt writes a bare return and reads back whatever prompt the
// device responds with: the first prompt-pattern match within the
// trailing PromptSearchDepth bytes read, trimmed of surrounding
// whitespace. It is bounded by Args.TimeoutOps. Drivers use
// this to detect the current prompt (and, for the network driver, the
// current privilege level) without sending a real command.
func (c *Channel) GetPrompt(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.args.TimeoutOps)
	defer cancel()

	if err := c.writeAndReturn(nil); err != nil {
		return nil, err
	}

	buf, err := c.ReadUntilPrompt(ctx)
	if err != nil {
		return nil, err
	}

	window := searchWindow(buf, c.args.PromptSearchDepth)
	if loc := c.args.PromptPattern.FindIndex(window); loc != nil {
		return trimCutset(window[loc[0]:loc[1]], trimBytes), nil
	}

	return trimCutset(buf, trimBytes), nil
}
