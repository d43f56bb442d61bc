package channel

import (
	"context"
	"regexp"

	"github.com/netdrv/netdrv/errs"
	"github.com/netdrv/netdrv/transport"
)

// authKind identifies which prompt was matched during in-channel
// authentication.
type authKind int

const (
	authKindPrompt authKind = iota
	authKindUsername
	authKindPassword
	authKindPassphrase
)

// Authenticate runs netdrv's in-channel authentication state machine: it
// watches for the username, password, passphrase, and final prompt
// patterns, answering whichever prompt appears until the device prompt is
// reached. Each prompt kind may recur only a bounded number of times
// (UserSeenMax / PasswordSeenMax / PassphraseSeenMax) before Authenticate
// gives up -- this prevents an infinite loop against a device rejecting
// credentials. Once the device prompt is seen, the bytes read in that
// final pass are requeued to the front of the queue so the next read
// sees them first. The whole exchange is bounded by Args.TimeoutOps.
//
// Authenticate is a no-op if the channel was built with Args.AuthBypass
// set, which is the case for transports (such as NativeSSH) that
// authenticate out of band.
func (c *Channel) Authenticate(ctx context.Context, data transport.InChannelAuthData) error {
	if c.args.AuthBypass {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.args.TimeoutOps)
	defer cancel()

	patterns := []*regexp.Regexp{
		c.args.PromptPattern,
		c.args.UsernamePattern,
		c.args.PasswordPattern,
		c.args.PassphrasePattern,
	}

	seenUser := 0
	seenPassword := 0
	seenPassphrase := 0

	for {
		buf, err := c.ReadUntilAnyPrompt(ctx, patterns)
		if err != nil {
			return errs.Wrap("channel: authenticate", err)
		}

		window := searchWindow(buf, c.args.PromptSearchDepth)

		kind, matched := classifyAuthPrompt(window, c.args)
		if !matched {
			return errs.New("channel: authenticate: no recognized prompt in output")
		}

		switch kind {
		case authKindPrompt:
			c.requeue(buf)
			return nil

		case authKindUsername:
			seenUser++
			if seenUser > UserSeenMax {
				return errs.New("channel: authenticate: username prompt seen too many times")
			}
			if data.AuthType != transport.AuthTypeTelnet {
				return errs.New("channel: authenticate: unexpected username prompt for non-telnet auth")
			}
			if err := c.writeAndReturn([]byte(data.User)); err != nil {
				return errs.Wrap("channel: authenticate: sending username", err)
			}

		case authKindPassword:
			seenPassword++
			if seenPassword > PasswordSeenMax {
				return errs.New("channel: authenticate: password prompt seen too many times")
			}
			if err := c.writeAndReturn([]byte(data.Password)); err != nil {
				return errs.Wrap("channel: authenticate: sending password", err)
			}

		case authKindPassphrase:
			seenPassphrase++
			if seenPassphrase > PassphraseSeenMax {
				return errs.New("channel: authenticate: passphrase prompt seen too many times")
			}
			if err := c.writeAndReturn([]byte(data.PrivateKeyPassphrase)); err != nil {
				return errs.Wrap("channel: authenticate: sending passphrase", err)
			}
		}
	}
}

// classifyAuthPrompt reports which prompt kind, if any, matches within
// window. The final device prompt takes priority over auth prompts so a
// device that echoes a stale "password:" banner alongside its prompt
// doesn't get misclassified as still awaiting credentials.
func classifyAuthPrompt(window []byte, args *Args) (authKind, bool) {
	if args.PromptPattern.Match(window) {
		return authKindPrompt, true
	}
	if args.UsernamePattern.Match(window) {
		return authKindUsername, true
	}
	if args.PasswordPattern.Match(window) {
		return authKindPassword, true
	}
	if args.PassphrasePattern.Match(window) {
		return authKindPassphrase, true
	}
	return 0, false
}
