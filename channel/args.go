package channel

import (
	"regexp"
	"time"
)

// Args configures a Channel. NewArgs returns Args already populated with
// netdrv's defaults; New also fills any zero-value pattern, ReturnChar,
// PromptSearchDepth, ReadDelay or TimeoutOps field with its default.
// StripPrompt is a plain bool and is left as given.
type Args struct {
	// PromptPattern matches the device's interactive prompt at end of
	// output. Defaults to DefaultPromptPattern.
	PromptPattern *regexp.Regexp

	// UsernamePattern, PasswordPattern and PassphrasePattern match the
	// corresponding in-channel authentication prompts.
	UsernamePattern   *regexp.Regexp
	PasswordPattern   *regexp.Regexp
	PassphrasePattern *regexp.Regexp

	// ReturnChar is appended to input sent with a trailing return.
	ReturnChar string

	// PromptSearchDepth bounds how many trailing bytes of the queued read
	// buffer are searched when looking for a prompt match.
	PromptSearchDepth int

	// ReadDelay is the cooperative sleep between read-loop poll cycles.
	ReadDelay time.Duration

	// TimeoutOps is the default deadline applied to each channel operation
	// (Authenticate, GetPrompt, SendInput, SendInteractive). A deadline
	// already on the caller's context still applies when it is earlier.
	TimeoutOps time.Duration

	// StripPrompt controls whether send_input strips the trailing prompt
	// line from its recorded result by default.
	StripPrompt bool

	// AuthBypass skips in-channel authentication entirely -- set this when
	// the Transport already authenticated out of band (e.g. NativeSSH).
	AuthBypass bool

	// Username, Password and PrivateKeyPassphrase answer in-channel auth
	// prompts when AuthBypass is false.
	Username             string
	Password             string
	PrivateKeyPassphrase string
}

// NewArgs returns Args populated with netdrv's defaults.
func NewArgs() *Args {
	return &Args{
		PromptPattern:     DefaultPromptPattern(),
		UsernamePattern:   DefaultUsernamePattern(),
		PasswordPattern:   DefaultPasswordPattern(),
		PassphrasePattern: DefaultPassphrasePattern(),
		ReturnChar:        DefaultReturnChar,
		PromptSearchDepth: DefaultPromptSearchDepth,
		ReadDelay:         DefaultReadDelay,
		TimeoutOps:        DefaultTimeoutOps,
		StripPrompt:       DefaultStripPrompt,
	}
}

func (a *Args) fillDefaults() {
	if a.PromptPattern == nil {
		a.PromptPattern = DefaultPromptPattern()
	}
	if a.UsernamePattern == nil {
		a.UsernamePattern = DefaultUsernamePattern()
	}
	if a.PasswordPattern == nil {
		a.PasswordPattern = DefaultPasswordPattern()
	}
	if a.PassphrasePattern == nil {
		a.PassphrasePattern = DefaultPassphrasePattern()
	}
	if a.ReturnChar == "" {
		a.ReturnChar = DefaultReturnChar
	}
	if a.PromptSearchDepth == 0 {
		a.PromptSearchDepth = DefaultPromptSearchDepth
	}
	if a.ReadDelay == 0 {
		a.ReadDelay = DefaultReadDelay
	}
	if a.TimeoutOps == 0 {
		a.TimeoutOps = DefaultTimeoutOps
	}
}
