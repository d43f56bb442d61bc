package channel

import (
	"regexp"
	"sync"
)

var (
	defaultPromptRE   *regexp.Regexp
	defaultPromptOnce sync.Once

	defaultUsernameRE   *regexp.Regexp
	defaultUsernameOnce sync.Once

	defaultPasswordRE   *regexp.Regexp
	defaultPasswordOnce sync.Once

	defaultPassphraseRE   *regexp.Regexp
	defaultPassphraseOnce sync.Once

	ansiRE   *regexp.Regexp
	ansiOnce sync.Once
)

// DefaultPromptPattern returns the compiled default end-of-output prompt
// pattern: a short hostname-ish token ending in #, > or $ anchored at line
// end, case-insensitive and multiline.
func DefaultPromptPattern() *regexp.Regexp {
	defaultPromptOnce.Do(func() {
		defaultPromptRE = regexp.MustCompile(`(?im)^[a-z\d.\-@()/:]{1,48}[#>$]\s*$`)
	})
	return defaultPromptRE
}

// DefaultUsernamePattern returns the compiled default username prompt
// pattern used during in-channel authentication.
func DefaultUsernamePattern() *regexp.Regexp {
	defaultUsernameOnce.Do(func() {
		defaultUsernameRE = regexp.MustCompile(`(?im)^(.*username:)|(.*login:)\s?$`)
	})
	return defaultUsernameRE
}

// DefaultPasswordPattern returns the compiled default password prompt
// pattern used during in-channel authentication.
func DefaultPasswordPattern() *regexp.Regexp {
	defaultPasswordOnce.Do(func() {
		defaultPasswordRE = regexp.MustCompile(`(?im)(.*@.*)?password:\s?$`)
	})
	return defaultPasswordRE
}

// DefaultPassphrasePattern returns the compiled default SSH private key
// passphrase prompt pattern used during in-channel SSH authentication.
func DefaultPassphrasePattern() *regexp.Regexp {
	defaultPassphraseOnce.Do(func() {
		defaultPassphraseRE = regexp.MustCompile(`(?i)enter passphrase for key`)
	})
	return defaultPassphraseRE
}

// ansiPattern returns the compiled ANSI escape sequence pattern used to
// strip CSI/OSC sequences from raw transport bytes before enqueueing.
func ansiPattern() *regexp.Regexp {
	ansiOnce.Do(func() {
		ansiRE = regexp.MustCompile(
			"[\x1b][\\[\\]()#;?]*(?:(?:(?:[a-zA-Z\\d]*(?:;[a-zA-Z\\d]*)*)?\x07)|(?:(?:\\d{1,4}(?:;\\d{0,4})*)?[\\dA-PRZcf-ntqry=><~]))",
		)
	})
	return ansiRE
}

// stripANSI removes ANSI escape sequences from b.
func stripANSI(b []byte) []byte {
	return ansiPattern().ReplaceAll(b, nil)
}
