// Package response holds the result types returned by driver operations:
// Response for a single command and MultiResponse for a batch.
package response

import (
	"fmt"
	"strings"
	"time"
)

// Response is the result of sending a single command to a device.
type Response struct {
	Host      string
	Port      int
	Input     string
	Result    string
	RawResult string

	StartTime time.Time
	EndTime   time.Time

	Failed bool
	Err    error
}

// New returns a Response recording that input is about to be sent to
// host:port. Failed starts true: a Response is presumed failed until
// CheckFailed finds none of the configured failure substrings in the
// recorded result.
func New(host string, port int, input string) *Response {
	return &Response{
		Host:      host,
		Port:      port,
		Input:     input,
		StartTime: time.Now(),
		Failed:    true,
	}
}

// Record finalizes r with the raw and processed device output. It sets
// EndTime to now.
func (r *Response) Record(raw, result []byte) {
	r.RawResult = string(raw)
	r.Result = string(result)
	r.EndTime = time.Now()
}

// RecordErr finalizes r as a failure.
func (r *Response) RecordErr(err error) {
	r.Err = err
	r.Failed = true
	r.EndTime = time.Now()
}

// CheckFailed clears r.Failed unless one of failedWhenContains appears as a
// substring of the recorded result.
func (r *Response) CheckFailed(failedWhenContains []string) {
	for _, s := range failedWhenContains {
		if s == "" {
			continue
		}
		if strings.Contains(r.Result, s) {
			r.Failed = true
			return
		}
	}

	r.Failed = false
}

// ElapsedTime reports how long the operation took.
func (r *Response) ElapsedTime() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

func (r *Response) String() string {
	return fmt.Sprintf("Response(host=%s, port=%d, input=%q, failed=%t, elapsed=%s)",
		r.Host, r.Port, r.Input, r.Failed, r.ElapsedTime())
}

// MultiResponse is the result of sending several commands in sequence,
// such as Network driver SendConfigs.
type MultiResponse struct {
	Host      string
	Port      int
	Responses []*Response

	StartTime time.Time
	EndTime   time.Time
}

// NewMulti returns an empty MultiResponse for host:port.
func NewMulti(host string, port int) *MultiResponse {
	return &MultiResponse{
		Host:      host,
		Port:      port,
		StartTime: time.Now(),
	}
}

// RecordResponse appends r to the batch.
func (m *MultiResponse) RecordResponse(r *Response) {
	m.Responses = append(m.Responses, r)
}

// Done marks the batch finished.
func (m *MultiResponse) Done() {
	m.EndTime = time.Now()
}

// Failed reports whether any response in the batch failed.
func (m *MultiResponse) Failed() bool {
	for _, r := range m.Responses {
		if r.Failed {
			return true
		}
	}
	return false
}

// ElapsedTime reports how long the whole batch took.
func (m *MultiResponse) ElapsedTime() time.Duration {
	return m.EndTime.Sub(m.StartTime)
}

// JoinResults concatenates every response's Result, separated by a blank
// line, in send order.
func (m *MultiResponse) JoinResults() string {
	parts := make([]string, len(m.Responses))
	for i, r := range m.Responses {
		parts[i] = r.Result
	}
	return strings.Join(parts, "\n\n")
}
