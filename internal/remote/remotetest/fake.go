// Package remotetest provides a scripted remote.Probe for tests.
package remotetest

import (
	"context"
	"sync"
	"time"

	"github.com/conn-castle/agent-deploy/internal/remote"
)

// Response is the scripted outcome for one check name.
type Response struct {
	OK     bool
	Output string
	Err    error
}

// Call records one probe invocation.
type Call struct {
	Target  remote.Target
	Name    string
	Command remote.Command
	Timeout time.Duration
}

// Probe is a remote.Probe whose answers are scripted per check name.
// Unscripted checks fail with an ExitError.
type Probe struct {
	mu        sync.Mutex
	responses map[string]Response
	calls     []Call
}

// NewProbe returns a fake probe with the given scripted responses.
func NewProbe(responses map[string]Response) *Probe {
	p := &Probe{responses: make(map[string]Response, len(responses))}
	for name, response := range responses {
		p.responses[name] = response
	}
	return p
}

// Set replaces the scripted response for name.
func (p *Probe) Set(name string, response Response) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses[name] = response
}

// Run returns the scripted response for name.
func (p *Probe) Run(_ context.Context, target remote.Target, name string, cmd remote.Command, timeout time.Duration) remote.Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, Call{Target: target, Name: name, Command: cmd, Timeout: timeout})
	response, ok := p.responses[name]
	result := remote.Result{CheckName: name, Succeeded: ok && response.OK, Output: response.Output}
	switch {
	case result.Succeeded:
	case response.Err != nil:
		result.Err = response.Err
	default:
		result.Err = &remote.ExitError{Command: cmd.String(), ExitCode: 1}
	}
	return result
}

// RunCaptured returns the scripted output for name.
func (p *Probe) RunCaptured(ctx context.Context, target remote.Target, name string, cmd remote.Command, timeout time.Duration) (string, bool) {
	result := p.Run(ctx, target, name, cmd, timeout)
	return result.Output, result.Succeeded
}

// Calls returns a copy of the recorded invocations.
func (p *Probe) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.calls...)
}

// CallCount returns how many probes ran.
func (p *Probe) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

// Count returns how many times name ran.
func (p *Probe) Count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, call := range p.calls {
		if call.Name == name {
			n++
		}
	}
	return n
}

// Reset clears recorded calls.
func (p *Probe) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
}
