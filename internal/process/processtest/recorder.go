// Package processtest provides a recording process.Runner for tests.
package processtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/oshokin/client-release/internal/domain/build"
	"github.com/oshokin/client-release/internal/process"
)

// Recorder records every command and optionally fails or acts on some of them.
type Recorder struct {
	mu       sync.Mutex
	commands []process.Command

	// Fail makes commands with this name exit with a non-zero code.
	Fail string
	// OnRun is called for every command before it is recorded as successful.
	OnRun func(cmd process.Command) error
}

// Run implements process.Runner.
func (r *Recorder) Run(_ context.Context, cmd process.Command) error {
	r.mu.Lock()
	r.commands = append(r.commands, cmd)
	r.mu.Unlock()

	if r.Fail != "" && cmd.Name == r.Fail {
		return fmt.Errorf("%w: %s exited with code 1", build.ErrProcess, cmd.Name)
	}

	if r.OnRun != nil {
		return r.OnRun(cmd)
	}

	return nil
}

// Commands returns a copy of the recorded commands.
func (r *Recorder) Commands() []process.Command {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]process.Command(nil), r.commands...)
}
