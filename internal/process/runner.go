package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/oshokin/client-release/internal/domain/build"
	"github.com/oshokin/client-release/internal/logger"
)

// Command is a single external tool invocation.
type Command struct {
	// Name is the executable name or path.
	Name string
	// Args are passed verbatim, one element per argument.
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is appended to the inherited environment.
	Env []string
	// Secrets are masked wherever they appear in String.
	Secrets []string
}

// Redacted replaces secrets in logged command lines.
const Redacted = "***"

// String renders the command for logs with every secret masked.
func (c Command) String() string {
	line := strings.Join(append([]string{c.Name}, c.Args...), " ")

	for _, secret := range c.Secrets {
		if secret != "" {
			line = strings.ReplaceAll(line, secret, Redacted)
		}
	}

	return line
}

// Runner executes commands until they exit.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return new(ExecRunner)
}

// Run starts cmd, streams its output into the logger and waits for it.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	ctx = logger.WithKV(ctx, "tool", cmd.Name)

	execCmd := exec.CommandContext(ctx, cmd.Name, cmd.Args...) //nolint:gosec // Tools come from configuration.
	execCmd.Dir = cmd.Dir

	if len(cmd.Env) > 0 {
		execCmd.Env = append(execCmd.Environ(), cmd.Env...)
	}

	stdout, err := execCmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %s: %w", build.ErrProcess, cmd.Name, err)
	}

	stderr, err := execCmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("%w: %s: %w", build.ErrProcess, cmd.Name, err)
	}

	logger.DebugKV(ctx, "Running external tool", "command", cmd.String(), "dir", cmd.Dir)

	if err = execCmd.Start(); err != nil {
		return fmt.Errorf("%w: start %s: %w", build.ErrProcess, cmd.Name, err)
	}

	var wg sync.WaitGroup

	wg.Add(2) //nolint:mnd // stdout and stderr.

	go func() {
		defer wg.Done()
		streamLines(ctx, stdout, "stdout")
	}()

	go func() {
		defer wg.Done()
		streamLines(ctx, stderr, "stderr")
	}()

	// Pipes must be drained before Wait closes them.
	wg.Wait()

	if err = execCmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: %s exited with code %d", build.ErrProcess, cmd.Name, exitErr.ExitCode())
		}

		return fmt.Errorf("%w: %s: %w", build.ErrProcess, cmd.Name, err)
	}

	return nil
}

func streamLines(ctx context.Context, r io.Reader, stream string) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) //nolint:mnd // Bundlers print long lines.

	for scanner.Scan() {
		logger.DebugKV(ctx, scanner.Text(), "stream", stream)
	}
}
