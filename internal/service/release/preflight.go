package release

import (
	"context"
	"os"

	ps "github.com/mitchellh/go-ps"

	"github.com/oshokin/client-release/internal/logger"
)

// processLister returns running processes; swapped in tests.
type processLister func() ([]ps.Process, error)

// runningProcessCheck warns when a process named like one of executables is
// running. A running client may hold files of a previous build open, which
// later shows up as rename or trash failures. The check never fails the release.
func runningProcessCheck(list processLister, executables ...string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		processes, err := list()
		if err != nil {
			logger.WarnKV(ctx, "Cannot list running processes, skipping the client check", "error", err)

			return nil
		}

		self := os.Getpid()

		for _, process := range processes {
			if process.Pid() == self {
				continue
			}

			for _, name := range executables {
				if process.Executable() == name {
					logger.WarnKV(ctx, "Client is running, its files may be locked", "pid", process.Pid(), "executable", name)

					break
				}
			}
		}

		return nil
	}
}
