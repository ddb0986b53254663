// Package toolchain invokes the external firmware build tool.
//
// The tool is an opaque command: fwbuild passes it the serial port and
// a mode selector, waits synchronously, and interprets nothing but the
// integer exit code (0 = success). No timeout is imposed — CI wrappers
// are expected to enforce their own.
package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/embedk/fwbuild/internal/ui"
)

// Mode selects how far the toolchain takes the artifact.
type Mode int

const (
	// ModeBuild compiles only.
	ModeBuild Mode = iota

	// ModeFlash compiles and flashes the device on the serial port.
	ModeFlash

	// ModeMonitor compiles, flashes, and attaches the serial monitor.
	ModeMonitor
)

// String returns the selector word passed to the build tool.
func (m Mode) String() string {
	switch m {
	case ModeFlash:
		return "flash"
	case ModeMonitor:
		return "monitor"
	default:
		return "build"
	}
}

// Invoker runs one build attempt. Implementations block until the tool
// exits; a nil return means exit code 0.
type Invoker interface {
	Invoke(ctx context.Context, port string, mode Mode) error
}

// DefaultCommand is the build tool invoked when neither the manifest
// nor a flag overrides it.
var DefaultCommand = []string{"./tools/fwtool.sh"}

// Exec is the Invoker that runs a real command. The serial port and the
// mode selector are appended to Command as the final two arguments.
type Exec struct {
	// Command is the tool argv. Must be non-empty.
	Command []string

	// Dir is the working directory for the tool (the repository root).
	Dir string

	// Out receives status lines and, in verbose mode, path reporting.
	Out *ui.Output

	// Progress enables the cosmetic spinner while the tool runs.
	Progress bool
}

// Invoke runs the tool and waits for it. Output is captured and
// replayed only on failure so the spinner owns the terminal during a
// successful run; a non-zero exit comes back as an error naming the
// exit code.
//
// The spinner is a pure side-channel: it is always terminated (not
// merely abandoned) before Invoke returns, whatever the build outcome.
func (e *Exec) Invoke(ctx context.Context, port string, mode Mode) error {
	if len(e.Command) == 0 {
		return fmt.Errorf("no build command configured")
	}

	args := append(append([]string{}, e.Command[1:]...), port, mode.String())
	e.Out.Infof("invoking %s %s", e.Command[0], strings.Join(args, " "))

	// #nosec G204 — the command comes from the manifest or flags, both
	// under the invoking user's control
	cmd := exec.CommandContext(ctx, e.Command[0], args...)
	cmd.Dir = e.Dir

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	stop := func() {}
	if e.Progress {
		stop = startSpinner(e.Out, fmt.Sprintf("%s (%s)", mode, port))
	}
	err := cmd.Run()
	stop()

	if err != nil {
		if out := strings.TrimSpace(output.String()); out != "" {
			e.Out.Errorf("build tool output:\n%s", out)
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("build tool exited with code %d", exitErr.ExitCode())
		}
		return fmt.Errorf("running build tool: %w", err)
	}
	return nil
}

// spinnerFrames are the glyphs cycled by the progress indicator.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// startSpinner paints a spinner line through out until the returned
// stop function is called. Stop blocks until the goroutine has exited
// and the line is cleared, so callers never race it for the terminal.
func startSpinner(out *ui.Output, label string) (stop func()) {
	quit := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()

		frame := 0
		for {
			select {
			case <-quit:
				out.ClearLine()
				return
			case <-ticker.C:
				out.Transient("%s %s", color.CyanString(spinnerFrames[frame]), label)
				frame = (frame + 1) % len(spinnerFrames)
			}
		}
	}()

	return func() {
		close(quit)
		<-done
	}
}
