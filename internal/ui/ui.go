// Package ui handles terminal interaction for the fwbuild CLI: status
// output with color and the yes/no and free-text prompts the build flow
// gates on.
//
// Prompting sits behind the Prompter interface so automated runs
// (--auto, --yes, CI) and tests can substitute an implementation that
// answers immediately with defaults or a scripted sequence.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Output writes leveled, colored status lines. Verbosef lines appear
// only in verbose mode; all other levels are suppressed in quiet mode
// except errors and warnings, which always print.
type Output struct {
	w       io.Writer
	verbose bool
	quiet   bool
}

// NewOutput creates an Output writing to w with the given verbosity.
// Verbose wins over quiet when both are set.
func NewOutput(w io.Writer, verbose, quiet bool) *Output {
	return &Output{w: w, verbose: verbose, quiet: quiet && !verbose}
}

// NewStderrOutput creates an Output writing to standard error.
func NewStderrOutput(verbose, quiet bool) *Output {
	return NewOutput(os.Stderr, verbose, quiet)
}

var (
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	faintColor   = color.New(color.Faint)
)

// Infof prints an informational status line.
func (o *Output) Infof(format string, args ...any) {
	if o.quiet {
		return
	}
	infoColor.Fprintf(o.w, format+"\n", args...)
}

// Successf prints a success line.
func (o *Output) Successf(format string, args ...any) {
	if o.quiet {
		return
	}
	successColor.Fprintf(o.w, format+"\n", args...)
}

// Warnf prints a warning line. Warnings never change the exit code and
// are never suppressed.
func (o *Output) Warnf(format string, args ...any) {
	warnColor.Fprintf(o.w, "warning: "+format+"\n", args...)
}

// Errorf prints an error line. Errors are never suppressed.
func (o *Output) Errorf(format string, args ...any) {
	errorColor.Fprintf(o.w, "error: "+format+"\n", args...)
}

// Transient paints an in-place progress line: carriage return, erase,
// no trailing newline. Used by the build spinner.
func (o *Output) Transient(format string, args ...any) {
	if o.quiet {
		return
	}
	fmt.Fprintf(o.w, "\r\033[K"+format, args...)
}

// ClearLine erases the current transient line.
func (o *Output) ClearLine() {
	if o.quiet {
		return
	}
	fmt.Fprint(o.w, "\r\033[K")
}

// Verbosef prints a trace line, only in verbose mode.
func (o *Output) Verbosef(format string, args ...any) {
	if !o.verbose {
		return
	}
	faintColor.Fprintf(o.w, format+"\n", args...)
}

// Prompter asks the user for input at the flow's confirmation gates.
type Prompter interface {
	// Confirm asks a yes/no question and returns the answer. An empty
	// response takes def.
	Confirm(question string, def bool) bool

	// Input asks for a free-text value. An empty response takes def.
	Input(prompt, def string) string
}

// Terminal is the interactive Prompter reading from In (stdin) and
// writing the rendered prompt to Out (stdout).
type Terminal struct {
	In  io.Reader
	Out io.Writer

	// reader buffers In across prompts so consecutive questions do not
	// lose input that was read ahead.
	reader *bufio.Reader
}

// NewTerminal creates a Terminal prompter on stdin/stdout.
func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stdout}
}

func (t *Terminal) readLine() (string, error) {
	if t.reader == nil {
		t.reader = bufio.NewReader(t.In)
	}
	return t.reader.ReadString('\n')
}

// Confirm asks question with a [Y/n] or [y/N] suffix reflecting the
// default. Read errors (EOF on a closed stdin) take the default rather
// than hanging or failing the flow.
func (t *Terminal) Confirm(question string, def bool) bool {
	suffix := "[y/N]"
	if def {
		suffix = "[Y/n]"
	}
	fmt.Fprintf(t.Out, "%s %s ", color.New(color.Bold).Sprint(question), suffix)

	line, err := t.readLine()
	if err != nil && line == "" {
		return def
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	if answer == "" {
		return def
	}
	return strings.HasPrefix(answer, "y")
}

// Input asks for a value, showing the default when one exists.
func (t *Terminal) Input(prompt, def string) string {
	if def != "" {
		fmt.Fprintf(t.Out, "%s [%s]: ", color.New(color.Bold).Sprint(prompt), def)
	} else {
		fmt.Fprintf(t.Out, "%s: ", color.New(color.Bold).Sprint(prompt))
	}

	line, err := t.readLine()
	if err != nil && line == "" {
		return def
	}
	answer := strings.TrimSpace(line)
	if answer == "" {
		return def
	}
	return answer
}

// Auto is the non-interactive Prompter: every question is answered
// immediately with its default. Used by --auto, --yes and CI runs.
type Auto struct{}

// Confirm returns the default answer without prompting.
func (Auto) Confirm(question string, def bool) bool { return def }

// Input returns the default value without prompting.
func (Auto) Input(prompt, def string) string { return def }
