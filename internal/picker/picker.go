// Package picker turns an external menu program (dmenu by default) into a
// free-text prompt and forwards what the user typed to the script engine.
package picker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

var (
	ErrSpawnFailed     = errors.New("picker could not be started")
	ErrPipeIO          = errors.New("picker pipe i/o failed")
	ErrInvalidEncoding = errors.New("picker output is not valid UTF-8")
)

type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() []error { return []error{ErrSpawnFailed, e.Err} }

type PipeError struct {
	Stage string
	Err   error
}

func (e *PipeError) Error() string {
	return fmt.Sprintf("picker %s: %v", e.Stage, e.Err)
}

func (e *PipeError) Unwrap() []error { return []error{ErrPipeIO, e.Err} }

// Launcher starts picker processes. The prompt is passed as
// "Args... PromptFlag prompt"; an empty PromptFlag drops the prompt.
type Launcher struct {
	Command    string
	Args       []string
	PromptFlag string

	log *zap.Logger
}

func NewLauncher(command string, args []string, promptFlag string, log *zap.Logger) *Launcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Launcher{
		Command:    command,
		Args:       slices.Clone(args),
		PromptFlag: promptFlag,
		log:        log.Named("picker"),
	}
}

// Launch starts the picker with piped stdin and stdout. Cancelling ctx kills
// the child.
func (l *Launcher) Launch(ctx context.Context, prompt string) (*Session, error) {
	args := slices.Clone(l.Args)
	if l.PromptFlag != "" {
		args = append(args, l.PromptFlag, prompt)
	}
	cmd := exec.CommandContext(ctx, l.Command, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &PipeError{Stage: "stdin", Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &PipeError{Stage: "stdout", Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Command: l.Command, Err: err}
	}
	l.log.Debug("picker started", zap.String("command", l.Command), zap.Int("pid", cmd.Process.Pid))
	return &Session{cmd: cmd, stdin: stdin, stdout: stdout, log: l.log}, nil
}

// Session is one running picker. It is used once and discarded.
type Session struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	log    *zap.Logger
}

// Capture primes the picker with a single newline so it offers no
// candidates, closes its input, then reads everything it prints. The exit
// status is not inspected.
func (s *Session) Capture() (string, error) {
	_, werr := io.WriteString(s.stdin, "\n")
	cerr := s.stdin.Close()
	if werr != nil && !errors.Is(werr, syscall.EPIPE) {
		s.abort()
		return "", &PipeError{Stage: "write", Err: werr}
	}
	if cerr != nil && !errors.Is(cerr, os.ErrClosed) {
		s.abort()
		return "", &PipeError{Stage: "close stdin", Err: cerr}
	}

	raw, rerr := io.ReadAll(s.stdout)
	if werr := s.cmd.Wait(); werr != nil {
		s.log.Debug("picker exited", zap.Error(werr))
	}
	if rerr != nil {
		return "", &PipeError{Stage: "read", Err: rerr}
	}
	return decode(raw)
}

func (s *Session) abort() {
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
}

func decode(raw []byte) (string, error) {
	out, _, err := transform.Bytes(encoding.UTF8Validator, raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return string(out), nil
}
