package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

var ErrSinkBusy = errors.New("audio sink already capturing")

// Sink captures microphone audio into a file between Start and Stop.
type Sink interface {
	Start(path string) error
	Stop() error
}

// PermissionRequester asks the platform for microphone access.
type PermissionRequester interface {
	RequestMicrophone(ctx context.Context) (bool, error)
}

type AlwaysGranted struct{}

func (AlwaysGranted) RequestMicrophone(ctx context.Context) (bool, error) {
	return true, nil
}

// ExecSink runs an external capture program per chunk, e.g. "sox -q -d {path}".
// The {path} placeholder is replaced with the chunk file path; when absent the
// path is appended as the last argument.
type ExecSink struct {
	args        []string
	stopTimeout time.Duration

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan error
}

func NewExecSink(command string) (*ExecSink, error) {
	args, err := ParseCaptureCommand(command)
	if err != nil {
		return nil, err
	}
	return NewExecSinkArgs(args), nil
}

// ParseCaptureCommand splits a capture command line into program and args.
func ParseCaptureCommand(command string) ([]string, error) {
	args := strings.Fields(command)
	if len(args) == 0 {
		return nil, fmt.Errorf("capture command is empty")
	}
	return args, nil
}

// NewExecSinkArgs builds a sink from an already parsed command.
func NewExecSinkArgs(args []string) *ExecSink {
	return &ExecSink{args: append([]string(nil), args...), stopTimeout: 5 * time.Second}
}

func (s *ExecSink) commandFor(path string) []string {
	out := make([]string, 0, len(s.args)+1)
	replaced := false
	for _, a := range s.args {
		if strings.Contains(a, "{path}") {
			a = strings.ReplaceAll(a, "{path}", path)
			replaced = true
		}
		out = append(out, a)
	}
	if !replaced {
		out = append(out, path)
	}
	return out
}

func (s *ExecSink) Start(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd != nil {
		return ErrSinkBusy
	}

	argv := s.commandFor(path)
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start capture: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	s.cmd = cmd
	s.done = done
	return nil
}

// Stop interrupts the capture program so it can finalize the file, killing it
// if it does not exit in time.
func (s *ExecSink) Stop() error {
	s.mu.Lock()
	cmd, done := s.cmd, s.done
	s.cmd, s.done = nil, nil
	s.mu.Unlock()

	if cmd == nil {
		return nil
	}

	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		_ = cmd.Process.Kill()
	}

	select {
	case <-done:
		return nil
	case <-time.After(s.stopTimeout):
		_ = cmd.Process.Kill()
		<-done
		return fmt.Errorf("capture did not stop within %s", s.stopTimeout)
	}
}
