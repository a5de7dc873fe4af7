package backend

import (
	"bufio"
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/crosspy/internal/foundation/errors"
	"git.home.luguber.info/inful/crosspy/internal/logfields"
	"git.home.luguber.info/inful/crosspy/internal/matrix"
)

// DefaultCommand is the backend program.
const DefaultCommand = "make"

const waitDelay = 5 * time.Second

// Make runs jobs as `make -C <dir> <targets...> <params...>`.
type Make struct {
	Command string
	Dir     string
	// Output receives backend output, one "[job] line" per line. Nil discards.
	Output io.Writer
	// Env is appended to the inherited environment.
	Env    []string
	Logger *slog.Logger

	mu sync.Mutex
}

// NewMake creates a backend rooted at dir writing output to out.
func NewMake(command, dir string, out io.Writer) *Make {
	if command == "" {
		command = DefaultCommand
	}
	return &Make{Command: command, Dir: dir, Output: out, Logger: slog.Default()}
}

// Args returns the full argv for job, program first.
func (m *Make) Args(job matrix.Job, params []Param) []string {
	args := []string{m.Command, "-C", m.Dir}
	args = append(args, job.Targets...)
	return append(args, Strings(params)...)
}

// Run executes one job and blocks until the process exits. A non-zero exit
// becomes an external_process error carrying the exit code.
func (m *Make) Run(ctx context.Context, job matrix.Job, params []Param) error {
	argv := m.Args(job, params)
	logger := m.logger().With(logfields.Job(job.Name()))
	logger.Info("Running build backend", logfields.Command(strings.Join(argv, " ")))

	// #nosec G204 -- argv is built from validated triples, versions and package names
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if len(m.Env) > 0 {
		cmd.Env = append(os.Environ(), m.Env...)
	}
	// Grandchildren of a killed make may hold the output pipe open.
	cmd.WaitDelay = waitDelay
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.stream(pr, job.Name(), logger)
	}()

	err := cmd.Run()
	_ = pw.Close()
	<-done

	if err == nil {
		return nil
	}
	b := errors.ExternalProcessFailure(job.Name()).WithCause(err).
		WithContext("command", strings.Join(argv, " "))
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		b = b.WithContext("exit_code", exitErr.ExitCode())
	}
	return b.Build()
}

func (m *Make) stream(r io.Reader, name string, logger *slog.Logger) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		logger.Debug(line)
		if m.Output != nil {
			m.mu.Lock()
			_, _ = io.WriteString(m.Output, "["+name+"] "+line+"\n")
			m.mu.Unlock()
		}
	}
	// Drain so the child never blocks on a full pipe after a scan error.
	_, _ = io.Copy(io.Discard, r)
}

func (m *Make) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}
