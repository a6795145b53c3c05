// Package exec runs the process-backed capabilities: shell commands, ping,
// and ssh. Each run gets its own process group, a hard deadline, and
// captured output that is sanitized and tail-truncated before it is
// returned.
package exec

import (
	"context"
	"errors"
	"fmt"
	osexec "os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"al.essio.dev/pkg/shellescape"
)

// Result is the outcome of a process that ran to completion.
type Result struct {
	ReturnCode int
	Stdout     string
	Stderr     string
	// Command is the command line as it was run.
	Command string
}

// OK reports whether the process exited with status 0.
func (r Result) OK() bool { return r.ReturnCode == 0 }

const (
	rollingBufSize = 2 * DefaultMaxBytes
	waitDelay      = 2 * time.Second
)

// Runner executes capability processes.
type Runner struct {
	// LookPath resolves a binary name to a path. Nil means os/exec.LookPath.
	LookPath func(file string) (string, error)
}

// NewRunner returns a Runner that resolves binaries from PATH.
func NewRunner() *Runner {
	return &Runner{LookPath: osexec.LookPath}
}

func (r *Runner) lookPath(file string) (string, error) {
	if r.LookPath == nil {
		return osexec.LookPath(file)
	}
	return r.LookPath(file)
}

// RunCommand runs command with sh -c.
func (r *Runner) RunCommand(ctx context.Context, command string, timeout time.Duration) (Result, error) {
	if strings.TrimSpace(command) == "" {
		return Result{}, errors.New("command cannot be empty")
	}
	if timeout <= 0 {
		return Result{}, errors.New("timeout must be positive")
	}
	sh, err := r.lookPath("sh")
	if err != nil {
		return Result{}, fmt.Errorf("shell not available: %w", err)
	}
	res, timedOut, err := run(ctx, []string{sh, "-c", command}, timeout)
	if timedOut {
		return Result{}, fmt.Errorf("command timed out after %ss", Seconds(timeout))
	}
	if err != nil {
		return Result{}, err
	}
	res.Command = command
	return res, nil
}

// Ping sends count echo requests to host. Count is clamped to [1, 10] and
// the per-reply timeout to at least one second. The whole run is bounded by
// count*(timeout+1) seconds.
func (r *Runner) Ping(ctx context.Context, host string, count, timeoutSec int) (Result, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return Result{}, errors.New("host is required")
	}
	bin, err := r.lookPath("ping")
	if err != nil {
		return Result{}, errors.New("ping binary not available")
	}
	count = min(max(count, 1), 10)
	timeoutSec = max(timeoutSec, 1)

	argv := []string{bin, "-c", strconv.Itoa(count), "-W", strconv.Itoa(timeoutSec), host}
	deadline := time.Duration(count*(timeoutSec+1)) * time.Second
	res, timedOut, err := run(ctx, argv, deadline)
	if timedOut {
		return Result{}, errors.New("ping operation timed out")
	}
	if err != nil {
		return Result{}, err
	}
	res.Command = shellescape.QuoteCommand(argv)
	return res, nil
}

// SSHOptions describes one remote command.
type SSHOptions struct {
	Host    string
	Command string
	User    string
	Port    int // 0 means 22
	KeyPath string
	Timeout time.Duration
}

// SSH runs a command on a remote host with the local ssh binary in batch
// mode, so it never prompts for a password.
func (r *Runner) SSH(ctx context.Context, opts SSHOptions) (Result, error) {
	if strings.TrimSpace(opts.Host) == "" {
		return Result{}, errors.New("host is required")
	}
	if strings.TrimSpace(opts.Command) == "" {
		return Result{}, errors.New("command is required")
	}
	if opts.Timeout <= 0 {
		return Result{}, errors.New("timeout must be positive")
	}
	bin, err := r.lookPath("ssh")
	if err != nil {
		return Result{}, errors.New("ssh binary not available")
	}
	port := opts.Port
	if port == 0 {
		port = 22
	}
	target := opts.Host
	if opts.User != "" {
		target = opts.User + "@" + opts.Host
	}

	argv := []string{bin, "-p", strconv.Itoa(port), "-o", "BatchMode=yes"}
	if opts.KeyPath != "" {
		argv = append(argv, "-i", opts.KeyPath)
	}
	argv = append(argv, target, opts.Command)

	res, timedOut, err := run(ctx, argv, opts.Timeout)
	if timedOut {
		return Result{}, fmt.Errorf("ssh command timed out after %ss", Seconds(opts.Timeout))
	}
	if err != nil {
		return Result{}, err
	}
	res.Command = shellescape.QuoteCommand(argv)
	return res, nil
}

// Seconds formats d as a plain number of seconds: 30s is "30", 1.5s is "1.5".
func Seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// run executes argv in its own process group and kills the whole group when
// timeout elapses. timedOut is true only when the run's own deadline fired;
// cancellation of ctx is returned as ctx.Err().
func run(ctx context.Context, argv []string, timeout time.Duration) (res Result, timedOut bool, err error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := osexec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = waitDelay

	stdout := NewOutputCollector(rollingBufSize)
	stderr := NewOutputCollector(rollingBufSize)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return Result{}, false, fmt.Errorf("start %s: %w", argv[0], err)
	}
	waitErr := cmd.Wait()

	res = Result{Stdout: processOutput(stdout), Stderr: processOutput(stderr)}
	if waitErr == nil {
		return res, false, nil
	}
	var exitErr *osexec.ExitError
	if errors.As(waitErr, &exitErr) && exitErr.ExitCode() >= 0 {
		res.ReturnCode = exitErr.ExitCode()
		return res, false, nil
	}
	if ctx.Err() != nil {
		return res, false, ctx.Err()
	}
	if runCtx.Err() != nil {
		return res, true, nil
	}
	return res, false, waitErr
}

// processOutput sanitizes, tail-truncates, and trims collected output. A
// truncated stream is prefixed with a line saying how much was kept.
func processOutput(c *OutputCollector) string {
	tr := TruncateTail(Sanitize(string(c.Bytes())), DefaultMaxLines, DefaultMaxBytes)
	out := strings.TrimSpace(tr.Content)
	if tr.Truncated || c.Dropped() {
		return fmt.Sprintf("[showing last %d of %d lines]\n%s", tr.OutputLines, c.TotalLines(), out)
	}
	return out
}
