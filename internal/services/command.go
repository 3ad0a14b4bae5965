package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// stderrTailLines caps how much tool output is folded into an error message.
const stderrTailLines = 12

// CommandRunner executes an external command and reports failure. Steps accept
// one so tests can substitute a fake.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// OutputRunner executes an external command and returns its combined output.
type OutputRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// LineRunner executes an external command with extra environment entries and
// hands every output line (stdout and stderr interleaved) to onLine as it
// arrives.
type LineRunner func(ctx context.Context, env []string, onLine func(string), name string, args ...string) error

// RunCommand is the default CommandRunner. Any *exec.ExitError stays wrapped
// so ExitCode can recover the tool's status.
func RunCommand(ctx context.Context, name string, args ...string) error {
	_, err := CommandOutput(ctx, name, args...)
	return err
}

// CommandOutput is the default OutputRunner.
func CommandOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		if tail := OutputTail(output); tail != "" {
			return output, fmt.Errorf("%s: %w: %s", name, err, tail)
		}
		return output, fmt.Errorf("%s: %w", name, err)
	}
	return output, nil
}

// OutputTail returns the last few non-empty lines of tool output joined by
// " | " for inclusion in error messages.
func OutputTail(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	kept := make([]string, 0, stderrTailLines)
	for i := len(lines) - 1; i >= 0 && len(kept) < stderrTailLines; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			kept = append(kept, line)
		}
	}
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return strings.Join(kept, " | ")
}

// RunCommandLines is the default LineRunner. The last lines of output are
// folded into the returned error like CommandOutput does.
func RunCommandLines(ctx context.Context, env []string, onLine func(string), name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw
	if err := cmd.Start(); err != nil {
		_ = pr.Close()
		return fmt.Errorf("%s: %w", name, err)
	}
	waitErr := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		_ = pw.Close()
		waitErr <- err
	}()

	tail := make([]string, 0, stderrTailLines)
	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) != "" {
			if len(tail) == stderrTailLines {
				tail = tail[1:]
			}
			tail = append(tail, strings.TrimSpace(line))
		}
		if onLine != nil {
			onLine(line)
		}
	}
	_, _ = io.Copy(io.Discard, pr)

	if err := <-waitErr; err != nil {
		if len(tail) > 0 {
			return fmt.Errorf("%s: %w: %s", name, err, strings.Join(tail, " | "))
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
