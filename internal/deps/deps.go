package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// versionProbeTimeout bounds a single "--version" style probe.
const versionProbeTimeout = 10 * time.Second

// Requirement defines an external tool ytscribe drives.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// VersionArgs, when set, are passed to the tool to confirm it actually
	// runs (for example "-version" for ffmpeg).
	VersionArgs []string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Path        string
	Description string
	Optional    bool
	Available   bool
	Version     string
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
// A requirement is available when its command resolves on PATH and, if
// VersionArgs are set, the version probe exits successfully.
func CheckBinaries(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, checkOne(ctx, req))
	}
	return results
}

func checkOne(ctx context.Context, req Requirement) Status {
	cmd := strings.TrimSpace(req.Command)
	status := Status{
		Name:        req.Name,
		Command:     cmd,
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if cmd == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(cmd)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", cmd)
		return status
	}
	status.Path = resolved
	if len(req.VersionArgs) == 0 {
		status.Available = true
		return status
	}
	version, err := ProbeVersion(ctx, resolved, req.VersionArgs...)
	if err != nil {
		status.Detail = err.Error()
		return status
	}
	status.Available = true
	status.Version = version
	return status
}

// ProbeVersion runs binary with args and returns the first non-empty line of
// its output. Some tools (python2, older ffmpeg builds) print versions to
// stderr, so both streams are read.
func ProbeVersion(ctx context.Context, binary string, args ...string) (string, error) {
	probeCtx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := firstLine(output)
		if detail == "" {
			return "", fmt.Errorf("%s %s failed: %w", binary, strings.Join(args, " "), err)
		}
		return "", fmt.Errorf("%s %s failed: %w: %s", binary, strings.Join(args, " "), err, detail)
	}
	return firstLine(output), nil
}

func firstLine(output []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line
		}
	}
	return ""
}
