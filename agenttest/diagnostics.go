package agenttest

import "strings"

const (
	maxErrorLines  = 5
	maxStderrLines = 3
	maxLineLength  = 150
)

var (
	highlightMarkers = []string{"Tagged:", "Success:", "Message:"}
	errorMarkers     = []string{"Traceback", "Error:", "Exception:"}
	stderrNoise      = []string{"INFO", "LiteLLM completion()"}
)

// highlights returns the informative lines of a passing test's stdout. Nothing
// is returned unless stdout carries the success marker.
func highlights(stdout, marker string) []string {
	if stdout == "" || !strings.Contains(stdout, marker) {
		return nil
	}
	var out []string
	for _, line := range strings.Split(stdout, "\n") {
		if containsAny(line, highlightMarkers) {
			out = append(out, strings.TrimSpace(line))
		}
	}
	return out
}

// errorContext returns up to five non-blank lines of stdout starting at the
// first error marker.
func errorContext(stdout string) []string {
	lines := strings.Split(stdout, "\n")
	for i, line := range lines {
		if !containsAny(line, errorMarkers) {
			continue
		}
		end := i + maxErrorLines
		if end > len(lines) {
			end = len(lines)
		}
		var out []string
		for _, l := range lines[i:end] {
			if l = strings.TrimSpace(l); l != "" {
				out = append(out, truncate(l, maxLineLength))
			}
		}
		return out
	}
	return nil
}

// stderrErrors returns up to three stderr lines that are not routine logging.
func stderrErrors(stderr string) []string {
	var out []string
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || containsAny(line, stderrNoise) {
			continue
		}
		out = append(out, truncate(line, maxLineLength))
		if len(out) == maxStderrLines {
			break
		}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
