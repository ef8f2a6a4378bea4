package agenttest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlights(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		want   []string
	}{
		{
			name:   "marker present",
			stdout: "Status Code: 200\n  Tagged: true\nnoise\nSuccess: yes\nMessage: done\n",
			want:   []string{"Tagged: true", "Success: yes", "Message: done"},
		},
		{
			name:   "marker absent",
			stdout: "Status Code: 500\nTagged: false\n",
			want:   nil,
		},
		{
			name:   "marker without highlight lines",
			stdout: "Status Code: 200\nall good\n",
			want:   nil,
		},
		{
			name:   "empty output",
			stdout: "",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, highlights(tt.stdout, DefaultSuccessMarker))
		})
	}
}

func TestErrorContext(t *testing.T) {
	long := "Error: " + strings.Repeat("x", 200)

	tests := []struct {
		name   string
		stdout string
		want   []string
	}{
		{
			name:   "traceback window skips blank lines",
			stdout: "starting\nTraceback (most recent call last):\n  File \"test_simple.py\", line 4\n\n    run()\nValueError: bad input\nafter window\n",
			want: []string{
				"Traceback (most recent call last):",
				"File \"test_simple.py\", line 4",
				"run()",
				"ValueError: bad input",
			},
		},
		{
			name:   "first marker wins",
			stdout: "ok\nException: first\nError: second\n",
			want:   []string{"Exception: first", "Error: second"},
		},
		{
			name:   "long lines truncated",
			stdout: long,
			want:   []string{long[:150]},
		},
		{
			name:   "no marker",
			stdout: "nothing to see\n",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errorContext(tt.stdout)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), 5)
		})
	}
}

func TestStderrErrors(t *testing.T) {
	stderr := strings.Join([]string{
		"INFO starting agent",
		"",
		"LiteLLM completion() model=gpt-4o",
		"warning: deprecated flag",
		"botocore error: access denied",
		"   ",
		"KeyError: 'tags'",
		"fourth relevant line",
	}, "\n")

	assert.Equal(t, []string{
		"warning: deprecated flag",
		"botocore error: access denied",
		"KeyError: 'tags'",
	}, stderrErrors(stderr))

	assert.Nil(t, stderrErrors(""))
	assert.Nil(t, stderrErrors("INFO only\nINFO noise\n"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "héé", truncate("héééé", 3))
}
