package versions

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{name: "minor wildcard", raw: "4.x", want: "4.0.0", wantOK: true},
		{name: "patch wildcard", raw: "1.4.x", want: "1.4.0", wantOK: true},
		{name: "both wildcards", raw: "2.x.x", want: "2.0.0", wantOK: true},
		{name: "major minor", raw: "1.2", want: "1.2.0", wantOK: true},
		{name: "full version", raw: "0.10.3", want: "0.10.3", wantOK: true},
		{name: "prerelease", raw: "1.2.3-beta", want: "1.2.3-beta", wantOK: true},
		{name: "prerelease with dots", raw: "1.0.0-rc.1", want: "1.0.0-rc.1", wantOK: true},
		{name: "build metadata", raw: "1.2.3+sha.5114f85", want: "1.2.3", wantOK: true},
		{name: "prerelease with build metadata", raw: "1.2.3-beta+sha", want: "1.2.3-beta", wantOK: true},
		{name: "not a version", raw: "not-a-version", wantOK: false},
		{name: "empty", raw: "", wantOK: false},
		{name: "single number", raw: "3", wantOK: false},
		{name: "leading wildcard", raw: "x.1", wantOK: false},
		{name: "wildcard with suffix", raw: "1.x-beta", wantOK: false},
		{name: "v prefix", raw: "v1.2.3", wantOK: false},
		{name: "four components", raw: "1.2.3.4", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := Normalize(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeOrDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "4.0.0", NormalizeOrDefault("4.x"))
	assert.Equal(t, DefaultVersion, NormalizeOrDefault("latest"))
}

func TestPattern(t *testing.T) {
	t.Parallel()

	re := regexp.MustCompile(`-(` + Pattern + `)$`)

	tests := []struct {
		input string
		want  string
	}{
		{input: "react-15.0", want: "15.0"},
		{input: "jquery-1.x", want: "1.x"},
		{input: "angular-1.4.x-beta2", want: "1.4.x-beta2"},
		{input: "node-0.12.0", want: "0.12.0"},
		{input: "lodash", want: ""},
		{input: "es6-shim", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got := ""
			if m := re.FindStringSubmatch(tt.input); m != nil {
				got = m[1]
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
