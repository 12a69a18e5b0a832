package versions

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildInfoFrom(t *testing.T) {
	t.Parallel()

	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2016-01-01T10:00:00Z"},
	}

	tests := []struct {
		name      string
		version   string
		commit    string
		buildDate string
		want      BuildInfo
	}{
		{
			name:      "dev build uses vcs settings",
			version:   "dev",
			commit:    unknown,
			buildDate: unknown,
			want: BuildInfo{
				Version:   "build-01234567",
				Commit:    "0123456789abcdef",
				BuildDate: "2016-01-01 10:00:00 UTC",
			},
		},
		{
			name:      "release build keeps injected values",
			version:   "v1.2.0",
			commit:    "feedface",
			buildDate: "2016-02-01T00:00:00Z",
			want: BuildInfo{
				Version:   "v1.2.0",
				Commit:    "feedface",
				BuildDate: "2016-02-01 00:00:00 UTC",
			},
		},
		{
			name:      "unparseable date is left as is",
			version:   "v1.0.0",
			commit:    unknown,
			buildDate: "yesterday",
			want: BuildInfo{
				Version:   "v1.0.0",
				Commit:    unknown,
				BuildDate: "yesterday",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := buildInfoFrom(tt.version, tt.commit, tt.buildDate, settings)
			tt.want.GoVersion = runtime.Version()
			tt.want.Platform = runtime.GOOS + "/" + runtime.GOARCH
			assert.Equal(t, tt.want, got)
		})
	}
}
