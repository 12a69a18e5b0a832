package indexer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/typings-registry/internal/catalog"
	catalogmocks "github.com/stacklok/typings-registry/internal/catalog/mocks"
	"github.com/stacklok/typings-registry/internal/config"
	"github.com/stacklok/typings-registry/internal/git"
	gitmocks "github.com/stacklok/typings-registry/internal/git/mocks"
	"github.com/stacklok/typings-registry/internal/queue"
)

func typingsConfig() *config.RepositoryConfig {
	return &config.RepositoryConfig{
		Name:   "typings",
		Format: config.FormatTypings,
		URL:    "https://example.com/registry.git",
		Path:   "/data/registry",
	}
}

func TestParseTypingsPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path       string
		wantSource string
		wantName   string
		wantErr    bool
	}{
		{path: "npm/left-pad.json", wantSource: "npm", wantName: "left-pad"},
		{path: "npm/@types/node.json", wantSource: "npm", wantName: "@types/node"},
		{path: "env/node.json", wantSource: "env", wantName: "node"},
		{path: "readme.json", wantErr: true},
		{path: "npm/.json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			source, name, err := ParseTypingsPath(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSource, source)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestParseTypingsRecord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    TypingsRecord
	}{
		{
			name:    "string versions",
			content: `{"homepage": "https://left-pad.io", "versions": {"1.0.0": "github:a/b#1", "1.1.0": "github:a/b#2"}}`,
			want: TypingsRecord{
				Homepage:    "https://left-pad.io",
				HasVersions: true,
				Versions: []TypingsVersion{
					{Version: "1.0.0", Location: "github:a/b#1"},
					{Version: "1.1.0", Location: "github:a/b#2"},
				},
			},
		},
		{
			name: "object versions",
			content: `{"versions": {"2.0.0": {"location": "github:a/b#3", "compiler": "1.8",` +
				` "description": "rewrite"}}}`,
			want: TypingsRecord{
				HasVersions: true,
				Versions: []TypingsVersion{
					{Version: "2.0.0", Location: "github:a/b#3", Compiler: "1.8", Description: "rewrite"},
				},
			},
		},
		{
			name:    "version without location is skipped",
			content: `{"versions": {"1.0.0": {"compiler": "1.8"}, "2.0.0": 3, "3.0.0": "github:a/b#4"}}`,
			want: TypingsRecord{
				HasVersions: true,
				Versions:    []TypingsVersion{{Version: "3.0.0", Location: "github:a/b#4"}},
			},
		},
		{
			name:    "no versions",
			content: `{"homepage": "https://example.com"}`,
			want:    TypingsRecord{Homepage: "https://example.com"},
		},
		{
			name:    "versions not an object",
			content: `{"versions": ["1.0.0"]}`,
			want:    TypingsRecord{},
		},
		{
			name:    "empty versions",
			content: `{"versions": {}}`,
			want:    TypingsRecord{HasVersions: true},
		},
		{
			name:    "invalid json",
			content: `{"versions": {"1.0.0": "github:a/b#1"`,
			want:    TypingsRecord{},
		},
		{
			name:    "non string homepage",
			content: `{"homepage": 42, "versions": {}}`,
			want:    TypingsRecord{HasVersions: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseTypingsRecord([]byte(tt.content)))
		})
	}
}

func TestTypingsIndexerUpsert(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := gitmocks.NewMockRepository(ctrl)
	writer := catalogmocks.NewMockWriter(ctrl)
	cfg := typingsConfig()
	path := "npm/left-pad.json"

	repo.EXPECT().EnsureFresh(gomock.Any(), cfg.Path, cfg.URL, cfg.GetPollTimeout()).Return(nil)
	repo.EXPECT().FileContent(gomock.Any(), cfg.Path, path, testCommit, int64(TypingsContentLimit)).
		Return([]byte(`{"homepage": "https://github.com/stevemao/left-pad", "versions": {"1.0.0": "github:x/left-pad#abc"}}`), nil)
	repo.EXPECT().CommitTimestamp(gomock.Any(), cfg.Path, testCommit).Return(testTime, nil)
	writer.EXPECT().UpsertEntryWithVersions(gomock.Any(), catalog.EntryUpsert{
		Name:     "left-pad",
		Source:   "npm",
		Homepage: "https://github.com/stevemao/left-pad",
		Updated:  testTime,
	}, []catalog.Version{{
		Version:   "1.0.0",
		Location:  "github:x/left-pad#abc",
		Updated:   testTime,
		DedupeKey: "npm:left-pad",
	}}).Return(catalog.UpsertResult{EntryID: 7, Applied: true}, nil)

	err := NewTypingsIndexer(repo, writer).Index(t.Context(), cfg, testCommit,
		git.Change{Status: git.StatusAdded, Path: path})
	require.NoError(t, err)
}

func TestTypingsIndexerStaleEntryShortCircuits(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := gitmocks.NewMockRepository(ctrl)
	writer := catalogmocks.NewMockWriter(ctrl)

	repo.EXPECT().EnsureFresh(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	repo.EXPECT().FileContent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]byte(`{"versions": {"1.0.0": "github:x/left-pad#abc"}}`), nil)
	repo.EXPECT().CommitTimestamp(gomock.Any(), gomock.Any(), gomock.Any()).Return(testTime, nil)
	writer.EXPECT().UpsertEntryWithVersions(gomock.Any(), gomock.Any(), gomock.Len(1)).
		Return(catalog.UpsertResult{EntryID: 7, Applied: false}, nil)

	err := NewTypingsIndexer(repo, writer).Index(t.Context(), typingsConfig(), testCommit,
		git.Change{Status: git.StatusModified, Path: "npm/left-pad.json"})
	require.NoError(t, err)
}

func TestTypingsIndexerWriteFailureIsRetryable(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := gitmocks.NewMockRepository(ctrl)
	writer := catalogmocks.NewMockWriter(ctrl)

	repo.EXPECT().EnsureFresh(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	repo.EXPECT().FileContent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]byte(`{"versions": {"1.0.0": "github:x/left-pad#abc"}}`), nil)
	repo.EXPECT().CommitTimestamp(gomock.Any(), gomock.Any(), gomock.Any()).Return(testTime, nil)
	writer.EXPECT().UpsertEntryWithVersions(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(catalog.UpsertResult{}, errors.New("connection reset"))

	err := NewTypingsIndexer(repo, writer).Index(t.Context(), typingsConfig(), testCommit,
		git.Change{Status: git.StatusModified, Path: "npm/left-pad.json"})
	require.ErrorContains(t, err, "connection reset")
	assert.False(t, queue.IsPermanent(err))
}

func TestTypingsIndexerSkipsRecordWithoutVersions(t *testing.T) {
	t.Parallel()

	for _, content := range []string{`{"homepage": "x"}`, `not json`} {
		ctrl := gomock.NewController(t)
		repo := gitmocks.NewMockRepository(ctrl)
		writer := catalogmocks.NewMockWriter(ctrl)

		repo.EXPECT().EnsureFresh(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		repo.EXPECT().FileContent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]byte(content), nil)

		err := NewTypingsIndexer(repo, writer).Index(t.Context(), typingsConfig(), testCommit,
			git.Change{Status: git.StatusAdded, Path: "npm/left-pad.json"})
		require.NoError(t, err, content)
	}
}

func TestTypingsIndexerDelete(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := gitmocks.NewMockRepository(ctrl)
	writer := catalogmocks.NewMockWriter(ctrl)
	cfg := typingsConfig()

	repo.EXPECT().EnsureFresh(gomock.Any(), cfg.Path, cfg.URL, gomock.Any()).Return(nil)
	repo.EXPECT().CommitTimestamp(gomock.Any(), cfg.Path, testCommit).Return(testTime, nil)
	writer.EXPECT().DeleteVersionsByEntry(gomock.Any(), "@types/node", "npm", testTime).Return(int64(2), nil)

	err := NewTypingsIndexer(repo, writer).Index(t.Context(), cfg, testCommit,
		git.Change{Status: git.StatusDeleted, Path: "npm/@types/node.json"})
	require.NoError(t, err)
}

func TestTypingsIndexerInvalidPathIsPermanent(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := gitmocks.NewMockRepository(ctrl)
	writer := catalogmocks.NewMockWriter(ctrl)

	err := NewTypingsIndexer(repo, writer).Index(t.Context(), typingsConfig(), testCommit,
		git.Change{Status: git.StatusAdded, Path: "readme.json"})
	require.Error(t, err)
	assert.True(t, queue.IsPermanent(err))
}
