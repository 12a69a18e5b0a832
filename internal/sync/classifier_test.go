package sync

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/typings-registry/internal/config"
	"github.com/stacklok/typings-registry/internal/git"
	gitmocks "github.com/stacklok/typings-registry/internal/git/mocks"
	"github.com/stacklok/typings-registry/internal/queue"
	queuemocks "github.com/stacklok/typings-registry/internal/queue/mocks"
)

func TestDefaultPatterns(t *testing.T) {
	t.Parallel()

	dt, err := CompilePattern(config.DefaultDefinitelyTypedPattern)
	require.NoError(t, err)
	typings, err := CompilePattern(config.DefaultTypingsPattern)
	require.NoError(t, err)

	tests := []struct {
		path        string
		wantDT      bool
		wantTypings bool
	}{
		{path: "react/react.d.ts", wantDT: true},
		{path: "types/react/v15/index.d.ts", wantDT: true},
		{path: "root.d.ts", wantDT: true},
		{path: "react/react-tests.ts"},
		{path: "README.md"},
		{path: "npm/left-pad.json", wantTypings: true},
		{path: "npm/@types/node.json", wantTypings: true},
		{path: "global/jquery.json", wantTypings: true},
		{path: "env/node.json", wantTypings: true},
		{path: "unknown/left-pad.json"},
		{path: "package.json"},
		{path: "npm/left-pad.md"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantDT, dt.Match(tt.path), "definitelytyped")
			assert.Equal(t, tt.wantTypings, typings.Match(tt.path), "typings")
		})
	}
}

func TestCompilePatternInvalid(t *testing.T) {
	t.Parallel()

	_, err := CompilePattern("npm/[abc")
	require.Error(t, err)

	_, err = NewClassifier(nil, nil, []config.RepositoryConfig{{Name: "dt", Pattern: "[abc"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repository dt")
}

func TestClassifierClassify(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := gitmocks.NewMockRepository(ctrl)
	q := queuemocks.NewMockQueue(ctrl)
	cfg := testRepository("")

	classifier, err := NewClassifier(repo, q, []config.RepositoryConfig{*cfg})
	require.NoError(t, err)

	changes := []git.Change{
		{Status: git.StatusDeleted, Path: "README.md"},
		{Status: git.StatusAdded, Path: "react/react-15.0.d.ts"},
		{Status: git.StatusModified, Path: "react/react-tests.ts"},
		{Status: git.StatusDeleted, Path: "react/react.d.ts"},
	}

	repo.EXPECT().EnsureFresh(gomock.Any(), cfg.Path, cfg.URL, cfg.GetPollTimeout()).Return(nil)
	repo.EXPECT().ChangedFiles(gomock.Any(), cfg.Path, "c1").Return(changes, nil)
	q.EXPECT().Enqueue(gomock.Any(), queue.NewIndexFileChangeJob("dt", "c1", changes[1])).Return(nil)
	q.EXPECT().Enqueue(gomock.Any(), queue.NewIndexFileChangeJob("dt", "c1", changes[3])).Return(nil)

	matched, err := classifier.Classify(t.Context(), cfg, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, matched)
}

func TestClassifierCustomPattern(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := gitmocks.NewMockRepository(ctrl)
	q := queuemocks.NewMockQueue(ctrl)
	cfg := testRepository("")
	cfg.Pattern = "types/**.d.ts"

	classifier, err := NewClassifier(repo, q, []config.RepositoryConfig{*cfg})
	require.NoError(t, err)

	repo.EXPECT().EnsureFresh(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	repo.EXPECT().ChangedFiles(gomock.Any(), gomock.Any(), gomock.Any()).Return([]git.Change{
		{Status: git.StatusAdded, Path: "react/react.d.ts"},
		{Status: git.StatusAdded, Path: "types/react/index.d.ts"},
	}, nil)
	q.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	matched, err := classifier.Classify(t.Context(), cfg, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, matched)
}

func TestClassifierErrors(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	t.Run("unknown repository is permanent", func(t *testing.T) {
		t.Parallel()

		classifier, err := NewClassifier(nil, nil, nil)
		require.NoError(t, err)

		_, err = classifier.Classify(t.Context(), testRepository(""), "c1")
		require.Error(t, err)
		assert.True(t, queue.IsPermanent(err))
	})

	t.Run("diff failure", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		repo := gitmocks.NewMockRepository(ctrl)
		cfg := testRepository("")
		classifier, err := NewClassifier(repo, queuemocks.NewMockQueue(ctrl), []config.RepositoryConfig{*cfg})
		require.NoError(t, err)

		repo.EXPECT().EnsureFresh(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		repo.EXPECT().ChangedFiles(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errBoom)

		_, err = classifier.Classify(t.Context(), cfg, "c1")
		require.ErrorIs(t, err, errBoom)
		assert.False(t, queue.IsPermanent(err))
	})

	t.Run("enqueue failure", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		repo := gitmocks.NewMockRepository(ctrl)
		q := queuemocks.NewMockQueue(ctrl)
		cfg := testRepository("")
		classifier, err := NewClassifier(repo, q, []config.RepositoryConfig{*cfg})
		require.NoError(t, err)

		repo.EXPECT().EnsureFresh(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		repo.EXPECT().ChangedFiles(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]git.Change{{Status: git.StatusAdded, Path: "a/a.d.ts"}}, nil)
		q.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(errBoom)

		_, err = classifier.Classify(t.Context(), cfg, "c1")
		require.ErrorIs(t, err, errBoom)
	})
}
