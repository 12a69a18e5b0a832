package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// TestCommit describes one commit created by CreateTestRepoWithCommits
type TestCommit struct {
	Files   map[string]string // Map of filename to content, written and staged
	Deletes []string          // Files removed by the commit
	When    time.Time         // Author and committer time (uses a fixed base time if zero)
	Message string
}

var testBaseTime = time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)

// CreateTestRepoWithCommits creates a non-bare Git repository under t.TempDir() with
// the given commits applied in order. Returns the repository path and the commit hashes.
func CreateTestRepoWithCommits(t *testing.T, commits []TestCommit) (string, []string) {
	t.Helper()

	repoDir := t.TempDir()
	repo, err := git.PlainInit(repoDir, false)
	if err != nil {
		t.Fatalf("Failed to init repository: %v", err)
	}

	hashes := make([]string, 0, len(commits))
	for i, commit := range commits {
		hashes = append(hashes, AppendTestCommit(t, repo, repoDir, commit, i))
	}
	return repoDir, hashes
}

// AppendTestCommit applies one commit to an existing working repository and returns its hash.
// The index is used to derive a default commit time and message.
func AppendTestCommit(t *testing.T, repo *git.Repository, repoDir string, commit TestCommit, index int) string {
	t.Helper()

	workTree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Failed to get worktree: %v", err)
	}

	for filename, content := range commit.Files {
		filePath := filepath.Join(repoDir, filename)
		if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", filename, err)
		}
		if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write file %s: %v", filename, err)
		}
		if _, err := workTree.Add(filename); err != nil {
			t.Fatalf("Failed to add file %s: %v", filename, err)
		}
	}

	for _, filename := range commit.Deletes {
		if _, err := workTree.Remove(filename); err != nil {
			t.Fatalf("Failed to remove file %s: %v", filename, err)
		}
	}

	when := commit.When
	if when.IsZero() {
		when = testBaseTime.Add(time.Duration(index) * time.Hour)
	}
	message := commit.Message
	if message == "" {
		message = "Commit " + string(rune('A'+index))
	}

	hash, err := workTree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test Author",
			Email: "test@example.com",
			When:  when,
		},
	})
	if err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}
	return hash.String()
}
