// Package queue implements the at-least-once work queue of the indexing pipeline
// on a PostgreSQL job table, together with the worker pool that consumes it.
package queue

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/propagation"

	"github.com/stacklok/typings-registry/internal/git"
)

// Kind identifies the handler of a job
type Kind string

const (
	// KindSyncCommits walks new commits of a repository
	KindSyncCommits Kind = "sync-commits"
	// KindIndexCommit classifies the files changed by one commit
	KindIndexCommit Kind = "index-commit"
	// KindIndexFileChange indexes one changed file
	KindIndexFileChange Kind = "index-file-change"
)

// Job is the payload of a work unit
type Job struct {
	Kind       Kind        `json:"kind"`
	Repository string      `json:"repository"`
	Commit     string      `json:"commit,omitempty"`
	Change     *git.Change `json:"change,omitempty"`

	// Trace is the W3C trace context of the producer, so the handling span joins its trace
	Trace map[string]string `json:"trace,omitempty"`
}

// NewSyncCommitsJob creates the job that walks new commits of repository
func NewSyncCommitsJob(repository string) Job {
	return Job{Kind: KindSyncCommits, Repository: repository}
}

// NewIndexCommitJob creates the job that classifies the changes of commit
func NewIndexCommitJob(repository, commit string) Job {
	return Job{Kind: KindIndexCommit, Repository: repository, Commit: commit}
}

// NewIndexFileChangeJob creates the job that indexes one file change of commit
func NewIndexFileChangeJob(repository, commit string, change git.Change) Job {
	return Job{Kind: KindIndexFileChange, Repository: repository, Commit: commit, Change: &change}
}

// UniqueKey returns the coalescing key of the job. Only one job per non-empty key
// can be queued at a time, so repeated sync triggers collapse into one walk.
func (j Job) UniqueKey() string {
	if j.Kind == KindSyncCommits {
		return string(KindSyncCommits) + ":" + j.Repository
	}
	return ""
}

// Validate checks that the job carries the fields its kind needs
func (j Job) Validate() error {
	if j.Repository == "" {
		return fmt.Errorf("job %s: repository is required", j.Kind)
	}
	switch j.Kind {
	case KindSyncCommits:
	case KindIndexCommit:
		if j.Commit == "" {
			return fmt.Errorf("job %s: commit is required", j.Kind)
		}
	case KindIndexFileChange:
		if j.Commit == "" {
			return fmt.Errorf("job %s: commit is required", j.Kind)
		}
		if j.Change == nil || j.Change.Path == "" {
			return fmt.Errorf("job %s: change is required", j.Kind)
		}
		switch j.Change.Status {
		case git.StatusAdded, git.StatusModified, git.StatusDeleted:
		default:
			return fmt.Errorf("job %s: unknown change status %q", j.Kind, j.Change.Status)
		}
	default:
		return fmt.Errorf("unknown job kind %q", j.Kind)
	}
	return nil
}

// withTraceContext returns job carrying the trace context of ctx
func withTraceContext(ctx context.Context, p propagation.TextMapPropagator, job Job) Job {
	carrier := propagation.MapCarrier{}
	p.Inject(ctx, carrier)
	if len(carrier) > 0 {
		job.Trace = carrier
	}
	return job
}

// traceContext returns ctx with the producer trace context of job as remote parent
func (j Job) traceContext(ctx context.Context, p propagation.TextMapPropagator) context.Context {
	if len(j.Trace) == 0 {
		return ctx
	}
	return p.Extract(ctx, propagation.MapCarrier(j.Trace))
}
