package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/stacklok/typings-registry/internal/catalog"
	"github.com/stacklok/typings-registry/internal/config"
	"github.com/stacklok/typings-registry/internal/git"
	"github.com/stacklok/typings-registry/internal/queue"
)

// TypingsContentLimit is the largest registry record that is read
const TypingsContentLimit = 400 * 1024

// TypingsIndexer indexes a Typings registry of <source>/<name>.json records
type TypingsIndexer struct {
	repo   git.Repository
	writer catalog.Writer
}

// NewTypingsIndexer creates a TypingsIndexer
func NewTypingsIndexer(repo git.Repository, writer catalog.Writer) *TypingsIndexer {
	return &TypingsIndexer{repo: repo, writer: writer}
}

// Index applies one registry record change
func (ti *TypingsIndexer) Index(ctx context.Context, cfg *config.RepositoryConfig, commit string, change git.Change) error {
	source, name, err := ParseTypingsPath(change.Path)
	if err != nil {
		return queue.Permanent(err)
	}
	logger := slog.With("source", source, "name", name, "commit", commit)

	if err := refresh(ctx, ti.repo, cfg); err != nil {
		return err
	}

	if change.Status.IsDeleted() {
		updated, err := commitTime(ctx, ti.repo, cfg, commit)
		if err != nil {
			return err
		}
		deleted, err := ti.writer.DeleteVersionsByEntry(ctx, name, source, updated)
		if err != nil {
			return fmt.Errorf("failed to delete versions of %s/%s: %w", source, name, err)
		}
		logger.Debug("Deleted registry versions", "count", deleted)
		return nil
	}

	content, err := ti.repo.FileContent(ctx, cfg.Path, change.Path, commit, TypingsContentLimit)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", change.Path, err)
	}

	record := ParseTypingsRecord(content)
	if !record.HasVersions {
		logger.Debug("Skipping record without versions", "path", change.Path)
		return nil
	}

	updated, err := commitTime(ctx, ti.repo, cfg, commit)
	if err != nil {
		return err
	}

	dedupeKey := source + ":" + name
	rows := make([]catalog.Version, 0, len(record.Versions))
	for _, v := range record.Versions {
		rows = append(rows, catalog.Version{
			Version:     v.Version,
			Location:    v.Location,
			Compiler:    v.Compiler,
			Description: v.Description,
			Updated:     updated,
			DedupeKey:   dedupeKey,
		})
	}

	// the entry and its versions commit together, so a stale entry means its versions are stored too
	result, err := ti.writer.UpsertEntryWithVersions(ctx, catalog.EntryUpsert{
		Name:     name,
		Source:   source,
		Homepage: record.Homepage,
		Updated:  updated,
	}, rows)
	if err != nil {
		return err
	}
	if !result.Applied {
		logger.Debug("Skipping stale record", "path", change.Path)
		return nil
	}

	logger.Debug("Indexed registry record", "versions", len(rows))
	return nil
}

// ParseTypingsPath splits a record path into its source tag and package name.
// Scoped names such as npm/@types/node.json keep their scope.
func ParseTypingsPath(path string) (source, name string, err error) {
	source, name, ok := strings.Cut(strings.TrimSuffix(path, ".json"), "/")
	if !ok || source == "" || name == "" {
		return "", "", fmt.Errorf("registry path %q is not <source>/<name>.json", path)
	}
	return source, name, nil
}

// TypingsVersion is one entry of the versions object of a registry record
type TypingsVersion struct {
	Version     string
	Location    string
	Compiler    string
	Description string
}

// TypingsRecord is the indexed content of a registry record
type TypingsRecord struct {
	Homepage    string
	HasVersions bool
	Versions    []TypingsVersion
}

// ParseTypingsRecord reads a registry record. Invalid JSON yields an empty record.
// A versions value is either the location string or an object with location,
// compiler and description; other values are skipped.
func ParseTypingsRecord(content []byte) TypingsRecord {
	var record TypingsRecord
	if !gjson.ValidBytes(content) {
		return record
	}

	root := gjson.ParseBytes(content)
	if homepage := root.Get("homepage"); homepage.Type == gjson.String {
		record.Homepage = homepage.String()
	}

	versionsValue := root.Get("versions")
	if !versionsValue.IsObject() {
		return record
	}
	record.HasVersions = true

	versionsValue.ForEach(func(key, value gjson.Result) bool {
		v := TypingsVersion{Version: key.String()}
		switch {
		case value.Type == gjson.String:
			v.Location = value.String()
		case value.IsObject():
			v.Location = value.Get("location").String()
			v.Compiler = value.Get("compiler").String()
			v.Description = value.Get("description").String()
		}
		if v.Location == "" {
			slog.Warn("Skipping registry version without location", "version", v.Version)
			return true
		}
		record.Versions = append(record.Versions, v)
		return true
	})
	return record
}
