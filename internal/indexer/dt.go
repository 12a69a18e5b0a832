package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/stacklok/typings-registry/internal/catalog"
	"github.com/stacklok/typings-registry/internal/config"
	"github.com/stacklok/typings-registry/internal/git"
	"github.com/stacklok/typings-registry/internal/versions"
)

// DTContentLimit is how much of a definition file is read to find its header
const DTContentLimit = 1024

var (
	dtFileVersion    = regexp.MustCompile(`-` + versions.Pattern + `$`)
	dtContentVersion = regexp.MustCompile(`(?im)Type definitions for .* v?(` + versions.Pattern + `)\r?$`)
	dtContentProject = regexp.MustCompile(`(?im)^// *Project: *(\S+)`)
)

// DTIndexer indexes a DefinitelyTyped style repository of .d.ts files
type DTIndexer struct {
	repo   git.Repository
	writer catalog.Writer
}

// NewDTIndexer creates a DTIndexer
func NewDTIndexer(repo git.Repository, writer catalog.Writer) *DTIndexer {
	return &DTIndexer{repo: repo, writer: writer}
}

// Index applies one definition file change
func (d *DTIndexer) Index(ctx context.Context, cfg *config.RepositoryConfig, commit string, change git.Change) error {
	if err := refresh(ctx, d.repo, cfg); err != nil {
		return err
	}
	updated, err := commitTime(ctx, d.repo, cfg, commit)
	if err != nil {
		return err
	}

	if change.Status.IsDeleted() {
		// every version ever recorded for this file path, at any commit
		prefix := DTLocation(change.Path, "")
		deleted, err := d.writer.DeleteVersionsByLocation(ctx, catalog.SourceDT, prefix, updated)
		if err != nil {
			return fmt.Errorf("failed to delete versions of %s: %w", change.Path, err)
		}
		slog.Debug("Deleted definition versions", "path", change.Path, "commit", commit, "count", deleted)
		return nil
	}

	name, version := ParseDTPath(change.Path)

	content, err := d.repo.FileContent(ctx, cfg.Path, change.Path, commit, DTContentLimit)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", change.Path, err)
	}
	header := ParseDTHeader(content)
	if header.Version != "" {
		version = header.Version
	}

	result, err := d.writer.UpsertEntry(ctx, catalog.EntryUpsert{
		Name:     name,
		Source:   catalog.SourceDT,
		Homepage: header.Homepage,
		Updated:  updated,
	})
	if err != nil {
		return err
	}

	// versions are keyed per commit location and carry their own guard, so a stale entry still records them
	_, err = d.writer.UpsertVersion(ctx, catalog.SourceDT, catalog.Version{
		EntryID:   result.EntryID,
		Version:   version,
		Location:  DTLocation(change.Path, commit),
		Updated:   updated,
		DedupeKey: catalog.SourceDT + ":" + name,
	})
	if err != nil {
		return err
	}

	slog.Debug("Indexed definition", "name", name, "version", version, "path", change.Path, "commit", commit)
	return nil
}

// ParseDTPath derives the entry name and file version of a definition path.
// A name that does not resemble its directory, or a file nested more than two
// directories deep, is qualified with its directories.
func ParseDTPath(path string) (name, version string) {
	parts := strings.Split(strings.TrimSuffix(strings.ToLower(path), ".d.ts"), "/")
	filename := parts[len(parts)-1]
	dirs := parts[:len(parts)-1]

	version = versions.DefaultVersion
	name = filename
	if loc := dtFileVersion.FindStringIndex(filename); loc != nil {
		name = filename[:loc[0]]
		version = versions.NormalizeOrDefault(filename[loc[0]+1:])
	}

	if len(dirs) > 2 || len(dirs) == 0 || !similarNames(name, dirs[0]) {
		name = strings.Join(append(dirs, name), "/")
	}
	return name, version
}

// DTHeader is the metadata found in the comment header of a definition file
type DTHeader struct {
	Version  string
	Homepage string
}

// ParseDTHeader reads the version and project homepage from a definition header.
// A header version that does not normalize is ignored.
func ParseDTHeader(content []byte) DTHeader {
	var header DTHeader
	if m := dtContentVersion.FindSubmatch(content); m != nil {
		if v, ok := versions.Normalize(string(m[1])); ok {
			header.Version = v
		}
	}
	if m := dtContentProject.FindSubmatch(content); m != nil {
		header.Homepage = string(m[1])
	}
	return header
}

// DTLocation returns the locator of a definition file at commit
func DTLocation(path, commit string) string {
	return "github:DefinitelyTyped/DefinitelyTyped/" + strings.ReplaceAll(path, `\`, "/") + "#" + commit
}

func similarNames(a, b string) bool {
	return sanitizeName(a) == sanitizeName(b)
}

// sanitizeName drops separators and a trailing "js" so "node-uuid" and "node.uuid.js" compare equal
func sanitizeName(name string) string {
	name = strings.TrimSuffix(name, "js")
	return strings.NewReplacer("-", "", ".", "").Replace(name)
}
