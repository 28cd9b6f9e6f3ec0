// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package splice rewrites the marked regions of an existing HTML page: the
// papers list, the last-updated timestamp, and optionally the search keyword.
// Everything outside those regions is left alone, and the file is only
// written when its content actually changes.
package splice

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdiddy/paper-refresh/internal/logging"
	"github.com/pdiddy/paper-refresh/pkg/types"
)

// FileError reports a target file that could not be read or written. It
// wraps fs.ErrNotExist when the file is missing.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Splicer replaces the regions of a target document.
type Splicer struct {
	Papers    Region
	Timestamp Region

	// Keyword is optional. When set but absent from the document it is skipped.
	Keyword Region

	Logger *slog.Logger
}

// Result describes what a splice did.
type Result struct {
	Path    string
	Written bool
}

// New builds a Splicer for the configured matcher and marker policy.
func New(cfg types.RefreshConfig, logger *slog.Logger) *Splicer {
	s := &Splicer{Logger: logger}

	if cfg.Matcher == types.MatcherDOM {
		s.Papers = Selector{RegionName: "papers", Selector: cfg.Selectors.Papers}
		s.Timestamp = Selector{RegionName: "timestamp", Selector: cfg.Selectors.Timestamp, Text: true}
		if cfg.Selectors.Keyword != "" {
			s.Keyword = Selector{RegionName: "keyword", Selector: cfg.Selectors.Keyword, Text: true}
		}
		return s
	}

	markers := Markers{RegionName: "papers", Start: cfg.Markers.Start, End: cfg.Markers.End}
	s.Papers = FirstOf("papers",
		markers,
		Placeholder{RegionName: "papers", Token: PapersPlaceholder, Before: markers.Start, After: markers.End},
	)
	if cfg.Markers.Policy == types.MarkerRepair {
		s.Papers = &Repairing{Region: s.Papers, Markers: markers, Container: cfg.Markers.Container, Logger: logger}
	}

	s.Timestamp = FirstOf("timestamp",
		Label{RegionName: "timestamp", Label: cfg.Labels.Timestamp},
		Placeholder{RegionName: "timestamp", Token: TimestampPlaceholder},
	)
	if cfg.Labels.Keyword != "" {
		s.Keyword = Label{RegionName: "keyword", Label: cfg.Labels.Keyword}
	}
	return s
}

// Apply returns doc with the papers, timestamp, and keyword regions replaced.
// The papers region is emptied before the other regions are located, so a
// label inside old or new paper text is never matched.
func (s *Splicer) Apply(doc, fragment, timestamp, keyword string) (string, error) {
	out, err := s.Papers.Replace(doc, "")
	if err != nil {
		return "", err
	}
	out, err = s.Timestamp.Replace(out, timestamp)
	if err != nil {
		return "", err
	}
	if s.Keyword != nil {
		replaced, err := s.Keyword.Replace(out, keyword)
		switch {
		case err == nil:
			out = replaced
		case isNotFound(err):
			logging.OrDiscard(s.Logger).Debug("keyword region not present", "error", err)
		default:
			return "", err
		}
	}
	return s.Papers.Replace(out, fragment)
}

// Splice reads path, applies the new region values, and writes the result
// back only if it differs from what is on disk.
func (s *Splicer) Splice(path, fragment, timestamp, keyword string) (Result, error) {
	log := logging.OrDiscard(s.Logger)
	res := Result{Path: path}

	// Write through symlinks so the link itself survives the rename.
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return res, &FileError{Op: "reading", Path: path, Err: err}
	}
	info, err := os.Stat(target)
	if err != nil {
		return res, &FileError{Op: "reading", Path: path, Err: err}
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return res, &FileError{Op: "reading", Path: path, Err: err}
	}
	doc := string(data)

	out, err := s.Apply(doc, fragment, timestamp, keyword)
	if err != nil {
		return res, err
	}

	if out == doc {
		log.Info("target unchanged, skipping write", "path", path)
		return res, nil
	}

	if err := writeFile(target, []byte(out), info.Mode().Perm()); err != nil {
		return res, &FileError{Op: "writing", Path: path, Err: err}
	}
	res.Written = true
	log.Info("updated target", "path", path, "bytes", len(out))
	return res, nil
}

// writeFile replaces path through a temp file and a rename, so concurrent
// writers leave one complete version behind.
func writeFile(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, perm); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}
