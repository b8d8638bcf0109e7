// Package vault lists note files as panel items.
//
// A vault is a directory of markdown notes. [Source] walks it and returns
// one [panel.Item] per note, ordered by relative path so repeated opens
// place the same notes in the same slots. Hidden files and directories are
// skipped. [Static] serves a fixed list,
// which is what the HTTP API uses for items posted by clients.
package vault

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	cmerrors "github.com/matzehuels/cardmap/pkg/errors"
	"github.com/matzehuels/cardmap/pkg/panel"
)

// Defaults for Source.
const (
	DefaultLimit = 5
	DefaultExt   = ".md"
)

// Source lists the notes under Root.
type Source struct {
	// Root is the vault directory. A leading "~/" expands to the home directory.
	Root string
	// Limit caps the number of items. Zero or negative means no cap.
	Limit int
	// Ext is the note extension, including the dot. Empty means ".md".
	Ext string
}

// ListItems implements panel.ItemSource.
func (s Source) ListItems(ctx context.Context) ([]panel.Item, error) {
	root, err := ExpandHome(s.Root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cmerrors.New(cmerrors.ErrCodeVaultNotFound, "vault %s does not exist", s.Root)
		}
		return nil, cmerrors.Wrap(cmerrors.ErrCodeInternal, err, "stat vault %s", s.Root)
	}
	if !info.IsDir() {
		return nil, cmerrors.New(cmerrors.ErrCodeVaultNotFound, "vault %s is not a directory", s.Root)
	}

	ext := s.Ext
	if ext == "" {
		ext = DefaultExt
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		hidden := strings.HasPrefix(d.Name(), ".")
		if d.IsDir() {
			if path != root && hidden {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden || !d.Type().IsRegular() || !strings.EqualFold(filepath.Ext(d.Name()), ext) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		// Names that cannot be a safe item ID are not notes.
		if cmerrors.ValidatePath(rel) != nil {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrCodeInternal, err, "list vault %s", s.Root)
	}

	slices.Sort(paths)
	if s.Limit > 0 && len(paths) > s.Limit {
		paths = paths[:s.Limit]
	}

	items := make([]panel.Item, len(paths))
	for i, p := range paths {
		items[i] = panel.Item{ID: p, Label: Label(p)}
	}
	return items, nil
}

// Label returns the display label for a note path: its base name without
// extension.
func Label(path string) string {
	base := filepath.Base(filepath.FromSlash(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", cmerrors.Wrap(cmerrors.ErrCodeInternal, err, "resolve home directory")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Static is an ItemSource over a fixed list.
type Static []panel.Item

// ListItems implements panel.ItemSource. It returns a copy.
func (s Static) ListItems(context.Context) ([]panel.Item, error) {
	return slices.Clone([]panel.Item(s)), nil
}

// Labels builds a Static source from labels, using each label as its ID.
func Labels(labels ...string) Static {
	s := make(Static, len(labels))
	for i, l := range labels {
		s[i] = panel.Item{ID: l, Label: l}
	}
	return s
}

// Limit returns at most n items of s. Zero or negative n returns s unchanged.
func (s Static) Limit(n int) Static {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}

// Validate checks every item for a usable ID and label.
func (s Static) Validate() error {
	seen := make(map[string]bool, len(s))
	for _, it := range s {
		if it.ID == "" {
			return cmerrors.New(cmerrors.ErrCodeInvalidInput, "item id cannot be empty")
		}
		if seen[it.ID] {
			return cmerrors.New(cmerrors.ErrCodeInvalidInput, "duplicate item id %q", it.ID)
		}
		seen[it.ID] = true
		label := it.Label
		if label == "" {
			label = it.ID
		}
		if err := cmerrors.ValidateLabel(label); err != nil {
			return err
		}
	}
	return nil
}
