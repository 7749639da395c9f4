// Package fs stores file trees as cas trees and blobs, and extracts them again.
//
// A regular file becomes a blob with mode 100644 (or 100755 if executable),
// a symlink becomes a blob of its target with mode 120000,
// and a directory becomes a tree with mode 40000.
// Other file types are skipped.
package fs

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/ooici/cas"
)

// ModeSymlink is the tree entry mode for a symbolic link.
const ModeSymlink = "120000"

// Ingest stores the directory at path, recursively,
// and returns the ID of its tree.
// Entries appear in name order.
func Ingest(ctx context.Context, s *cas.Store, path string) (cas.ID, error) {
	tree, err := dirTree(ctx, path)
	if err != nil {
		return cas.Zero, err
	}
	return s.PutDeep(ctx, tree)
}

func dirTree(ctx context.Context, path string) (*cas.Tree, error) {
	dirents, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading dir %s", path)
	}

	var entries []cas.TreeEntry
	for _, dirent := range dirents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var (
			name = dirent.Name()
			sub  = filepath.Join(path, name)
		)
		info, err := os.Lstat(sub)
		if err != nil {
			return nil, errors.Wrapf(err, "statting %s", sub)
		}

		switch mode := info.Mode(); {
		case mode.IsDir():
			subtree, err := dirTree(ctx, sub)
			if err != nil {
				return nil, err
			}
			entries = append(entries, cas.TreeEntry{Name: name, Mode: cas.ModeTree, Object: subtree})

		case mode&os.ModeSymlink != 0:
			target, err := os.Readlink(sub)
			if err != nil {
				return nil, errors.Wrapf(err, "reading symlink %s", sub)
			}
			entries = append(entries, cas.TreeEntry{Name: name, Mode: ModeSymlink, Object: cas.NewBlob([]byte(target))})

		case mode.IsRegular():
			content, err := os.ReadFile(sub)
			if err != nil {
				return nil, errors.Wrapf(err, "reading %s", sub)
			}
			m := cas.ModeFile
			if mode&0111 != 0 {
				m = cas.ModeExecutable
			}
			entries = append(entries, cas.TreeEntry{Name: name, Mode: m, Object: cas.NewBlob(content)})

		default:
			log.Printf("skipping %s (file type %s)", sub, mode.Type())
		}
	}

	tree, err := cas.NewTree(entries...)
	return tree, errors.Wrapf(err, "building tree for %s", path)
}

// Extract writes the tree with the given ID into the directory dest,
// creating dest if needed.
// Existing files with the same names are overwritten,
// and existing symlinks are replaced rather than followed.
func Extract(ctx context.Context, s *cas.Store, id cas.ID, dest string) error {
	tree, err := getTree(ctx, s, id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return errors.Wrapf(err, "creating %s", dest)
	}

	for _, e := range tree.Entries() {
		if filepath.Base(e.Name) != e.Name || e.Name == "." || e.Name == ".." {
			return errors.Wrapf(cas.ErrInvalid, "unsafe entry name %q in tree %s", e.Name, id)
		}
		sub := filepath.Join(dest, e.Name)

		// Never write through a symlink,
		// including one an earlier entry of the same name just created.
		if err := removeSymlink(sub); err != nil {
			return err
		}

		if e.Mode == cas.ModeTree {
			if err := Extract(ctx, s, e.ID, sub); err != nil {
				return err
			}
			continue
		}

		blob, err := getBlob(ctx, s, e.ID)
		if err != nil {
			return errors.Wrapf(err, "entry %s", sub)
		}

		switch e.Mode {
		case ModeSymlink:
			if err := os.Remove(sub); err != nil && !os.IsNotExist(err) {
				return errors.Wrapf(err, "replacing %s", sub)
			}
			if err := os.Symlink(string(blob.Content()), sub); err != nil {
				return errors.Wrapf(err, "creating symlink %s", sub)
			}

		case cas.ModeExecutable:
			if err := writeFile(sub, blob.Content(), 0755); err != nil {
				return err
			}

		default:
			if err := writeFile(sub, blob.Content(), 0644); err != nil {
				return err
			}
		}
	}
	return nil
}

func removeSymlink(path string) error {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "statting %s", path)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return nil
	}
	return errors.Wrapf(os.Remove(path), "removing symlink %s", path)
}

func writeFile(path string, content []byte, perm os.FileMode) error {
	if err := os.WriteFile(path, content, perm); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return errors.Wrapf(os.Chmod(path, perm), "setting mode of %s", path)
}

func getTree(ctx context.Context, s *cas.Store, id cas.ID) (*cas.Tree, error) {
	obj, err := s.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting tree %s", id)
	}
	tree, ok := obj.(*cas.Tree)
	if !ok {
		return nil, errors.Wrapf(cas.ErrInvalid, "object %s is a %s, not a tree", id, obj.Type())
	}
	return tree, nil
}

func getBlob(ctx context.Context, s *cas.Store, id cas.ID) (*cas.Blob, error) {
	obj, err := s.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting blob %s", id)
	}
	blob, ok := obj.(*cas.Blob)
	if !ok {
		return nil, errors.Wrapf(cas.ErrInvalid, "object %s is a %s, not a blob", id, obj.Type())
	}
	return blob, nil
}
