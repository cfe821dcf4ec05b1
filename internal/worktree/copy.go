package worktree

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CopyFiles copies files matching the glob patterns from srcRoot into
// dstRoot, keeping their relative paths. It is meant for untracked local
// files such as .env that a fresh checkout lacks.
//
// Matches inside .git are skipped, as are destinations that already exist
// (tracked files checked out by git are never overwritten). The relative
// paths that were copied are returned in sorted order.
func CopyFiles(srcRoot, dstRoot string, patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var copied []string

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if filepath.IsAbs(pattern) {
			return copied, fmt.Errorf("copy pattern %q must be relative to the repository", pattern)
		}

		matches, err := filepath.Glob(filepath.Join(srcRoot, pattern))
		if err != nil {
			return copied, fmt.Errorf("invalid copy pattern %q: %w", pattern, err)
		}

		for _, match := range matches {
			rel, err := filepath.Rel(srcRoot, match)
			if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
				continue
			}
			if rel == ".git" || strings.HasPrefix(rel, ".git"+string(filepath.Separator)) {
				continue
			}
			if seen[rel] {
				continue
			}
			seen[rel] = true

			dst := filepath.Join(dstRoot, rel)
			if _, err := os.Lstat(dst); err == nil {
				continue
			}
			if err := copyPath(match, dst); err != nil {
				return copied, fmt.Errorf("copy %s: %w", rel, err)
			}
			copied = append(copied, rel)
		}
	}

	sort.Strings(copied)
	return copied, nil
}

// copyPath copies a file, directory tree or symlink from src to dst.
func copyPath(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		return copySymlink(src, dst)
	case info.IsDir():
		return copyTree(src, dst)
	default:
		return copyFile(src, dst, info.Mode().Perm())
	}
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case info.Mode()&os.ModeSymlink != 0:
			return copySymlink(path, target)
		case d.IsDir():
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return os.MkdirAll(target, info.Mode().Perm())
		default:
			return copyFile(path, target, info.Mode().Perm())
		}
	})
}

func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.Symlink(target, dst)
}

// copyFile copies a regular file, preserving its permission bits.
func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
