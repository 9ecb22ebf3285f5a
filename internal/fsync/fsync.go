// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package fsync mirrors a folder of an fs.FS (usually the embedded static
// tree) onto disk. The copy is one-way and additive: files already identical
// at the destination are left untouched and stale files are never removed.
package fsync

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Stats reports what a sync pass did.
type Stats struct {
	Copied  int
	Skipped int
}

// copyItem is one pending (destination, source) pair.
type copyItem struct {
	dst string // OS path
	src string // slash-separated path inside the source FS
}

// Folder copies every file below srcDir in src into dstDir, preserving the
// relative layout. Destination directories are created once per directory.
func Folder(ctx context.Context, src fs.FS, srcDir, dstDir string) (Stats, error) {
	var stats Stats

	targets := make(map[string][]copyItem)
	err := fs.WalkDir(src, srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if p == srcDir {
			return fmt.Errorf("%s is not a directory", srcDir)
		}
		rel := p
		if srcDir != "." {
			rel = p[len(srcDir)+1:]
		}
		dst := filepath.Join(dstDir, filepath.FromSlash(rel))
		dir := filepath.Dir(dst)
		targets[dir] = append(targets[dir], copyItem{dst: dst, src: p})
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("walk %s: %w", srcDir, err)
	}

	dirs := make([]string, 0, len(targets))
	for dir := range targets {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return stats, fmt.Errorf("mkdir %s: %w", dir, err)
		}
		for _, item := range targets[dir] {
			if err := ctx.Err(); err != nil {
				return stats, err
			}

			same, err := Same(src, item.src, item.dst)
			if err != nil {
				return stats, err
			}
			if same {
				stats.Skipped++
				continue
			}
			if err := copyFile(src, item.src, item.dst); err != nil {
				return stats, err
			}
			stats.Copied++
		}
	}

	slog.Debug("folder synced",
		"src", srcDir,
		"dst", dstDir,
		"copied", stats.Copied,
		"skipped", stats.Skipped,
	)
	return stats, nil
}

// Same reports whether the file at dst on disk has exactly the contents of
// name in src. A missing dst is not an error.
func Same(src fs.FS, name, dst string) (bool, error) {
	dstInfo, err := os.Stat(dst)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", dst, err)
	}
	if !dstInfo.Mode().IsRegular() {
		return false, nil
	}

	srcInfo, err := fs.Stat(src, name)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", name, err)
	}
	if srcInfo.Size() != dstInfo.Size() {
		return false, nil
	}

	srcSum, err := sumFS(src, name)
	if err != nil {
		return false, err
	}
	dstSum, err := sumFS(os.DirFS(filepath.Dir(dst)), filepath.Base(dst))
	if err != nil {
		return false, err
	}
	return srcSum == dstSum, nil
}

func sumFS(fsys fs.FS, name string) (uint64, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, fmt.Errorf("read %s: %w", name, err)
	}
	return h.Sum64(), nil
}

// copyFile writes name from src to dst, keeping the source modification
// time when the source FS records one (embed.FS does not).
func copyFile(src fs.FS, name, dst string) error {
	in, err := src.Open(name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+path.Base(name)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", dst, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return fmt.Errorf("copy %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", dst, err)
	}
	if mt := info.ModTime(); !mt.IsZero() {
		if err := os.Chtimes(tmp.Name(), mt, mt); err != nil {
			return fmt.Errorf("chtimes %s: %w", dst, err)
		}
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("rename %s: %w", dst, err)
	}
	return nil
}
