package camels

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrArchiveNotFound is returned when the dataset zip does not exist.
	ErrArchiveNotFound = errors.New("archive not found")

	// ErrArchiveCorrupt is returned when the dataset zip cannot be read.
	ErrArchiveCorrupt = errors.New("archive is corrupt")
)

// ExtractResult describes what Extract did.
type ExtractResult struct {
	Skipped bool   // extractDir already existed
	Files   int    // regular files written
	Bytes   uint64 // uncompressed bytes written
}

// Extract unpacks zipPath into destRoot unless extractDir already exists.
// A missing or unreadable archive yields ErrArchiveNotFound or
// ErrArchiveCorrupt; callers report these and carry on.
func Extract(zipPath, extractDir, destRoot string) (ExtractResult, error) {
	if info, err := os.Stat(extractDir); err == nil && info.IsDir() {
		return ExtractResult{Skipped: true}, nil
	}

	r, err := zip.OpenReader(zipPath)
	if errors.Is(err, zip.ErrInsecurePath) {
		r.Close()
		return ExtractResult{}, fmt.Errorf("zip file %s: illegal path in archive: %w", zipPath, err)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ExtractResult{}, fmt.Errorf("zip file %s: %w", zipPath, ErrArchiveNotFound)
		}
		return ExtractResult{}, fmt.Errorf("zip file %s: %w: %v", zipPath, ErrArchiveCorrupt, err)
	}
	defer r.Close()

	var res ExtractResult
	for _, f := range r.File {
		n, err := extractFile(f, destRoot)
		if err != nil {
			return res, err
		}
		if n >= 0 {
			res.Files++
			res.Bytes += uint64(n)
		}
	}
	return res, nil
}

// extractFile writes a single entry below destRoot. Returns -1 for directories.
func extractFile(f *zip.File, destRoot string) (int64, error) {
	target, err := safeJoin(destRoot, f.Name)
	if err != nil {
		return 0, err
	}

	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return 0, fmt.Errorf("create directory %s: %w", target, err)
		}
		return -1, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, fmt.Errorf("create directory for %s: %w", target, err)
	}

	rc, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("open %s: %w: %v", f.Name, ErrArchiveCorrupt, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", target, err)
	}

	n, err := io.Copy(out, rc)
	if err != nil {
		out.Close()
		if errors.Is(err, zip.ErrChecksum) || errors.Is(err, zip.ErrFormat) {
			return 0, fmt.Errorf("extract %s: %w: %v", f.Name, ErrArchiveCorrupt, err)
		}
		return 0, fmt.Errorf("extract %s: %w", f.Name, err)
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", target, err)
	}
	return n, nil
}

// safeJoin resolves name below root and rejects entries that escape it.
func safeJoin(root, name string) (string, error) {
	target := filepath.Join(root, name)
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("illegal path in archive: %s", name)
	}
	return target, nil
}
