// SPDX-License-Identifier: MPL-2.0

// Package archive turns a skill directory into a single compressed artifact
// and computes its integrity token.
package archive

import (
	"archive/zip"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"
)

// Archiver is the archive-creation capability consumed by the pipeline.
// The production implementation writes zip files; tests substitute fakes.
type Archiver interface {
	// Archive packs srcDir into a single file at destPath and returns the
	// resulting artifact's byte size.
	Archive(srcDir, destPath string) (int64, error)
}

// ZipArchiver implements Archiver with deflate-compressed zip files. The
// archive wraps the skill's contents under a single top-level directory
// named after the source directory, so extraction recreates the skill
// folder rather than spilling files.
type ZipArchiver struct{}

var _ Archiver = (*ZipArchiver)(nil)

// Archive packs srcDir into a zip file at destPath.
func (ZipArchiver) Archive(srcDir, destPath string) (int64, error) {
	absSrc, err := filepath.Abs(srcDir)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve source path: %w", err)
	}

	zipFile, err := os.Create(destPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create archive file: %w", err)
	}
	defer zipFile.Close()

	zipWriter := zip.NewWriter(zipFile)
	rootName := filepath.Base(absSrc)

	err = filepath.WalkDir(absSrc, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		relPath, err := filepath.Rel(absSrc, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}

		zipPath := filepath.ToSlash(filepath.Join(rootName, relPath))

		if entry.IsDir() {
			if relPath != "." {
				if _, err := zipWriter.Create(zipPath + "/"); err != nil {
					return fmt.Errorf("failed to create directory entry: %w", err)
				}
			}
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("failed to get file info: %w", err)
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return fmt.Errorf("failed to create file header: %w", err)
		}
		header.Name = zipPath
		header.Method = zip.Deflate

		writer, err := zipWriter.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("failed to create archive entry: %w", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", path, err)
		}
		if _, err := writer.Write(data); err != nil {
			return fmt.Errorf("failed to write file data: %w", err)
		}
		return nil
	})
	if err != nil {
		zipWriter.Close()
		zipFile.Close()
		os.Remove(destPath)
		return 0, fmt.Errorf("failed to pack %s: %w", srcDir, err)
	}

	if err := zipWriter.Close(); err != nil {
		os.Remove(destPath)
		return 0, fmt.Errorf("failed to finalize archive: %w", err)
	}

	stat, err := zipFile.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat archive: %w", err)
	}
	return stat.Size(), nil
}

// Digest computes the canonical content digest of the file at path
// ("sha256:<hex>"), used as the archive's integrity token.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open archive for hashing: %w", err)
	}
	defer f.Close()

	dgst, err := digest.FromReader(f)
	if err != nil {
		return "", fmt.Errorf("failed to hash archive: %w", err)
	}
	return dgst.String(), nil
}
