package fetch

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"

	"github.com/zikoelomari/guardrail/pkg/safeio"
)

// extractZip unpacks an archive under destDir with two safeguards: the sum
// of declared entry sizes is checked against the extraction ceiling before
// any write, and every entry path must resolve inside destDir. Declared
// sizes can lie, so the ceiling is enforced again on actual bytes written.
func extractZip(archivePath, destDir string, maxBytes int64) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return &RemoteFetchError{URL: archivePath, Message: "invalid zip archive: " + err.Error()}
	}
	defer reader.Close()

	var declared int64
	for _, entry := range reader.File {
		declared += int64(entry.UncompressedSize64)
	}
	if declared > maxBytes {
		return &ArchiveSizeError{Kind: "extract", Limit: maxBytes}
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	var written int64
	for _, entry := range reader.File {
		target, err := safeio.EnsureContained(destDir, filepath.Join(destDir, entry.Name))
		if err != nil {
			return &ArchiveTraversalError{Entry: entry.Name}
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}

		n, err := writeEntry(entry, target, maxBytes-written, maxBytes)
		written += n
		if err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(entry *zip.File, target string, remaining, limit int64) (int64, error) {
	if remaining <= 0 {
		return 0, &ArchiveSizeError{Kind: "extract", Limit: limit}
	}
	src, err := entry.Open()
	if err != nil {
		return 0, err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, entry.Mode().Perm()|0o200)
	if err != nil {
		return 0, err
	}
	defer dst.Close()

	// Read one byte past the budget so an over-limit entry is detected
	// rather than silently truncated.
	n, err := io.Copy(dst, io.LimitReader(src, remaining+1))
	if err != nil {
		return n, err
	}
	if n > remaining {
		return n, &ArchiveSizeError{Kind: "extract", Limit: limit}
	}
	return n, nil
}
