package fetch

import "fmt"

// RemoteFetchError indicates the remote host rejected or failed the download
type RemoteFetchError struct {
	URL        string
	StatusCode int
	Message    string
}

func (e *RemoteFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: HTTP %d: %s", e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("fetching %s: %s", e.URL, e.Message)
}

// ArchiveSizeError indicates a size ceiling was exceeded. Kind is either
// "transfer" (bytes over the wire) or "extract" (bytes on disk).
type ArchiveSizeError struct {
	Kind  string
	Limit int64
}

func (e *ArchiveSizeError) Error() string {
	return fmt.Sprintf("archive exceeds %s limit of %d bytes", e.Kind, e.Limit)
}

// ArchiveTraversalError indicates an archive entry that would escape the
// extraction directory. The whole extraction is aborted, not just the entry.
type ArchiveTraversalError struct {
	Entry string
}

func (e *ArchiveTraversalError) Error() string {
	return fmt.Sprintf("archive entry %q escapes the extraction directory", e.Entry)
}
