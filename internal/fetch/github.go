/*
Copyright © 2025 Zakaria El Omari
*/
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gitsight/go-vcsurl"
	"github.com/go-resty/resty/v2"
	"github.com/google/go-github/v47/github"

	"github.com/zikoelomari/guardrail/pkg/config"
	"github.com/zikoelomari/guardrail/pkg/logger"
)

const downloadChunkSize = 32 * 1024

// RepoRef identifies a remote repository to fetch
type RepoRef struct {
	Host   string
	Owner  string
	Name   string
	Branch string
}

func (r RepoRef) String() string {
	return fmt.Sprintf("%s/%s/%s@%s", r.Host, r.Owner, r.Name, r.Branch)
}

// Fetcher downloads remote repositories into bounded local directories.
// GitHub repositories come down as zipball archives; anything else falls
// back to a shallow git clone.
type Fetcher struct {
	cfg  *config.Config
	http *resty.Client
	gh   *github.Client

	// zipballURL overrides the GitHub API base, for tests
	zipballURL string
}

func NewFetcher(cfg *config.Config) *Fetcher {
	httpc := resty.New()
	httpc.SetTimeout(cfg.Fetch.Timeout)
	httpc.SetHeader("Accept", "application/vnd.github+json")
	return &Fetcher{
		cfg:        cfg,
		http:       httpc,
		gh:         github.NewClient(nil),
		zipballURL: "https://api.github.com/repos/%s/%s/zipball/%s",
	}
}

// ParseRepoURL extracts owner/name/branch from a repository URL.
// A "#branch" fragment selects a branch explicitly.
func ParseRepoURL(raw string) (RepoRef, error) {
	branch := ""
	if idx := strings.Index(raw, "#"); idx >= 0 {
		branch = raw[idx+1:]
		raw = raw[:idx]
	}
	info, err := vcsurl.Parse(strings.TrimSuffix(raw, "/"))
	if err != nil {
		return RepoRef{}, &RemoteFetchError{URL: raw, Message: fmt.Sprintf("unrecognized repository URL: %v", err)}
	}
	if info.Username == "" || info.Name == "" {
		return RepoRef{}, &RemoteFetchError{URL: raw, Message: "repository URL must include owner and name"}
	}
	return RepoRef{
		Host:   string(info.Host),
		Owner:  info.Username,
		Name:   strings.TrimSuffix(info.Name, ".git"),
		Branch: branch,
	}, nil
}

// authToken resolves the effective token: an explicit per-request token
// wins, otherwise the GITHUB_TOKEN environment variable.
func (f *Fetcher) authToken(token string) string {
	if token != "" {
		return token
	}
	return os.Getenv("GITHUB_TOKEN")
}

// FetchGitHub downloads a GitHub repository zipball and extracts it under a
// temp directory. The token (or GITHUB_TOKEN) authorizes private repository
// access. The returned cleanup removes everything; callers must run it on
// every path, including after scan failures.
func (f *Fetcher) FetchGitHub(ctx context.Context, ref RepoRef, token string) (string, func(), error) {
	if ref.Branch == "" {
		ref.Branch = f.defaultBranch(ctx, ref)
	}

	tmpDir, err := os.MkdirTemp("", "guardrail-fetch-")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	archivePath := tmpDir + "/repo.zip"
	if err := f.downloadZipball(ctx, ref, token, archivePath); err != nil {
		cleanup()
		return "", nil, err
	}

	extractDir := tmpDir + "/src"
	if err := extractZip(archivePath, extractDir, f.cfg.Fetch.MaxExtractBytes); err != nil {
		cleanup()
		return "", nil, err
	}
	// Zipballs wrap everything in a single owner-repo-sha directory.
	root, err := soleSubdirOrSelf(extractDir)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	logger.Info("repository fetched", logger.String("repo", ref.String()), logger.String("dir", root))
	return root, cleanup, nil
}

// defaultBranch asks the GitHub API for the repository's default branch,
// falling back to "main" when the API is unreachable or rate limited.
func (f *Fetcher) defaultBranch(ctx context.Context, ref RepoRef) string {
	repo, _, err := f.gh.Repositories.Get(ctx, ref.Owner, ref.Name)
	if err != nil || repo.GetDefaultBranch() == "" {
		logger.Warn("could not resolve default branch; assuming main",
			logger.String("repo", ref.Owner+"/"+ref.Name))
		return "main"
	}
	return repo.GetDefaultBranch()
}

// downloadZipball streams the archive to disk, enforcing the transfer
// ceiling both on the advertised Content-Length and on the actual bytes
// read, since chunked responses carry no length header.
func (f *Fetcher) downloadZipball(ctx context.Context, ref RepoRef, token, dest string) error {
	url := fmt.Sprintf(f.zipballURL, ref.Owner, ref.Name, ref.Branch)
	limit := f.cfg.Fetch.MaxArchiveBytes

	req := f.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)
	if tok := f.authToken(token); tok != "" {
		req.SetHeader("Authorization", "Bearer "+tok)
	}
	resp, err := req.Get(url)
	if err != nil {
		return &RemoteFetchError{URL: url, Message: err.Error()}
	}
	body := resp.RawBody()
	defer body.Close()

	switch code := resp.StatusCode(); code {
	case http.StatusOK:
	case http.StatusNotFound:
		return &RemoteFetchError{URL: url, StatusCode: code, Message: "repository or branch not found"}
	case http.StatusForbidden:
		return &RemoteFetchError{URL: url, StatusCode: code, Message: "access denied or rate limit exceeded"}
	default:
		return &RemoteFetchError{URL: url, StatusCode: code, Message: "zipball download failed"}
	}
	if length := resp.RawResponse.ContentLength; length > 0 && length > limit {
		return &ArchiveSizeError{Kind: "transfer", Limit: limit}
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer out.Close()

	var total int64
	buf := make([]byte, downloadChunkSize)
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			total += int64(n)
			if total > limit {
				return &ArchiveSizeError{Kind: "transfer", Limit: limit}
			}
			if _, werr := out.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return &RemoteFetchError{URL: url, Message: rerr.Error()}
		}
	}
}

func soleSubdirOrSelf(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return dir + "/" + entries[0].Name(), nil
	}
	return dir, nil
}
