package fetch

import (
	"context"
	"os"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/zikoelomari/guardrail/pkg/logger"
)

// Clone fetches a repository with a depth-1 git clone, for remotes that do
// not serve GitHub-style zipball archives. Same cleanup contract as
// FetchGitHub.
func (f *Fetcher) Clone(ctx context.Context, cloneURL, branch, token string) (string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "guardrail-clone-")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	cctx, cancel := context.WithTimeout(ctx, f.cfg.Fetch.Timeout)
	defer cancel()

	opts := &git.CloneOptions{
		URL:          cloneURL,
		Depth:        1,
		SingleBranch: true,
	}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
	}
	if tok := f.authToken(token); tok != "" {
		// Token-as-password is the convention PATs expect over HTTP.
		opts.Auth = &githttp.BasicAuth{Username: "git", Password: tok}
	}
	if _, err := git.PlainCloneContext(cctx, tmpDir, false, opts); err != nil {
		cleanup()
		return "", nil, &RemoteFetchError{URL: cloneURL, Message: err.Error()}
	}
	logger.Info("repository cloned", logger.String("url", cloneURL), logger.String("dir", tmpDir))
	return tmpDir, cleanup, nil
}

// Fetch picks the right transport for a parsed repository reference. An
// empty token falls back to the GITHUB_TOKEN environment variable.
func (f *Fetcher) Fetch(ctx context.Context, ref RepoRef, token string) (string, func(), error) {
	if ref.Host == "github.com" {
		return f.FetchGitHub(ctx, ref, token)
	}
	return f.Clone(ctx, "https://"+ref.Host+"/"+ref.Owner+"/"+ref.Name+".git", ref.Branch, token)
}
