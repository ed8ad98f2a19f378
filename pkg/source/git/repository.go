package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/config"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/source"
)

// ruleExtension matches the directory source's document extension.
const ruleExtension = ".rules"

// VersionInfo identifies the commit a load was served from.
type VersionInfo struct {
	Commit  string
	Author  string
	Message string
	When    time.Time
}

// Repository tracks a branch of a git repository holding rule documents.
// It implements source.Source over the checked-out work tree.
type Repository struct {
	cfg    config.GitSourceConfig
	logger *slog.Logger

	mu   sync.RWMutex
	repo *gogit.Repository
}

// NewRepository creates a repository source from configuration.
func NewRepository(cfg config.GitSourceConfig) (*Repository, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("repository URL cannot be empty")
	}
	if cfg.Branch == "" {
		return nil, fmt.Errorf("branch cannot be empty")
	}
	return &Repository{
		cfg:    cfg,
		logger: slog.Default().With("component", "source.git"),
	}, nil
}

// Open clones the repository into the configured clone directory, or opens
// an existing clone.
func (r *Repository) Open(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(filepath.Join(r.cfg.CloneDir, ".git")); err == nil {
		repo, err := gogit.PlainOpen(r.cfg.CloneDir)
		if err != nil {
			return fmt.Errorf("open existing clone: %w", err)
		}
		r.repo = repo
		r.logger.Info("opened existing clone", "dir", r.cfg.CloneDir)
		return nil
	}

	if err := os.MkdirAll(r.cfg.CloneDir, 0o755); err != nil {
		return fmt.Errorf("create clone directory: %w", err)
	}

	repo, err := gogit.PlainCloneContext(ctx, r.cfg.CloneDir, false, &gogit.CloneOptions{
		URL:           r.cfg.URL,
		ReferenceName: plumbing.NewBranchReferenceName(r.cfg.Branch),
		SingleBranch:  true,
		Auth:          r.auth(),
	})
	if err != nil {
		return fmt.Errorf("clone %q: %w", r.cfg.URL, err)
	}
	r.repo = repo

	r.logger.Info("cloned rule repository",
		"url", r.cfg.URL,
		"branch", r.cfg.Branch,
		"dir", r.cfg.CloneDir,
	)
	return nil
}

// Pull fetches and fast-forwards the tracked branch. It returns true when
// new commits arrived.
func (r *Repository) Pull(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo == nil {
		return false, fmt.Errorf("repository not opened")
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("worktree: %w", err)
	}

	err = wt.PullContext(ctx, &gogit.PullOptions{
		ReferenceName: plumbing.NewBranchReferenceName(r.cfg.Branch),
		SingleBranch:  true,
		Auth:          r.auth(),
	})
	if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("pull: %w", err)
	}
	return true, nil
}

// Head returns version information for the current checkout.
func (r *Repository) Head() (*VersionInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.repo == nil {
		return nil, fmt.Errorf("repository not opened")
	}

	ref, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", ref.Hash(), err)
	}

	return &VersionInfo{
		Commit:  ref.Hash().String(),
		Author:  commit.Author.Name,
		Message: strings.TrimSpace(commit.Message),
		When:    commit.Author.When,
	}, nil
}

// Load implements source.Source over the configured path inside the
// checkout.
func (r *Repository) Load(ctx context.Context) ([]source.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	dir := filepath.Join(r.cfg.CloneDir, r.cfg.Path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read rule directory %q: %w", dir, err)
	}

	var docs []source.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ruleExtension) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rule document %q: %w", path, err)
		}
		docs = append(docs, source.Document{
			Name: strings.TrimSuffix(entry.Name(), ruleExtension),
			Path: path,
			Data: data,
		})
	}
	return docs, nil
}

// Poll blocks, pulling the branch on the configured interval and invoking
// onChange when new commits arrive. It returns when the context is
// cancelled. A zero interval disables polling.
func (r *Repository) Poll(ctx context.Context, onChange func()) error {
	if r.cfg.PollInterval <= 0 {
		r.logger.Info("git polling disabled")
		return nil
	}

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	r.logger.Info("polling rule repository",
		"interval", r.cfg.PollInterval,
		"branch", r.cfg.Branch,
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			updated, err := r.Pull(ctx)
			if err != nil {
				r.logger.Warn("pull failed", "error", err)
				continue
			}
			if updated {
				if head, err := r.Head(); err == nil {
					r.logger.Info("new commits pulled", "commit", head.Commit)
				}
				onChange()
			}
		}
	}
}

// auth builds transport credentials from configuration, nil for anonymous
// access.
func (r *Repository) auth() transport.AuthMethod {
	if r.cfg.Token == "" {
		return nil
	}
	// go-git requires a non-empty username with token auth; the value is
	// ignored by the common forges.
	return &githttp.BasicAuth{Username: "token", Password: r.cfg.Token}
}
