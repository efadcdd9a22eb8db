// Package gitsync implements a pipeline.Step that clones a git repository
// if absent or fetches from origin if present, grounded on
// internal/plugins/repo/repo.go's PlainOpen/Clone/Fetch flow via go-git.
package gitsync

import (
	"context"
	"fmt"
	"os"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/kestrelrun/taskpipe/pkg/pipeline"
)

// Settings configures one gitsync step.
type Settings struct {
	URL         string
	Destination string
	Branch      string
	Depth       int
}

// Step clones or updates Settings.URL at Settings.Destination.
type Step[C any] struct {
	pipeline.BaseStep
	Settings Settings
}

// New constructs a Step from a plan's settings map.
func New[C any](id, description string, critical bool, settings map[string]any) (pipeline.Step[C], error) {
	s := Settings{}
	if v, ok := settings["url"].(string); ok {
		s.URL = v
	}
	if v, ok := settings["destination"].(string); ok {
		s.Destination = v
	}
	if v, ok := settings["branch"].(string); ok {
		s.Branch = v
	}
	if v, ok := settings["depth"].(int); ok {
		s.Depth = v
	}
	if s.URL == "" || s.Destination == "" {
		return nil, fmt.Errorf("gitsync step %q: url and destination are required", id)
	}

	return Step[C]{
		BaseStep: pipeline.BaseStep{StepID: id, StepDesc: description, NonCritical: !critical},
		Settings: s,
	}, nil
}

// Run clones Settings.URL into Settings.Destination if it doesn't already
// hold a git repository, otherwise fetches from origin. After a fetch, if
// Settings.Branch is set the worktree is checked out at the fetched
// origin/<Branch> commit (a detached HEAD); if it is not set the worktree
// and local branches are left as they were. It contributes repo_heads (map[string]any: destination -> resolved HEAD
// short name) to the context's results.
func (s Step[C]) Run(goCtx context.Context, ctx *pipeline.Context[C]) (*pipeline.Context[C], error) {
	ctx.UpdateStepProgress(10)

	repo, err := s.openOrClone(goCtx)
	if err != nil {
		return nil, err
	}
	ctx.UpdateStepProgress(70)

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("gitsync %s: resolve HEAD: %w", s.Settings.Destination, err)
	}

	ctx.Results["repo_heads"] = map[string]any{s.Settings.Destination: head.Name().Short()}
	ctx.UpdateStepProgress(100)
	return ctx, nil
}

func (s Step[C]) openOrClone(goCtx context.Context) (*git.Repository, error) {
	if _, err := os.Stat(s.Settings.Destination); err == nil {
		repo, openErr := git.PlainOpen(s.Settings.Destination)
		if openErr == nil {
			if err := s.fetch(goCtx, repo); err != nil {
				return nil, err
			}
			return repo, nil
		}
	}

	opts := &git.CloneOptions{URL: s.Settings.URL}
	if s.Settings.Depth > 0 {
		opts.Depth = s.Settings.Depth
	}
	if s.Settings.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(s.Settings.Branch)
	}

	return git.PlainCloneContext(goCtx, s.Settings.Destination, false, opts)
}

func (s Step[C]) fetch(goCtx context.Context, repo *git.Repository) error {
	err := repo.FetchContext(goCtx, &git.FetchOptions{RemoteName: "origin"})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("gitsync %s: fetch: %w", s.Settings.Destination, err)
	}

	if s.Settings.Branch == "" {
		return nil
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("gitsync %s: worktree: %w", s.Settings.Destination, err)
	}

	branchRef := plumbing.NewRemoteReferenceName("origin", s.Settings.Branch)
	ref, err := repo.Reference(branchRef, true)
	if err != nil {
		return fmt.Errorf("gitsync %s: resolve branch %s: %w", s.Settings.Destination, s.Settings.Branch, err)
	}

	if err := wt.Checkout(&git.CheckoutOptions{Hash: ref.Hash()}); err != nil {
		return fmt.Errorf("gitsync %s: checkout: %w", s.Settings.Destination, err)
	}
	return nil
}
