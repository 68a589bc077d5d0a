package appupdate

import (
	"context"

	"github.com/creativeprojects/go-selfupdate"
)

// Release is the subset of release metadata the update check needs.
type Release interface {
	Version() string
}

// Updater detects the latest published release for a repository.
type Updater interface {
	DetectLatest(ctx context.Context, repo string) (Release, bool, error)
}

// DefaultUpdater implements Updater on top of go-selfupdate.
type DefaultUpdater struct{}

func (DefaultUpdater) DetectLatest(ctx context.Context, repo string) (Release, bool, error) {
	updater, err := selfupdate.NewUpdater(selfupdate.Config{})
	if err != nil {
		return nil, false, err
	}

	release, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(repo))
	if err != nil || !found || release == nil {
		return nil, found, err
	}
	return release, true, nil
}
