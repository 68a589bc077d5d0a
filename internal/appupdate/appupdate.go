// Package appupdate checks for newer released versions in the background
// and records the result so the next session can mention it.
package appupdate

import (
	"context"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/atinylittleshell/seek/internal/core"
	"github.com/atinylittleshell/seek/internal/filesystem"
)

// repoSlug is the repository queried for releases.
const repoSlug = "atinylittleshell/seek"

// HandleSelfUpdate kicks off the background version check. The returned
// channel yields the newer version string when one is found and is closed
// when the check completes either way.
func HandleSelfUpdate(
	currentVersion string,
	logger *zap.Logger,
	fs filesystem.FileSystem,
	updater Updater,
) chan string {
	resultChannel := make(chan string)

	currentSemVer, err := semver.NewVersion(currentVersion)
	if err != nil {
		logger.Debug("running a dev build, skipping self-update check")
		close(resultChannel)
		return resultChannel
	}

	go fetchAndSaveLatestVersion(resultChannel, logger, fs, updater, currentSemVer)

	return resultChannel
}

// NotificationMessage returns the new-version notice for startup, or an
// empty string when the recorded latest version is not newer than the
// running one.
func NotificationMessage(currentVersion string, fs filesystem.FileSystem) string {
	currentSemVer, err := semver.NewVersion(currentVersion)
	if err != nil {
		return ""
	}

	latest := readLatestVersion(fs)
	if latest == "" {
		return ""
	}

	latestSemVer, err := semver.NewVersion(latest)
	if err != nil || latestSemVer.LessThanEqual(currentSemVer) {
		return ""
	}

	return "A new version of seek is available: " + latest
}

func readLatestVersion(fs filesystem.FileSystem) string {
	content, err := fs.ReadFile(core.LatestVersionFile())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(content)
}

func fetchAndSaveLatestVersion(resultChannel chan string, logger *zap.Logger, fs filesystem.FileSystem, updater Updater, currentSemVer *semver.Version) {
	defer close(resultChannel)

	latest, found, err := updater.DetectLatest(context.Background(), repoSlug)
	if err != nil {
		logger.Warn("error occurred while getting latest version from remote", zap.Error(err))
		return
	}
	if !found {
		logger.Warn("latest version could not be found")
		return
	}

	latestSemVer, err := semver.NewVersion(latest.Version())
	if err != nil {
		logger.Error("failed to parse latest version", zap.Error(err))
		return
	}

	if latestSemVer.LessThanEqual(currentSemVer) {
		logger.Debug("already running the latest version")
		return
	}

	// Save the latest version for notification on the next startup
	if err := fs.WriteFile(core.LatestVersionFile(), latest.Version()); err != nil {
		logger.Error("failed to save latest version", zap.Error(err))
		return
	}

	logger.Info("new version available",
		zap.String("current", currentSemVer.String()),
		zap.String("latest", latest.Version()),
	)
	resultChannel <- latest.Version()
}
