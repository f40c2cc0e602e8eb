package tempcleaner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"hr-docgen-backend/lib/assembler"
	baseworker "hr-docgen-backend/lib/utils/base-worker"
	"hr-docgen-backend/lib/utils/helpers"
)

// StartWorker periodically removes candidate workspaces left behind by an interrupted run.
func StartWorker(ctx context.Context, tempDir string, interval, maxAge time.Duration) {
	i := &impl{
		BaseImpl: *baseworker.NewInstance("TempCleaner", time.Minute, interval),
		tempDir:  tempDir,
		maxAge:   maxAge,
	}
	go i.Run(ctx, i.handle)
}

type impl struct {
	baseworker.BaseImpl
	tempDir string
	maxAge  time.Duration
}

func (i impl) handle(ctx context.Context) {
	logger := i.GetLogger().WithField("temp_dir", i.tempDir)
	removed, err := Clean(ctx, i.tempDir, i.maxAge, time.Now())
	if err != nil {
		logger.WithError(err).Error("unable to clean temp directory")
		return
	}
	if removed > 0 {
		logger.WithField("removed", removed).Info("stale candidate workspaces removed")
	}
}

// Clean removes candidate workspaces under dir last modified more than maxAge before now.
func Clean(ctx context.Context, dir string, maxAge time.Duration, now time.Time) (int, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "unable to list temp directory")
	}
	removed := 0
	for _, item := range items {
		if helpers.IsContextDone(ctx) {
			break
		}
		if !item.IsDir() || !strings.HasPrefix(item.Name(), assembler.WorkspacePrefix) {
			continue
		}
		info, err := item.Info()
		if err != nil || now.Sub(info.ModTime()) < maxAge {
			continue
		}
		if err = os.RemoveAll(filepath.Join(dir, item.Name())); err != nil {
			return removed, errors.Wrapf(err, "unable to remove %s", item.Name())
		}
		removed++
	}
	return removed, nil
}
