package lock

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var (
	lockMap sync.Map
)

var ErrLockTimeout = errors.New("resource is busy")

// WithDelay runs safeCode while holding the named lock, waiting at most wait for it.
func WithDelay(ctx context.Context, key string, wait time.Duration, safeCode func() error) (success bool, err error) {
	isTimeout := time.After(wait)
	for {
		if _, loaded := lockMap.LoadOrStore(key, true); !loaded {
			break
		}
		select {
		case <-isTimeout:
			return false, nil
		case <-ctx.Done():
			return false, nil
		default:
			time.Sleep(50 * time.Millisecond)
		}
	}
	defer lockMap.Delete(key)
	return true, safeCode()
}

// Exclusive is WithDelay that reports a busy lock as ErrLockTimeout.
func Exclusive(ctx context.Context, key string, wait time.Duration, safeCode func() error) error {
	ok, err := WithDelay(ctx, key, wait, safeCode)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrap(ErrLockTimeout, key)
	}
	return nil
}
