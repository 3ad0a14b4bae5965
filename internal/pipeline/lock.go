package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"ytscribe/internal/handoff"
	"ytscribe/internal/services"
)

// acquireLock takes the output-directory lock without blocking. The returned
// release func is safe to call once.
func acquireLock(outDir string) (func() error, error) {
	lockPath := filepath.Join(outDir, handoff.LockFileName)
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "acquire lock", lockPath, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "acquire lock",
			fmt.Sprintf("another run is already using %s", outDir), nil)
	}
	return lock.Unlock, nil
}
