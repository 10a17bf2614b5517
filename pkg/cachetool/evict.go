package cachetool

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// EvictOlderThan removes cache entries not accessed within the last age
// seconds. Bounding age by the job uptime drops everything this job
// never touched.
func (t *Tool) EvictOlderThan(ctx context.Context, age int64) error {
	if _, err := t.exec(ctx, "--evict-older-than", fmt.Sprintf("%ds", age)); err != nil {
		return errors.Wrap(err, "evict stale entries")
	}
	return nil
}
