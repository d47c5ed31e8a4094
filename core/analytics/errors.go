package analytics

import (
	"fmt"
	"time"

	"github.com/kilianp07/rideslots/core/model"
)

func notFound(t time.Time) error {
	return fmt.Errorf("%w: %s", model.ErrNotFound, model.FormatTimestamp(t))
}
