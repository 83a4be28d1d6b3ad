package datasync

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns a collection-unique identifier: the millisecond
// timestamp in base36 plus a random suffix, so identifiers sort roughly
// by creation time while concurrent creates never collide.
func NewID(now time.Time) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return strconv.FormatInt(now.UnixMilli(), 36) + "-" + suffix
}
