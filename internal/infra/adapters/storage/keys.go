package storage

import (
	"crypto/rand"
	"path"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ObjectKey builds "<prefix>/<ulid><ext>". ULIDs sort by upload time.
func ObjectKey(prefix, filename string, now time.Time) string {
	id := ulid.MustNew(ulid.Timestamp(now), rand.Reader)
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 10 {
		ext = ""
	}
	return strings.Trim(prefix, "/") + "/" + id.String() + ext
}
