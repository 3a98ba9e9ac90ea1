package storage

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	keyPrefix       = "posts/"
	maxNameLength   = 100
	defaultFileName = "media"
)

// NewObjectKey derives a unique key for an uploaded file. The random
// component keeps same-named uploads in the same millisecond apart.
func NewObjectKey(now time.Time, originalName string) string {
	return fmt.Sprintf("%s%d-%s-%s", keyPrefix, now.UnixMilli(), uuid.NewString(), sanitizeFileName(originalName))
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	clean := strings.Trim(b.String(), "._")
	if clean == "" {
		return defaultFileName
	}
	if len(clean) > maxNameLength {
		clean = clean[len(clean)-maxNameLength:]
	}
	return clean
}
