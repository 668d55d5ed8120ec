package ids

import "github.com/segmentio/ksuid"

// New returns a sortable unique identifier. Used for entity ids and for
// keying temporary upload files so identical client filenames never collide.
func New() string {
	return ksuid.New().String()
}
