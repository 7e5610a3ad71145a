package ids

import "github.com/segmentio/ksuid"

// New returns a time-sortable identifier for rows created by this service.
func New() string {
	return ksuid.New().String()
}
