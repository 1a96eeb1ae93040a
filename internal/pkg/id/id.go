package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a store-assigned document identifier. ULIDs sort by creation
// time, so documents listed by id come back in insertion order.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
