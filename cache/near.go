package cache

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Near is an optional in-process layer consulted before the store on the
// read path. It only ever holds values this process wrote or already read
// back, so it speeds up re-reads without promising anything about writes
// from other processes — the store stays authoritative.
type Near struct {
	rc *ristretto.Cache[string, string]
}

// NewNear creates a near cache holding up to maxEntries values (each entry
// has a cost of 1).
func NewNear(maxEntries int64) (*Near, error) {
	rc, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Near{rc: rc}, nil
}

func (n *Near) get(key string) (string, bool) {
	return n.rc.Get(key)
}

func (n *Near) set(key, value string, ttl time.Duration) {
	n.rc.SetWithTTL(key, value, 1, ttl)
	n.rc.Wait()
}

func (n *Near) del(key string) {
	n.rc.Del(key)
}
