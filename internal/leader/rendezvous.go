package leader

import (
	"github.com/cespare/xxhash/v2"
	rendezvous "github.com/dgryski/go-rendezvous"
)

// hashNode hashes the instance id via xxhash, the member hash function
// go-rendezvous requires to score each node deterministically against a
// given key.
func hashNode(instanceID string) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(instanceID)
	return h.Sum64()
}

// Affinity picks a *preferred* instance per room from the configured
// instance set so lease acquisition has a stable first guess instead of
// racing every instance against every room on every restart. It never
// guarantees ownership — the lease handshake in Elector is still what
// decides who actually writes a room — it only reduces churn when the
// instance set is stable across restarts.
type Affinity struct {
	rv *rendezvous.Rendezvous
}

// NewAffinity builds an affinity picker over the given instance ids. An
// empty set is valid; PreferredInstance then has nothing to recommend and
// callers fall straight to "attempt acquisition blind."
func NewAffinity(instanceIDs []string) *Affinity {
	return &Affinity{rv: rendezvous.New(instanceIDs, hashNode)}
}

// PreferredInstance returns the instance the rendezvous hash assigns to
// roomID, or "" if no instances are configured.
func (a *Affinity) PreferredInstance(roomID string) string {
	if a.rv == nil {
		return ""
	}
	return a.rv.Lookup(roomID)
}

// UpdateInstances rebuilds the hash ring after the instance set changes
// (scale-out/in), redistributing preference with minimal disruption —
// rendezvous hashing's whole point versus a plain mod-N assignment.
func (a *Affinity) UpdateInstances(instanceIDs []string) {
	a.rv = rendezvous.New(instanceIDs, hashNode)
}
