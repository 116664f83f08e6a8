package utils

import "hash/fnv"

// StableJitter maps the joined parts to a value in [0, n). The same parts
// always give the same value, so offline scores are reproducible.
func StableJitter(n uint64, parts ...string) uint64 {
	if n == 0 {
		return 0
	}
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64() % n
}
