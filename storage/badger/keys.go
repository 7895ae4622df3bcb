package badger

import (
	"encoding/binary"

	"github.com/poiesic/lexidict/storage"
)

// Key prefixes for different index families
const (
	forwardPrefix      = "fwd:"
	reversePrefix      = "rev:"
	inflectionPrefix   = "inf:"
	cooccurrencePrefix = "cooc:"
	rankForwardPrefix  = "rkf:"
	rankReversePrefix  = "rkr:"
	rankCountPrefix    = "meta:rankcount:"
)

func makeKey(prefix, key string) []byte {
	buf := make([]byte, len(prefix)+len(key))
	offset := copy(buf, prefix)
	copy(buf[offset:], key)
	return buf
}

// rankPrefix returns the key prefix of a family's ranked list.
func rankPrefix(family storage.Family) string {
	if family == storage.Reverse {
		return rankReversePrefix
	}
	return rankForwardPrefix
}

// makeRankKey generates a composite key for a ranked list slot.
// Format: prefix + 8-byte big-endian rank, so iteration order is rank order.
func makeRankKey(family storage.Family, rank int) []byte {
	prefix := rankPrefix(family)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(rank))
	return buf
}

// parseRankKey extracts the rank from a key built by makeRankKey.
func parseRankKey(family storage.Family, key []byte) (int, bool) {
	prefix := rankPrefix(family)
	if len(key) != len(prefix)+8 {
		return 0, false
	}
	return int(binary.BigEndian.Uint64(key[len(prefix):])), true
}

func makeRankCountKey(family storage.Family) []byte {
	return makeKey(rankCountPrefix, family.String())
}
