package brackets

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand"
)

// RNG is the only source of randomness used by draws and tiebreaks.
// *rand.Rand satisfies it.
type RNG interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

func NewSeededRNG(seed int64) RNG {
	return rand.New(rand.NewSource(seed))
}

// DeriveSeed mixes a base seed with labels so every draw and tiebreak of an
// edition gets its own reproducible stream from the edition seed.
func DeriveSeed(base int64, parts ...any) int64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(base))
	h.Write(buf[:])
	for _, part := range parts {
		switch v := part.(type) {
		case int:
			binary.LittleEndian.PutUint64(buf[:], uint64(v))
			h.Write(buf[:])
		case int64:
			binary.LittleEndian.PutUint64(buf[:], uint64(v))
			h.Write(buf[:])
		case string:
			h.Write([]byte(v))
		}
		h.Write([]byte{0})
	}
	return int64(h.Sum64() & (1<<63 - 1))
}
