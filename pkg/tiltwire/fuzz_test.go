// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package tiltwire

import (
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

const nameAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789-"

func randomName(rng *rand.Rand) string {
	n := rng.Intn(MaxNameLen + 1)
	b := make([]byte, n)
	for i := range b {
		b[i] = nameAlphabet[rng.Intn(len(nameAlphabet))]
	}
	return string(b)
}

func randomItems(rng *rand.Rand) []ValueItem {
	items := make([]ValueItem, rng.Intn(9))
	for i := range items {
		items[i] = ValueItem{
			Type:     ValueType(rng.Intn(8)), // includes values past the known set
			Scale10:  int8(rng.Intn(7) - 3),
			RawValue: int32(rng.Uint32()),
		}
	}
	return items
}

// FuzzTest: random valid packets must round-trip exactly.
func TestFuzzRoundTrip(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	buf := make([]byte, 4096)
	for round := 0; round < rounds; round++ {
		chipID := rng.Uint32()
		interval := uint16(rng.Uint32())
		name := randomName(rng)
		items := randomItems(rng)

		n, err := Encode(buf, chipID, interval, name, items)
		if err != nil {
			t.Fatalf("round %d: Encode failed: %v", round, err)
		}
		size, ok := PacketSize(len(name), len(items))
		if !ok || n != size {
			t.Fatalf("round %d: Encode wrote %d, PacketSize = (%d, %v)", round, n, size, ok)
		}

		v, err := Decode(buf[:n])
		if err != nil {
			t.Fatalf("round %d: Decode failed: %v", round, err)
		}
		if v.Header.ChipID != chipID || v.Header.IntervalSeconds != interval {
			t.Fatalf("round %d: header mismatch: %+v", round, v.Header)
		}
		if string(v.Name()) != name {
			t.Fatalf("round %d: name mismatch: %q != %q", round, v.Name(), name)
		}
		if v.ItemCount() != len(items) {
			t.Fatalf("round %d: item count mismatch", round)
		}
		for i, want := range items {
			if got := v.Item(i); got != want {
				t.Fatalf("round %d: item %d mismatch: %+v != %+v", round, i, got, want)
			}
		}
	}
}

// FuzzTest: decoding random garbage must never panic and must reject
// anything that is not byte-exact.
func TestFuzzDecodeGarbage(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for round := 0; round < rounds; round++ {
		buf := make([]byte, rng.Intn(256))
		rng.Read(buf)
		// Decode either succeeds with a consistent view or returns an
		// error; both are fine, panics are not.
		if v, err := Decode(buf); err == nil {
			size, ok := PacketSize(int(v.Header.NameLen), int(v.Header.ItemCount))
			if !ok || size != len(buf) {
				t.Fatalf("round %d: accepted inconsistent packet", round)
			}
		}
	}
}

// FuzzTest: a single corrupted length byte must be rejected.
func TestFuzzTruncation(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	buf := make([]byte, 4096)
	for round := 0; round < rounds; round++ {
		name := randomName(rng)
		items := randomItems(rng)
		n, err := Encode(buf, rng.Uint32(), 60, name, items)
		if err != nil {
			t.Fatalf("round %d: Encode failed: %v", round, err)
		}
		if n <= HeaderSize {
			continue
		}
		cut := HeaderSize + rng.Intn(n-HeaderSize)
		if _, err := Decode(buf[:cut]); err == nil {
			t.Fatalf("round %d: accepted truncated packet (%d of %d bytes)", round, cut, n)
		}
	}
}
