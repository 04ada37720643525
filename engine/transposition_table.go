package engine

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash"
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/shoeval/score"
	"github.com/domino14/shoeval/shoe"
)

const (
	numShards = 64
	// rough bytes per map entry: the key, the value and map overhead.
	entrySize = 96
	// minimum number of entries per shard regardless of system memory.
	minShardEntries = 1 << 12

	keyBytes = 2*shoe.NumRanks + 2 + 2*shoe.NumRanks + 2
)

type entryKind uint8

const (
	kindExpectation entryKind = iota
	kindStand
)

const (
	flagFailedInsurance = 1 << iota
	flagIsSplit
	flagFirstSplitHand
)

// tableKey identifies a subproblem exactly. Hands are keyed by composition,
// since no valuation depends on the order the cards were dealt in.
type tableKey struct {
	deck   shoe.Deck
	player [shoe.NumRanks]uint8
	dealer [shoe.NumRanks]uint8
	pscore score.Score
	flags  uint8
	kind   entryKind
}

func expectationKey(st GameState) tableKey {
	return tableKey{
		deck:   st.Deck,
		player: st.Player.Counts(),
		dealer: st.Dealer.Counts(),
		flags:  st.flags(),
		kind:   kindExpectation,
	}
}

// standKey depends on the player's hand only through its score.
func standKey(st GameState, ps score.Score) tableKey {
	k := tableKey{
		deck:   st.Deck,
		dealer: st.Dealer.Counts(),
		pscore: ps,
		kind:   kindStand,
	}
	if st.FailedInsurance {
		k.flags = flagFailedInsurance
	}
	return k
}

func (k *tableKey) hash() uint64 {
	var buf [keyBytes]byte
	b := buf[:0]
	for _, c := range k.deck.Counts() {
		b = binary.LittleEndian.AppendUint16(b, c)
	}
	b = binary.LittleEndian.AppendUint16(b, uint16(k.deck.Size()))
	b = append(b, k.player[:]...)
	b = append(b, k.dealer[:]...)
	b = append(b, byte(k.pscore), k.flags|byte(k.kind)<<4)
	return xxhash.Sum64(b)
}

type TableLock interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

type FakeLock struct{}

func (f FakeLock) Lock()    {}
func (f FakeLock) Unlock()  {}
func (f FakeLock) RLock()   {}
func (f FakeLock) RUnlock() {}

type shard struct {
	TableLock
	entries map[tableKey]float64
}

// TranspositionTable memoizes exact subproblem values. Unlike a search table
// that keys on a lossy hash, entries are keyed by the full state, so a hit
// always returns the value recomputation would give. The hash only picks a
// shard.
type TranspositionTable struct {
	shards          [numShards]shard
	maxShardEntries int

	created   atomic.Uint64
	lookups   atomic.Uint64
	hits      atomic.Uint64
	evictions atomic.Uint64
}

// NewTranspositionTable makes a table allowed to use roughly the given
// fraction of system memory. It is safe for concurrent use.
func NewTranspositionTable(fractionOfMemory float64) *TranspositionTable {
	t := &TranspositionTable{}
	t.SetMultiThreadedMode()
	t.Reset(fractionOfMemory)
	return t
}

func (t *TranspositionTable) SetSingleThreadedMode() {
	for i := range t.shards {
		t.shards[i].TableLock = &FakeLock{}
	}
}

func (t *TranspositionTable) SetMultiThreadedMode() {
	for i := range t.shards {
		t.shards[i].TableLock = new(sync.RWMutex)
	}
}

func (t *TranspositionTable) lookup(k tableKey) (float64, bool) {
	t.lookups.Add(1)
	sh := &t.shards[k.hash()%numShards]
	sh.RLock()
	v, ok := sh.entries[k]
	sh.RUnlock()
	if ok {
		t.hits.Add(1)
	}
	return v, ok
}

func (t *TranspositionTable) store(k tableKey, v float64) {
	sh := &t.shards[k.hash()%numShards]
	sh.Lock()
	defer sh.Unlock()
	if len(sh.entries) >= t.maxShardEntries {
		// a full shard starts over rather than growing without bound.
		t.evictions.Add(uint64(len(sh.entries)))
		sh.entries = make(map[tableKey]float64)
	}
	sh.entries[k] = v
	t.created.Add(1)
}

// Reset empties the table and resizes its capacity.
func (t *TranspositionTable) Reset(fractionOfMemory float64) {
	totalMem := memory.TotalMemory()
	desired := int(fractionOfMemory * float64(totalMem) / entrySize / numShards)
	if desired < minShardEntries {
		desired = minShardEntries
	}
	t.maxShardEntries = desired
	for i := range t.shards {
		sh := &t.shards[i]
		if sh.TableLock == nil {
			sh.TableLock = new(sync.RWMutex)
		}
		sh.Lock()
		sh.entries = make(map[tableKey]float64)
		sh.Unlock()
	}
	log.Debug().Int("max-entries", desired*numShards).
		Uint64("total-system-memory-bytes", totalMem).
		Float64("fraction", fractionOfMemory).
		Msg("transposition-table-size")

	t.created.Store(0)
	t.lookups.Store(0)
	t.hits.Store(0)
	t.evictions.Store(0)
}

// Len is the number of stored entries.
func (t *TranspositionTable) Len() int {
	n := 0
	for i := range t.shards {
		sh := &t.shards[i]
		sh.RLock()
		n += len(sh.entries)
		sh.RUnlock()
	}
	return n
}

type TableStats struct {
	Created   uint64
	Lookups   uint64
	Hits      uint64
	Evictions uint64
}

func (t *TranspositionTable) Stats() TableStats {
	return TableStats{
		Created:   t.created.Load(),
		Lookups:   t.lookups.Load(),
		Hits:      t.hits.Load(),
		Evictions: t.evictions.Load(),
	}
}
