package art

import (
	"sync"
	"sync/atomic"
)

// bagCap is the number of deferred destructors a single bag holds before it
// is sealed and handed to the global queue (spec.md §6 "BAG_CAP = 64 (4
// under sanitizer)"). Build with -tags art_sanitizer to shrink this for
// stress testing under the race detector, matching the spec's sanitizer
// mode.
const bagCap = bagCapConst

// epochModulus is the number of distinct epoch values the global counter
// cycles through (spec.md §6 "Epoch modulus = 3").
const epochModulus = 3

// pinnedBit marks a Local's published epoch as "currently pinned"; the
// Global only considers a Local's epoch when this bit is set, so an
// unpinned participant can never hold back reclamation (spec.md §4.1
// "Key guarantee").
const pinnedBit = uint64(1) << 63

// unpinnedSentinel is what an unpinned Local publishes. It must never equal
// a valid (pinnedBit|epoch) value.
const unpinnedSentinel = ^uint64(0) &^ pinnedBit

// bag holds a bounded set of deferred node destructors, sealed with the
// global epoch at the time it was retired (spec.md §4.1 "Bag").
type bag struct {
	stamp   uint64
	thunks  []func()
	next    *bag // intrusive link for the global sealed-bag queue
}

func newBag() *bag {
	return &bag{thunks: make([]func(), 0, bagCap)}
}

func (b *bag) full() bool {
	return len(b.thunks) == cap(b.thunks)
}

func (b *bag) push(thunk func()) {
	b.thunks = append(b.thunks, thunk)
}

func (b *bag) collect() {
	for _, fn := range b.thunks {
		fn()
	}
	b.thunks = nil
}

// localState is a single participant's record in the global registry
// (spec.md §4.1 "Local"). It is never removed from the registry once
// registered; retired participants simply stop publishing a pinned epoch,
// which is enough for the global epoch to advance past them.
type localState struct {
	// epoch encodes (pinnedBit | current_epoch) while pinned, or
	// unpinnedSentinel while not. Acquire/release semantics: a reader of
	// the global epoch publishes with release so that a concurrent
	// advance-epoch scan observing the new value also observes everything
	// the pin happened-before.
	epoch atomic.Uint64

	// pinCount makes pin/unpin reentrant: only the outermost Guard drop
	// actually unpins (spec.md §4.1 "pin() is reentrant via the pin
	// counter; only the outermost drop unpins").
	pinCount atomic.Int64

	localBag *bag

	next *localState // intrusive link in the global registry list
}

// global is the shared epoch-reclamation state for one Tree (spec.md §4.1
// "Global"). The participant registry is a lock-free singly-linked list
// built with the standard Treiber-stack push: new nodes are CAS'd onto the
// head, and since entries are never unlinked (only marked unpinned), no ABA
// hazard arises from removal.
type global struct {
	epoch atomic.Uint64 // current global epoch, 0..epochModulus-1

	registryHead atomic.Pointer[localState]

	mu         sync.Mutex // guards sealedHead/sealedTail; collection is rare relative to pin/defer
	sealedHead *bag
	sealedTail *bag

	// pool amortizes localState allocation across unrelated pin sessions:
	// Put only happens once a participant's pin counter reaches zero, so a
	// Get either returns a genuinely idle localState or allocates a new
	// one. It is a reuse cache, not a goroutine-identity lookup - it gives
	// no guarantee that two Get calls from the same goroutine return the
	// same object, so it cannot by itself provide pin reentrancy; that
	// comes from threading one Guard through via Guard.Pin instead.
	pool sync.Pool
}

func newGlobal() *global {
	g := &global{}
	g.pool.New = func() any {
		ls := &localState{localBag: newBag()}
		ls.epoch.Store(unpinnedSentinel)
		g.register(ls)
		return ls
	}
	return g
}

func (g *global) register(ls *localState) {
	for {
		head := g.registryHead.Load()
		ls.next = head
		if g.registryHead.CompareAndSwap(head, ls) {
			return
		}
	}
}

// Guard witnesses that the calling goroutine is pinned: no node observed
// through this Guard can be destroyed before the Guard is dropped (spec.md
// §4.1 "Key guarantee").
//
// Guard is reentrant, but reentrancy is explicit, not goroutine-detected:
// code that already holds a Guard and needs to pin again for a nested call
// threads that same Guard through via Pin, rather than calling Tree.Pin a
// second time. Tree.Pin always registers a (possibly pool-recycled)
// localState as a fresh participant - sync.Pool here is an allocation cache
// across unrelated pin sessions, not a goroutine-identity lookup, so two
// independent Tree.Pin calls from the same goroutine are NOT guaranteed to
// share a localState. This is the same reasoning SPEC_FULL.md gives for not
// wiring a goroutine-local-storage library: a participant is an explicit
// handle, not something the reclaimer guesses at from the calling stack.
type Guard struct {
	g  *global
	ls *localState
}

// pin implements Tree.Pin / spec.md §4.1 "pin()" for a brand new
// participant. It never reuses an already-pinned localState; reentrant
// nested pins go through Guard.Pin instead.
func (g *global) pin() *Guard {
	ls := g.pool.Get().(*localState)
	cur := g.epoch.Load()
	ls.epoch.Store(pinnedBit | cur) // release: publishes epoch + pinned
	ls.pinCount.Store(1)
	return &Guard{g: g, ls: ls}
}

// Pin acquires an additional nested pin on gd's own participant, reusing its
// localState and bumping its pin counter rather than registering a new one
// (spec.md §4.1 "pin() is reentrant via the pin counter; only the outermost
// drop unpins"). Use this - not Tree.Pin - when code that already holds a
// Guard calls into another operation that wants its own Guard to drop.
func (gd *Guard) Pin() *Guard {
	gd.ls.pinCount.Add(1)
	return &Guard{g: gd.g, ls: gd.ls}
}

// Unpin releases the Guard. Only the outermost Unpin for a given localState
// actually clears the pinned bit; this makes pin reentrant per spec.md
// §4.1's "Failure model".
func (gd *Guard) Unpin() {
	if gd == nil || gd.ls == nil {
		return
	}
	if gd.ls.pinCount.Add(-1) == 0 {
		gd.ls.epoch.Store(unpinnedSentinel)
		gd.g.pool.Put(gd.ls)
	}
	gd.ls = nil
}

// defer appends a destructor for a retired node to the pinned participant's
// local bag, sealing and rotating the bag if it's full (spec.md §4.1
// "defer()"). The Guard must be the one the retiring writer is already
// holding.
func (gd *Guard) defer_(thunk func()) {
	ls := gd.ls
	if ls.localBag.full() {
		gd.g.seal(ls.localBag)
		ls.localBag = newBag()
	}
	ls.localBag.push(thunk)
	gd.g.tryAdvance()
}

// seal stamps a full bag with the current global epoch and pushes it onto
// the global sealed queue for later collection.
func (g *global) seal(b *bag) {
	b.stamp = g.epoch.Load()
	b.next = nil
	g.mu.Lock()
	if g.sealedTail == nil {
		g.sealedHead, g.sealedTail = b, b
	} else {
		g.sealedTail.next = b
		g.sealedTail = b
	}
	g.mu.Unlock()
}

// tryAdvance inspects every registered participant; if every pinned
// participant has published an epoch within one step of the current global
// epoch, it CASes the global epoch forward by one (spec.md §4.1 "Epoch
// advancement"). It then collects any bag that is now at least two epochs
// stale.
func (g *global) tryAdvance() {
	cur := g.epoch.Load()
	for ls := g.registryHead.Load(); ls != nil; ls = ls.next {
		e := ls.epoch.Load()
		if e&pinnedBit == 0 {
			continue // not pinned, can't hold back the epoch
		}
		participantEpoch := e &^ pinnedBit
		if participantEpoch != cur && participantEpoch != (cur+1)%epochModulus {
			return // someone is lagging by more than we tolerate; don't advance
		}
	}
	next := (cur + 1) % epochModulus
	if !g.epoch.CompareAndSwap(cur, next) {
		return // lost the race with another advancer, fine
	}
	g.collect(next)
}

// collect drains every sealed bag whose stamp is at least two epochs behind
// the (just-advanced) global epoch, running each deferred destructor
// exactly once (spec.md §4.1 "Collection").
func (g *global) collect(curEpoch uint64) {
	g.mu.Lock()
	var ready []*bag
	var head *bag = g.sealedHead
	var prev *bag
	for b := head; b != nil; {
		next := b.next
		if epochIsStale(b.stamp, curEpoch) {
			ready = append(ready, b)
			if prev == nil {
				g.sealedHead = next
			} else {
				prev.next = next
			}
			if b == g.sealedTail {
				g.sealedTail = prev
			}
		} else {
			prev = b
		}
		b = next
	}
	g.mu.Unlock()

	for _, b := range ready {
		b.collect()
	}
}

// epochIsStale reports whether a bag sealed at stamp is at least two epochs
// behind cur, accounting for wraparound in a modulus-3 counter (spec.md
// §4.1 "stamp is <= global_epoch - 2 (wrapping arithmetic, comparing with a
// window of one-third of the modulus)").
func epochIsStale(stamp, cur uint64) bool {
	diff := (cur - stamp + epochModulus) % epochModulus
	return diff >= 2
}

// flush forces one advancement attempt and drains whatever becomes
// collectible; used by Tree.Flush (spec.md §5 "Bounds ... drop of a Handle
// triggers a flush").
func (g *global) flush() {
	g.tryAdvance()
}

// retire is the convenience entry point tree.go uses to hand a replaced
// node to the reclaimer: it defers the node's destruction until it's safe.
// It does not mark the node obsolete; callers that hold the node's write
// lock do that themselves with writeUnlockObsolete before retiring it.
func retire[K Key, V any](gd *Guard, n *artNode[K, V]) {
	if n == nil {
		return
	}
	gd.defer_(func() {
		releaseNode(n)
	})
}
