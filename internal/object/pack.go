package object

// Pack compacts the hashmap trie by rebuilding it from scratch, reinserting
// every live leaf into a fresh set of slots. Deletion only clears a leaf's
// Value and leaves its interior trie nodes allocated (deleteOwnSlot never
// reclaims them), so a churny object accumulates dead interior nodes over
// time. Nothing in the engine calls Pack automatically; ShouldPack
// reports when it would pay off.
func (o *Object) Pack() {
	if o.hashmapCount == 0 {
		o.Hashmap = make([]hmSlot, 2, 8)
		return
	}
	live := make([]Value, 0, o.hashmapCount)
	o.walkLeaves(1, func(v Value) { live = append(live, v) })

	fresh := &Object{Hashmap: make([]hmSlot, 2, len(live)*2+8)}
	for _, v := range live {
		fresh.setOwnSlot(v.PropKey, v)
	}
	o.Hashmap = fresh.Hashmap
	o.hashmapCount = fresh.hashmapCount
}

// ShouldPack reports whether the ratio of allocated trie slots to live
// leaves has crossed the point where compaction pays for itself, so a
// caller can decide when to call Pack without duplicating the accounting
// fields.
func (o *Object) ShouldPack() bool {
	allocated := len(o.Hashmap)
	if allocated < 64 {
		return false
	}
	return o.hashmapCount*4 < allocated
}
