package region

// Handle refers to a region tracked by a Batch.
type Handle int

// Batch records the edits of one compound operation and keeps every tracked
// region translated across all of them.
//
// Regions are tracked before any edit is applied. Each Apply appends the delta
// to the batch and adjusts every live region, so a region that has not been
// processed yet always reflects the net effect of the whole batch so far, not
// only of the latest edit.
type Batch struct {
	deltas []Region
	live   []Region
	done   []bool
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Track starts tracking r and returns a handle to it.
func (b *Batch) Track(r Region) Handle {
	b.live = append(b.live, r)
	b.done = append(b.done, false)
	return Handle(len(b.live) - 1)
}

// TrackAll tracks every region in order.
func (b *Batch) TrackAll(rs []Region) []Handle {
	hs := make([]Handle, len(rs))
	for i, r := range rs {
		hs[i] = b.Track(r)
	}
	return hs
}

// Get returns the current position of a tracked region.
func (b *Batch) Get(h Handle) Region {
	return b.live[h]
}

// Set overrides the current position of a tracked region.
func (b *Batch) Set(h Handle, r Region) {
	b.live[h] = r
}

// Release stops adjusting h. Its last position remains readable.
func (b *Batch) Release(h Handle) {
	b.done[h] = true
}

// Apply records delta and translates every live region across it.
func (b *Batch) Apply(delta Region) {
	if delta.Size() == 0 {
		return
	}
	b.deltas = append(b.deltas, delta)
	for i := range b.live {
		if b.done[i] {
			continue
		}
		b.live[i] = Adjust(b.live[i], delta)
	}
}

// Deltas returns the deltas applied so far, in order.
func (b *Batch) Deltas() []Region {
	out := make([]Region, len(b.deltas))
	copy(out, b.deltas)
	return out
}

// Translate maps a region captured before the batch started across every
// delta applied so far.
func (b *Batch) Translate(r Region) Region {
	for _, d := range b.deltas {
		r = Adjust(r, d)
	}
	return r
}

// Net returns the net size change of the batch.
func (b *Batch) Net() int {
	n := 0
	for _, d := range b.deltas {
		n += Net(d)
	}
	return n
}

// Len returns the number of applied deltas.
func (b *Batch) Len() int {
	return len(b.deltas)
}
