package region

// Insertion describes n bytes inserted at pos.
func Insertion(pos, n int) Region {
	return Region{Begin: pos, End: pos + n}
}

// Deletion describes n bytes erased starting at pos.
func Deletion(pos, n int) Region {
	return Region{Begin: pos, End: pos - n}
}

// LineInsertion describes n bytes inserted at the start of a line at pos.
// The delta is anchored one byte earlier so that a region beginning exactly
// at pos is pushed forward along with the rest of the line.
func LineInsertion(pos, n int) Region {
	return Region{Begin: pos - 1, End: pos - 1 + n}
}

// IsInsertion reports whether the delta grows the buffer.
func IsInsertion(delta Region) bool {
	return delta.Begin < delta.End
}

// IsDeletion reports whether the delta shrinks the buffer.
func IsDeletion(delta Region) bool {
	return delta.Begin > delta.End
}

// Adjust translates r across the edit described by delta.
//
// Regions that begin after delta.Begin move by the delta size, forward for an
// insertion and backward for a deletion. Everything else is returned as is.
func Adjust(r, delta Region) Region {
	size := delta.Size()
	if size == 0 || r.Begin <= delta.Begin {
		return r
	}
	if IsDeletion(delta) {
		return r.Shift(-size)
	}
	return r.Shift(size)
}

// AdjustAll applies Adjust to every region for each delta, in delta order.
func AdjustAll(rs []Region, deltas ...Region) []Region {
	out := make([]Region, len(rs))
	for i, r := range rs {
		for _, d := range deltas {
			r = Adjust(r, d)
		}
		out[i] = r
	}
	return out
}

// Net returns the signed size change of a delta.
func Net(delta Region) int {
	return delta.End - delta.Begin
}
