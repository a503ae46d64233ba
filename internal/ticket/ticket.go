// Package ticket computes the next customer-facing queue number to offer.
//
// Ticket numbers live on a bounded ring 1..max. A number is occupied while
// any order holding it is active or pending; once those orders complete the
// number returns to the pool and is reused. The allocator is a pure
// function over state the caller already fetched, so two clients reading
// the same state can be offered the same number; persisting the order is
// what claims it.
package ticket

// Next returns the next ticket number to offer, given the numbers
// currently checked out, the last issued number, and the ring ceiling.
//
// The candidate starts at lastIssued+1, wrapping past max back to 1, and
// advances past occupied numbers. When every number in the ring is
// occupied, Next reports exhaustion with ok=false. lastIssued=0 is the
// empty-history starting state and yields candidate 1.
//
// max must be >= 1; the caller owns that validation.
func Next(active []int, lastIssued, max int) (n int, ok bool) {
	occupied := make(map[int]bool, len(active))
	for _, t := range active {
		occupied[t] = true
	}

	candidate := lastIssued + 1
	if candidate > max {
		candidate = 1
	}

	trials := 0
	for occupied[candidate] && trials < max {
		candidate++
		if candidate > max {
			candidate = 1
		}
		trials++
	}
	if trials >= max {
		return 0, false
	}
	return candidate, true
}
