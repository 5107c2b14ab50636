package brackets

// SlotPair is one group fixture, as indices into the group's draw order.
type SlotPair struct {
	Home int
	Away int
}

// fourClubSchedule: every club plays each opponent once at home and once away
// over six matchdays, two fixtures per matchday.
var fourClubSchedule = [][]SlotPair{
	{{0, 1}, {2, 3}},
	{{1, 3}, {0, 2}},
	{{3, 0}, {1, 2}},
	{{1, 0}, {3, 2}},
	{{3, 1}, {2, 0}},
	{{0, 3}, {2, 1}},
}

// GroupSchedule returns a double round-robin for a group of size clubs, indexed
// by matchday. Groups of four use the fixed six-matchday table; other sizes use
// the circle method, with a rest slot for odd sizes.
func GroupSchedule(size int) [][]SlotPair {
	if size < 2 {
		return nil
	}
	if size == 4 {
		return cloneSchedule(fourClubSchedule)
	}
	return circleSchedule(size)
}

func circleSchedule(size int) [][]SlotPair {
	slots := make([]int, 0, size+1)
	for i := 0; i < size; i++ {
		slots = append(slots, i)
	}
	if size%2 == 1 {
		slots = append(slots, -1)
	}
	n := len(slots)

	firstHalf := make([][]SlotPair, 0, n-1)
	for round := 0; round < n-1; round++ {
		pairs := make([]SlotPair, 0, n/2)
		for i := 0; i < n/2; i++ {
			home, away := slots[i], slots[n-1-i]
			if home < 0 || away < 0 {
				continue
			}
			if (round+i)%2 == 1 {
				home, away = away, home
			}
			pairs = append(pairs, SlotPair{Home: home, Away: away})
		}
		firstHalf = append(firstHalf, pairs)

		// keep slot 0 fixed, rotate the rest by one
		last := slots[n-1]
		copy(slots[2:], slots[1:n-1])
		slots[1] = last
	}

	schedule := cloneSchedule(firstHalf)
	for _, matchday := range firstHalf {
		reversed := make([]SlotPair, len(matchday))
		for i, p := range matchday {
			reversed[i] = SlotPair{Home: p.Away, Away: p.Home}
		}
		schedule = append(schedule, reversed)
	}
	return schedule
}

func cloneSchedule(src [][]SlotPair) [][]SlotPair {
	out := make([][]SlotPair, len(src))
	for i, md := range src {
		out[i] = append([]SlotPair(nil), md...)
	}
	return out
}
