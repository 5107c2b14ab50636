package brackets

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupScheduleFourClubs(t *testing.T) {
	schedule := GroupSchedule(4)
	require.Len(t, schedule, 6)

	homeAway := make(map[string]int)
	for md, fixtures := range schedule {
		require.Len(t, fixtures, 2, "matchday %d", md+1)
		playing := make(map[int]bool)
		for _, f := range fixtures {
			assert.False(t, playing[f.Home], "club %d plays twice on matchday %d", f.Home, md+1)
			assert.False(t, playing[f.Away], "club %d plays twice on matchday %d", f.Away, md+1)
			playing[f.Home], playing[f.Away] = true, true
			homeAway[fmt.Sprintf("%d-%d", f.Home, f.Away)]++
		}
	}

	for home := 0; home < 4; home++ {
		for away := 0; away < 4; away++ {
			if home == away {
				continue
			}
			assert.Equal(t, 1, homeAway[fmt.Sprintf("%d-%d", home, away)], "%d vs %d", home, away)
		}
	}
}

func TestGroupScheduleIsACopy(t *testing.T) {
	first := GroupSchedule(4)
	first[0][0] = SlotPair{Home: 3, Away: 3}
	assert.Equal(t, SlotPair{Home: 0, Away: 1}, GroupSchedule(4)[0][0])
}

func TestGroupScheduleCircleMethod(t *testing.T) {
	for _, size := range []int{2, 3, 5, 6} {
		t.Run(fmt.Sprintf("size %d", size), func(t *testing.T) {
			schedule := GroupSchedule(size)
			slots := size
			if size%2 == 1 {
				slots++
			}
			assert.Len(t, schedule, 2*(slots-1))

			homeAway := make(map[[2]int]int)
			for _, fixtures := range schedule {
				playing := make(map[int]bool)
				for _, f := range fixtures {
					assert.False(t, playing[f.Home])
					assert.False(t, playing[f.Away])
					playing[f.Home], playing[f.Away] = true, true
					homeAway[[2]int{f.Home, f.Away}]++
				}
			}
			assert.Len(t, homeAway, size*(size-1))
			for pair, count := range homeAway {
				assert.Equal(t, 1, count, "%v", pair)
			}
		})
	}
}

func TestGroupScheduleTooSmall(t *testing.T) {
	assert.Nil(t, GroupSchedule(1))
	assert.Nil(t, GroupSchedule(0))
}
