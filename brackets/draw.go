package brackets

import (
	"fmt"
	"sort"
)

// Entrant is the draw's view of a club.
type Entrant struct {
	ClubID     int    `json:"club_id"`
	Country    string `json:"country,omitempty"`
	Reputation int    `json:"reputation"`
	LeagueTier int    `json:"league_tier,omitempty"`
	Group      string `json:"group,omitempty"`
}

// Relaxation is the strictest constraint level under which a pairing was made.
type Relaxation int

const (
	RelaxNone    Relaxation = iota // different group and different country
	RelaxCountry                   // different group only
	RelaxGroup                     // different country only
	RelaxAll                       // any remaining opponent
)

type Pairing struct {
	Home       Entrant
	Away       Entrant
	Group      string
	Relaxation Relaxation
}

type DrawResult struct {
	Pairings []Pairing
	Byes     []Entrant
	// Unpaired holds the odd entrant when byes were not allowed.
	Unpaired []Entrant
}

// Entrants lists every entrant the draw accounted for, paired or not.
func (r DrawResult) Entrants() []Entrant {
	all := make([]Entrant, 0, len(r.Pairings)*2+len(r.Byes)+len(r.Unpaired))
	for _, p := range r.Pairings {
		all = append(all, p.Home, p.Away)
	}
	all = append(all, r.Byes...)
	return append(all, r.Unpaired...)
}

// Generator produces pairings and group assignments. All randomness comes from
// the injected RNG, so a fixed seed yields a fixed draw.
type Generator struct {
	rng RNG
}

func NewGenerator(rng RNG) *Generator {
	return &Generator{rng: rng}
}

// RandomDraw pairs entrants uniformly at random. With an odd count the leftover
// entrant is a bye when allowByes is set and unpaired otherwise.
func (g *Generator) RandomDraw(entrants []Entrant, allowByes bool) DrawResult {
	if len(entrants) < 2 {
		return allByes(entrants)
	}

	pool := sortedByClub(entrants)
	g.shuffle(pool)

	result := DrawResult{Pairings: make([]Pairing, 0, len(pool)/2)}
	for i := 0; i+1 < len(pool); i += 2 {
		result.Pairings = append(result.Pairings, Pairing{Home: pool[i], Away: pool[i+1]})
	}
	if len(pool)%2 == 1 {
		last := pool[len(pool)-1]
		if allowByes {
			result.Byes = append(result.Byes, last)
		} else {
			result.Unpaired = append(result.Unpaired, last)
		}
	}
	return result
}

// SeededDraw splits the reputation-ranked entrants into numPots equal pots,
// shuffles each pot and pairs pot k against pot numPots-1-k slot by slot.
// Entrants that do not fill a whole pot (the lowest ranked) get byes.
func (g *Generator) SeededDraw(entrants []Entrant, numPots int) DrawResult {
	if len(entrants) < 2 {
		return allByes(entrants)
	}
	if numPots < 1 {
		numPots = 1
	}
	if numPots > len(entrants) {
		numPots = len(entrants)
	}

	ranked := sortedByReputation(entrants)
	potSize := len(ranked) / numPots
	pots := make([][]Entrant, numPots)
	for i := range pots {
		pot := append([]Entrant(nil), ranked[i*potSize:(i+1)*potSize]...)
		g.shuffle(pot)
		pots[i] = pot
	}

	result := DrawResult{Pairings: make([]Pairing, 0, len(ranked)/2)}
	for top, bottom := 0, numPots-1; top <= bottom; top, bottom = top+1, bottom-1 {
		if top == bottom {
			middle := pots[top]
			for i := 0; i+1 < len(middle); i += 2 {
				result.Pairings = append(result.Pairings, Pairing{Home: middle[i], Away: middle[i+1]})
			}
			if len(middle)%2 == 1 {
				result.Byes = append(result.Byes, middle[len(middle)-1])
			}
			continue
		}
		for slot := 0; slot < potSize; slot++ {
			result.Pairings = append(result.Pairings, Pairing{Home: pots[top][slot], Away: pots[bottom][slot]})
		}
	}
	result.Byes = append(result.Byes, ranked[numPots*potSize:]...)
	return result
}

// TieredDraw draws among the tiers that have entered by currentRound. Tiers
// missing from tierEntryRound enter in round 1.
func (g *Generator) TieredDraw(entrantsByTier map[int][]Entrant, tierEntryRound map[int]int, currentRound int) DrawResult {
	tiers := make([]int, 0, len(entrantsByTier))
	for tier := range entrantsByTier {
		tiers = append(tiers, tier)
	}
	sort.Ints(tiers)

	var eligible []Entrant
	for _, tier := range tiers {
		entry, ok := tierEntryRound[tier]
		if !ok || entry < 1 {
			entry = 1
		}
		if entry <= currentRound {
			eligible = append(eligible, entrantsByTier[tier]...)
		}
	}
	return g.RandomDraw(eligible, true)
}

type Group struct {
	Name string
	// Members[i] was drawn from pot i.
	Members []Entrant
}

type GroupDraw struct {
	Groups     []Group
	Unassigned []Entrant
}

// GroupName returns the letter for the group at index (A, B, ...).
func GroupName(index int) string {
	if index < 26 {
		return string(rune('A' + index))
	}
	return fmt.Sprintf("G%d", index+1)
}

// GroupStageDraw ranks entrants by reputation into pots of numGroups clubs,
// shuffles each pot and sends the j-th club of every pot to group j, so each
// group holds exactly one club per pot. Entrants beyond numGroups*perGroup are
// returned unassigned.
func (g *Generator) GroupStageDraw(entrants []Entrant, numGroups, perGroup int) GroupDraw {
	if numGroups < 1 || perGroup < 1 || len(entrants) == 0 {
		return GroupDraw{Groups: []Group{}, Unassigned: sortedByClub(entrants)}
	}

	ranked := sortedByReputation(entrants)
	var unassigned []Entrant
	if capacity := numGroups * perGroup; len(ranked) > capacity {
		unassigned = ranked[capacity:]
		ranked = ranked[:capacity]
	}

	groups := make([]Group, numGroups)
	for j := range groups {
		groups[j] = Group{Name: GroupName(j), Members: make([]Entrant, 0, perGroup)}
	}
	for start := 0; start < len(ranked); start += numGroups {
		end := min(start+numGroups, len(ranked))
		pot := append([]Entrant(nil), ranked[start:end]...)
		g.shuffle(pot)
		for j, e := range pot {
			e.Group = groups[j].Name
			groups[j].Members = append(groups[j].Members, e)
		}
	}
	return GroupDraw{Groups: groups, Unassigned: unassigned}
}

type relaxRule struct {
	level         Relaxation
	sameGroupOK   bool
	sameCountryOK bool
}

var relaxationCascade = []relaxRule{
	{level: RelaxNone},
	{level: RelaxCountry, sameCountryOK: true},
	{level: RelaxGroup, sameGroupOK: true},
	{level: RelaxAll, sameGroupOK: true, sameCountryOK: true},
}

func (r relaxRule) allows(seed, opp Entrant) bool {
	if !r.sameGroupOK && seed.Group != "" && seed.Group == opp.Group {
		return false
	}
	if !r.sameCountryOK && seed.Country != "" && seed.Country == opp.Country {
		return false
	}
	return true
}

// KnockoutSeedDraw pairs each group winner with a runner-up. The runner-up hosts
// the first leg. Opponents from the same group or country are avoided; when no
// draw satisfying both remains, the country constraint is dropped first, then
// the group constraint, then any remaining opponent is accepted.
func (g *Generator) KnockoutSeedDraw(winners, runnersUp []Entrant) DrawResult {
	if len(winners)+len(runnersUp) < 2 {
		return allByes(append(append([]Entrant(nil), winners...), runnersUp...))
	}

	seeds := sortedByGroup(winners)
	g.shuffle(seeds)
	pool := sortedByGroup(runnersUp)

	result := DrawResult{Pairings: make([]Pairing, 0, len(seeds))}
	for i, seed := range seeds {
		if len(pool) == 0 {
			result.Byes = append(result.Byes, seeds[i:]...)
			break
		}
		idx, level := g.pickOpponent(seed, seeds[i+1:], pool)
		opp := pool[idx]
		pool = append(pool[:idx:idx], pool[idx+1:]...)
		result.Pairings = append(result.Pairings, Pairing{Home: opp, Away: seed, Relaxation: level})
	}
	result.Byes = append(result.Byes, pool...)
	return result
}

// pickOpponent takes the strictest rule under which some opponent still leaves
// the remaining seeds a complete draw under that same rule.
func (g *Generator) pickOpponent(seed Entrant, rest, pool []Entrant) (int, Relaxation) {
	for _, rule := range relaxationCascade {
		candidates := make([]int, 0, len(pool))
		for i, opp := range pool {
			if !rule.allows(seed, opp) {
				continue
			}
			remaining := append(append([]Entrant(nil), pool[:i]...), pool[i+1:]...)
			if maxMatching(rest, remaining, rule) == min(len(rest), len(remaining)) {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) > 0 {
			return candidates[g.rng.Intn(len(candidates))], rule.level
		}
	}
	return 0, RelaxAll
}

func maxMatching(seeds, pool []Entrant, rule relaxRule) int {
	matchOf := make([]int, len(pool))
	for i := range matchOf {
		matchOf[i] = -1
	}
	var augment func(s int, seen []bool) bool
	augment = func(s int, seen []bool) bool {
		for p := range pool {
			if seen[p] || !rule.allows(seeds[s], pool[p]) {
				continue
			}
			seen[p] = true
			if matchOf[p] < 0 || augment(matchOf[p], seen) {
				matchOf[p] = s
				return true
			}
		}
		return false
	}
	size := 0
	for s := range seeds {
		if augment(s, make([]bool, len(pool))) {
			size++
		}
	}
	return size
}

func (g *Generator) shuffle(entrants []Entrant) {
	g.rng.Shuffle(len(entrants), func(i, j int) {
		entrants[i], entrants[j] = entrants[j], entrants[i]
	})
}

func allByes(entrants []Entrant) DrawResult {
	return DrawResult{Pairings: []Pairing{}, Byes: sortedByClub(entrants)}
}

func sortedByClub(entrants []Entrant) []Entrant {
	out := append([]Entrant(nil), entrants...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ClubID < out[j].ClubID })
	return out
}

func sortedByReputation(entrants []Entrant) []Entrant {
	out := append([]Entrant(nil), entrants...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Reputation != out[j].Reputation {
			return out[i].Reputation > out[j].Reputation
		}
		return out[i].ClubID < out[j].ClubID
	})
	return out
}

func sortedByGroup(entrants []Entrant) []Entrant {
	out := append([]Entrant(nil), entrants...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].ClubID < out[j].ClubID
	})
	return out
}
