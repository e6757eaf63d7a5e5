package league

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/jstittsworth/hockey-gm/internal/models"
)

func clampRating(v float64) float64 {
	if v < 0.3 {
		return 0.3
	}
	if v > 5.0 {
		return 5.0
	}
	return v
}

type qualityTier struct {
	Weight, Low, High float64
}

// sampleQuality draws from a talent pyramid: very few stars, more
// middle and depth players.
func sampleQuality(rng *rand.Rand, tiers []qualityTier) float64 {
	roll := rng.Float64()
	cum := 0.0
	for _, t := range tiers {
		cum += t.Weight
		if roll <= cum {
			return t.Low + rng.Float64()*(t.High-t.Low)
		}
	}
	last := tiers[len(tiers)-1]
	return last.Low + rng.Float64()*(last.High-last.Low)
}

var forwardTiers = []qualityTier{
	{0.08, 0.90, 1.00}, {0.22, 0.74, 0.89}, {0.42, 0.56, 0.73}, {0.28, 0.38, 0.55},
}

var defenseTiers = []qualityTier{
	{0.07, 0.88, 1.00}, {0.24, 0.72, 0.87}, {0.41, 0.55, 0.71}, {0.28, 0.38, 0.54},
}

var starterGoalieTiers = []qualityTier{
	{0.08, 0.90, 1.00}, {0.35, 0.76, 0.89}, {0.57, 0.58, 0.75},
}

var backupGoalieTiers = []qualityTier{
	{0.02, 0.88, 0.96}, {0.18, 0.72, 0.87}, {0.80, 0.48, 0.71},
}

var minorsTiers = []qualityTier{
	{0.04, 0.62, 0.78}, {0.36, 0.44, 0.61}, {0.60, 0.28, 0.43},
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func intBetween(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}

func newForward(rng *rand.Rand, pos string, offenseBias, defenseBias, physicalBias float64) *models.Player {
	quality := sampleQuality(rng, forwardTiers)
	roles := []string{"sniper", "playmaker", "two-way", "depth"}
	role := roles[rng.Intn(len(roles))]

	shootAdj, makeAdj, defAdj, phyAdj := 0.02, 0.02, 0.10, -0.02
	switch role {
	case "sniper":
		shootAdj, makeAdj, defAdj = 0.22, -0.10, -0.06
	case "playmaker":
		shootAdj, makeAdj, defAdj = -0.10, 0.22, -0.06
	case "two-way":
		defAdj, phyAdj = 0.18, 0.06
	case "depth":
		phyAdj = 0.16
	}

	name, country, code := randomName(rng)
	return &models.Player{
		ID:          uuid.NewString(),
		Name:        name,
		Position:    pos,
		Country:     country,
		CountryCode: code,
		Age:         intBetween(rng, 20, 35),
		PrimeAge:    intBetween(rng, 25, 29),
		Ratings: models.Ratings{
			Shooting:    clampRating(1.55 + quality*3.20 + offenseBias*0.80 + shootAdj + uniform(rng, -0.12, 0.12)),
			Playmaking:  clampRating(1.55 + quality*3.10 + offenseBias*0.75 + makeAdj + uniform(rng, -0.12, 0.12)),
			Defense:     clampRating(1.45 + quality*2.95 + defenseBias*0.85 + defAdj + uniform(rng, -0.10, 0.10)),
			Goaltending: 0.3,
			Physical:    clampRating(1.50 + quality*2.65 + physicalBias*0.90 + phyAdj + uniform(rng, -0.12, 0.12)),
			Durability:  clampRating(1.80 + quality*2.35 + uniform(rng, -0.15, 0.15)),
		},
	}
}

func newDefenseman(rng *rand.Rand, offenseBias, defenseBias, physicalBias float64) *models.Player {
	quality := sampleQuality(rng, defenseTiers)
	roles := []string{"shutdown", "two-way", "offensive", "depth"}
	role := roles[rng.Intn(len(roles))]

	shootAdj, makeAdj, defAdj, phyAdj := 0.02, -0.04, -0.06, 0.05
	switch role {
	case "offensive":
		shootAdj, makeAdj = 0.16, 0.18
	case "shutdown":
		shootAdj, defAdj, phyAdj = -0.05, 0.28, 0.18
	case "two-way":
		makeAdj, defAdj = 0.06, 0.10
	case "depth":
		phyAdj = 0.18
	}

	name, country, code := randomName(rng)
	return &models.Player{
		ID:          uuid.NewString(),
		Name:        name,
		Position:    models.PositionDefense,
		Country:     country,
		CountryCode: code,
		Age:         intBetween(rng, 20, 36),
		PrimeAge:    intBetween(rng, 26, 30),
		Ratings: models.Ratings{
			Shooting:    clampRating(1.40 + quality*2.75 + offenseBias*0.60 + shootAdj + uniform(rng, -0.10, 0.10)),
			Playmaking:  clampRating(1.55 + quality*2.95 + offenseBias*0.65 + makeAdj + uniform(rng, -0.10, 0.10)),
			Defense:     clampRating(1.85 + quality*3.05 + defenseBias*1.00 + defAdj + uniform(rng, -0.10, 0.10)),
			Goaltending: 0.3,
			Physical:    clampRating(1.65 + quality*2.70 + physicalBias*1.00 + phyAdj + uniform(rng, -0.12, 0.12)),
			Durability:  clampRating(1.90 + quality*2.30 + uniform(rng, -0.12, 0.12)),
		},
	}
}

func newGoalie(rng *rand.Rand, starter bool, defenseBias float64) *models.Player {
	tiers := backupGoalieTiers
	starterBump, durBump := -0.10, -0.05
	if starter {
		tiers = starterGoalieTiers
		starterBump, durBump = 0.14, 0.10
	}
	quality := sampleQuality(rng, tiers)

	name, country, code := randomName(rng)
	return &models.Player{
		ID:          uuid.NewString(),
		Name:        name,
		Position:    models.PositionGoalie,
		Country:     country,
		CountryCode: code,
		Age:         intBetween(rng, 22, 36),
		PrimeAge:    intBetween(rng, 27, 32),
		Ratings: models.Ratings{
			Shooting:    0.4,
			Playmaking:  clampRating(1.00 + quality*1.70 + uniform(rng, -0.08, 0.08)),
			Defense:     clampRating(1.80 + quality*2.20 + defenseBias*0.45 + uniform(rng, -0.08, 0.08)),
			Goaltending: clampRating(2.05 + quality*2.55 + defenseBias*0.65 + starterBump + uniform(rng, -0.08, 0.08)),
			Physical:    clampRating(1.55 + quality*2.00 + uniform(rng, -0.08, 0.08)),
			Durability:  clampRating(2.05 + quality*2.00 + durBump + uniform(rng, -0.08, 0.08)),
		},
	}
}

func newMinorLeaguer(rng *rand.Rand, pos string) *models.Player {
	quality := sampleQuality(rng, minorsTiers)
	name, country, code := randomName(rng)
	gt := 0.3
	if pos == models.PositionGoalie {
		gt = clampRating(1.60 + quality*2.20 + uniform(rng, -0.10, 0.10))
	}
	return &models.Player{
		ID:          uuid.NewString(),
		Name:        name,
		Position:    pos,
		Country:     country,
		CountryCode: code,
		Age:         intBetween(rng, 19, 30),
		PrimeAge:    intBetween(rng, 25, 29),
		Ratings: models.Ratings{
			Shooting:    clampRating(1.20 + quality*2.60 + uniform(rng, -0.15, 0.15)),
			Playmaking:  clampRating(1.20 + quality*2.55 + uniform(rng, -0.15, 0.15)),
			Defense:     clampRating(1.25 + quality*2.50 + uniform(rng, -0.15, 0.15)),
			Goaltending: gt,
			Physical:    clampRating(1.35 + quality*2.30 + uniform(rng, -0.15, 0.15)),
			Durability:  clampRating(1.75 + quality*2.20 + uniform(rng, -0.15, 0.15)),
		},
	}
}

// contractFor prices a deal from the player's composite, in thousands.
// Entry deals for the young, veteran deals past 30.
func contractFor(p *models.Player, rng *rand.Rand) models.Contract {
	overall := p.Overall()
	capHit := int64(775 + (overall-0.3)/4.7*11000)
	capHit += int64(rng.Intn(400)) - 200
	if capHit < 775 {
		capHit = 775
	}

	ctype := models.ContractStandard
	years := intBetween(rng, 1, 5)
	rfa := false
	switch {
	case p.Age <= 23:
		ctype = models.ContractEntry
		years = intBetween(rng, 1, 3)
		capHit = int64(float64(capHit) * 0.45)
		rfa = true
	case p.Age >= 31:
		ctype = models.ContractVeteran
		years = intBetween(rng, 1, 3)
	}
	return models.Contract{YearsLeft: years, CapHit: capHit, Type: ctype, RFA: rfa}
}

func newCoach(rng *rand.Rand) models.Coach {
	styles := []models.CoachStyle{models.StyleBalanced, models.StyleAggressive, models.StyleDefensive}
	return models.Coach{
		ID:             uuid.NewString(),
		Name:           randomCoachName(rng),
		Age:            intBetween(rng, 38, 66),
		Rating:         clampRating(2.0 + rng.Float64()*2.6),
		PreferredStyle: styles[rng.Intn(len(styles))],
		MatchupEdge:    styles[rng.Intn(len(styles))],
		Instability:    rng.Float64() * 0.6,
		GamesWithTeam:  honeymoonGamesDone,
	}
}

// Coaches in the opening-day league are established, not honeymooners.
const honeymoonGamesDone = 200

type teamSpec struct {
	Name     string
	Offense  float64
	Defense  float64
	Physical float64
	Primary  string
	Logo     string
}

var defaultDivisions = map[string][]teamSpec{
	"North": {
		{"Aurora", 0.30, 0.15, 0.08, "#4cc9f0", "🌌"},
		{"Icebreakers", 0.22, 0.25, 0.12, "#1d4ed8", "🧊"},
		{"Timberwolves", 0.18, 0.28, 0.16, "#166534", "🐺"},
		{"Glaciers", 0.12, 0.32, 0.10, "#0f766e", "🏔️"},
		{"Polar Caps", 0.26, 0.14, 0.20, "#7c3aed", "❄️"},
		{"Silver Pines", 0.16, 0.24, 0.18, "#475569", "🌲"},
	},
	"East": {
		{"Harbor Kings", 0.28, 0.10, 0.14, "#0f172a", "⚓"},
		{"Liberty Blades", 0.24, 0.22, 0.12, "#be123c", "🗽"},
		{"Metro Sparks", 0.34, 0.08, 0.10, "#f97316", "⚡"},
		{"Atlantic Wolves", 0.20, 0.20, 0.16, "#4338ca", "🐾"},
		{"Capital Foxes", 0.14, 0.30, 0.15, "#b45309", "🦊"},
		{"Bay Comets", 0.25, 0.16, 0.13, "#0369a1", "☄️"},
	},
	"Central": {
		{"Prairie Storm", 0.22, 0.20, 0.22, "#0891b2", "🌩️"},
		{"Iron Rangers", 0.18, 0.30, 0.24, "#1f2937", "🛡️"},
		{"Lake Vipers", 0.26, 0.16, 0.18, "#0f766e", "🐍"},
		{"Granite Bears", 0.14, 0.28, 0.25, "#7f1d1d", "🐻"},
		{"Steel River", 0.20, 0.24, 0.20, "#334155", "🏭"},
		{"Red Hawks", 0.30, 0.12, 0.18, "#dc2626", "🪶"},
	},
	"West": {
		{"Desert Fire", 0.32, 0.08, 0.12, "#ea580c", "🔥"},
		{"Pacific Tide", 0.24, 0.18, 0.16, "#2563eb", "🌊"},
		{"Summit Eagles", 0.21, 0.22, 0.19, "#0f766e", "🦅"},
		{"Canyon Coyotes", 0.19, 0.24, 0.21, "#92400e", "🌵"},
		{"Emerald Orcas", 0.27, 0.14, 0.14, "#059669", "🐋"},
		{"Golden Peaks", 0.23, 0.20, 0.17, "#ca8a04", "⛰️"},
	},
}

var divisionOrder = []string{"North", "East", "Central", "West"}

func conferenceFor(division string) string {
	if division == "East" || division == "Central" {
		return "Eastern"
	}
	return "Western"
}

// BuildDefaultTeams creates the 24-team league with pyramid-distributed
// rosters, minor affiliates, coaches and contracts.
func BuildDefaultTeams(rng *rand.Rand) []*models.Team {
	var teams []*models.Team
	for _, division := range divisionOrder {
		for _, spec := range defaultDivisions[division] {
			t := buildTeam(spec, division, rng)
			teams = append(teams, t)
		}
	}
	return teams
}

func buildTeam(spec teamSpec, division string, rng *rand.Rand) *models.Team {
	t := &models.Team{
		ID:            uuid.NewString(),
		Name:          spec.Name,
		Logo:          spec.Logo,
		Color:         spec.Primary,
		Division:      division,
		Conference:    conferenceFor(division),
		Arena:         spec.Name + " Arena",
		ArenaCapacity: intBetween(rng, 11000, 21500),
		Dressed:       make(map[string]bool),
		TradeBlock:    make(map[string]models.BlockStatus),
		Strategy:      models.StyleBalanced,
		FanSentiment:  50 + rng.Float64()*20,
		Coach:         newCoach(rng),
		Needs:         models.NeedsProfile{Mode: models.NeedsAuto},
	}

	forwardSlots := []string{"C", "C", "C", "C", "C", "LW", "LW", "LW", "LW", "RW", "RW", "RW", "RW"}
	for _, pos := range forwardSlots {
		t.Roster = append(t.Roster, newForward(rng, pos, spec.Offense, spec.Defense, spec.Physical))
	}
	for i := 0; i < 7; i++ {
		t.Roster = append(t.Roster, newDefenseman(rng, spec.Offense, spec.Defense, spec.Physical))
	}
	t.Roster = append(t.Roster, newGoalie(rng, true, spec.Defense))
	t.Roster = append(t.Roster, newGoalie(rng, false, spec.Defense))

	minorSlots := []string{"C", "C", "LW", "RW", "RW", "C", "D", "D", "D", "G"}
	for _, pos := range minorSlots {
		t.Minors = append(t.Minors, newMinorLeaguer(rng, pos))
	}

	for _, p := range t.AllPlayers() {
		p.TeamID = t.ID
		p.Contract = contractFor(p, rng)
	}
	assignJerseyNumbers(t, rng)
	t.EnsureLeadership()
	t.Strategy = t.Coach.PreferredStyle
	return t
}

// GenerateCoachCandidates builds a short list of replacement coaches
// after a firing.
func GenerateCoachCandidates(rng *rand.Rand, expiryDay int) []models.CoachCandidate {
	pitches := []string{
		"Promises a faster transition game and more ice for the kids.",
		"Veteran bench boss selling structure and accountability.",
		"Player's coach with a track record of locker-room buy-in.",
	}
	out := make([]models.CoachCandidate, 0, 3)
	for i := 0; i < 3; i++ {
		c := newCoach(rng)
		c.GamesWithTeam = 0
		out = append(out, models.CoachCandidate{
			Coach:     c,
			Pitch:     pitches[i%len(pitches)],
			ExpiryDay: expiryDay,
		})
	}
	return out
}

// FreeAgentPool spins up unsigned depth players for in-season signings.
func FreeAgentPool(rng *rand.Rand, n int) []*models.Player {
	positions := []string{"C", "LW", "RW", "D", "D", "G"}
	out := make([]*models.Player, 0, n)
	for i := 0; i < n; i++ {
		p := newMinorLeaguer(rng, positions[i%len(positions)])
		p.Age = intBetween(rng, 26, 37)
		p.Contract = models.Contract{YearsLeft: 1, CapHit: int64(775 + rng.Intn(1200)), Type: models.ContractVeteran}
		out = append(out, p)
	}
	return out
}

func init() {
	// Guard against a division table edit leaving the league uneven.
	total := 0
	for _, specs := range defaultDivisions {
		total += len(specs)
	}
	if total != 24 {
		panic(fmt.Sprintf("default league must have 24 teams, got %d", total))
	}
}
