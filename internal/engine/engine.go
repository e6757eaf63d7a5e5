package engine

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"github.com/jstittsworth/hockey-gm/internal/models"
	"github.com/jstittsworth/hockey-gm/pkg/config"
)

const (
	baseGoals        = 2.55
	homeIceBonus     = 0.14
	backToBackPenalty = 0.12
	minLambda        = 1.5
	maxLambda        = 3.5
	goalJitter       = 0.18
	homeOTWinChance  = 0.52
	basePowerPlayPct = 0.135
)

// GameContext carries the schedule situation for one matchup.
type GameContext struct {
	Season          int
	Day             int
	Playoff         bool
	SeriesID        string
	HomeBackToBack  bool
	AwayBackToBack  bool
	RandomnessScale float64
}

// Engine simulates individual games. It holds no league state; the
// caller owns the teams and the random source, which keeps whole-season
// runs reproducible from a seed.
type Engine struct {
	cfg *config.Config
	rng *rand.Rand
}

func New(cfg *config.Config, rng *rand.Rand) *Engine {
	return &Engine{cfg: cfg, rng: rng}
}

// poisson samples with Knuth's product method.
func poisson(lam float64, rng *rand.Rand) int {
	l := math.Exp(-lam)
	k := 0
	p := 1.0
	for {
		k++
		p *= rng.Float64()
		if p <= l {
			break
		}
	}
	return k - 1
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// expectedGoals builds the scoring rate for one side of a matchup.
func (e *Engine) expectedGoals(team, opp *models.Team, home, backToBack bool, scale float64) float64 {
	off, _ := lineupStrength(team)
	_, oppDef := lineupStrength(opp)

	eff := effectFor(team.Strategy)
	oppEff := effectFor(opp.Strategy)

	lam := baseGoals + (off-oppDef)*0.45 + eff.Offense - oppEff.Defense
	lam += coachModifier(team, opp, e.rng)
	if home {
		lam += homeIceBonus
	}
	if backToBack {
		lam -= backToBackPenalty
	}

	lam = clamp(lam, minLambda, maxLambda)
	lam += e.rng.NormFloat64() * goalJitter * scale
	return clamp(lam, minLambda, maxLambda)
}

// Simulate plays one game to completion, mutating both teams' player
// stats and injury states.
func (e *Engine) Simulate(home, away *models.Team, ctx GameContext) *models.GameResult {
	scale := ctx.RandomnessScale
	if scale <= 0 {
		scale = 1.0
	}

	SelectLineup(home, e.rng, ctx.Playoff)
	SelectLineup(away, e.rng, ctx.Playoff)

	homeLam := e.expectedGoals(home, away, true, ctx.HomeBackToBack, scale)
	awayLam := e.expectedGoals(away, home, false, ctx.AwayBackToBack, scale)

	homeGoals := poisson(homeLam, e.rng)
	awayGoals := poisson(awayLam, e.rng)

	overtime := false
	if homeGoals == awayGoals {
		overtime = true
		if e.rng.Float64() < homeOTWinChance {
			homeGoals++
		} else {
			awayGoals++
		}
	}

	result := &models.GameResult{
		GameID:     uuid.NewString(),
		Season:     ctx.Season,
		Day:        ctx.Day,
		HomeTeamID: home.ID,
		AwayTeamID: away.ID,
		HomeTeam:   home.Name,
		AwayTeam:   away.Name,
		HomeGoals:  homeGoals,
		AwayGoals:  awayGoals,
		Overtime:   overtime,
		Playoff:    ctx.Playoff,
		SeriesID:   ctx.SeriesID,
	}

	sheet := e.buildScoringLine(result, home, away)
	e.applyGoalieStats(result, home, away)
	e.applySkaterAppearances(home)
	e.applySkaterAppearances(away)

	homeWon := homeGoals > awayGoals
	if !ctx.Playoff {
		home.Record.RegisterGame(homeGoals, awayGoals, homeWon, overtime)
		away.Record.RegisterGame(awayGoals, homeGoals, !homeWon, overtime)
		e.registerSpecialTeams(result, home, away)
	}

	result.Injuries = append(e.rollInjuries(home, e.rng), e.rollInjuries(away, e.rng)...)
	result.ThreeStars = e.pickThreeStars(result, home, away, sheet)
	result.Attendance = e.attendance(home)
	result.Narrative = gameNarrative(result)

	return result
}

// gameSheet accumulates per-game skater bookkeeping that feeds the
// three-star ballot but does not belong on the season stat line.
type gameSheet struct {
	plusMinus map[string]int
}

// buildScoringLine distributes the final score across periods and
// attributes each goal to a dressed skater.
func (e *Engine) buildScoringLine(res *models.GameResult, home, away *models.Team) *gameSheet {
	sheet := &gameSheet{plusMinus: make(map[string]int)}
	periods := make([]int, 8)
	assign := func(total int, offset int) {
		for i := 0; i < total; i++ {
			periods[e.rng.Intn(3)*2+offset]++
		}
	}
	homeReg, awayReg := res.HomeGoals, res.AwayGoals
	if res.Overtime {
		if res.HomeGoals > res.AwayGoals {
			homeReg--
			periods[6]++
		} else {
			awayReg--
			periods[7]++
		}
	}
	assign(homeReg, 0)
	assign(awayReg, 1)
	res.Periods = periods

	for p := 0; p < 4; p++ {
		for i := 0; i < periods[p*2]; i++ {
			res.Goals = append(res.Goals, e.goalEvent(home, away, p+1, sheet))
		}
		for i := 0; i < periods[p*2+1]; i++ {
			res.Goals = append(res.Goals, e.goalEvent(away, home, p+1, sheet))
		}
	}
	return sheet
}

func (e *Engine) goalEvent(scoring, opponent *models.Team, period int, sheet *gameSheet) models.GoalEvent {
	scorer := e.weightedSkater(scoring, "")
	ev := models.GoalEvent{
		Period: period,
		TeamID: scoring.ID,
	}
	if scorer != nil {
		scorer.Stats.Goals++
		ev.ScorerID = scorer.ID
		ev.Scorer = scorer.Name
		if e.rng.Float64() < 0.65 {
			if helper := e.weightedSkater(scoring, scorer.ID); helper != nil {
				helper.Stats.Assists++
				ev.AssistID = helper.ID
				ev.Assist = helper.Name
			}
		}
	}

	oppEff := effectFor(opponent.Strategy)
	ppChance := clamp(basePowerPlayPct+oppEff.Discipline*0.18, 0.05, 0.31)
	ev.PowerPlay = e.rng.Float64() < ppChance
	if ev.PowerPlay {
		// Somebody took the minor that opened the door.
		if offender := e.penaltyTaker(opponent); offender != nil {
			offender.Stats.PIM += 2
		}
	} else {
		e.applyPlusMinus(scoring, opponent, scorer, sheet)
	}
	return ev
}

// applyPlusMinus credits the five skaters on the ice for an
// even-strength goal and debits the five caught out. Power play goals
// skip the book, per convention.
func (e *Engine) applyPlusMinus(scoring, opponent *models.Team, scorer *models.Player, sheet *gameSheet) {
	for _, id := range e.onIceSkaters(scoring, scorer) {
		if p := scoring.FindPlayer(id); p != nil {
			p.Stats.PlusMinus++
			sheet.plusMinus[id]++
		}
	}
	for _, id := range e.onIceSkaters(opponent, nil) {
		if p := opponent.FindPlayer(id); p != nil {
			p.Stats.PlusMinus--
			sheet.plusMinus[id]--
		}
	}
}

// onIceSkaters picks a forward trio and a defense pair, weighted by
// ice time. When anchor is set, their line is the one on the ice.
func (e *Engine) onIceSkaters(t *models.Team, anchor *models.Player) []string {
	li := e.weightedIndex(forwardLineWeights[:])
	if anchor != nil && !anchor.IsDefense() {
		for i, line := range t.Lines.Forwards {
			for _, id := range line {
				if id == anchor.ID {
					li = i
				}
			}
		}
	}
	pi := e.weightedIndex(defensePairWeights[:])
	if anchor != nil && anchor.IsDefense() {
		for i, pair := range t.Lines.Defense {
			for _, id := range pair {
				if id == anchor.ID {
					pi = i
				}
			}
		}
	}

	var out []string
	for _, id := range t.Lines.Forwards[li] {
		if id != "" {
			out = append(out, id)
		}
	}
	for _, id := range t.Lines.Defense[pi] {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

func (e *Engine) weightedIndex(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	pick := e.rng.Float64() * total
	for i, w := range weights {
		pick -= w
		if pick <= 0 {
			return i
		}
	}
	return len(weights) - 1
}

// penaltyTaker samples a dressed skater by physicality for the minor
// that put the other side on the power play.
func (e *Engine) penaltyTaker(t *models.Team) *models.Player {
	var pool []*models.Player
	for id := range t.Dressed {
		p := t.FindPlayer(id)
		if p == nil || p.IsGoalie() {
			continue
		}
		pool = append(pool, p)
	}
	if len(pool) == 0 {
		return nil
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })

	total := 0.0
	for _, p := range pool {
		total += p.Ratings.Physical + 0.5
	}
	pick := e.rng.Float64() * total
	for _, p := range pool {
		pick -= p.Ratings.Physical + 0.5
		if pick <= 0 {
			return p
		}
	}
	return pool[len(pool)-1]
}

// registerSpecialTeams books the night's power play conversions and
// the penalty kill against on both records. Opportunity counts are
// sampled around the typical handful of chances a game.
func (e *Engine) registerSpecialTeams(res *models.GameResult, home, away *models.Team) {
	homePP, awayPP := 0, 0
	for _, g := range res.Goals {
		if !g.PowerPlay {
			continue
		}
		if g.TeamID == home.ID {
			homePP++
		} else {
			awayPP++
		}
	}
	homeChances := homePP + 1 + e.rng.Intn(4)
	awayChances := awayPP + 1 + e.rng.Intn(4)
	home.Record.RegisterSpecialTeams(homePP, homeChances, awayPP, awayChances)
	away.Record.RegisterSpecialTeams(awayPP, awayChances, homePP, homeChances)
}

// weightedSkater samples a dressed skater proportional to scoring
// talent, skipping the excluded player.
func (e *Engine) weightedSkater(t *models.Team, exclude string) *models.Player {
	var pool []*models.Player
	for id := range t.Dressed {
		p := t.FindPlayer(id)
		if p == nil || p.IsGoalie() || p.ID == exclude {
			continue
		}
		pool = append(pool, p)
	}
	if len(pool) == 0 {
		return nil
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	var total float64
	for _, p := range pool {
		total += p.ScoringWeight()
	}
	pick := e.rng.Float64() * total
	for _, p := range pool {
		pick -= p.ScoringWeight()
		if pick <= 0 {
			return p
		}
	}
	return pool[len(pool)-1]
}

// applyGoalieStats runs the shots-against model and books the decision
// for both starters.
func (e *Engine) applyGoalieStats(res *models.GameResult, home, away *models.Team) {
	book := func(t *models.Team, opp *models.Team, goalsAgainst int, won, otLoss bool) int {
		g := StartingGoalie(t)
		if g == nil {
			return goalsAgainst + 8
		}
		oppOff, _ := lineupStrength(opp)
		skillMod := (oppOff - 2.5) * 2.0
		shots := 22 + int(float64(goalsAgainst)*1.6) + e.rng.Intn(10) + int(skillMod)
		if shots < goalsAgainst+8 {
			shots = goalsAgainst + 8
		}

		g.Stats.GoalieGames++
		g.Stats.ShotsAgainst += shots
		g.Stats.Saves += shots - goalsAgainst
		g.Stats.GoalsAgainst += goalsAgainst
		switch {
		case won:
			g.Stats.GoalieWins++
			if goalsAgainst == 0 {
				g.Stats.GoalieShutouts++
			}
		case otLoss:
			g.Stats.GoalieOTLosses++
		default:
			g.Stats.GoalieLosses++
		}
		return shots
	}

	homeWon := res.HomeGoals > res.AwayGoals
	res.AwayShots = book(home, away, res.AwayGoals, homeWon, !homeWon && res.Overtime)
	res.HomeShots = book(away, home, res.HomeGoals, !homeWon, homeWon && res.Overtime)
}

func (e *Engine) applySkaterAppearances(t *models.Team) {
	for id := range t.Dressed {
		if p := t.FindPlayer(id); p != nil && !p.IsGoalie() {
			p.Stats.GamesPlayed++
		}
	}
}

// pickThreeStars ranks the night's performers on a composite ballot:
// goals and assists carry the most weight, on-ice plus-minus breaks up
// the pure point-getters, and the starting goalies compete on save
// volume against goals allowed, with a shutout bonus.
func (e *Engine) pickThreeStars(res *models.GameResult, home, away *models.Team, sheet *gameSheet) []models.StarLine {
	type ballot struct {
		player *models.Player
		team   string
		goals  int
		helps  int
		score  float64
		line   string
	}
	entries := make(map[string]*ballot)
	note := func(t *models.Team, id string) *ballot {
		if id == "" {
			return nil
		}
		if en, ok := entries[id]; ok {
			return en
		}
		p := t.FindPlayer(id)
		if p == nil {
			return nil
		}
		en := &ballot{player: p, team: t.Name}
		entries[id] = en
		return en
	}
	for _, g := range res.Goals {
		t := home
		if g.TeamID != home.ID {
			t = away
		}
		if en := note(t, g.ScorerID); en != nil {
			en.goals++
		}
		if en := note(t, g.AssistID); en != nil {
			en.helps++
		}
	}

	var ranked []*ballot
	for id, en := range entries {
		en.score = 2.0*float64(en.goals) + 1.4*float64(en.helps) +
			0.25*float64(sheet.plusMinus[id])
		en.line = fmt.Sprintf("%dG %dA", en.goals, en.helps)
		ranked = append(ranked, en)
	}

	bookGoalie := func(t *models.Team, saves, against int) {
		g := StartingGoalie(t)
		if g == nil {
			return
		}
		en := &ballot{player: g, team: t.Name}
		en.score = float64(saves)*0.1 - float64(against)*0.6
		en.line = fmt.Sprintf("%d saves", saves)
		if against == 0 {
			en.score += 2.5
			en.line = "shutout"
		}
		ranked = append(ranked, en)
	}
	bookGoalie(home, res.AwayShots-res.AwayGoals, res.AwayGoals)
	bookGoalie(away, res.HomeShots-res.HomeGoals, res.HomeGoals)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].player.Name < ranked[j].player.Name
	})

	var stars []models.StarLine
	for _, en := range ranked {
		if len(stars) >= 3 || en.score <= 0 {
			break
		}
		stars = append(stars, models.StarLine{
			PlayerID: en.player.ID,
			Name:     en.player.Name,
			Team:     en.team,
			Line:     en.line,
		})
	}
	return stars
}

// attendance scales the building by form and fan mood.
func (e *Engine) attendance(home *models.Team) int {
	cap := home.ArenaCapacity
	if cap <= 0 {
		cap = 17000
	}
	fill := 0.62 + home.FanSentiment/100.0*0.33
	gp := home.Record.GamesPlayed()
	if gp > 0 {
		winPct := float64(home.Record.Points()) / float64(gp*2)
		fill += (winPct - 0.5) * 0.12
	}
	fill += (e.rng.Float64() - 0.5) * 0.04
	return int(float64(cap) * clamp(fill, 0.45, 1.0))
}

func gameNarrative(res *models.GameResult) string {
	winner, loser := res.HomeTeam, res.AwayTeam
	wg, lg := res.HomeGoals, res.AwayGoals
	if res.AwayGoals > res.HomeGoals {
		winner, loser = res.AwayTeam, res.HomeTeam
		wg, lg = res.AwayGoals, res.HomeGoals
	}
	if res.Overtime {
		return fmt.Sprintf("%s edge %s %d-%d in overtime.", winner, loser, wg, lg)
	}
	if wg-lg >= 4 {
		return fmt.Sprintf("%s rout %s %d-%d.", winner, loser, wg, lg)
	}
	return fmt.Sprintf("%s beat %s %d-%d.", winner, loser, wg, lg)
}
