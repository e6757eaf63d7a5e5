package league

import (
	"fmt"

	"github.com/jstittsworth/hockey-gm/internal/models"
	"github.com/jstittsworth/hockey-gm/internal/roster"
	"github.com/jstittsworth/hockey-gm/internal/trade"
)

// archiveSeason closes player stints, decides awards and writes the
// season summary into the archive.
func (d *Driver) archiveSeason(out *DayOutcome) {
	s := d.State

	summary := models.SeasonSummary{
		Season:         s.Season,
		FinalStandings: s.Standings(),
		PointLeaders:   s.PointLeaders(10),
		GoalLeaders:    s.GoalLeaders(10),
		UserTeamID:     s.UserTeamID,
	}
	if b := s.Bracket; b != nil {
		summary.ChampionID = b.ChampionID
		summary.Champion = b.Champion
	}
	if len(summary.FinalStandings) > 0 {
		top := summary.FinalStandings[0]
		summary.PresidentsID = top.TeamID
		summary.Presidents = top.Team
	}
	summary.Awards = d.decideAwards()
	summary.UserFinish = d.userFinishLine(summary)

	// Fold every player's final stint into their career record.
	for _, t := range s.Teams {
		for _, p := range t.AllPlayers() {
			if p.Stats.GamesPlayed > 0 || p.Stats.GoalieGames > 0 || p.Stats.GamesMissed > 0 {
				p.CloseStint(s.Season, t.Name)
			}
		}
	}

	d.Archive.Seasons = append(d.Archive.Seasons, summary)
	out.News = append(out.News, fmt.Sprintf("Season %d is in the books.", s.Season))
}

func (d *Driver) decideAwards() []models.AwardRow {
	s := d.State
	var awards []models.AwardRow
	if rows := s.PointLeaders(1); len(rows) > 0 {
		awards = append(awards, models.AwardRow{
			Award: "Most Valuable Player", PlayerID: rows[0].PlayerID, Name: rows[0].Name,
			Team: rows[0].Team, Note: fmt.Sprintf("%.0f points", rows[0].Value),
		})
	}
	if rows := s.GoalLeaders(1); len(rows) > 0 {
		awards = append(awards, models.AwardRow{
			Award: "Top Goal Scorer", PlayerID: rows[0].PlayerID, Name: rows[0].Name,
			Team: rows[0].Team, Note: fmt.Sprintf("%.0f goals", rows[0].Value),
		})
	}
	if rows := s.GoalieLeaders(1); len(rows) > 0 {
		awards = append(awards, models.AwardRow{
			Award: "Top Goaltender", PlayerID: rows[0].PlayerID, Name: rows[0].Name,
			Team: rows[0].Team, Note: fmt.Sprintf(".%03.0f save percentage", rows[0].Value*1000),
		})
	}
	return awards
}

func (d *Driver) userFinishLine(summary models.SeasonSummary) string {
	for i, r := range summary.FinalStandings {
		if r.TeamID == d.State.UserTeamID {
			if summary.ChampionID == r.TeamID {
				return "Won the championship"
			}
			return fmt.Sprintf("Finished %s overall", ordinal(i+1))
		}
	}
	return ""
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// agingDelta is the per-season rating drift by age band.
func agingDelta(age int) float64 {
	switch {
	case age <= 20:
		return 0.10
	case age <= 23:
		return 0.07
	case age <= 26:
		return 0.04
	case age <= 28:
		return 0.0
	case age <= 31:
		return -0.03
	case age <= 35:
		return -0.06
	default:
		return -0.08
	}
}

// runOffseason executes the summer pipeline: aging, prospect
// resolution, retirements, hall of fame voting, the entry draft and
// contract turnover.
func (d *Driver) runOffseason(out *DayOutcome) {
	d.agePlayers()
	d.resolveProspects(out)
	d.processRetirements(out)
	d.runDraft(out)
	d.turnOverContracts(out)
	d.restockRosters(out)

	// Fan bases cool off over the summer.
	for _, t := range d.State.Teams {
		t.FanSentiment = clampSentiment(t.FanSentiment*0.7 + 50*0.3)
		t.Coach.SeasonsCoached++
		t.Coach.Age++
	}
}

func (d *Driver) agePlayers() {
	for _, t := range d.State.Teams {
		for _, p := range t.AllPlayers() {
			p.Age++
			delta := agingDelta(p.Age)

			// Heavy usage and a rough injury year accelerate decline.
			lastGP, lastMissed := lastSeasonLoad(p)
			if p.Age >= 30 && lastGP >= 40 {
				delta -= 0.015
			}
			if lastMissed >= 15 {
				delta -= 0.02
			}

			jitter := (d.rng.Float64() - 0.5) * 0.06
			applyAging(p, delta+jitter)
		}
	}
}

func lastSeasonLoad(p *models.Player) (gamesPlayed, gamesMissed int) {
	if len(p.CareerSeasons) == 0 {
		return 0, 0
	}
	last := p.CareerSeasons[len(p.CareerSeasons)-1]
	return last.GamesPlayed + last.GoalieGames, last.GamesMissed
}

func applyAging(p *models.Player, delta float64) {
	r := &p.Ratings
	if p.IsGoalie() {
		r.Goaltending = clampRating(r.Goaltending + delta)
		r.Durability = clampRating(r.Durability + delta*0.5)
		return
	}
	r.Shooting = clampRating(r.Shooting + delta)
	r.Playmaking = clampRating(r.Playmaking + delta)
	r.Defense = clampRating(r.Defense + delta*0.8)
	r.Physical = clampRating(r.Physical + delta*0.9)
	r.Durability = clampRating(r.Durability + delta*0.6)
}

// resolveProspects rolls boom or bust for drafted players coming of
// age in the minors.
func (d *Driver) resolveProspects(out *DayOutcome) {
	for _, t := range d.State.Teams {
		for _, p := range t.Minors {
			pr := &p.Prospect
			if pr.Resolved || pr.Tier == "" {
				continue
			}
			if pr.SeasonsToNHL > 0 {
				pr.SeasonsToNHL--
				continue
			}
			pr.Resolved = true
			roll := d.rng.Float64()
			boost := 0.0
			switch {
			case roll < pr.BoomChance:
				boost = 0.45
				out.News = append(out.News, fmt.Sprintf("%s prospect %s has taken a massive step forward.", t.Name, p.Name))
			case roll > 1.0-pr.BustChance:
				boost = -0.40
			default:
				boost = (pr.Potential - p.Overall()) * 0.35
			}
			applyAging(p, boost)
		}
	}
}

func (d *Driver) processRetirements(out *DayOutcome) {
	s := d.State
	for _, t := range s.Teams {
		var retiring []*models.Player
		for _, p := range t.AllPlayers() {
			threshold := 35
			if p.IsGoalie() {
				threshold = 37
			}
			if p.Age < threshold {
				continue
			}
			prob := 0.10 + float64(p.Age-threshold)*0.12
			if d.rng.Float64() < prob {
				retiring = append(retiring, p)
			}
		}
		for _, p := range retiring {
			t.RemovePlayer(p.ID)
			p.TeamID = ""
			s.Retired = append(s.Retired, p)
			d.Archive.Careers = append(d.Archive.Careers, p)
			tx := d.newTransaction(models.TxRetirement, t.ID, p.ID,
				fmt.Sprintf("%s retires at age %d.", p.Name, p.Age))
			out.Transactions = append(out.Transactions, tx)

			if hof, ok := d.considerHallOfFame(p); ok {
				d.Archive.HallOfFame = append(d.Archive.HallOfFame, hof)
				out.News = append(out.News, fmt.Sprintf("%s enters the Hall of Fame.", p.Name))
			}
		}
		if len(retiring) > 0 {
			t.EnsureLeadership()
		}
	}
}

// considerHallOfFame enshrines on raw career totals.
func (d *Driver) considerHallOfFame(p *models.Player) (models.HallOfFamer, bool) {
	var games, goals, assists, wins, shutouts int
	teamSet := make(map[string]bool)
	var teams []string
	for _, row := range p.CareerSeasons {
		games += row.GamesPlayed + row.GoalieGames
		goals += row.Goals
		assists += row.Assists
		wins += row.GoalieWins
		shutouts += row.GoalieShutouts
		if !teamSet[row.Team] {
			teamSet[row.Team] = true
			teams = append(teams, row.Team)
		}
	}
	points := goals + assists

	qualified := false
	if p.IsGoalie() {
		qualified = wins >= 180 || shutouts >= 35
	} else {
		qualified = points >= 500 || goals >= 260
	}
	if !qualified {
		return models.HallOfFamer{}, false
	}
	return models.HallOfFamer{
		PlayerID:      p.ID,
		Name:          p.Name,
		Position:      p.Position,
		RetiredSeason: d.State.Season,
		RetiredAge:    p.Age,
		CareerGames:   games,
		CareerGoals:   goals,
		CareerAssists: assists,
		CareerPoints:  points,
		GoalieWins:    wins,
		Shutouts:      shutouts,
		Teams:         teams,
		Seasons:       p.CareerSeasons,
	}, true
}

// runDraft holds a two-round entry draft in reverse standings order.
// Early picks draw from a stronger talent range, with occasional
// busts regardless of slot.
func (d *Driver) runDraft(out *DayOutcome) {
	s := d.State
	standings := s.Standings()
	order := make([]*models.Team, 0, len(standings))
	for i := len(standings) - 1; i >= 0; i-- {
		if t := s.Team(standings[i].TeamID); t != nil {
			order = append(order, t)
		}
	}

	overall := 0
	positions := []string{"C", "LW", "RW", "D", "D", "G", "C", "RW"}
	for round := 1; round <= 2; round++ {
		for _, t := range order {
			overall++
			normalized := float64(overall-1) / float64(len(order)*2)
			quality := 0.90 - normalized*0.34 + (d.rng.Float64()-0.5)*0.10
			if d.rng.Float64() < 0.08 {
				quality *= 0.55
			}
			if quality < 0.15 {
				quality = 0.15
			}

			pos := positions[d.rng.Intn(len(positions))]
			p := newMinorLeaguer(d.rng, pos)
			p.Age = 18
			p.PrimeAge = intBetween(d.rng, 25, 29)
			scale := quality / 0.6
			p.Ratings.Shooting = clampRating(p.Ratings.Shooting * scale)
			p.Ratings.Playmaking = clampRating(p.Ratings.Playmaking * scale)
			p.Ratings.Defense = clampRating(p.Ratings.Defense * scale)
			if p.IsGoalie() {
				p.Ratings.Goaltending = clampRating(p.Ratings.Goaltending * scale)
			}
			p.TeamID = t.ID
			p.Contract = models.Contract{YearsLeft: 3, CapHit: 850, Type: models.ContractEntry, RFA: true}
			p.Draft = models.DraftInfo{Season: s.Season, Round: round, Overall: overall, Team: t.Name}
			p.Prospect = models.ProspectInfo{
				Tier:         models.TierJunior,
				SeasonsToNHL: intBetween(d.rng, 1, 3),
				Potential:    quality * 4.6,
				BoomChance:   0.10 + quality*0.08,
				BustChance:   0.12 + (1-quality)*0.15,
			}
			t.Minors = append(t.Minors, p)
			assignJerseyNumbers(t, d.rng)

			tx := d.newTransaction(models.TxDraftPick, t.ID, p.ID,
				fmt.Sprintf("%s select %s (%s) %s overall.", t.Name, p.Name, p.Position, ordinal(overall)))
			out.Transactions = append(out.Transactions, tx)
		}
	}
	out.News = append(out.News, "The entry draft is complete.")
}

// turnOverContracts ages every deal a year. Clubs keep their
// restricted players; unrestricted expirees mostly re-sign, the rest
// hit the open market.
func (d *Driver) turnOverContracts(out *DayOutcome) {
	s := d.State
	for _, t := range s.Teams {
		var departing []*models.Player
		for _, p := range t.AllPlayers() {
			p.Contract.YearsLeft--
			if p.Contract.YearsLeft > 0 {
				continue
			}
			if p.Contract.RFA || p.Age <= 25 {
				p.Contract = renewedContract(p, d)
				continue
			}
			keepChance := 0.55 + p.Overall()*0.06
			if d.rng.Float64() < keepChance {
				p.Contract = renewedContract(p, d)
				tx := d.newTransaction(models.TxExtension, t.ID, p.ID,
					fmt.Sprintf("%s re-sign %s.", t.Name, p.Name))
				out.Transactions = append(out.Transactions, tx)
			} else {
				departing = append(departing, p)
			}
		}
		for _, p := range departing {
			t.RemovePlayer(p.ID)
			p.TeamID = ""
			p.Contract = models.Contract{YearsLeft: 1, CapHit: p.Contract.CapHit, Type: models.ContractVeteran}
			s.FreeAgents = append(s.FreeAgents, p)
			tx := d.newTransaction(models.TxRelease, t.ID, p.ID,
				fmt.Sprintf("%s lose %s to free agency.", t.Name, p.Name))
			out.Transactions = append(out.Transactions, tx)
		}
		if len(departing) > 0 {
			t.EnsureLeadership()
		}
	}
}

func renewedContract(p *models.Player, d *Driver) models.Contract {
	return contractFor(p, d.rng)
}

// restockRosters has every club patch the holes free agency and
// retirement left, first from its own farm and then from the open
// market.
func (d *Driver) restockRosters(out *DayOutcome) {
	s := d.State
	for _, t := range s.Teams {
		for _, mv := range roster.AutoReplaceInjured(t, d.cfg) {
			tx := d.newTransaction(models.TxCallUp, t.ID, mv.Player.ID, mv.Summary)
			out.Transactions = append(out.Transactions, tx)
		}
		var moves []roster.Move
		moves, s.FreeAgents = roster.FillFromMarket(t, s.FreeAgents, d.cfg)
		for _, mv := range moves {
			tx := d.newTransaction(models.TxSigning, t.ID, mv.Player.ID, mv.Summary)
			out.Transactions = append(out.Transactions, tx)
		}
		if t.Needs.Mode == models.NeedsAuto {
			trade.RecomputeNeeds(t)
		}
	}
}

// startNewSeason resets the calendar and records and lays out a fresh
// schedule.
func (d *Driver) startNewSeason(out *DayOutcome) {
	s := d.State
	s.Season++
	s.Day = 1
	s.LastSimmedDay = 0
	s.LastResults = nil
	s.Bracket = nil
	s.Phase = models.PhaseRegular

	for _, t := range s.Teams {
		t.Record = models.TeamRecord{}
		t.ClinchedPlayoffs = false
		t.ClinchedDivision = false
		t.ClinchedConference = false
		t.ClinchedPresidents = false
		t.Eliminated = false
		for _, p := range t.AllPlayers() {
			p.Stats = models.SeasonStats{}
			p.Injury = models.InjuryState{Status: models.InjuryNone}
		}
		for _, mv := range roster.ResolveOverflow(t, d.cfg) {
			tx := d.newTransaction(models.TxSendDown, t.ID, mv.Player.ID, mv.Summary)
			out.Transactions = append(out.Transactions, tx)
		}
		t.EnsureLeadership()
	}
	s.Schedule = BuildSchedule(s.Teams, d.cfg.GamesPerMatchup, d.rng)

	out.News = append(out.News, fmt.Sprintf("Season %d begins.", s.Season))
	d.log.WithField("season", s.Season).Info("new season started")
}
