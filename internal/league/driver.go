package league

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/hockey-gm/internal/engine"
	"github.com/jstittsworth/hockey-gm/internal/models"
	"github.com/jstittsworth/hockey-gm/internal/roster"
	"github.com/jstittsworth/hockey-gm/internal/trade"
	"github.com/jstittsworth/hockey-gm/pkg/config"
)

// Archive holds everything that outlives a season: completed season
// summaries, enshrined players and the full careers of the retired.
type Archive struct {
	Seasons    []models.SeasonSummary `json:"seasons"`
	HallOfFame []models.HallOfFamer   `json:"hall_of_fame"`
	Careers    []*models.Player       `json:"careers"`
}

// DayOutcome is everything one advance produced.
type DayOutcome struct {
	Season       int                    `json:"season"`
	Day          int                    `json:"day"`
	Phase        models.Phase           `json:"phase"`
	Results      []*models.GameResult   `json:"results"`
	Transactions []*models.Transaction  `json:"transactions"`
	News         []string               `json:"news"`
	Replayed     bool                   `json:"replayed"`
}

// Driver advances the league clock. It owns the simulation engine and
// random source; callers own locking and persistence.
type Driver struct {
	cfg *config.Config
	log *logrus.Logger
	rng *rand.Rand
	eng *engine.Engine

	State   *State
	Archive *Archive
}

func NewDriver(cfg *config.Config, log *logrus.Logger, state *State, archive *Archive, rng *rand.Rand) *Driver {
	if archive == nil {
		archive = &Archive{}
	}
	return &Driver{
		cfg:     cfg,
		log:     log,
		rng:     rng,
		eng:     engine.New(cfg, rng),
		State:   state,
		Archive: archive,
	}
}

func (d *Driver) Rand() *rand.Rand { return d.rng }

// Checkpoint deep-copies the mutable league state so a failed persist
// can roll the simulation back to the last saved day.
func (d *Driver) Checkpoint() (*State, *Archive, error) {
	var s State
	if err := deepCopy(d.State, &s); err != nil {
		return nil, nil, fmt.Errorf("checkpoint state: %w", err)
	}
	var a Archive
	if err := deepCopy(d.Archive, &a); err != nil {
		return nil, nil, fmt.Errorf("checkpoint archive: %w", err)
	}
	return &s, &a, nil
}

// Restore swaps a checkpoint back in, discarding whatever the driver
// has simulated since it was taken.
func (d *Driver) Restore(s *State, a *Archive) {
	d.State = s
	d.Archive = a
}

func deepCopy(src, dst any) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// AdvanceDay plays the next league day. A requested day at or below
// the watermark is a replay: the cached results come back and nothing
// is simulated twice.
func (d *Driver) AdvanceDay(requested int) (*DayOutcome, error) {
	s := d.State
	if requested > 0 && requested <= s.LastSimmedDay {
		return &DayOutcome{
			Season:   s.Season,
			Day:      s.LastSimmedDay,
			Phase:    s.Phase,
			Results:  s.LastResults,
			Replayed: true,
		}, nil
	}

	var out *DayOutcome
	var err error
	switch s.Phase {
	case models.PhaseRegular:
		out, err = d.advanceRegularDay()
	case models.PhasePlayoffs:
		out, err = d.advancePlayoffDay()
	case models.PhaseOffseason:
		out, err = d.runOffseasonAndRestart()
	default:
		return nil, fmt.Errorf("unknown phase %q", s.Phase)
	}
	if err != nil {
		return nil, err
	}

	if n := s.SweepInbox(); n > 0 {
		d.log.WithField("expired", n).Debug("swept stale inbox events")
	}
	return out, nil
}

func (d *Driver) advanceRegularDay() (*DayOutcome, error) {
	s := d.State
	out := &DayOutcome{Season: s.Season, Day: s.Day, Phase: s.Phase}

	games := GamesOnDay(s.Schedule, s.Day)
	yesterday := PlayedOnDay(s.Schedule, s.Day-1)

	played := make(map[string]bool)
	for _, g := range games {
		home, away := s.Team(g.HomeTeamID), s.Team(g.AwayTeamID)
		if home == nil || away == nil {
			continue
		}
		res := d.eng.Simulate(home, away, engine.GameContext{
			Season:         s.Season,
			Day:            s.Day,
			HomeBackToBack: yesterday[home.ID],
			AwayBackToBack: yesterday[away.ID],
		})
		g.Played = true
		played[home.ID] = true
		played[away.ID] = true
		out.Results = append(out.Results, res)

		d.afterGame(home, away, res, out)
	}

	for id := range played {
		d.tickTeam(s.Team(id), out)
	}

	d.maybeOfferTrade(out)
	s.UpdateClinches()

	s.LastResults = out.Results
	s.LastSimmedDay = s.Day
	s.Day++

	if s.RemainingRegularGames() == 0 {
		d.startPlayoffs(out)
	}
	return out, nil
}

// afterGame books the soft consequences of a result: fan mood, bench
// tenure, and injury news for the inbox.
func (d *Driver) afterGame(home, away *models.Team, res *models.GameResult, out *DayOutcome) {
	adjust := func(t *models.Team, won bool) {
		if won {
			t.FanSentiment = clampSentiment(t.FanSentiment + 1.4)
		} else {
			t.FanSentiment = clampSentiment(t.FanSentiment - 1.1)
		}
		t.Coach.GamesWithTeam++
	}
	homeWon := res.HomeGoals > res.AwayGoals
	adjust(home, homeWon)
	adjust(away, !homeWon)

	for _, inj := range res.Injuries {
		tx := d.newTransaction(models.TxInjury, inj.TeamID, inj.PlayerID, inj.Narrative)
		out.Transactions = append(out.Transactions, tx)
		if inj.TeamID == d.State.UserTeamID {
			d.pushInbox(&models.InboxEvent{
				Type:  models.InboxInjuryReport,
				Title: "Injury report",
				Body:  inj.Narrative,
			})
		}
	}
}

// tickTeam runs the per-game-day bookkeeping for one team: recovery
// clocks and automatic roster patching.
func (d *Driver) tickTeam(t *models.Team, out *DayOutcome) {
	if t == nil {
		return
	}
	recovered := engine.TickInjuries(t)
	for _, p := range recovered {
		tx := d.newTransaction(models.TxActivation, t.ID, p.ID,
			fmt.Sprintf("%s activated from the injured list.", p.Name))
		out.Transactions = append(out.Transactions, tx)
	}
	if len(recovered) > 0 {
		for _, mv := range roster.ResolveOverflow(t, d.cfg) {
			tx := d.newTransaction(models.TxSendDown, t.ID, mv.Player.ID, mv.Summary)
			out.Transactions = append(out.Transactions, tx)
		}
	}

	moves := roster.AutoReplaceInjured(t, d.cfg)
	for _, mv := range moves {
		tx := d.newTransaction(models.TxCallUp, t.ID, mv.Player.ID, mv.Summary)
		out.Transactions = append(out.Transactions, tx)
	}
	if len(moves) > 0 || t.Needs.Mode == models.NeedsAuto {
		trade.RecomputeNeeds(t)
	}
}

// maybeOfferTrade occasionally has a CPU club knock on the user's door.
func (d *Driver) maybeOfferTrade(out *DayOutcome) {
	s := d.State
	if d.rng.Float64() >= d.cfg.TradeOfferChance {
		return
	}
	user := s.UserTeam()
	if user == nil {
		return
	}
	from := s.Teams[d.rng.Intn(len(s.Teams))]
	if from.ID == user.ID {
		return
	}
	offer := trade.GenerateCPUOffer(from, user, d.cfg, d.rng)
	if offer == nil {
		return
	}
	offer.CreatedDay = s.Day
	offer.CreatedSeason = s.Season
	d.pushInbox(&models.InboxEvent{
		Type:  models.InboxTradeOffer,
		Title: fmt.Sprintf("Trade offer from %s", from.Name),
		Body:  trade.OfferSummary(offer, s.PlayerTeam),
		Offer: offer,
	})
	out.News = append(out.News, fmt.Sprintf("%s have made you a trade offer.", from.Name))
}

func (d *Driver) startPlayoffs(out *DayOutcome) {
	s := d.State
	s.Phase = models.PhasePlayoffs
	s.Bracket = s.BuildBracket(d.cfg.PlayoffBestOf)
	out.Phase = s.Phase
	out.News = append(out.News, "The regular season is over. The playoffs begin.")
	d.log.WithFields(logrus.Fields{
		"season": s.Season,
		"series": len(s.Bracket.Series),
	}).Info("playoff bracket built")
}

func (d *Driver) advancePlayoffDay() (*DayOutcome, error) {
	s := d.State
	out := &DayOutcome{Season: s.Season, Day: s.Day, Phase: s.Phase}
	b := s.Bracket
	if b == nil {
		return nil, fmt.Errorf("playoffs phase with no bracket")
	}

	for _, sr := range b.SeriesInRound(b.Current) {
		if sr.Status == models.SeriesFinished {
			continue
		}
		n := sr.NextGameNumber()
		higher, lower := s.Team(sr.Higher.TeamID), s.Team(sr.Lower.TeamID)
		if higher == nil || lower == nil {
			continue
		}
		home, away := higher, lower
		if !models.HigherHostsGame(n) {
			home, away = lower, higher
		}
		res := d.eng.Simulate(home, away, engine.GameContext{
			Season:   s.Season,
			Day:      s.Day,
			Playoff:  true,
			SeriesID: sr.ID,
		})
		sr.RecordWin(res.WinnerID())
		sr.GameIDs = append(sr.GameIDs, res.GameID)
		out.Results = append(out.Results, res)
		if sr.Status == models.SeriesFinished {
			out.News = append(out.News, SeriesLabel(sr))
		}

		d.afterGame(home, away, res, out)
	}

	for id := range teamsInRound(b) {
		d.tickTeam(s.Team(id), out)
	}

	if b.RoundComplete(b.Current) {
		s.advanceBracket(b)
		if b.ChampionID != "" {
			s.Phase = models.PhaseOffseason
			out.Phase = s.Phase
			out.News = append(out.News, fmt.Sprintf("The %s have won the championship!", b.Champion))
			if t := s.Team(b.ChampionID); t != nil {
				t.FanSentiment = clampSentiment(t.FanSentiment + 18)
			}
		}
	}

	s.LastResults = out.Results
	s.LastSimmedDay = s.Day
	s.Day++
	return out, nil
}

func teamsInRound(b *models.Bracket) map[string]bool {
	out := make(map[string]bool)
	for _, sr := range b.SeriesInRound(b.Current) {
		out[sr.Higher.TeamID] = true
		out[sr.Lower.TeamID] = true
	}
	return out
}

// runOffseasonAndRestart archives the finished season, runs the summer
// pipeline and opens the next campaign on day one.
func (d *Driver) runOffseasonAndRestart() (*DayOutcome, error) {
	s := d.State
	out := &DayOutcome{Season: s.Season, Day: s.Day, Phase: s.Phase}

	d.archiveSeason(out)
	d.runOffseason(out)
	d.startNewSeason(out)

	out.Phase = s.Phase
	return out, nil
}

func (d *Driver) pushInbox(ev *models.InboxEvent) {
	s := d.State
	ev.ID = uuid.NewString()
	ev.Season = s.Season
	ev.Day = s.Day
	if ev.ExpiryDay == 0 {
		ev.ExpiryDay = s.Day + d.cfg.InboxExpiryDays
	}
	s.Inbox = append(s.Inbox, ev)
}

func (d *Driver) newTransaction(txType models.TransactionType, teamID, playerID, summary string) *models.Transaction {
	return &models.Transaction{
		ID:        uuid.NewString(),
		Season:    d.State.Season,
		Day:       d.State.Day,
		Type:      txType,
		TeamID:    teamID,
		PlayerID:  playerID,
		Summary:   summary,
		CreatedAt: time.Now(),
	}
}

func clampSentiment(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
