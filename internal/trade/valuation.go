package trade

import (
	"fmt"
	"math"

	"github.com/jstittsworth/hockey-gm/internal/models"
	"github.com/jstittsworth/hockey-gm/pkg/config"
)

// Value scores one player from the evaluating team's point of view.
// The base is pure ability; age, fit, contract and health shift it.
func Value(p *models.Player, evaluator *models.Team, cfg *config.Config) models.PlayerValuation {
	v := models.PlayerValuation{PlayerID: p.ID, Name: p.Name}

	v.Base = p.Overall() * 2.0

	v.AgeCurve = ageCurve(p, cfg)

	if evaluator.Needs.Scores != nil {
		cat := CategoryFor(p)
		v.NeedBonus = evaluator.Needs.Scores[cat] * p.Overall() * 0.55
	}

	v.Contract = contractValue(p)
	if p.IsInjured() {
		v.Injury = -0.4 - float64(p.Injury.GamesRemaining)*0.04
		if p.Injury.Status == models.InjurySeasonEnding {
			v.Injury = -2.2
		}
	}

	v.Total = v.Base + v.AgeCurve + v.NeedBonus + v.Contract + v.Injury
	if v.Total < 0.1 {
		v.Total = 0.1
	}
	return v
}

// ageCurve peaks through the prime window and falls off on both sides,
// steeper on the back nine. Prospects carry upside beyond their
// current ability.
func ageCurve(p *models.Player, cfg *config.Config) float64 {
	switch {
	case p.Age < cfg.PrimeAgeMin:
		upside := float64(cfg.PrimeAgeMin-p.Age) * 0.18
		if !p.Prospect.Resolved && p.Prospect.Potential > p.Overall() {
			upside += (p.Prospect.Potential - p.Overall()) * 0.3
		}
		return math.Min(upside, 1.6)
	case p.Age <= cfg.PrimeAgeMax:
		return 0.35
	default:
		return -float64(p.Age-cfg.PrimeAgeMax) * 0.22
	}
}

// contractValue rewards cheap production and expiring flexibility,
// dings overpays.
func contractValue(p *models.Player) float64 {
	fair := 775 + (p.Overall()-0.3)/4.7*11000
	surplus := (fair - float64(p.Contract.CapHit)) / 4000
	if surplus > 0.8 {
		surplus = 0.8
	}
	if surplus < -1.2 {
		surplus = -1.2
	}
	if p.Contract.IsExpiring() {
		surplus += 0.15
	}
	return surplus
}

// Evaluate judges an offer from the receiving team's chair. Incoming
// players are the ones the evaluator would get.
func Evaluate(offer *models.TradeOffer, evaluator, other *models.Team, cfg *config.Config) (*models.TradeEvaluation, error) {
	eval := &models.TradeEvaluation{OfferID: offer.ID, TeamID: evaluator.ID}

	incomingIDs, outgoingIDs := offer.FromPlayerIDs, offer.ToPlayerIDs
	if evaluator.ID == offer.FromTeamID {
		incomingIDs, outgoingIDs = offer.ToPlayerIDs, offer.FromPlayerIDs
	}

	for _, id := range incomingIDs {
		p := other.FindPlayer(id)
		if p == nil {
			return nil, fmt.Errorf("player %s not found on %s", id, other.Name)
		}
		if other.TradeBlock[id] == models.BlockUntouchable {
			return nil, fmt.Errorf("%s is untouchable", p.Name)
		}
		eval.Incoming = append(eval.Incoming, Value(p, evaluator, cfg))
	}
	for _, id := range outgoingIDs {
		p := evaluator.FindPlayer(id)
		if p == nil {
			return nil, fmt.Errorf("player %s not found on %s", id, evaluator.Name)
		}
		eval.Outgoing = append(eval.Outgoing, Value(p, evaluator, cfg))
	}
	if len(eval.Incoming) == 0 || len(eval.Outgoing) == 0 {
		return nil, fmt.Errorf("both sides of a trade need at least one player")
	}

	for _, v := range eval.Incoming {
		eval.Net += v.Total
	}
	for _, v := range eval.Outgoing {
		eval.Net -= v.Total
	}

	switch {
	case eval.Net >= cfg.TradeCPUMinNet:
		eval.Verdict = models.VerdictAccept
	case eval.Net >= cfg.TradeMinNet:
		eval.Verdict = models.VerdictConsider
	default:
		eval.Verdict = models.VerdictReject
	}
	eval.AcceptProb = acceptProbability(eval.Net, cfg)
	eval.Reasons = reasons(eval, evaluator)
	return eval, nil
}

// acceptProbability is a logistic curve centered on the CPU's minimum
// acceptable net.
func acceptProbability(net float64, cfg *config.Config) float64 {
	p := 1.0 / (1.0 + math.Exp(-(net-cfg.TradeCPUMinNet)*2.2))
	return math.Round(p*100) / 100
}

func reasons(eval *models.TradeEvaluation, evaluator *models.Team) []string {
	var out []string
	switch eval.Verdict {
	case models.VerdictAccept:
		out = append(out, fmt.Sprintf("%s like the value coming back.", evaluator.Name))
	case models.VerdictConsider:
		out = append(out, fmt.Sprintf("%s see it as close; a sweetener could get it done.", evaluator.Name))
	default:
		out = append(out, fmt.Sprintf("%s are not moving quality for this return.", evaluator.Name))
	}

	bestIn, bestOut := 0.0, 0.0
	for _, v := range eval.Incoming {
		if v.NeedBonus > bestIn {
			bestIn = v.NeedBonus
		}
	}
	for _, v := range eval.Outgoing {
		if v.Total > bestOut {
			bestOut = v.Total
		}
	}
	if bestIn > 0.5 {
		out = append(out, "The return addresses a real roster hole.")
	}
	for _, v := range eval.Incoming {
		if v.Injury < -1.0 {
			out = append(out, fmt.Sprintf("%s's injury is a serious concern.", v.Name))
		}
	}
	return out
}
