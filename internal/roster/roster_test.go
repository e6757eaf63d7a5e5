package roster

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/hockey-gm/internal/models"
	"github.com/jstittsworth/hockey-gm/pkg/config"
)

func buildPlayer(id, pos string, overall float64, capHit int64) *models.Player {
	return &models.Player{
		ID:       id,
		Name:     "Player " + id,
		Position: pos,
		Age:      26,
		Ratings: models.Ratings{
			Shooting: overall, Playmaking: overall, Defense: overall,
			Physical: overall, Durability: overall, Goaltending: overall,
		},
		Contract: models.Contract{YearsLeft: 2, CapHit: capHit, Type: models.ContractStandard},
	}
}

// fullTeam carries the minimum legal lineup with two spare forwards
// and a farm club behind it.
func fullTeam() *models.Team {
	t := &models.Team{ID: "t1", Name: "Testers", Dressed: make(map[string]bool)}
	for i := 0; i < 14; i++ {
		t.Roster = append(t.Roster, buildPlayer(fmt.Sprintf("f%d", i), models.PositionCenter, 3.0, 2000))
	}
	for i := 0; i < 6; i++ {
		t.Roster = append(t.Roster, buildPlayer(fmt.Sprintf("d%d", i), models.PositionDefense, 3.0, 2000))
	}
	t.Roster = append(t.Roster,
		buildPlayer("g0", models.PositionGoalie, 3.5, 2000),
		buildPlayer("g1", models.PositionGoalie, 3.0, 2000))

	t.Minors = append(t.Minors,
		buildPlayer("m-f0", models.PositionCenter, 2.6, 900),
		buildPlayer("m-f1", models.PositionLeftWing, 2.2, 900),
		buildPlayer("m-d0", models.PositionDefense, 2.4, 900),
		buildPlayer("m-g0", models.PositionGoalie, 2.3, 900))
	return t
}

func TestPromoteAndDemote(t *testing.T) {
	cfg := config.Default()
	team := fullTeam()

	// The active roster starts full; a demotion must come first.
	err := Promote(team, "m-f0", cfg)
	var ce *ComplianceError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ConstraintHeadcount, ce.Constraint)

	require.NoError(t, Demote(team, "f13", cfg))
	assert.Len(t, team.Roster, 21)
	assert.Len(t, team.Minors, 5)

	require.NoError(t, Promote(team, "m-f0", cfg))
	assert.True(t, team.OnActiveRoster("m-f0"))
	assert.Len(t, team.Minors, 4)
}

func TestPromoteUnknownPlayer(t *testing.T) {
	cfg := config.Default()
	team := fullTeam()

	err := Promote(team, "nobody", cfg)
	var ce *ComplianceError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ConstraintNotFound, ce.Constraint)
}

func TestPromoteRespectsSalaryCap(t *testing.T) {
	cfg := config.Default()
	team := fullTeam()
	require.NoError(t, Demote(team, "f13", cfg))
	for _, p := range team.Minors {
		if p.ID == "m-d0" {
			p.Contract.CapHit = cfg.SalaryCap
		}
	}

	err := Promote(team, "m-d0", cfg)
	var ce *ComplianceError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ConstraintCap, ce.Constraint)
}

func TestDemoteBlocksInjuredAndMinimums(t *testing.T) {
	cfg := config.Default()
	team := fullTeam()

	team.FindPlayer("f0").Injury = models.InjuryState{Status: models.InjuryIR, GamesRemaining: 8}
	err := Demote(team, "f0", cfg)
	var ce *ComplianceError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ConstraintInjury, ce.Constraint)

	// Only two goalies dressed; neither can go down.
	err = Demote(team, "g1", cfg)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ConstraintPosition, ce.Constraint)
}

func TestLTIRFreesSpotAndCap(t *testing.T) {
	cfg := config.Default()
	team := fullTeam()

	assert.Equal(t, 22, effectiveHeadcount(team))
	hurt := team.FindPlayer("f0")
	hurt.Injury = models.InjuryState{Status: models.InjuryLTIR, GamesRemaining: 25}

	assert.Equal(t, 21, effectiveHeadcount(team))
	assert.Equal(t, hurt.Contract.CapHit, capRelief(team))

	// The freed spot lets a call-up through even at the limit.
	require.NoError(t, Promote(team, "m-f0", cfg))
}

func TestPromoteBlocksLongTermInjured(t *testing.T) {
	cfg := config.Default()
	team := fullTeam()
	require.NoError(t, Demote(team, "f13", cfg))

	hurt := team.Minors[len(team.Minors)-1]
	require.Equal(t, "f13", hurt.ID)
	hurt.Injury = models.InjuryState{Status: models.InjuryLTIR, GamesRemaining: 25}

	err := Promote(team, "f13", cfg)
	var ce *ComplianceError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ConstraintInjury, ce.Constraint)
	assert.False(t, team.OnActiveRoster("f13"))

	// Day-to-day is recallable.
	hurt.Injury = models.InjuryState{Status: models.InjuryDTD, GamesRemaining: 2}
	require.NoError(t, Promote(team, "f13", cfg))
}

func TestResolveOverflowTrimsAfterActivation(t *testing.T) {
	cfg := config.Default()
	team := fullTeam()

	// A long-term injury opens a spot, and a signing fills it.
	hurt := team.FindPlayer("f0")
	hurt.Injury = models.InjuryState{Status: models.InjuryLTIR, GamesRemaining: 25}
	extra := buildPlayer("f-extra", models.PositionCenter, 1.8, 1200)
	require.NoError(t, SignFreeAgent(team, extra, cfg))
	assert.Equal(t, 22, effectiveHeadcount(team))

	// The injured man heals; the club is one over.
	hurt.Injury = models.InjuryState{Status: models.InjuryNone}
	assert.Equal(t, 23, effectiveHeadcount(team))

	moves := ResolveOverflow(team, cfg)
	require.Len(t, moves, 1)
	assert.Equal(t, "f-extra", moves[0].Player.ID, "the weakest spare goes down")
	assert.Equal(t, 22, effectiveHeadcount(team))
	assert.False(t, team.OnActiveRoster("f-extra"))

	// A compliant roster is left alone.
	assert.Empty(t, ResolveOverflow(team, cfg))
}

func TestSignFreeAgent(t *testing.T) {
	cfg := config.Default()
	team := fullTeam()
	require.NoError(t, Demote(team, "f13", cfg))

	fa := buildPlayer("fa1", models.PositionRightWing, 3.2, 3000)
	require.NoError(t, SignFreeAgent(team, fa, cfg))
	assert.Equal(t, "t1", fa.TeamID)
	assert.True(t, team.OnActiveRoster("fa1"))
}

func TestExtendContract(t *testing.T) {
	cfg := config.Default()
	team := fullTeam()

	require.NoError(t, ExtendContract(team, "f0", 4, 5000, cfg))
	p := team.FindPlayer("f0")
	assert.Equal(t, 4, p.Contract.YearsLeft)
	assert.Equal(t, int64(5000), p.Contract.CapHit)

	err := ExtendContract(team, "f0", 9, 5000, cfg)
	var ce *ComplianceError
	require.ErrorAs(t, err, &ce)

	err = ExtendContract(team, "f0", 3, cfg.SalaryCap, cfg)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ConstraintCap, ce.Constraint)
}

func TestAutoReplaceInjuredCallsUpCover(t *testing.T) {
	cfg := config.Default()
	team := fullTeam()

	// Three long-term injuries leave eleven healthy forwards, one short
	// of a lineup, and free the roster spots for cover.
	for _, id := range []string{"f0", "f1", "f2"} {
		team.FindPlayer(id).Injury = models.InjuryState{Status: models.InjuryLTIR, GamesRemaining: 25}
	}

	moves := AutoReplaceInjured(team, cfg)
	require.Len(t, moves, 1)
	assert.Equal(t, "m-f0", moves[0].Player.ID, "the best minor league forward comes up")
	assert.True(t, team.OnActiveRoster("m-f0"))
}

func TestAutoReplaceInjuredGoalieFirst(t *testing.T) {
	cfg := config.Default()
	team := fullTeam()

	for _, id := range []string{"g0", "f0", "f1", "f2"} {
		team.FindPlayer(id).Injury = models.InjuryState{Status: models.InjuryLTIR, GamesRemaining: 25}
	}

	moves := AutoReplaceInjured(team, cfg)
	require.NotEmpty(t, moves)
	assert.Equal(t, "m-g0", moves[0].Player.ID, "a missing netminder is the emergency")
}

func TestFillFromMarket(t *testing.T) {
	cfg := config.Default()
	team := fullTeam()

	// Gut the blue line below the dressed minimum.
	team.RemovePlayer("d5")
	team.RemovePlayer("d4")
	team.Minors = nil

	market := []*models.Player{
		buildPlayer("fa-d-good", models.PositionDefense, 3.4, 2500),
		buildPlayer("fa-d-ok", models.PositionDefense, 2.8, 1500),
		buildPlayer("fa-f", models.PositionCenter, 3.0, 2000),
	}

	moves, remaining := FillFromMarket(team, market, cfg)
	require.Len(t, moves, 2)
	assert.Equal(t, "fa-d-good", moves[0].Player.ID, "best fit signs first")
	assert.Equal(t, "fa-d-ok", moves[1].Player.ID)
	require.Len(t, remaining, 1)
	assert.Equal(t, "fa-f", remaining[0].ID)
}

func TestComplianceErrorUnwraps(t *testing.T) {
	err := violation(ConstraintCap, "over by %d", 500)
	var ce *ComplianceError
	assert.True(t, errors.As(err, &ce))
	assert.Contains(t, ce.Error(), "salary_cap")
}
