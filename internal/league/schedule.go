package league

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/jstittsworth/hockey-gm/internal/models"
)

// calendarDensity is the share of a round-robin round played on its
// first calendar day; the remainder spills to the next day so teams
// see occasional back-to-backs without every night being a full slate.
const calendarDensity = 0.60

// BuildSchedule lays out a full regular season with the circle method:
// one team stays fixed while the rest rotate, so every pairing appears
// once per cycle. Home ice alternates across cycles.
func BuildSchedule(teams []*models.Team, gamesPerMatchup int, rng *rand.Rand) []*models.ScheduledGame {
	n := len(teams)
	if n < 2 {
		return nil
	}
	if gamesPerMatchup < 1 {
		gamesPerMatchup = 1
	}

	ids := make([]string, n)
	for i, t := range teams {
		ids[i] = t.ID
	}
	// Odd team counts get a rotating bye slot.
	if n%2 == 1 {
		ids = append(ids, "")
		n++
	}

	var schedule []*models.ScheduledGame
	day := 1

	rotation := make([]string, n)
	copy(rotation, ids)

	for cycle := 0; cycle < gamesPerMatchup; cycle++ {
		copy(rotation, ids)
		for round := 0; round < n-1; round++ {
			var games []*models.ScheduledGame
			for i := 0; i < n/2; i++ {
				a, b := rotation[i], rotation[n-1-i]
				if a == "" || b == "" {
					continue
				}
				home, away := a, b
				// Flip hosting by cycle and round so home games even out.
				if (cycle+round+i)%2 == 1 {
					home, away = b, a
				}
				games = append(games, &models.ScheduledGame{
					ID:         uuid.NewString(),
					HomeTeamID: home,
					AwayTeamID: away,
				})
			}

			rng.Shuffle(len(games), func(i, j int) { games[i], games[j] = games[j], games[i] })
			firstDay := int(float64(len(games)) * calendarDensity)
			if firstDay < 1 {
				firstDay = len(games)
			}
			for gi, g := range games {
				if gi < firstDay {
					g.Day = day
				} else {
					g.Day = day + 1
				}
				schedule = append(schedule, g)
			}
			if firstDay < len(games) {
				day += 2
			} else {
				day++
			}

			// Rotate everyone but the first slot.
			last := rotation[n-1]
			copy(rotation[2:], rotation[1:n-1])
			rotation[1] = last
		}
	}
	return schedule
}

// ScheduleSummary reports the calendar span and per-team game counts,
// used for sanity checks and the franchise page.
func ScheduleSummary(schedule []*models.ScheduledGame) (lastDay int, perTeam map[string]int) {
	perTeam = make(map[string]int)
	for _, g := range schedule {
		if g.Day > lastDay {
			lastDay = g.Day
		}
		perTeam[g.HomeTeamID]++
		perTeam[g.AwayTeamID]++
	}
	return lastDay, perTeam
}

// GamesOnDay filters the schedule for one calendar day.
func GamesOnDay(schedule []*models.ScheduledGame, day int) []*models.ScheduledGame {
	var out []*models.ScheduledGame
	for _, g := range schedule {
		if g.Day == day {
			out = append(out, g)
		}
	}
	return out
}

// PlayedOnDay reports which teams played the given day, used to apply
// back-to-back fatigue the following night.
func PlayedOnDay(schedule []*models.ScheduledGame, day int) map[string]bool {
	out := make(map[string]bool)
	for _, g := range schedule {
		if g.Day == day && g.Played {
			out[g.HomeTeamID] = true
			out[g.AwayTeamID] = true
		}
	}
	return out
}
