package league

import (
	"math/rand"

	"github.com/jstittsworth/hockey-gm/internal/models"
)

type countryPool struct {
	Name   string
	Code   string
	Weight int
	First  []string
	Last   []string
}

var countryPools = []countryPool{
	{
		Name: "Canada", Code: "CA", Weight: 38,
		First: []string{"Connor", "Liam", "Nathan", "Brayden", "Tyler", "Ryan", "Carter", "Josh", "Dylan", "Mitch", "Cole", "Brandon", "Jake", "Matt", "Kyle"},
		Last:  []string{"MacKinnon", "Tremblay", "Fraser", "Doughty", "Bouchard", "Keller", "McDavid", "Gagnon", "Lafleur", "Sutter", "Crosby", "Morrison", "Tkachuk", "Roy", "Giroux"},
	},
	{
		Name: "United States", Code: "US", Weight: 24,
		First: []string{"Jack", "Auston", "Quinn", "Cole", "Trevor", "Matthew", "Luke", "Brady", "Zach", "Logan", "Mason", "Chase", "Tanner", "Austin"},
		Last:  []string{"Hughes", "Miller", "Larkin", "Gaudreau", "Eichel", "Kreider", "Johnson", "Carlson", "Hanson", "Boldy", "Faber", "Nelson", "Guentzel"},
	},
	{
		Name: "Sweden", Code: "SE", Weight: 12,
		First: []string{"Erik", "Viktor", "Elias", "Gustav", "William", "Filip", "Lucas", "Oskar", "Jesper", "Rasmus"},
		Last:  []string{"Karlsson", "Pettersson", "Nylander", "Hedman", "Forsberg", "Ekholm", "Lindholm", "Dahlin", "Eriksson", "Johansson"},
	},
	{
		Name: "Finland", Code: "FI", Weight: 9,
		First: []string{"Mikko", "Aleksander", "Sebastian", "Patrik", "Miro", "Roope", "Jesse", "Kaapo", "Eeli"},
		Last:  []string{"Rantanen", "Barkov", "Aho", "Laine", "Heiskanen", "Hintz", "Puljujarvi", "Kakko", "Tolvanen"},
	},
	{
		Name: "Russia", Code: "RU", Weight: 8,
		First: []string{"Nikita", "Andrei", "Kirill", "Artemi", "Igor", "Evgeni", "Alexander", "Ivan", "Vladislav"},
		Last:  []string{"Kucherov", "Svechnikov", "Kaprizov", "Panarin", "Shesterkin", "Malkin", "Ovechkin", "Barbashev", "Gavrikov"},
	},
	{
		Name: "Czechia", Code: "CZ", Weight: 5,
		First: []string{"David", "Tomas", "Filip", "Martin", "Ondrej", "Jakub", "Radko"},
		Last:  []string{"Pastrnak", "Hertl", "Hronek", "Necas", "Palat", "Vrana", "Gudas"},
	},
	{
		Name: "Switzerland", Code: "CH", Weight: 2,
		First: []string{"Nico", "Roman", "Timo", "Kevin", "Nino", "Jonas"},
		Last:  []string{"Hischier", "Josi", "Meier", "Fiala", "Niederreiter", "Siegenthaler"},
	},
	{
		Name: "Germany", Code: "DE", Weight: 2,
		First: []string{"Leon", "Tim", "Moritz", "Lukas", "Philipp"},
		Last:  []string{"Draisaitl", "Stutzle", "Seider", "Reichel", "Grubauer"},
	},
}

var totalCountryWeight = func() int {
	t := 0
	for _, c := range countryPools {
		t += c.Weight
	}
	return t
}()

// randomCountry picks a birth country weighted by the league's real
// talent distribution.
func randomCountry(rng *rand.Rand) countryPool {
	pick := rng.Intn(totalCountryWeight)
	for _, c := range countryPools {
		pick -= c.Weight
		if pick < 0 {
			return c
		}
	}
	return countryPools[0]
}

func randomName(rng *rand.Rand) (name, country, code string) {
	c := randomCountry(rng)
	return c.First[rng.Intn(len(c.First))] + " " + c.Last[rng.Intn(len(c.Last))], c.Name, c.Code
}

var coachLastNames = []string{
	"Sullivan", "Cooper", "Bednar", "Cassidy", "Berube", "Maurice", "Keefe",
	"DeBoer", "Brind'Amour", "Quenneville", "Tortorella", "Hynes", "Montgomery",
	"Laviolette", "Gallant", "Trotz", "Vigneault", "Boudreau",
}

var coachFirstNames = []string{
	"Mike", "Jon", "Jared", "Bruce", "Craig", "Paul", "Sheldon", "Pete",
	"Rod", "Joel", "John", "Jim", "Dave", "Gerard", "Barry", "Alain", "Rick",
}

func randomCoachName(rng *rand.Rand) string {
	return coachFirstNames[rng.Intn(len(coachFirstNames))] + " " +
		coachLastNames[rng.Intn(len(coachLastNames))]
}

// assignJerseyNumbers hands out unique numbers per team, preferring the
// classics for the better players.
func assignJerseyNumbers(team *models.Team, rng *rand.Rand) {
	used := make(map[int]bool)
	for _, p := range team.AllPlayers() {
		if p.JerseyNumber > 0 {
			used[p.JerseyNumber] = true
		}
	}
	for _, p := range team.AllPlayers() {
		if p.JerseyNumber > 0 {
			continue
		}
		for {
			n := 2 + rng.Intn(97)
			if !used[n] {
				used[n] = true
				p.JerseyNumber = n
				break
			}
		}
	}
}
