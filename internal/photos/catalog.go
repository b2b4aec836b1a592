package photos

// MissionCatalog is the fixed set of photo missions. Every race draws its
// seven missions from here; ids are persisted inside race records, so entries
// must never be renamed or removed.
var MissionCatalog = []string{
	"group-selfie",
	"dance-floor",
	"toast",
	"oldest-guest",
	"youngest-guest",
	"couple-kiss",
	"table-neighbors",
	"best-outfit",
	"funny-face",
	"dessert",
	"ring-closeup",
	"bouquet",
	"shoes-off",
	"photobomb",
	"grandparents",
	"matching-colors",
	"air-guitar",
	"hug",
	"behind-the-scenes",
	"last-dance",
}

// RaceMissionCount is how many missions each table gets, and how many
// validated photos complete the race.
const RaceMissionCount = 7

func knownMission(id string) bool {
	for _, m := range MissionCatalog {
		if m == id {
			return true
		}
	}
	return false
}
