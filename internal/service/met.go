package service

import (
	"sort"
	"strings"
)

// DefaultMET applies to activities missing from the table.
const DefaultMET = 4.0

const customCategory = "custom"

type METActivity struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	MET      float64 `json:"met"`
}

var metTable = []METActivity{
	{"walking", "cardio", 3.5},
	{"brisk_walking", "cardio", 4.3},
	{"jogging", "cardio", 6.0},
	{"running", "cardio", 9.8},
	{"cycling", "cardio", 7.5},
	{"stationary_bike", "cardio", 6.8},
	{"swimming", "cardio", 6.0},
	{"hiking", "cardio", 6.0},
	{"elliptical", "cardio", 5.0},
	{"rowing", "cardio", 7.0},
	{"stair_climbing", "cardio", 8.8},
	{"jump_rope", "cardio", 11.0},
	{"hiit", "cardio", 8.0},
	{"aerobics", "cardio", 6.5},
	{"weight_training", "strength", 5.0},
	{"bodyweight_training", "strength", 3.8},
	{"crossfit", "strength", 8.0},
	{"yoga", "flexibility", 2.5},
	{"pilates", "flexibility", 3.0},
	{"stretching", "flexibility", 2.3},
	{"tai_chi", "flexibility", 3.0},
	{"basketball", "sports", 6.5},
	{"badminton", "sports", 5.5},
	{"tennis", "sports", 7.3},
	{"table_tennis", "sports", 4.0},
	{"soccer", "sports", 7.0},
	{"volleyball", "sports", 4.0},
	{"baseball", "sports", 5.0},
	{"golf", "sports", 4.8},
	{"dancing", "sports", 5.0},
	{"housework", "daily", 3.3},
	{"gardening", "daily", 3.8},
	{"climbing_stairs", "daily", 4.0},
}

var metByName = func() map[string]METActivity {
	out := make(map[string]METActivity, len(metTable))
	for _, a := range metTable {
		out[a.Name] = a
	}
	return out
}()

// METFor looks up an activity by name. Unknown names return DefaultMET in
// the custom category with ok=false.
func METFor(activity string) (METActivity, bool) {
	name := normalizeActivityName(activity)
	if a, ok := metByName[name]; ok {
		return a, true
	}
	return METActivity{Name: name, Category: customCategory, MET: DefaultMET}, false
}

// ActivityCatalog returns the MET table ordered by category then name.
func ActivityCatalog() []METActivity {
	out := make([]METActivity, len(metTable))
	copy(out, metTable)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func normalizeActivityName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.NewReplacer(" ", "_", "-", "_").Replace(n)
	for strings.Contains(n, "__") {
		n = strings.ReplaceAll(n, "__", "_")
	}
	return strings.Trim(n, "_")
}
