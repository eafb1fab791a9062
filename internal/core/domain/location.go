package domain

// LocationLevel names a tier of Rwanda's administrative hierarchy.
type LocationLevel string

const (
	LevelProvince LocationLevel = "province"
	LevelDistrict LocationLevel = "district"
	LevelSector   LocationLevel = "sector"
	LevelVillage  LocationLevel = "village"
)

// FallbackProvinces is served when the geography service cannot list provinces.
var FallbackProvinces = []string{
	"Kigali City",
	"Northern Province",
	"Southern Province",
	"Eastern Province",
	"Western Province",
}

// LocationMatch is one search hit.
type LocationMatch struct {
	Level    LocationLevel `json:"level"`
	Name     string        `json:"name"`
	Province string        `json:"province,omitempty"`
}

// Hierarchy is the set of children under a province/district/sector path.
type Hierarchy struct {
	Province  string   `json:"province"`
	District  string   `json:"district,omitempty"`
	Sector    string   `json:"sector,omitempty"`
	Districts []string `json:"districts"`
	Sectors   []string `json:"sectors,omitempty"`
	Villages  []string `json:"villages,omitempty"`
}
