package entities

// SearchSource records which stage of the resolver produced a result
type SearchSource string

const (
	SearchSourceStore    SearchSource = "store"
	SearchSourceLive     SearchSource = "live"
	SearchSourceDegraded SearchSource = "degraded"
)

// NoFacilitiesNotice is the user-visible notice for an empty result
const NoFacilitiesNotice = "No facilities found"

// FacilitySearchRequest describes one facility search. At least one of
// Query, State+District or device coordinates must be present.
type FacilitySearchRequest struct {
	Query     string
	State     string
	District  string
	Latitude  *float64
	Longitude *float64
	Category  SearchCategory
	// ClientKey identifies the caller; a newer search with the same key
	// cancels one still in flight.
	ClientKey string
}

// HasSelection reports whether an explicit state and district were chosen
func (r FacilitySearchRequest) HasSelection() bool {
	return r.State != "" && r.District != ""
}

// HasDeviceLocation reports whether the device supplied coordinates
func (r FacilitySearchRequest) HasDeviceLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// FacilitySearchResult is the outcome of a facility search
type FacilitySearchResult struct {
	Facilities []*Facility  `json:"facilities"`
	Center     Location     `json:"center"`
	District   string       `json:"district,omitempty"`
	State      string       `json:"state,omitempty"`
	Source     SearchSource `json:"source"`
	Notice     string       `json:"notice,omitempty"`
}
