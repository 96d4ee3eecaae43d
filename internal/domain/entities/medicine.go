package entities

// Medicine is an entry in the searchable medicine catalog
type Medicine struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	GenericName          string   `json:"generic_name,omitempty"`
	Manufacturer         string   `json:"manufacturer,omitempty"`
	Composition          string   `json:"composition,omitempty"`
	Category             string   `json:"category,omitempty"`
	Form                 string   `json:"form,omitempty"`
	Price                float64  `json:"price"`
	PrescriptionRequired bool     `json:"prescription_required"`
	Tags                 []string `json:"tags,omitempty"`
}
