package entities

// SearchCategory is the facility type selector exposed to users
type SearchCategory string

const (
	CategoryHospital     SearchCategory = "hospital"
	CategoryMedicalStore SearchCategory = "medical-store"
	CategoryPathology    SearchCategory = "pathology"
	CategoryClinic       SearchCategory = "clinic"
	CategoryAll          SearchCategory = "all"
)

var categoryTypes = map[SearchCategory][]FacilityType{
	CategoryHospital:     {FacilityTypeHospital},
	CategoryMedicalStore: {FacilityTypePharmacy},
	CategoryPathology:    {FacilityTypeDoctors, FacilityTypeLaboratory},
	CategoryClinic:       {FacilityTypeClinic},
	CategoryAll: {
		FacilityTypeHospital,
		FacilityTypePharmacy,
		FacilityTypeDoctors,
		FacilityTypeClinic,
		FacilityTypeLaboratory,
	},
}

// FacilityTypes returns the facility types a category selects. ok is false
// for unknown categories. An empty category is treated as CategoryAll.
func (c SearchCategory) FacilityTypes() (types []FacilityType, ok bool) {
	if c == "" {
		c = CategoryAll
	}
	types, ok = categoryTypes[c]
	if !ok {
		return nil, false
	}
	out := make([]FacilityType, len(types))
	copy(out, types)
	return out, true
}
