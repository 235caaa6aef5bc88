package domain

// RegionIndex maps a region display name to its region code. Built from
// the state-level case feed and consulted when keying county and testing
// rows, which identify their state by name and code respectively.
type RegionIndex map[string]string

// BuildRegionIndex derives the name → code mapping from the ordered
// state-level case rows. The code of the first row seen for a name wins;
// later rows for the same name never overwrite it.
func BuildRegionIndex(states []CaseRecord) RegionIndex {
	ix := make(RegionIndex)
	for _, r := range states {
		if _, ok := ix[r.Name]; !ok {
			ix[r.Name] = r.Code
		}
	}
	return ix
}

// Resolve returns the region code for a display name.
func (ix RegionIndex) Resolve(name string) (string, bool) {
	code, ok := ix[name]
	return code, ok
}
