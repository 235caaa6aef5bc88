package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRegionIndex(t *testing.T) {
	states := []CaseRecord{
		{Date: "2020-03-01", Name: "Washington", Code: "53"},
		{Date: "2020-03-01", Name: "California", Code: "06"},
		{Date: "2020-03-02", Name: "Washington", Code: "53"},
	}

	ix := BuildRegionIndex(states)

	code, ok := ix.Resolve("Washington")
	assert.True(t, ok)
	assert.Equal(t, "53", code)

	code, ok = ix.Resolve("California")
	assert.True(t, ok)
	assert.Equal(t, "06", code)

	_, ok = ix.Resolve("Atlantis")
	assert.False(t, ok)
}

func TestBuildRegionIndex_FirstRowWins(t *testing.T) {
	// A drifted feed that re-reports a name under a different code must
	// not overwrite the first-seen mapping.
	states := []CaseRecord{
		{Date: "2020-03-01", Name: "Washington", Code: "53"},
		{Date: "2020-03-02", Name: "Washington", Code: "99"},
	}

	code, ok := BuildRegionIndex(states).Resolve("Washington")
	assert.True(t, ok)
	assert.Equal(t, "53", code)
}

func TestBuildRegionIndex_Empty(t *testing.T) {
	ix := BuildRegionIndex(nil)
	assert.Empty(t, ix)
}
