package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDenyList(t *testing.T) {
	deny := ParseDenyList(" orcid, ,scopus ,,")

	assert.Equal(t, []string{"orcid", "scopus"}, deny.Names())
	assert.True(t, deny.Contains("orcid"))
	assert.False(t, deny.Contains(" orcid"))
	assert.Empty(t, ParseDenyList("").Names())
}

func TestIsVisible(t *testing.T) {
	deny := NewDenyList("orcid")

	tests := []struct {
		name      string
		authority string
		anonymous bool
		want      bool
	}{
		{"anonymous deny-listed", "orcid", true, false},
		{"admin deny-listed", "orcid", false, true},
		{"anonymous allowed", "scopus", true, true},
		{"admin allowed", "scopus", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsVisible(tt.authority, tt.anonymous, deny))
		})
	}
}

func TestEmptyDenyListHidesNothing(t *testing.T) {
	assert.True(t, IsVisible("orcid", true, DenyList{}))
}
