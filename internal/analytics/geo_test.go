package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitralis/atelier-manager/internal/entity"
)

func TestRegionCodes_AreDisjoint(t *testing.T) {
	seen := map[string]entity.Region{}
	for region, codes := range regionCodes {
		for _, code := range codes {
			prev, dup := seen[code]
			assert.False(t, dup, "code %s in both %s and %s", code, prev, region)
			seen[code] = region
		}
	}
}

func TestRegionCodes_AllHaveNames(t *testing.T) {
	for _, codes := range regionCodes {
		for _, code := range codes {
			assert.Contains(t, countryNames, code)
		}
	}
}

func TestExtractCountryCode(t *testing.T) {
	tests := []struct {
		name string
		rec  entity.Record
		want string
	}{
		{"alpha2 code", entity.Record{"countryCode": "br"}, "BR"},
		{"full name", entity.Record{"country": "Brazil"}, "BR"},
		{"alias usa", entity.Record{"country": "USA"}, "US"},
		{"alias uk", entity.Record{"country": "UK"}, "GB"},
		{"alias holland", entity.Record{"country": "Holland"}, "NL"},
		{"nested shipping address", entity.Record{
			"shippingAddress": map[string]any{"countryCode": "DE"},
		}, "DE"},
		{"top level wins over nested", entity.Record{
			"countryCode":     "MX",
			"shippingAddress": map[string]any{"countryCode": "DE"},
		}, "MX"},
		{"unknown name passes through uppercased", entity.Record{"country": "Atlantis"}, "ATLANTIS"},
		{"missing", entity.Record{"total": 10}, ""},
		{"blank", entity.Record{"country": "   "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCountryCode(tt.rec))
		})
	}
}

func TestRegionOf(t *testing.T) {
	assert.Equal(t, entity.RegionLATAM, RegionOf("BR"))
	assert.Equal(t, entity.RegionEU, RegionOf("de"))
	assert.Equal(t, entity.RegionAPAC, RegionOf("JP"))
	assert.Equal(t, entity.RegionNA, RegionOf("US"))
	assert.Equal(t, entity.RegionMENA, RegionOf("AE"))
	assert.Equal(t, entity.RegionOther, RegionOf("ZZ"))
	assert.Equal(t, entity.RegionOther, RegionOf(""))
}

func TestCountryNameOf(t *testing.T) {
	assert.Equal(t, "Brazil", CountryNameOf("BR"))
	assert.Equal(t, "Brazil", CountryNameOf("br"))
	assert.Equal(t, "XX", CountryNameOf("XX"))
}
