package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircle_JSONFields(t *testing.T) {
	raw, err := json.Marshal(&Circle{ID: "1", LoveLevel: 92, AscensionLevel: 7, SortOrder: 3})
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, float64(92), fields["love_level"])
	assert.Equal(t, float64(7), fields["ascension_level"])
	assert.NotContains(t, fields, "ascension_score")
	assert.NotContains(t, fields, "sort_order")
}

func TestCircle_CloneIsIndependent(t *testing.T) {
	var nilCircle *Circle
	assert.Nil(t, nilCircle.Clone())

	c := &Circle{ID: "1", AscensionLevel: 7}
	cp := c.Clone()
	cp.AscensionLevel = 9
	assert.Equal(t, 7, c.AscensionLevel)
}
