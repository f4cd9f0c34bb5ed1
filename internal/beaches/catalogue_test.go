package beaches

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beachscore/internal/types"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 6, c.Len())
	list := c.List()
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ID, list[i].ID)
	}
	for _, b := range list {
		assert.NotEmpty(t, b.TideStationID, b.ID)
		assert.NotEmpty(t, b.Timezone, b.ID)
	}

	sm, err := c.Get("santa-monica")
	require.NoError(t, err)
	assert.Equal(t, "9410840", sm.TideStationID)
	assert.InDelta(t, 34.0094, sm.Lat, 1e-9)
}

func TestGet_NotFound(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	_, err = c.Get("atlantis")

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundBeach, appErr.Code)
	assert.Equal(t, "atlantis", appErr.Details["beach_id"])
}

func TestList_ReturnsCopy(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	list := c.List()
	list[0].Name = "changed"

	assert.NotEqual(t, "changed", c.List()[0].Name)
}

func TestLoad_Rejects(t *testing.T) {
	tests := map[string]string{
		"bad yaml":      "beaches: [",
		"missing id":    "beaches:\n  - name: x\n    lat: 1\n    lon: 1\n",
		"duplicate id":  "beaches:\n  - id: a\n    lat: 1\n    lon: 1\n  - id: a\n    lat: 2\n    lon: 2\n",
		"bad latitude":  "beaches:\n  - id: a\n    lat: 91\n    lon: 1\n",
		"bad longitude": "beaches:\n  - id: a\n    lat: 1\n    lon: -181\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}
