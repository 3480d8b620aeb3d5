package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfiguration_DeduplicatesAndOrders(t *testing.T) {
	cfg := NewConfiguration("Q10", "Q5", "Q2", "Q5")

	assert.Equal(t, []StateID{"Q2", "Q5", "Q10"}, cfg.States())
	assert.Equal(t, 3, cfg.Len())
	assert.Equal(t, "{Q2,Q5,Q10}", cfg.String())
}

func TestConfiguration_Equal(t *testing.T) {
	a := NewConfiguration("Q5", "Q3", "Q4")
	b := NewConfiguration("Q4", "Q5", "Q3", "Q3")

	assert.True(t, a.Equal(b), "insertion order must not matter")
	assert.False(t, a.Equal(NewConfiguration("Q5")))
	assert.True(t, NewConfiguration().Equal(Configuration{}))
}

func TestConfiguration_Single(t *testing.T) {
	s, ok := NewConfiguration("Q1").Single()
	assert.True(t, ok)
	assert.Equal(t, StateID("Q1"), s)

	_, ok = NewConfiguration("Q1", "Q2").Single()
	assert.False(t, ok)

	_, ok = Configuration{}.Single()
	assert.False(t, ok)
}

func TestConfiguration_Empty(t *testing.T) {
	var cfg Configuration
	assert.True(t, cfg.IsEmpty())
	assert.False(t, cfg.Contains("Q0"))
	assert.Equal(t, "{}", cfg.String())
}

func TestConfiguration_StatesIsACopy(t *testing.T) {
	cfg := NewConfiguration("Q1", "Q2")
	states := cfg.States()
	states[0] = "Q9"

	assert.True(t, cfg.Contains("Q1"))
	assert.False(t, cfg.Contains("Q9"))
}

func TestConfiguration_JSON(t *testing.T) {
	data, err := json.Marshal(NewConfiguration("Q4", "Q3"))
	require.NoError(t, err)
	assert.JSONEq(t, `["Q3","Q4"]`, string(data))

	data, err = json.Marshal(Configuration{})
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	var decoded Configuration
	require.NoError(t, json.Unmarshal([]byte(`["Q5","Q3","Q5"]`), &decoded))
	assert.True(t, decoded.Equal(NewConfiguration("Q3", "Q5")))
}
