package settings

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyResolution(t *testing.T) {
	s := New()
	assert.Equal(t, SingleKey, s.Key("v1", false, ""))
	assert.Equal(t, SingleKey, s.Key("v1", true, "parent"))

	s.PerCraftSetting = true
	assert.Equal(t, "v1", s.Key("v1", false, ""))
	assert.Equal(t, "parent", s.Key("kerbal", true, "parent"))
	assert.Equal(t, EVAKey, s.Key("kerbal", true, ""))
}

func TestForCraftCreatesOnce(t *testing.T) {
	s := New()
	c := s.ForCraft("v1")
	c.SetThreshold(7)
	again := s.ForCraft("v1")
	assert.Same(t, c, again)
	assert.Equal(t, 7.0, again.Threshold)
	assert.Equal(t, []string{"v1"}, s.Keys())
}

func TestSetterClamping(t *testing.T) {
	c := NewCraftSettings("k")
	c.SetThreshold(-3)
	assert.Zero(t, c.Threshold)
	c.SetCurrentContainer(-1)
	assert.Zero(t, c.CurrentContainer)
	assert.True(t, c.ToggleAutomation())
	assert.False(t, c.ToggleAutomation())
}

func TestSetByName(t *testing.T) {
	c := NewCraftSettings("k")
	require.NoError(t, c.Set("threshold", "4.5"))
	require.NoError(t, c.Set("dump_duplicates", "true"))
	require.NoError(t, c.Set("current_container", "2"))
	assert.Equal(t, 4.5, c.Threshold)
	assert.True(t, c.DumpDuplicates)
	assert.Equal(t, 2, c.CurrentContainer)

	err := c.Set("nope", "true")
	assert.True(t, errors.Is(err, ErrUnknownSetting))
	assert.Error(t, c.Set("threshold", "abc"))
	assert.Error(t, c.Set("one_time_only", "maybe"))
}

func TestMemoryStoreCopies(t *testing.T) {
	s := New()
	s.ForCraft("v1").SetThreshold(3)
	store := NewMemoryStore(s)
	s.ForCraft("v1").SetThreshold(9)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 3.0, loaded.ForCraft("v1").Threshold)

	require.NoError(t, store.Save(s))
	loaded, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, 9.0, loaded.ForCraft("v1").Threshold)
	assert.Equal(t, 1, store.Saves())
}

func TestSetDefaultsRepairsNilRecords(t *testing.T) {
	s := &Settings{Crafts: map[string]*CraftSettings{"a": nil, "b": {Threshold: 1}}}
	s.SetDefaults()
	require.NotNil(t, s.Crafts["a"])
	assert.Equal(t, "a", s.Crafts["a"].Key)
	assert.Equal(t, "b", s.Crafts["b"].Key)
	assert.Equal(t, DefaultRefreshTime, s.RefreshTime)
}
