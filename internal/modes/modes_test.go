package modes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterMode_NextFollowsCycle(t *testing.T) {
	assert.Equal(t, FilterHost, FilterGlobal.Next())
	assert.Equal(t, FilterSession, FilterHost.Next())
	assert.Equal(t, FilterDirectory, FilterSession.Next())
	assert.Equal(t, FilterGlobal, FilterDirectory.Next())
}

func TestFilterMode_FourStepsIsIdentity(t *testing.T) {
	for _, start := range FilterModeCycle {
		m := start
		for i := 0; i < len(FilterModeCycle); i++ {
			m = m.Next()
		}
		assert.Equal(t, start, m)
	}
}

func TestFilterMode_UnknownRestartsCycle(t *testing.T) {
	assert.Equal(t, FilterGlobal, FilterMode(42).Next())
}

func TestSearchMode_NextWithEnabledList(t *testing.T) {
	enabled := []SearchMode{SearchFullText, SearchFuzzy}

	assert.Equal(t, SearchFuzzy, SearchFullText.Next(enabled))
	assert.Equal(t, SearchFullText, SearchFuzzy.Next(enabled))
	assert.Equal(t, SearchFullText, SearchPrefix.Next(enabled), "disabled mode jumps to first enabled")
}

func TestSearchMode_NStepsIsIdentity(t *testing.T) {
	lists := [][]SearchMode{
		DefaultSearchModeCycle,
		{SearchFuzzy, SearchPrefix},
		{SearchFuzzy},
	}
	for _, enabled := range lists {
		for _, start := range enabled {
			m := start
			for i := 0; i < len(enabled); i++ {
				m = m.Next(enabled)
			}
			assert.Equal(t, start, m)
		}
	}
}

func TestSearchMode_EmptyListUsesDefault(t *testing.T) {
	assert.Equal(t, SearchFullText, SearchPrefix.Next(nil))
	assert.Equal(t, SearchPrefix, SearchFuzzy.Next(nil))
}

func TestParseAndText(t *testing.T) {
	f, err := ParseFilterMode("Directory")
	require.NoError(t, err)
	assert.Equal(t, FilterDirectory, f)
	_, err = ParseFilterMode("workspace")
	assert.Error(t, err)

	var s SearchMode
	require.NoError(t, s.UnmarshalText([]byte("fulltext")))
	assert.Equal(t, SearchFullText, s)
	assert.Error(t, s.UnmarshalText([]byte("skim")))

	var e ExitMode
	require.NoError(t, e.UnmarshalText([]byte("return-query")))
	assert.Equal(t, ExitReturnQuery, e)

	b, err := FilterSession.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "session", string(b))

	_, err = FilterMode(9).MarshalText()
	assert.Error(t, err)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "HOST", FilterHost.Label())
	assert.Equal(t, "FULLTXT", SearchFullText.Label())
}
