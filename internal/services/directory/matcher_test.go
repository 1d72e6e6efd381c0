package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentboard/profiledir/internal/model"
)

func clubID(s string) *model.ClubID {
	id := model.ClubID(s)
	return &id
}

func testClubs() []model.Club {
	return []model.Club{
		{ID: "c-example", Name: "FC Example", Aliases: []string{"Example SC"}, Town: "Example"},
		{ID: "c-zurich", Name: "VBC Zürich Nord", Aliases: []string{"Zuri Nord"}, Canton: "ZH"},
		{ID: "c-bern1", Name: "Volley Bern", Canton: "BE"},
		{ID: "c-bern2", Name: "Volley Bern West", Canton: "BE"},
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "zurich nord vbc", Fold("Zürich-Nord  VBC"))
	assert.Equal(t, "fc example", Fold("  FC   EXAMPLE "))
	assert.Equal(t, "geneve", Fold("Genève"))
	assert.Equal(t, "", Fold(" - "))
}

func TestMatch(t *testing.T) {
	dir := NewDirectory(testClubs())

	tests := []struct {
		name   string
		input  string
		wantID model.ClubID
		kind   MatchKind
	}{
		{"exact canonical name", "FC Example", "c-example", MatchExact},
		{"case insensitive", "fc example", "c-example", MatchExact},
		{"exact alias", "Example SC", "c-example", MatchExact},
		{"designator insensitive", "Example", "c-example", MatchKey},
		{"diacritics ignored", "vbc zurich nord", "c-zurich", MatchExact},
		{"without designator", "Zürich Nord", "c-zurich", MatchKey},
		{"prefix", "Volley Be", "c-bern1", MatchPartial},
		{"substring", "bern west", "c-bern2", MatchPartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := dir.Match(tt.input)
			require.False(t, m.External())
			assert.Equal(t, tt.wantID, m.Club.ID)
			assert.Equal(t, tt.kind, m.Kind)
			assert.Equal(t, m.Club.Name, m.Name)
		})
	}
}

func TestMatchExternal(t *testing.T) {
	dir := NewDirectory(testClubs())

	for _, input := range []string{"Totally Unknown VBC", "", "   ", "ex", "VBC"} {
		m := dir.Match(input)
		assert.True(t, m.External(), "input %q", input)
		assert.Equal(t, MatchNone, m.Kind)
	}

	m := dir.Match("  Totally Unknown VBC ")
	assert.Equal(t, "Totally Unknown VBC", m.Name)
}

func TestMatchPrefersExactNameEquality(t *testing.T) {
	dir := NewDirectory(testClubs())

	// "Volley Bern" is also a prefix of "Volley Bern West"
	m := dir.Match("volley bern")
	require.False(t, m.External())
	assert.Equal(t, model.ClubID("c-bern1"), m.Club.ID)
}

func TestMatchPrefersSmallerEditDistance(t *testing.T) {
	dir := NewDirectory([]model.Club{
		{ID: "long", Name: "Seeland Volley Association"},
		{ID: "short", Name: "Seeland Volley"},
	})

	m := dir.Match("seeland")
	require.False(t, m.External())
	assert.Equal(t, model.ClubID("short"), m.Club.ID)
}

func TestMatchFallsBackToDirectoryOrder(t *testing.T) {
	dir := NewDirectory([]model.Club{
		{ID: "a1", Name: "Alpha One"},
		{ID: "a2", Name: "Alpha Two"},
	})

	m := dir.Match("alpha")
	require.False(t, m.External())
	assert.Equal(t, model.ClubID("a1"), m.Club.ID)
}

func TestSearch(t *testing.T) {
	dir := NewDirectory(testClubs())

	clubs := dir.Search("volley", 0)
	require.Len(t, clubs, 2)
	assert.Equal(t, model.ClubID("c-bern1"), clubs[0].ID)
	assert.Equal(t, model.ClubID("c-bern2"), clubs[1].ID)

	clubs = dir.Search("volley", 1)
	require.Len(t, clubs, 1)
	assert.Equal(t, model.ClubID("c-bern1"), clubs[0].ID)

	assert.Empty(t, dir.Search("", 10))
	assert.Empty(t, dir.Search("nowhere", 10))
}

func TestGet(t *testing.T) {
	dir := NewDirectory(testClubs())

	club, ok := dir.Get("c-zurich")
	require.True(t, ok)
	assert.Equal(t, "VBC Zürich Nord", club.Name)

	_, ok = dir.Get("missing")
	assert.False(t, ok)
}

func TestNewDirectoryCopiesInput(t *testing.T) {
	clubs := testClubs()
	dir := NewDirectory(clubs)

	clubs[0].Name = "Changed"
	clubs[0].Aliases[0] = "Changed"

	m := dir.Match("Example SC")
	require.False(t, m.External())
	assert.Equal(t, "FC Example", m.Club.Name)
	assert.Equal(t, []string{"Example SC"}, dir.Clubs()[0].Aliases)
}

func TestResolveEntries(t *testing.T) {
	dir := NewDirectory(testClubs())

	input := []model.ClubHistoryEntry{
		{ClubName: "Example SC", StartYear: "2018", EndYear: "2020"},
		{ClubName: "Totally Unknown VBC", StartYear: "2020", IsCurrent: true},
		{ClubID: clubID("c-bern2"), ClubName: "whatever", StartYear: "2015", EndYear: "2016"},
		{ClubID: clubID("missing"), ClubName: "Volley Bern", StartYear: "2014", EndYear: "2015"},
	}

	out := ResolveEntries(dir, input)
	require.Len(t, out, 4)

	require.NotNil(t, out[0].ClubID)
	assert.Equal(t, model.ClubID("c-example"), *out[0].ClubID)
	assert.Equal(t, "FC Example", out[0].ClubName)

	assert.Nil(t, out[1].ClubID)
	assert.Equal(t, "Totally Unknown VBC", out[1].ClubName)
	assert.True(t, out[1].IsCurrent)

	require.NotNil(t, out[2].ClubID)
	assert.Equal(t, model.ClubID("c-bern2"), *out[2].ClubID)
	assert.Equal(t, "Volley Bern West", out[2].ClubName)

	require.NotNil(t, out[3].ClubID)
	assert.Equal(t, model.ClubID("c-bern1"), *out[3].ClubID)

	// input untouched
	assert.Nil(t, input[0].ClubID)
	assert.Equal(t, "whatever", input[2].ClubName)
	assert.Equal(t, model.ClubID("missing"), *input[3].ClubID)
}

func TestResolveEntriesWithoutDirectory(t *testing.T) {
	input := []model.ClubHistoryEntry{
		{ClubName: "FC Example", StartYear: "2018", EndYear: "2020"},
		{ClubID: clubID("c-bern1"), ClubName: "Volley Bern", StartYear: "2020", IsCurrent: true},
	}

	out := ResolveEntries(nil, input)
	require.Len(t, out, 2)
	for i, e := range out {
		assert.True(t, e.IsExternal())
		assert.Equal(t, input[i].ClubName, e.ClubName)
	}
}
