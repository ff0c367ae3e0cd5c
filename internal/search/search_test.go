package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oitivas-pro/pkg/models"
)

var dataset = []models.Appointment{
	{ID: "1", Name: "Ana Souza", Proc: "IP 123/45", Phone: "(11) 98888-7777", Delegate: "Dr. Lima", Date: "2025-03-10"},
	{ID: "2", Name: "Bruno Alves", Proc: "0099.2024", Phone: "11 3333-4444", Date: "2025-04-01", Status: models.StatusRealizada},
	{ID: "3", Name: "Carla", Date: "2025-03-02"},
}

func TestMatchesFields(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"name case insensitive", "  ANA ", []string{"1"}},
		{"proc ignores punctuation", "12345", []string{"1"}},
		{"proc query punctuation", "0099-2024", []string{"2"}},
		{"phone digits only", "988887777", []string{"1"}},
		{"phone with formatting", "3333-44", []string{"2"}},
		{"phone ignores letters in query", "fone: 7777", []string{"1"}},
		{"phone with label and dash", "tel 98888-7", []string{"1"}},
		{"delegate", "lima", []string{"1"}},
		{"no match", "zzz", []string{}},
		{"punctuation only does not match everything", "--", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, a := range Filter(dataset, tt.query) {
				got = append(got, a.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmptyQueryMatchesNothing(t *testing.T) {
	for _, a := range dataset {
		assert.False(t, Matches(a, ""))
		assert.False(t, Matches(a, "   "))
	}
	assert.Empty(t, Filter(dataset, ""))
}

func TestClearShowsAll(t *testing.T) {
	r := Clear(dataset)
	assert.Len(t, r.Items, len(dataset))
	assert.False(t, r.Active)
	assert.False(t, r.Dropdown)
}

func TestLiveBelowMinimumKeepsFullDataset(t *testing.T) {
	r := Live(dataset, "a")
	assert.Len(t, r.Items, len(dataset))
	assert.False(t, r.Active)
	assert.False(t, r.Dropdown)
	assert.True(t, r.ClearButton)

	r = Live(dataset, "")
	assert.False(t, r.ClearButton)
}

func TestLiveFiltersAndSuggests(t *testing.T) {
	r := Live(dataset, "an")
	require.True(t, r.Active)
	assert.True(t, r.Dropdown)
	require.Len(t, r.Items, 1)
	require.Len(t, r.Suggestions, 1)
	assert.Equal(t, `<mark class="highlight-term">An</mark>a Souza`, r.Suggestions[0].Name)
	assert.Equal(t, "10/03/2025", r.Suggestions[0].Date)
	assert.Equal(t, "IP: IP 123/45", r.Suggestions[0].Proc)

	r = Live(dataset, "xyz")
	assert.Empty(t, r.Items)
	assert.Equal(t, NothingFound, r.Message)
}

func TestSubmitBypassesMinimum(t *testing.T) {
	r := Submit(dataset, "c")
	assert.True(t, r.Active)
	assert.False(t, r.Dropdown)
	require.Len(t, r.Items, 1)
	assert.Equal(t, "3", r.Items[0].ID)

	r = Submit(dataset, " ")
	assert.False(t, r.Active)
	assert.Len(t, r.Items, len(dataset))
}

func TestSuggestionsCapped(t *testing.T) {
	var many []models.Appointment
	for i := 0; i < 8; i++ {
		many = append(many, models.Appointment{ID: fmt.Sprint(i), Name: "Maria"})
	}
	s := Suggestions(many, "maria")
	assert.Len(t, s, MaxSuggestions)
	assert.Equal(t, NoProc, s[0].Proc)
	assert.Equal(t, "maria", s[0].PickedQuery)
}

func TestPick(t *testing.T) {
	r := Pick(dataset[1])
	assert.Equal(t, "bruno alves", r.Query)
	assert.Len(t, r.Items, 1)
	assert.True(t, r.Active)
}

func TestHighlightLiteral(t *testing.T) {
	got := HighlightWith("Procedimento 123/45", "123", "[", "]", nil)
	assert.Equal(t, "Procedimento [123]/45", got)

	got = HighlightWith("a.b.c", ".", "[", "]", nil)
	assert.Equal(t, "a[.]b[.]c", got)

	got = HighlightWith("Total (x+y)", "(X+Y)", "[", "]", nil)
	assert.Equal(t, "Total [(x+y)]", got)

	assert.Equal(t, "sem termo", HighlightWith("sem termo", "", "[", "]", nil))
}

func TestHighlightEscapesHTML(t *testing.T) {
	got := Highlight("<b>Ana</b>", "ana")
	assert.Equal(t, `&lt;b&gt;<mark class="highlight-term">Ana</mark>&lt;/b&gt;`, got)
}
