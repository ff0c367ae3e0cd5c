package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortChronologically(t *testing.T) {
	items := []Appointment{
		{ID: "c", Date: "2025-03-10", Time: "14:00"},
		{ID: "a", Date: "2025-02-28", Time: "09:00"},
		{ID: "b", Date: "2025-03-10"},
		{ID: "d", Date: "2025-03-10", Time: "08:30"},
	}

	SortChronologically(items)

	var ids []string
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"a", "b", "d", "c"}, ids)
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "2025-03", Appointment{Date: "2025-03-10"}.MonthKey())
	assert.Equal(t, "", Appointment{Date: "2025"}.MonthKey())
}

func TestFieldsOmitsIDAndEmptyAttribution(t *testing.T) {
	f := Appointment{ID: "x", Name: "Ana", Status: StatusPendente, Unit: "u@x.com"}.Fields()

	assert.NotContains(t, f, "id")
	assert.NotContains(t, f, "createdAt")
	assert.Equal(t, "u@x.com", f["unit"])
	assert.Equal(t, "Ana", f["name"])
}

func TestUnitName(t *testing.T) {
	assert.Equal(t, "delegacia.centro", UnitName("delegacia.centro@pc.gov.br"))
	assert.Equal(t, "semarroba", UnitName("semarroba"))
}

func TestDisplayDate(t *testing.T) {
	assert.Equal(t, "10/03/2025", DisplayDate("2025-03-10"))
	assert.Equal(t, "2025-3-1", DisplayDate("2025-3-1"))
	assert.Equal(t, "", DisplayDate(""))
}
