package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"oitivas-pro/internal/views"
	"oitivas-pro/pkg/logger"
	"oitivas-pro/pkg/models"
)

// MockMailer é um mock de Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendDailyDigest(to, unit string, day time.Time, agenda views.Agenda) error {
	args := m.Called(to, unit, day, agenda)
	return args.Error(0)
}

func TestNewSchedulerRejectsBadSpec(t *testing.T) {
	_, err := NewScheduler("every morning", time.UTC, &MockMailer{}, nil, logger.Discard().WithComponent("scheduler"))
	assert.Error(t, err)
}

func TestSendDigests(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	recipients := []Recipient{
		{Email: "a@pc.br", Unit: "a", Items: []models.Appointment{
			{ID: "1", Name: "Ana", Date: "2025-03-10", Time: "14:00"},
			{ID: "2", Name: "Bia", Date: "2025-03-11", Time: "09:00"},
		}},
		{Email: "b@pc.br", Unit: "b", Items: []models.Appointment{{ID: "3", Date: "2025-03-09"}}},
		{Email: "c@pc.br", Unit: "c", Items: []models.Appointment{{ID: "4", Date: "2025-03-10"}}},
	}

	m := &MockMailer{}
	m.On("SendDailyDigest", "a@pc.br", "a", mock.Anything, mock.MatchedBy(func(a views.Agenda) bool {
		return len(a.Items) == 1 && a.Items[0].ID == "1"
	})).Return(nil)
	m.On("SendDailyDigest", "c@pc.br", "c", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	s, err := NewScheduler("0 7 * * *", loc, m, func() []Recipient { return recipients }, logger.Discard().WithComponent("scheduler"))
	require.NoError(t, err)
	// 01:30 UTC do dia 11 ainda é dia 10 em São Paulo.
	s.now = func() time.Time { return time.Date(2025, 3, 11, 1, 30, 0, 0, time.UTC) }

	assert.Equal(t, 1, s.SendDigests())
	m.AssertExpectations(t)
}
