package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserBanState(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name      string
		until     *time.Time
		suspended bool
		expired   bool
	}{
		{"never banned", nil, false, false},
		{"active ban", &future, true, false},
		{"expired ban", &past, false, true},
		{"expires exactly now", &now, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{BannedUntil: tt.until}
			assert.Equal(t, tt.suspended, u.SuspendedAt(now))
			assert.Equal(t, tt.expired, u.BanExpiredAt(now))
		})
	}
}

func TestReportWindowStart(t *testing.T) {
	u := &User{}
	assert.True(t, u.ReportWindowStart().IsZero())

	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	u.LastSuspendedAt = &at
	assert.Equal(t, at, u.ReportWindowStart())
}
