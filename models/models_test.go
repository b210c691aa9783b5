package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChannel(t *testing.T) {
	cases := map[string]Channel{
		"":      ChannelBoth,
		"Both":  ChannelBoth,
		"email": ChannelEmail,
		" SMS ": ChannelSMS,
	}
	for in, want := range cases {
		got, err := ParseChannel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseChannel("pigeon")
	assert.Error(t, err)
}

func TestChannelIncludes(t *testing.T) {
	assert.True(t, ChannelBoth.IncludesEmail())
	assert.True(t, ChannelBoth.IncludesSMS())
	assert.True(t, ChannelEmail.IncludesEmail())
	assert.False(t, ChannelEmail.IncludesSMS())
	assert.False(t, ChannelSMS.IncludesEmail())
}

func TestDeliveryStatusLabel(t *testing.T) {
	assert.Equal(t, "Sent (via fallback)", DeliverySent.Label(true))
	assert.Equal(t, "Sent", DeliverySent.Label(false))
	assert.Equal(t, "Failed", DeliveryFailed.Label(true))
	assert.Equal(t, "Skipped", DeliverySkipped.Label(false))
}

func TestEffectivePlanEndDate(t *testing.T) {
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	u := User{PlanStartDate: start}
	assert.Equal(t, start.AddDate(0, 0, 30), u.EffectivePlanEndDate())

	end := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	u.PlanEndDate = &end
	assert.Equal(t, end, u.EffectivePlanEndDate())
}

func TestFeeStatusValid(t *testing.T) {
	assert.True(t, FeeStatusPaid.Valid())
	assert.True(t, FeeStatusPending.Valid())
	assert.False(t, FeeStatus("Overdue").Valid())
}
