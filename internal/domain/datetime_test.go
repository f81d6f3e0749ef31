package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/vereda-tours/internal/domain"
)

func TestParseDateTime_AcceptedForms(t *testing.T) {
	want := time.Date(2025, 7, 14, 15, 30, 0, 0, time.UTC)

	for _, in := range []string{"2025-07-14T15:30:00", "2025-07-14T15:30", "2025-07-14T15:30:00Z", "2025-07-14T10:30:00-05:00"} {
		got, err := domain.ParseDateTime(in, time.UTC)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s parsed to %s", in, got)
	}
}

func TestParseDateTime_LocalInputConvertedToUTC(t *testing.T) {
	bogota := time.FixedZone("COT", -5*60*60)

	got, err := domain.ParseDateTime("2025-07-14T10:30", bogota)

	require.NoError(t, err)
	assert.Equal(t, "2025-07-14T15:30:00", domain.FormatDateTime(got))
}

func TestParseDateTime_Invalid(t *testing.T) {
	_, err := domain.ParseDateTime("14/07/2025", time.UTC)

	assert.ErrorIs(t, err, domain.ErrValidation)
}
