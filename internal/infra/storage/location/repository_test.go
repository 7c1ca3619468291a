package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

func TestParseDays(t *testing.T) {
	days, err := parseDays([]string{"monday", "friday", "sunday"})
	require.NoError(t, err)
	assert.Equal(t, []domain.Weekday{domain.Monday, domain.Friday, domain.Sunday}, days)

	_, err = parseDays([]string{"mon"})
	assert.ErrorIs(t, err, domain.ErrInvalidWeekday)
}
