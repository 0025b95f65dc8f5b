package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCheckedIn(t *testing.T) {
	checkIn := time.Date(2025, 6, 1, 9, 5, 0, 0, time.UTC)
	bookingID := "booking-1"

	r := NewCheckedIn("user-1", "session-1", RecordStatusPresent, checkIn, &bookingID)

	assert.Equal(t, "user-1", r.UserID)
	assert.Equal(t, RecordStatusPresent, r.Status)
	require.NotNil(t, r.CheckInTime)
	assert.Equal(t, checkIn, *r.CheckInTime)
	require.NotNil(t, r.BookingID)
	assert.Equal(t, "booking-1", *r.BookingID)
	assert.False(t, r.IsCheckedOut())
}

func TestRecord_CheckOut(t *testing.T) {
	checkIn := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	t.Run("滞在時間が分単位で確定する", func(t *testing.T) {
		r := NewCheckedIn("user-1", "session-1", RecordStatusPresent, checkIn, nil)

		require.NoError(t, r.CheckOut(checkIn.Add(95*time.Minute)))

		assert.True(t, r.IsCheckedOut())
		assert.Equal(t, 95, r.DurationMinutes)
	})

	t.Run("分未満は切り捨てる", func(t *testing.T) {
		r := NewCheckedIn("user-1", "session-1", RecordStatusPresent, checkIn, nil)

		require.NoError(t, r.CheckOut(checkIn.Add(10*time.Minute+45*time.Second)))

		assert.Equal(t, 10, r.DurationMinutes)
	})

	t.Run("二重チェックアウトは拒否する", func(t *testing.T) {
		r := NewCheckedIn("user-1", "session-1", RecordStatusPresent, checkIn, nil)
		require.NoError(t, r.CheckOut(checkIn.Add(time.Hour)))

		err := r.CheckOut(checkIn.Add(2 * time.Hour))
		assert.ErrorIs(t, err, ErrAlreadyCheckedOut)
		assert.Equal(t, 60, r.DurationMinutes)
	})

	t.Run("未チェックインは拒否する", func(t *testing.T) {
		r := &Record{UserID: "user-1", SessionID: "session-1", Status: RecordStatusAbsent}

		err := r.CheckOut(checkIn)
		assert.ErrorIs(t, err, ErrNotCheckedIn)
	})
}
