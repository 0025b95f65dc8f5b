package seat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeat(t *testing.T) {
	s := NewSeat(12, true, false)

	assert.Equal(t, 12, s.Number)
	assert.Equal(t, StatusAvailable, s.Status)
	assert.True(t, s.HasPowerOutlet)
	assert.False(t, s.IsAccessible)
}

func TestSeat_IsBookable(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   bool
	}{
		{"availableは予約可能", StatusAvailable, true},
		// occupiedは他の予約が存在するだけ。時間帯が重ならなければ予約できる
		{"occupiedも予約可能", StatusOccupied, true},
		{"maintenanceは予約不可", StatusMaintenance, false},
		{"reservedは予約不可", StatusReserved, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSeat(1, false, false)
			s.Status = tt.status
			assert.Equal(t, tt.want, s.IsBookable())
		})
	}
}

func TestSeat_SetAdminStatus(t *testing.T) {
	t.Run("有効な状態に変更できる", func(t *testing.T) {
		s := NewSeat(1, false, false)
		require.NoError(t, s.SetAdminStatus(StatusMaintenance))
		assert.Equal(t, StatusMaintenance, s.Status)
	})

	t.Run("未知の状態は拒否する", func(t *testing.T) {
		s := NewSeat(1, false, false)
		err := s.SetAdminStatus(Status("broken"))
		assert.ErrorIs(t, err, ErrInvalidStatus)
		assert.Equal(t, StatusAvailable, s.Status)
	})
}

func TestSeat_MarkOccupiedAndAvailable(t *testing.T) {
	s := NewSeat(1, false, false)

	s.MarkOccupied()
	assert.Equal(t, StatusOccupied, s.Status)

	s.MarkAvailable()
	assert.Equal(t, StatusAvailable, s.Status)
}

func TestSeat_Validate(t *testing.T) {
	t.Run("正常な座席", func(t *testing.T) {
		assert.NoError(t, NewSeat(1, false, false).Validate())
	})

	t.Run("座席番号0はエラー", func(t *testing.T) {
		assert.ErrorIs(t, NewSeat(0, false, false).Validate(), ErrInvalidSeatNumber)
	})

	t.Run("負の座席番号はエラー", func(t *testing.T) {
		assert.ErrorIs(t, NewSeat(-1, false, false).Validate(), ErrInvalidSeatNumber)
	})
}
