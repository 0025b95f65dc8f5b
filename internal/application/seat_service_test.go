package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-library-seat-booking/internal/domain/seat"
)

func newTestSeatService(sr *MockSeatRepository) *SeatService {
	return NewSeatService(&mockTxManager{}, sr, nil)
}

func TestSeatService_CreateSeat(t *testing.T) {
	ctx := context.Background()

	t.Run("座席を登録できる", func(t *testing.T) {
		sr := new(MockSeatRepository)
		sr.On("Create", ctx, mock.MatchedBy(func(s *seat.Seat) bool {
			return s.Number == 12 && s.HasPowerOutlet && s.Status == seat.StatusAvailable
		})).Return(nil)

		svc := newTestSeatService(sr)
		photo := "https://example.com/seat-12.jpg"
		se, err := svc.CreateSeat(ctx, CreateSeatInput{Number: 12, HasPowerOutlet: true, PhotoURL: &photo})

		require.NoError(t, err)
		assert.Equal(t, 12, se.Number)
		require.NotNil(t, se.PhotoURL)
		sr.AssertExpectations(t)
	})

	t.Run("座席番号0は拒否する", func(t *testing.T) {
		svc := newTestSeatService(new(MockSeatRepository))

		_, err := svc.CreateSeat(ctx, CreateSeatInput{Number: 0})

		assert.ErrorIs(t, err, seat.ErrInvalidSeatNumber)
	})
}

func TestSeatService_CreateBulkSeats(t *testing.T) {
	ctx := context.Background()

	t.Run("連番の座席を一括登録できる", func(t *testing.T) {
		sr := new(MockSeatRepository)
		sr.On("CreateBulk", ctx, mock.MatchedBy(func(seats []*seat.Seat) bool {
			return len(seats) == 5 && seats[0].Number == 10 && seats[4].Number == 14
		})).Return(nil)

		svc := newTestSeatService(sr)
		seats, err := svc.CreateBulkSeats(ctx, CreateBulkSeatsInput{StartNumber: 10, Count: 5})

		require.NoError(t, err)
		assert.Len(t, seats, 5)
		sr.AssertExpectations(t)
	})

	t.Run("件数0は拒否する", func(t *testing.T) {
		svc := newTestSeatService(new(MockSeatRepository))

		_, err := svc.CreateBulkSeats(ctx, CreateBulkSeatsInput{StartNumber: 1, Count: 0})

		assert.ErrorIs(t, err, seat.ErrInvalidSeatNumber)
	})
}

func TestSeatService_ListSeats(t *testing.T) {
	ctx := context.Background()

	t.Run("状態指定なしは全件を返す", func(t *testing.T) {
		sr := new(MockSeatRepository)
		sr.On("List", ctx).Return([]*seat.Seat{{Number: 1}, {Number: 2}}, nil)

		svc := newTestSeatService(sr)
		seats, err := svc.ListSeats(ctx, "")

		require.NoError(t, err)
		assert.Len(t, seats, 2)
		sr.AssertNotCalled(t, "ListByStatus", mock.Anything, mock.Anything)
	})

	t.Run("状態指定ありは絞り込む", func(t *testing.T) {
		sr := new(MockSeatRepository)
		sr.On("ListByStatus", ctx, seat.StatusAvailable).Return([]*seat.Seat{{Number: 1}}, nil)

		svc := newTestSeatService(sr)
		seats, err := svc.ListSeats(ctx, seat.StatusAvailable)

		require.NoError(t, err)
		assert.Len(t, seats, 1)
	})
}

func TestSeatService_SetSeatStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("管理者操作で整備中に変更できる", func(t *testing.T) {
		sr := new(MockSeatRepository)
		se := &seat.Seat{ID: "seat-1", Number: 1, Status: seat.StatusAvailable}
		sr.On("GetByID", ctx, "seat-1").Return(se, nil)
		sr.On("UpdateStatus", ctx, mock.Anything, "seat-1", seat.StatusMaintenance).Return(nil)

		svc := newTestSeatService(sr)
		got, err := svc.SetSeatStatus(ctx, "seat-1", seat.StatusMaintenance)

		require.NoError(t, err)
		assert.Equal(t, seat.StatusMaintenance, got.Status)
	})

	t.Run("未知の状態は拒否する", func(t *testing.T) {
		sr := new(MockSeatRepository)
		sr.On("GetByID", ctx, "seat-1").Return(&seat.Seat{ID: "seat-1", Number: 1, Status: seat.StatusAvailable}, nil)

		svc := newTestSeatService(sr)
		_, err := svc.SetSeatStatus(ctx, "seat-1", seat.Status("broken"))

		assert.ErrorIs(t, err, seat.ErrInvalidStatus)
		sr.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSeatService_CountAvailable(t *testing.T) {
	ctx := context.Background()

	// キャッシュなし構成ではDBを直接数える
	sr := new(MockSeatRepository)
	sr.On("CountByStatus", ctx, seat.StatusAvailable).Return(7, nil)

	svc := newTestSeatService(sr)
	count, err := svc.CountAvailable(ctx)

	require.NoError(t, err)
	assert.Equal(t, 7, count)
}
