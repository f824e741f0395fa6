package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"prizedraw/domain/apperrors"
	"prizedraw/domain/entities"
	"prizedraw/domain/interfaces"
	"prizedraw/domain/testhelpers"
)

func newDrawFixture() (*testhelpers.FakeUnitOfWork, *drawService) {
	uow := testhelpers.NewFakeUnitOfWork()
	svc := NewDrawService(&testhelpers.FakeUowFactory{Uow: uow}).(*drawService)
	svc.now = func() time.Time { return time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC) }
	return uow, svc
}

func validDrawInput(svc *drawService) interfaces.CreateDrawInput {
	return interfaces.CreateDrawInput{
		Title:      "Grand Draw",
		EntryPrice: decimal.NewFromInt(2),
		DrawTime:   svc.now().Add(24 * time.Hour),
		PrizeAmounts: []decimal.Decimal{
			decimal.NewFromInt(100),
			decimal.NewFromInt(40),
			decimal.NewFromInt(10),
		},
	}
}

func TestCreateDraw_CreatesActiveDrawWithOrderedPrizes(t *testing.T) {
	uow, svc := newDrawFixture()

	uow.Draws.On("Create", mock.Anything,
		mock.MatchedBy(func(d *entities.Draw) bool {
			return d.Title == "Grand Draw" &&
				d.Status == entities.DrawStatusActive &&
				d.MaxEntries == nil
		}),
		mock.MatchedBy(func(prizes []*entities.Prize) bool {
			if len(prizes) != 3 {
				return false
			}
			for i, p := range prizes {
				if p.Position != i+1 {
					return false
				}
			}
			return prizes[0].Amount.Equal(decimal.NewFromInt(100))
		}),
	).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Draw).ID = 9
	}).Return(nil)

	draw, prizes, err := svc.Create(context.Background(), validDrawInput(svc))

	require.NoError(t, err)
	assert.Equal(t, int64(9), draw.ID)
	require.Len(t, prizes, 3)
	assert.Equal(t, 2, prizes[1].Position)
	assert.True(t, uow.Committed)
}

func TestCreateDraw_TrimsTitle(t *testing.T) {
	uow, svc := newDrawFixture()
	uow.Draws.On("Create", mock.Anything, mock.MatchedBy(func(d *entities.Draw) bool {
		return d.Title == "Grand Draw"
	}), mock.Anything).Return(nil)

	input := validDrawInput(svc)
	input.Title = "  Grand Draw  "

	_, _, err := svc.Create(context.Background(), input)

	require.NoError(t, err)
	assert.True(t, uow.Committed)
}

func TestCreateDraw_Validation(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(in *interfaces.CreateDrawInput)
		wantCode string
	}{
		{"blank title", func(in *interfaces.CreateDrawInput) {
			in.Title = "   "
		}, "missing_title"},
		{"zero entry price", func(in *interfaces.CreateDrawInput) {
			in.EntryPrice = decimal.Zero
		}, "invalid_entry_price"},
		{"zero max entries", func(in *interfaces.CreateDrawInput) {
			maxEntries := 0
			in.MaxEntries = &maxEntries
		}, "invalid_max_entries"},
		{"draw time in the past", func(in *interfaces.CreateDrawInput) {
			in.DrawTime = time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)
		}, "invalid_draw_time"},
		{"no prizes", func(in *interfaces.CreateDrawInput) {
			in.PrizeAmounts = nil
		}, "missing_prizes"},
		{"negative prize", func(in *interfaces.CreateDrawInput) {
			in.PrizeAmounts = []decimal.Decimal{decimal.NewFromInt(-5)}
		}, "invalid_prize_amount"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uow, svc := newDrawFixture()
			input := validDrawInput(svc)
			tc.mutate(&input)

			_, _, err := svc.Create(context.Background(), input)

			typed := apperrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, apperrors.KindValidation, typed.Kind)
			assert.Equal(t, tc.wantCode, typed.Code)
			assert.False(t, uow.Began)
		})
	}
}
