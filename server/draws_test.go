package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prizedraw/domain/entities"
	"prizedraw/domain/interfaces"
	"prizedraw/metrics"
)

type stubDrawService struct {
	draw   *entities.Draw
	prizes []*entities.Prize
	err    error
	input  interfaces.CreateDrawInput
}

func (s *stubDrawService) Create(_ context.Context, input interfaces.CreateDrawInput) (*entities.Draw, []*entities.Prize, error) {
	s.input = input
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.draw, s.prizes, nil
}

func newDrawServer(draws interfaces.DrawService) *Server {
	gin.SetMode(gin.TestMode)
	return New(Deps{
		Draws:     draws,
		Metrics:   metrics.New(prometheus.NewRegistry()),
		JWTSecret: testJWTSecret,
	})
}

func TestHandleCreateDraw(t *testing.T) {
	drawTime := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	stub := &stubDrawService{
		draw: &entities.Draw{
			ID:         9,
			Title:      "Grand Draw",
			Status:     entities.DrawStatusActive,
			EntryPrice: decimal.NewFromFloat(2.5),
			DrawTime:   drawTime,
		},
		prizes: []*entities.Prize{
			{DrawID: 9, Position: 1, Amount: decimal.NewFromInt(100)},
			{DrawID: 9, Position: 2, Amount: decimal.NewFromInt(40)},
		},
	}
	router := newDrawServer(stub).Router()
	adminToken := mintToken(t, testJWTSecret, 1, string(entities.RoleAdmin), time.Hour)

	body := `{
		"title": "Grand Draw",
		"entryPrice": "2.5",
		"drawTime": "` + drawTime.Format(time.RFC3339) + `",
		"prizes": ["100", "40"]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/draws", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		ID     int64 `json:"id"`
		Prizes []struct {
			Position int    `json:"position"`
			Amount   string `json:"amount"`
		} `json:"prizes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(9), resp.ID)
	require.Len(t, resp.Prizes, 2)
	assert.Equal(t, 1, resp.Prizes[0].Position)
	assert.Equal(t, "100", resp.Prizes[0].Amount)

	assert.Equal(t, "Grand Draw", stub.input.Title)
	assert.True(t, stub.input.EntryPrice.Equal(decimal.NewFromFloat(2.5)))
	require.Len(t, stub.input.PrizeAmounts, 2)
	assert.True(t, stub.input.PrizeAmounts[1].Equal(decimal.NewFromInt(40)))
}

func TestHandleCreateDraw_RejectsNonAdmin(t *testing.T) {
	router := newDrawServer(&stubDrawService{}).Router()
	userToken := mintToken(t, testJWTSecret, 7, string(entities.RoleUser), time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/draws", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+userToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleCreateDraw_RejectsBadPrizeAmount(t *testing.T) {
	router := newDrawServer(&stubDrawService{}).Router()
	adminToken := mintToken(t, testJWTSecret, 1, string(entities.RoleAdmin), time.Hour)

	body := `{
		"title": "Grand Draw",
		"entryPrice": "2.5",
		"drawTime": "2030-01-01T00:00:00Z",
		"prizes": ["not-a-number"]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/draws", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_prize_amount", decodeError(t, w).Code)
}
