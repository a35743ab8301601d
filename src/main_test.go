package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"cabins/src/config"
	"cabins/src/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
)

type TestSuite struct {
	suite.Suite
}

func (s *TestSuite) SetupSuite() {
	registerValidators()

	config.NewPricing(&config.Pricing{
		Currency: "usd",
		Properties: map[string]config.PropertyRates{
			"A": {
				BuyoutNightly:   65000,
				PerGuestNightly: 4500,
				Rooms: []config.RoomRate{
					{ID: 1, Name: "Lakeside", NightlyRate: 10000, ChildSurcharge: 1500},
					{ID: 2, Name: "Forest", NightlyRate: 14000, ChildSurcharge: 1500},
				},
			},
		},
		HoldTTLMinutes:        15,
		SweepIntervalSeconds:  30,
		RefundReviewThreshold: 50000,
	})
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestMaintenanceMode() {
	os.Setenv("MAINTENANCE_MODE", "true")
	defer os.Unsetenv("MAINTENANCE_MODE")

	router := setupRouter()
	router = maintenanceModeMiddleware(router)
	publicRoutes(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/bookings/quote", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 503, w.Code)
}

func (s *TestSuite) TestQuoteRoute() {
	router := setupRouter()
	publicRoutes(router)

	body := types.QuotePriceRequestBody{
		Property:   "A",
		Mode:       "per_guest_daily",
		Checkin:    "2026-06-01",
		Checkout:   "2026-06-04",
		GuestCount: 2,
	}
	sbody, _ := json.Marshal(&body)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/bookings/quote", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	rbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	assert.Equal(s.T(), int64(27000), gjson.GetBytes(rbytes, "total.amount").Int())
	assert.Equal(s.T(), int64(4500), gjson.GetBytes(rbytes, "breakdown.price_per_guest_per_night.amount").Int())
	assert.Equal(s.T(), int64(3), gjson.GetBytes(rbytes, "breakdown.nights").Int())
}

func (s *TestSuite) TestQuoteRoutePerRoom() {
	router := setupRouter()
	publicRoutes(router)

	body := types.QuotePriceRequestBody{
		Property: "A",
		Mode:     "per_room",
		Checkin:  "2026-06-01",
		Checkout: "2026-06-02",
		RoomIDs:  []uint{1, 2},
	}
	sbody, _ := json.Marshal(&body)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/bookings/quote", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	rbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	assert.Equal(s.T(), int64(24000), gjson.GetBytes(rbytes, "total.amount").Int())
	assert.Equal(s.T(), int64(2), gjson.GetBytes(rbytes, "breakdown.rooms.#").Int())
}

func (s *TestSuite) TestQuoteRouteValidation() {
	router := setupRouter()
	publicRoutes(router)

	cases := []types.QuotePriceRequestBody{
		{Property: "C", Mode: "buyout", Checkin: "2026-06-01", Checkout: "2026-06-02"},
		{Property: "A", Mode: "hourly", Checkin: "2026-06-01", Checkout: "2026-06-02"},
		{Property: "A", Mode: "buyout", Checkin: "06/01/2026", Checkout: "2026-06-02"},
		{Property: "A", Mode: "buyout", Checkin: "2026-06-04", Checkout: "2026-06-01"},
	}
	for _, body := range cases {
		sbody, _ := json.Marshal(&body)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/bookings/quote", strings.NewReader(string(sbody)))
		router.ServeHTTP(w, req)

		assert.Equalf(s.T(), 400, w.Code, "body %+v should be rejected", body)
	}
}

func TestRoutes(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
