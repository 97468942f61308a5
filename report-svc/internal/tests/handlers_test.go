package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tabletap/pkg/authtoken"
	httpapi "tabletap/report-svc/internal/api/http"
	"tabletap/report-svc/internal/domain"
	"tabletap/report-svc/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSalesHandler(t *testing.T) {
	tokens := authtoken.NewMaker("test-secret", time.Hour)
	issue := func(role, restaurantID string) string {
		token, err := tokens.Issue("user-1", role, restaurantID)
		require.NoError(t, err)
		return token
	}

	tests := []struct {
		name     string
		path     string
		token    string
		wantCode int
	}{
		{name: "no_token", path: "/api/restaurants/rest-1/sales", wantCode: http.StatusUnauthorized},
		{name: "bad_token", path: "/api/restaurants/rest-1/sales", token: "garbage", wantCode: http.StatusUnauthorized},
		{name: "customer", path: "/api/restaurants/rest-1/sales", token: issue("customer", ""), wantCode: http.StatusForbidden},
		{name: "other_owner", path: "/api/restaurants/rest-1/sales", token: issue(domain.RoleBusinessOwner, "rest-2"), wantCode: http.StatusForbidden},
		{name: "bad_range", path: "/api/restaurants/rest-1/sales?range=hourly", token: issue(domain.RoleAdmin, ""), wantCode: http.StatusBadRequest},
		{name: "owner_default_range", path: "/api/restaurants/rest-1/sales", token: issue(domain.RoleBusinessOwner, "rest-1"), wantCode: http.StatusOK},
		{name: "admin_monthly", path: "/api/restaurants/rest-1/sales?range=monthly", token: issue(domain.RoleAdmin, ""), wantCode: http.StatusOK},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, cache := setupCache(t)
			_, err := cache.RecordSale(context.Background(), sale("o-1", "rest-1", "18.75", 2, time.Now()))
			require.NoError(t, err)

			handler := httpapi.NewHandler(service.NewReportService(cache, nil, zerolog.Nop()), tokens, zerolog.Nop())
			r := mux.NewRouter()
			handler.RegisterRoutes(r)

			req := httptest.NewRequest("GET", testCase.path, nil)
			if testCase.token != "" {
				req.Header.Set("Authorization", "Bearer "+testCase.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, testCase.wantCode, w.Code)
			if w.Code != http.StatusOK {
				return
			}
			var report domain.SalesReport
			require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
			assert.Equal(t, "rest-1", report.RestaurantID)
			assertDecimal(t, "18.75", report.Revenue)
			assert.Equal(t, int64(1), report.Orders)
		})
	}
}
