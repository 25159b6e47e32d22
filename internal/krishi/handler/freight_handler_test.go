package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/krishilink/krishi/internal/krishi/testutil"
)

func createFreight(t *testing.T, router *gin.Engine, distanceKm float64) map[string]interface{} {
	t.Helper()
	w := testutil.DoRequest(router, "POST", "/api/v1/freight", map[string]interface{}{
		"farmer_name":        "Ramesh Kumar",
		"origin_village":     "Khatauli",
		"destination_market": "Muzaffarnagar Mandi",
		"weight_kg":          500,
		"distance_km":        distanceKm,
	}, testutil.FarmerToken())
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return data(t, testutil.ParseResponse(w))
}

func TestFreightCreateComputesPricing(t *testing.T) {
	router, _ := setupAPITest(t)

	req := createFreight(t, router, 50)

	if !strings.HasPrefix(req["id"].(string), "REQ-") {
		t.Errorf("Expected REQ- id, got %v", req["id"])
	}
	if req["status"] != "Pending" {
		t.Errorf("Expected Pending, got %v", req["status"])
	}
	if req["standard_price"].(float64) != 750 {
		t.Errorf("Expected standard price 750, got %v", req["standard_price"])
	}
	if req["discounted_price"].(float64) != 450 {
		t.Errorf("Expected discounted price 450, got %v", req["discounted_price"])
	}
	if req["savings"].(float64) != 300 {
		t.Errorf("Expected savings 300, got %v", req["savings"])
	}
	if req["co2_saved_kg"].(float64) != 6 {
		t.Errorf("Expected 6 kg CO2, got %v", req["co2_saved_kg"])
	}
}

func TestFreightCreateRejectsBadInput(t *testing.T) {
	router, _ := setupAPITest(t)

	w := testutil.DoRequest(router, "POST", "/api/v1/freight", map[string]interface{}{
		"farmer_name":        "Ramesh Kumar",
		"origin_village":     "Khatauli",
		"destination_market": "Muzaffarnagar Mandi",
		"weight_kg":          -5,
		"distance_km":        50,
	}, testutil.FarmerToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for negative weight, got %d: %s", w.Code, w.Body.String())
	}
}

func TestFreightLifecycle(t *testing.T) {
	router, db := setupAPITest(t)
	testutil.SeedDriver(t, db, "Suresh Singh")

	req := createFreight(t, router, 80)
	id := req["id"].(string)

	// Accept as driver.
	w := testutil.DoRequest(router, "POST", "/api/v1/freight/"+id+"/accept", map[string]interface{}{}, testutil.DriverToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Accept: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	accepted := data(t, testutil.ParseResponse(w))
	if accepted["status"] != "Accepted" {
		t.Errorf("Expected Accepted, got %v", accepted["status"])
	}
	if accepted["driver_name"] != "Suresh Singh" {
		t.Errorf("Expected assigned driver, got %v", accepted["driver_name"])
	}

	// Second accept must conflict.
	w = testutil.DoRequest(router, "POST", "/api/v1/freight/"+id+"/accept", map[string]interface{}{}, testutil.DriverToken())
	if w.Code != http.StatusConflict {
		t.Fatalf("Second accept: expected 409, got %d: %s", w.Code, w.Body.String())
	}

	// Complete.
	w = testutil.DoRequest(router, "POST", "/api/v1/freight/"+id+"/complete", nil, testutil.DriverToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Complete: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	completed := data(t, testutil.ParseResponse(w))
	if completed["status"] != "Completed" {
		t.Errorf("Expected Completed, got %v", completed["status"])
	}

	// Completing again must fail so driver stats are never double-counted.
	w = testutil.DoRequest(router, "POST", "/api/v1/freight/"+id+"/complete", nil, testutil.DriverToken())
	if w.Code != http.StatusConflict {
		t.Fatalf("Second complete: expected 409, got %d: %s", w.Code, w.Body.String())
	}

	// Driver stats counted exactly once.
	w = testutil.DoRequest(router, "GET", "/api/v1/stats/leaderboard", nil, testutil.MinistryToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Leaderboard: expected 200, got %d", w.Code)
	}
	board := data(t, testutil.ParseResponse(w))
	items := board["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected one driver on the board, got %d", len(items))
	}
	driver := items[0].(map[string]interface{})
	if driver["jobs"].(float64) != 1 {
		t.Errorf("Expected 1 job, got %v", driver["jobs"])
	}
	if driver["status"] != "Available" {
		t.Errorf("Driver should be freed after completion, got %v", driver["status"])
	}
}

func TestFreightCompleteUnknownID(t *testing.T) {
	router, _ := setupAPITest(t)

	w := testutil.DoRequest(router, "POST", "/api/v1/freight/REQ-DEADBEEF/complete", nil, testutil.DriverToken())
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestFreightQRPayload(t *testing.T) {
	router, db := setupAPITest(t)
	testutil.SeedDriver(t, db, "Suresh Singh")

	req := createFreight(t, router, 40)
	id := req["id"].(string)

	// Pending requests carry no pickup code.
	w := testutil.DoRequest(router, "GET", "/api/v1/freight/"+id+"/qr", nil, testutil.DriverToken())
	if w.Code != http.StatusConflict {
		t.Fatalf("QR on pending: expected 409, got %d", w.Code)
	}

	testutil.DoRequest(router, "POST", "/api/v1/freight/"+id+"/accept", map[string]interface{}{}, testutil.DriverToken())

	w = testutil.DoRequest(router, "GET", "/api/v1/freight/"+id+"/qr", nil, testutil.DriverToken())
	if w.Code != http.StatusOK {
		t.Fatalf("QR: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	qr := data(t, testutil.ParseResponse(w))
	if qr["encoded"] == nil || qr["encoded"] == "" {
		t.Error("Expected base64 payload")
	}
	payload := qr["payload"].(map[string]interface{})
	if payload["request_id"] != id {
		t.Errorf("QR payload should carry the request id, got %v", payload["request_id"])
	}
}

func TestFreightListFilters(t *testing.T) {
	router, db := setupAPITest(t)
	testutil.SeedDriver(t, db, "Suresh Singh")

	first := createFreight(t, router, 30)
	createFreight(t, router, 60)

	testutil.DoRequest(router, "POST", "/api/v1/freight/"+first["id"].(string)+"/accept", map[string]interface{}{}, testutil.DriverToken())

	w := testutil.DoRequest(router, "GET", "/api/v1/freight?status=Pending", nil, testutil.FarmerToken())
	listing := data(t, testutil.ParseResponse(w))
	if listing["total"].(float64) != 1 {
		t.Errorf("Expected 1 pending request, got %v", listing["total"])
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/freight?driver=Suresh Singh", nil, testutil.DriverToken())
	listing = data(t, testutil.ParseResponse(w))
	if listing["total"].(float64) != 1 {
		t.Errorf("Expected 1 request for the driver, got %v", listing["total"])
	}
}
