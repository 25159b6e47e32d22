package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/krishilink/krishi/internal/krishi/testutil"
)

func createQuote(t *testing.T, router *gin.Engine) map[string]interface{} {
	t.Helper()
	w := testutil.DoRequest(router, "POST", "/api/v1/quotes", map[string]interface{}{
		"buyer_name":    "AgroVeda Foods",
		"commodity":     "Basmati Rice",
		"quantity_tons": 10,
		"deadline":      "15 days",
	}, testutil.BuyerToken())
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return data(t, testutil.ParseResponse(w))
}

func respondQuote(t *testing.T, router *gin.Engine, id string, pricePerTon float64) map[string]interface{} {
	t.Helper()
	w := testutil.DoRequest(router, "POST", "/api/v1/quotes/"+id+"/respond", map[string]interface{}{
		"farmer_name":        "Ramesh Kumar",
		"price_per_ton":      pricePerTon,
		"available_quantity": 10,
		"delivery_days":      "7 days",
	}, testutil.FarmerToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Respond: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	return data(t, testutil.ParseResponse(w))
}

func TestQuoteNegotiation(t *testing.T) {
	router, _ := setupAPITest(t)

	quote := createQuote(t, router)
	id := quote["id"].(string)
	if !strings.HasPrefix(id, "QT-") {
		t.Errorf("Expected QT- id, got %v", id)
	}
	if quote["status"] != "Pending" {
		t.Errorf("Expected Pending, got %v", quote["status"])
	}

	// Farmer responds, then revises before approval.
	responded := respondQuote(t, router, id, 2200)
	if responded["status"] != "Responded" {
		t.Errorf("Expected Responded, got %v", responded["status"])
	}
	revised := respondQuote(t, router, id, 2400)
	if revised["offer_price_per_ton"].(float64) != 2400 {
		t.Errorf("Expected revised price 2400, got %v", revised["offer_price_per_ton"])
	}

	// Buyer approves.
	w := testutil.DoRequest(router, "POST", "/api/v1/quotes/"+id+"/approve", nil, testutil.BuyerToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Approve: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	approved := data(t, testutil.ParseResponse(w))
	if approved["status"] != "BuyerApproved" {
		t.Errorf("Expected BuyerApproved, got %v", approved["status"])
	}

	// Farmer may no longer revise.
	w = testutil.DoRequest(router, "POST", "/api/v1/quotes/"+id+"/respond", map[string]interface{}{
		"farmer_name":        "Ramesh Kumar",
		"price_per_ton":      9999,
		"available_quantity": 10,
	}, testutil.FarmerToken())
	if w.Code != http.StatusConflict {
		t.Fatalf("Respond after approval: expected 409, got %d", w.Code)
	}
}

func TestQuoteApproveWithoutOffer(t *testing.T) {
	router, _ := setupAPITest(t)

	quote := createQuote(t, router)
	id := quote["id"].(string)

	w := testutil.DoRequest(router, "POST", "/api/v1/quotes/"+id+"/approve", nil, testutil.BuyerToken())
	if w.Code != http.StatusConflict {
		t.Fatalf("Approve without offer: expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestQuoteConfirmCreatesDelivery(t *testing.T) {
	router, _ := setupAPITest(t)

	quote := createQuote(t, router)
	id := quote["id"].(string)

	// Confirm out of order is rejected.
	w := testutil.DoRequest(router, "POST", "/api/v1/quotes/"+id+"/confirm", nil, testutil.FarmerToken())
	if w.Code != http.StatusConflict {
		t.Fatalf("Confirm before approval: expected 409, got %d", w.Code)
	}

	respondQuote(t, router, id, 2400)
	testutil.DoRequest(router, "POST", "/api/v1/quotes/"+id+"/approve", nil, testutil.BuyerToken())

	w = testutil.DoRequest(router, "POST", "/api/v1/quotes/"+id+"/confirm", nil, testutil.FarmerToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Confirm: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	result := data(t, testutil.ParseResponse(w))

	confirmed := result["quote"].(map[string]interface{})
	if confirmed["status"] != "Confirmed" {
		t.Errorf("Expected Confirmed, got %v", confirmed["status"])
	}

	delivery := result["delivery"].(map[string]interface{})
	if !strings.HasPrefix(delivery["id"].(string), "B2BD-") {
		t.Errorf("Expected B2BD- delivery id, got %v", delivery["id"])
	}
	if delivery["quote_id"] != id {
		t.Errorf("Delivery should link back to the quote, got %v", delivery["quote_id"])
	}
	if delivery["status"] != "Pending" {
		t.Errorf("New delivery should be Pending, got %v", delivery["status"])
	}
	// Haulage rate is a tenth of the confirmed offer price.
	if delivery["rate_per_ton"].(float64) != 240 {
		t.Errorf("Expected rate 240, got %v", delivery["rate_per_ton"])
	}
	if delivery["farmer_name"] != "Ramesh Kumar" {
		t.Errorf("Expected offer farmer on the contract, got %v", delivery["farmer_name"])
	}
	if delivery["timeline"] != "7 days" {
		t.Errorf("Expected offer timeline, got %v", delivery["timeline"])
	}

	// The contract shows up on the delivery board.
	w = testutil.DoRequest(router, "GET", "/api/v1/deliveries?status=Pending", nil, testutil.DriverToken())
	board := data(t, testutil.ParseResponse(w))
	if board["total"].(float64) != 1 {
		t.Errorf("Expected 1 pending delivery, got %v", board["total"])
	}

	// Confirming twice is rejected and creates no second contract.
	w = testutil.DoRequest(router, "POST", "/api/v1/quotes/"+id+"/confirm", nil, testutil.FarmerToken())
	if w.Code != http.StatusConflict {
		t.Fatalf("Second confirm: expected 409, got %d", w.Code)
	}
	w = testutil.DoRequest(router, "GET", "/api/v1/deliveries", nil, testutil.DriverToken())
	board = data(t, testutil.ParseResponse(w))
	if board["total"].(float64) != 1 {
		t.Errorf("Expected still 1 delivery, got %v", board["total"])
	}
}

func TestQuoteRespondRejectsBadOffer(t *testing.T) {
	router, _ := setupAPITest(t)

	quote := createQuote(t, router)
	id := quote["id"].(string)

	w := testutil.DoRequest(router, "POST", "/api/v1/quotes/"+id+"/respond", map[string]interface{}{
		"farmer_name":        "Ramesh Kumar",
		"price_per_ton":      -10,
		"available_quantity": 10,
	}, testutil.FarmerToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for negative price, got %d: %s", w.Code, w.Body.String())
	}
}
