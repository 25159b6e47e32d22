package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/krishilink/krishi/internal/krishi/testutil"
)

func createOrder(t *testing.T, router *gin.Engine) map[string]interface{} {
	t.Helper()
	w := testutil.DoRequest(router, "POST", "/api/v1/orders", map[string]interface{}{
		"buyer_name":    "AgroVeda Foods",
		"source_fpo":    "Bharatpur FPO",
		"product":       "Mustard Seeds",
		"quantity_tons": 5,
	}, testutil.BuyerToken())
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return data(t, testutil.ParseResponse(w))
}

func setProgress(t *testing.T, router *gin.Engine, id string, progress int) (int, map[string]interface{}) {
	t.Helper()
	w := testutil.DoRequest(router, "PUT", "/api/v1/orders/"+id+"/progress", map[string]interface{}{
		"progress": progress,
	}, testutil.BuyerToken())
	if w.Code != http.StatusOK {
		return w.Code, nil
	}
	return w.Code, data(t, testutil.ParseResponse(w))
}

func TestOrderCreateDefaults(t *testing.T) {
	router, _ := setupAPITest(t)

	order := createOrder(t, router)
	if !strings.HasPrefix(order["id"].(string), "B2B-") {
		t.Errorf("Expected B2B- id, got %v", order["id"])
	}
	if order["status"] != "Processing" {
		t.Errorf("Expected Processing, got %v", order["status"])
	}
	if order["escrow_status"] != "In-Escrow" {
		t.Errorf("Expected In-Escrow, got %v", order["escrow_status"])
	}
	if order["progress"].(float64) != 10 {
		t.Errorf("Expected progress 10, got %v", order["progress"])
	}
}

func TestOrderProgressFlow(t *testing.T) {
	router, _ := setupAPITest(t)

	order := createOrder(t, router)
	id := order["id"].(string)

	code, updated := setProgress(t, router, id, 50)
	if code != http.StatusOK {
		t.Fatalf("Progress 50: expected 200, got %d", code)
	}
	if updated["status"] != "In-Transit" {
		t.Errorf("Expected In-Transit past 10%%, got %v", updated["status"])
	}

	// Progress never moves backwards.
	code, _ = setProgress(t, router, id, 30)
	if code != http.StatusConflict {
		t.Fatalf("Backwards progress: expected 409, got %d", code)
	}

	// Reaching 100 delivers and settles escrow together.
	code, updated = setProgress(t, router, id, 100)
	if code != http.StatusOK {
		t.Fatalf("Progress 100: expected 200, got %d", code)
	}
	if updated["status"] != "Delivered" {
		t.Errorf("Expected Delivered, got %v", updated["status"])
	}
	if updated["escrow_status"] != "Settled" {
		t.Errorf("Expected Settled, got %v", updated["escrow_status"])
	}

	// A delivered order is closed to further updates.
	code, _ = setProgress(t, router, id, 100)
	if code != http.StatusConflict {
		t.Fatalf("Update after delivery: expected 409, got %d", code)
	}
}

func TestOrderProgressBounds(t *testing.T) {
	router, _ := setupAPITest(t)

	order := createOrder(t, router)
	id := order["id"].(string)

	code, _ := setProgress(t, router, id, 120)
	if code != http.StatusBadRequest {
		t.Fatalf("Progress 120: expected 400, got %d", code)
	}

	code, _ = setProgress(t, router, id, -5)
	if code != http.StatusBadRequest {
		t.Fatalf("Progress -5: expected 400, got %d", code)
	}
}

func TestOrderListByBuyer(t *testing.T) {
	router, _ := setupAPITest(t)

	createOrder(t, router)
	createOrder(t, router)

	w := testutil.DoRequest(router, "GET", "/api/v1/orders?buyer=AgroVeda Foods", nil, testutil.BuyerToken())
	listing := data(t, testutil.ParseResponse(w))
	if listing["total"].(float64) != 2 {
		t.Errorf("Expected 2 orders, got %v", listing["total"])
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/orders?buyer=Someone Else", nil, testutil.BuyerToken())
	listing = data(t, testutil.ParseResponse(w))
	if listing["total"].(float64) != 0 {
		t.Errorf("Expected 0 orders for other buyer, got %v", listing["total"])
	}
}
