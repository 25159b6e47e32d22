package entity

import "testing"

func TestFreightGuards(t *testing.T) {
	r := &FreightRequest{Status: FreightStatusPending}
	if !r.CanAccept() {
		t.Error("Pending request should be acceptable")
	}
	if r.CanComplete() {
		t.Error("Pending request should not be completable")
	}

	r.Status = FreightStatusAccepted
	if r.CanAccept() {
		t.Error("Accepted request should not be acceptable again")
	}
	if !r.CanComplete() {
		t.Error("Accepted request should be completable")
	}

	r.Status = FreightStatusCompleted
	if r.CanAccept() || r.CanComplete() {
		t.Error("Completed request should reject both transitions")
	}
}

func TestQuoteGuards(t *testing.T) {
	q := &Quote{Status: QuoteStatusPending}
	if !q.CanRespond() {
		t.Error("Pending quote should allow a response")
	}
	if q.CanApprove() {
		t.Error("Pending quote without an offer should not be approvable")
	}
	if q.CanConfirm() {
		t.Error("Pending quote should not be confirmable")
	}

	// Farmer responds, then revises.
	q.Status = QuoteStatusResponded
	q.OfferPricePerTon = 2400
	if !q.CanRespond() {
		t.Error("Responded quote should allow a revised offer")
	}
	if !q.CanApprove() {
		t.Error("Responded quote with an offer should be approvable")
	}

	q.Status = QuoteStatusBuyerApproved
	if q.CanRespond() {
		t.Error("Approved quote should no longer accept offers")
	}
	if !q.CanConfirm() {
		t.Error("Approved quote should be confirmable")
	}

	q.Status = QuoteStatusConfirmed
	if q.CanRespond() || q.CanApprove() || q.CanConfirm() {
		t.Error("Confirmed quote should reject all transitions")
	}
}

func TestQuoteHasOffer(t *testing.T) {
	q := &Quote{Status: QuoteStatusResponded}
	if q.HasOffer() {
		t.Error("Quote with no offer price should report no offer")
	}
	if q.CanApprove() {
		t.Error("Responded quote without an offer must not be approvable")
	}
}

func TestDeliveryAllAccepted(t *testing.T) {
	d := &DeliveryRequest{}
	if d.AllAccepted() {
		t.Error("Delivery with no assignments should not count as accepted")
	}

	d.AssignedDrivers = []DeliveryAssignment{
		{DriverName: "A", Status: AssignmentStatusAccepted},
		{DriverName: "B", Status: AssignmentStatusPending},
	}
	if d.AllAccepted() {
		t.Error("Pending invited driver should block AllAccepted")
	}

	d.AssignedDrivers[1].Status = AssignmentStatusAccepted
	if !d.AllAccepted() {
		t.Error("All accepted assignments should report true")
	}
}

func TestAssignmentEarnings(t *testing.T) {
	a := &DeliveryAssignment{Percentage: 60}
	got := a.Earnings(240, 10)
	if got != 1440 {
		t.Errorf("Expected earnings 1440, got %v", got)
	}
}

func TestNewDisplayID(t *testing.T) {
	id := NewDisplayID(FreightIDPrefix)
	if len(id) != len(FreightIDPrefix)+1+8 {
		t.Errorf("Unexpected ID length: %s", id)
	}
	if id[:len(FreightIDPrefix)+1] != FreightIDPrefix+"-" {
		t.Errorf("Expected %s- prefix, got %s", FreightIDPrefix, id)
	}
	if id == NewDisplayID(FreightIDPrefix) {
		t.Error("Consecutive IDs should differ")
	}
}
