package services

import (
	"errors"
	"testing"
	"time"

	"barberbook-backend/models"
)

func TestUpdateStatusTransitions(t *testing.T) {
	f := newFixture(t)
	svc := NewAppointmentService(testDB, testLoc, nil)
	appt := f.reserve(t, f.staff, "2024-06-10", "10:00", 30, models.StatusPending)
	shopScope := AppointmentScope{ShopID: &f.shop.ID}

	updated, err := svc.UpdateStatus(bg, appt.ID, shopScope, models.StatusConfirmed)
	if err != nil {
		t.Fatalf("pending -> confirmed: %v", err)
	}
	if updated.Status != models.StatusConfirmed {
		t.Errorf("status = %s", updated.Status)
	}

	_, err = svc.UpdateStatus(bg, appt.ID, shopScope, models.StatusPending)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("confirmed -> pending: expected ValidationError, got %v", err)
	}

	if _, err := svc.UpdateStatus(bg, appt.ID, shopScope, models.StatusCompleted); err != nil {
		t.Fatalf("confirmed -> completed: %v", err)
	}
	if _, err := svc.UpdateStatus(bg, appt.ID, shopScope, models.StatusCancelled); !errors.As(err, &ve) {
		t.Fatalf("completed -> cancelled: expected ValidationError, got %v", err)
	}

	if _, err := svc.UpdateStatus(bg, appt.ID, shopScope, "archived"); !errors.As(err, &ve) {
		t.Fatalf("unknown status: expected ValidationError, got %v", err)
	}
}

func TestUpdateStatusRespectsScope(t *testing.T) {
	f := newFixture(t)
	svc := NewAppointmentService(testDB, testLoc, nil)
	appt := f.reserve(t, f.staff, "2024-06-10", "10:00", 30, models.StatusPending)

	if _, err := svc.UpdateStatus(bg, appt.ID, AppointmentScope{StaffID: &f.other.ID}, models.StatusConfirmed); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other barber: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.UpdateStatus(bg, appt.ID, AppointmentScope{StaffID: &f.staff.ID}, models.StatusConfirmed); err != nil {
		t.Fatalf("own barber: %v", err)
	}
}

func TestCancelKeepsRowAndFreesSlot(t *testing.T) {
	f := newFixture(t)
	client := models.User{Email: "c@example.com", Password: "secret123", Name: "Customer", Phone: "5551112233"}
	mustCreate(t, &client)

	appt := f.reserve(t, f.staff, "2024-06-10", "10:00", 30, models.StatusConfirmed)
	if err := testDB.Model(&appt).Update("created_by_user_id", client.ID).Error; err != nil {
		t.Fatal(err)
	}

	svc := NewAppointmentService(testDB, testLoc, nil, WithAppointmentClock(fixedClock))
	if _, err := svc.CancelForCustomer(bg, appt.ID, f.owner.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("stranger cancel: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.CancelForCustomer(bg, appt.ID, client.ID); err != nil {
		t.Fatalf("CancelForCustomer: %v", err)
	}

	var stored models.Appointment
	if err := testDB.First(&stored, "id = ?", appt.ID).Error; err != nil {
		t.Fatalf("cancelled appointment should be kept: %v", err)
	}
	if stored.Status != models.StatusCancelled {
		t.Errorf("status = %s", stored.Status)
	}

	avail := NewAvailabilityService(testDB, testLoc)
	slots, err := avail.Availability(bg, AvailabilityQuery{StaffID: f.staff.ID, Date: at(t, "2024-06-10", "00:00")})
	if err != nil {
		t.Fatal(err)
	}
	if got := busyTimes(slots); len(got) != 0 {
		t.Errorf("cancelled slot still busy: %v", got)
	}
}

func TestCustomerCannotCancelPastAppointment(t *testing.T) {
	f := newFixture(t)
	client := models.User{Email: "c@example.com", Password: "secret123", Name: "Customer", Phone: "5551112233"}
	mustCreate(t, &client)

	appt := f.reserve(t, f.staff, "2024-06-10", "10:00", 30, models.StatusConfirmed)
	if err := testDB.Model(&appt).Update("created_by_user_id", client.ID).Error; err != nil {
		t.Fatal(err)
	}

	for _, now := range []time.Time{at(t, "2024-06-10", "10:00"), at(t, "2024-06-10", "15:00")} {
		svc := NewAppointmentService(testDB, testLoc, nil, WithAppointmentClock(func() time.Time { return now }))
		_, err := svc.CancelForCustomer(bg, appt.ID, client.ID)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("cancel at %s: expected ValidationError, got %v", now.Format(time.Kitchen), err)
		}
	}

	var stored models.Appointment
	if err := testDB.First(&stored, "id = ?", appt.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.Status != models.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", stored.Status)
	}

	// The shop can still close out its own past appointments.
	if _, err := NewAppointmentService(testDB, testLoc, nil).UpdateStatus(bg, appt.ID, AppointmentScope{ShopID: &f.shop.ID}, models.StatusCompleted); err != nil {
		t.Fatalf("shop completes past appointment: %v", err)
	}
}

func TestListsForShopAndStaff(t *testing.T) {
	f := newFixture(t)
	svc := NewAppointmentService(testDB, testLoc, nil)

	late := f.reserve(t, f.staff, "2024-06-10", "16:00", 30, models.StatusConfirmed)
	early := f.reserve(t, f.staff, "2024-06-10", "09:00", 30, models.StatusPending)
	f.reserve(t, f.staff, "2024-06-10", "12:00", 30, models.StatusCancelled)
	f.reserve(t, f.other, "2024-06-11", "12:00", 30, models.StatusPending)

	all, err := svc.ListForShop(bg, f.shop.ID, AppointmentFilter{})
	if err != nil {
		t.Fatalf("ListForShop: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("expected 4 appointments, got %d", len(all))
	}

	day, err := svc.ListForShop(bg, f.shop.ID, AppointmentFilter{Date: "2024-06-10", Status: models.StatusPending})
	if err != nil {
		t.Fatalf("ListForShop filtered: %v", err)
	}
	if len(day) != 1 || day[0].ID != early.ID {
		t.Errorf("filtered list = %+v", day)
	}
	if day[0].Service == nil || day[0].Service.Name != "Shave" {
		t.Errorf("service not preloaded")
	}

	if _, err := svc.ListForShop(bg, f.shop.ID, AppointmentFilter{Status: "unknown"}); err == nil {
		t.Error("expected error for unknown status filter")
	}

	active, err := svc.ListActiveForStaff(bg, f.staff.ID)
	if err != nil {
		t.Fatalf("ListActiveForStaff: %v", err)
	}
	if len(active) != 2 || active[0].ID != early.ID || active[1].ID != late.ID {
		t.Errorf("active list out of order or incomplete: %d items", len(active))
	}
}

func TestExpireStale(t *testing.T) {
	f := newFixture(t)
	svc := NewAppointmentService(testDB, testLoc, nil)

	stale := f.reserve(t, f.staff, "2024-06-10", "09:00", 30, models.StatusPending)
	confirmed := f.reserve(t, f.staff, "2024-06-10", "10:00", 30, models.StatusConfirmed)
	upcoming := f.reserve(t, f.staff, "2024-06-10", "18:00", 30, models.StatusPending)

	n, err := svc.ExpireStale(bg, at(t, "2024-06-10", "12:00"))
	if err != nil {
		t.Fatalf("ExpireStale: %v", err)
	}
	if n != 1 {
		t.Errorf("expired %d appointments, want 1", n)
	}

	want := map[string]models.AppointmentStatus{
		stale.ID.String():     models.StatusCancelled,
		confirmed.ID.String(): models.StatusConfirmed,
		upcoming.ID.String():  models.StatusPending,
	}
	for id, status := range want {
		var a models.Appointment
		if err := testDB.First(&a, "id = ?", id).Error; err != nil {
			t.Fatal(err)
		}
		if a.Status != status {
			t.Errorf("%s: status = %s, want %s", id, a.Status, status)
		}
	}
}
