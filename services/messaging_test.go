package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"barberbook-backend/models"
	"barberbook-backend/queue"
)

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []OutboundMessage
	fail map[string]bool
}

func (d *fakeDispatcher) Channel() string { return "fake" }

func (d *fakeDispatcher) Send(_ context.Context, msg OutboundMessage) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail[msg.Phone] {
		return errors.New("gateway rejected")
	}
	d.sent = append(d.sent, msg)
	return nil
}

func TestVatanSMSDispatcherSend(t *testing.T) {
	var got vatanPayload
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	d := NewVatanSMSDispatcher(srv.URL, "tok123", "reg-1")
	if err := d.Send(bg, OutboundMessage{Phone: "0555 123 45 67", Message: "hello"}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if auth != "Bearer tok123" {
		t.Errorf("Authorization = %q", auth)
	}
	if len(got.Messages) != 1 {
		t.Fatalf("messages = %d", len(got.Messages))
	}
	m := got.Messages[0]
	if m.RegID != "reg-1" || m.Target != "905551234567" || m.Message != "hello" {
		t.Errorf("unexpected payload %+v", m)
	}
}

func TestVatanSMSDispatcherReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	d := NewVatanSMSDispatcher(srv.URL, "bad", "reg-1")
	err := d.Send(bg, OutboundMessage{Phone: "5551234567", Message: "hello"})
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestHandleBookingCreatedSendsAndLogs(t *testing.T) {
	f := newFixture(t)
	appt := f.reserve(t, f.staff, "2024-06-10", "10:00", 30, models.StatusPending)

	dispatcher := &fakeDispatcher{fail: map[string]bool{f.owner.Phone: true}}
	sender := NewMessageSender(testDB, dispatcher, testLoc)

	ev := queue.BookingCreatedEvent{
		AppointmentID: appt.ID.String(),
		ShopID:        f.shop.ID.String(),
		ShopName:      f.shop.Name,
		StaffName:     f.staff.FullName,
		ServiceName:   f.shave.Name,
		CustomerName:  "Ali Veli",
		CustomerPhone: "5551234567",
		OwnerPhone:    f.owner.Phone,
		StartsAt:      appt.StartTime.Format(time.RFC3339),
	}
	err := sender.HandleBookingCreated(bg, ev)
	if err == nil {
		t.Fatal("expected the owner alert failure to be reported")
	}

	if len(dispatcher.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(dispatcher.sent))
	}
	if msg := dispatcher.sent[0].Message; !strings.Contains(msg, "Ali Veli") || !strings.Contains(msg, "10.06.2024 10:00") {
		t.Errorf("confirmation text %q", msg)
	}

	var logs []models.ReminderLog
	if err := testDB.Order("type").Find(&logs).Error; err != nil {
		t.Fatal(err)
	}
	if len(logs) != 2 {
		t.Fatalf("logs = %d, want 2", len(logs))
	}
	if logs[0].Type != "confirmation" || logs[0].Status != "sent" || logs[0].Channel != "fake" {
		t.Errorf("confirmation log %+v", logs[0])
	}
	if logs[1].Type != "owner_alert" || logs[1].Status != "failed" || logs[1].ErrorMessage == "" {
		t.Errorf("owner alert log %+v", logs[1])
	}
}

func TestHandleBookingCreatedRejectsBadID(t *testing.T) {
	sender := NewMessageSender(testDB, &fakeDispatcher{}, testLoc)
	if err := sender.HandleBookingCreated(bg, queue.BookingCreatedEvent{AppointmentID: "nope"}); err == nil {
		t.Fatal("expected error for malformed appointment id")
	}
}

func TestBookingEventReachesDispatcherThroughDirectPublisher(t *testing.T) {
	f := newFixture(t)
	dispatcher := &fakeDispatcher{}
	sender := NewMessageSender(testDB, dispatcher, testLoc)
	direct := queue.NewDirectPublisher(sender.HandleBookingCreated)
	booking, _ := newBooking(WithPublisher(direct))

	if _, err := booking.Book(bg, BookingRequest{
		ShopID: f.shop.ID, ServiceID: f.haircut.ID, StaffID: f.staff.ID,
		Date: "2024-06-10", Time: "10:00",
		Requester: guest("Ali Veli", "5551234567"),
	}); err != nil {
		t.Fatalf("Book: %v", err)
	}
	direct.Wait()

	phones := map[string]bool{}
	for _, m := range dispatcher.sent {
		phones[m.Phone] = true
	}
	if !phones["5551234567"] || !phones[f.owner.Phone] {
		t.Errorf("expected customer and owner messages, got %+v", dispatcher.sent)
	}
}

func TestSendDailyReminders(t *testing.T) {
	f := newFixture(t)
	dispatcher := &fakeDispatcher{}
	sender := NewMessageSender(testDB, dispatcher, testLoc)
	reminders := NewReminderService(testDB, sender, NewAppointmentService(testDB, testLoc, nil), testLoc)
	reminders.now = func() time.Time { return at(t, "2024-06-09", "09:00") }

	due := f.reserve(t, f.staff, "2024-06-10", "10:00", 30, models.StatusConfirmed)
	f.reserve(t, f.staff, "2024-06-10", "12:00", 30, models.StatusCancelled)
	f.reserve(t, f.staff, "2024-06-11", "10:00", 30, models.StatusConfirmed)

	if sent := reminders.SendDailyReminders(bg); sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}
	if len(dispatcher.sent) != 1 || !strings.Contains(dispatcher.sent[0].Message, "10:00") {
		t.Errorf("unexpected messages %+v", dispatcher.sent)
	}

	var stored models.Appointment
	if err := testDB.First(&stored, "id = ?", due.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.ReminderSentAt == nil {
		t.Error("reminder_sent_at not set")
	}

	// A second run does not remind twice.
	if sent := reminders.SendDailyReminders(bg); sent != 0 {
		t.Errorf("second run sent %d", sent)
	}
}

func TestStartSchedulerRejectsBadSpec(t *testing.T) {
	reminders := NewReminderService(testDB, nil, nil, testLoc)
	if err := reminders.StartScheduler("not a cron", "*/15 * * * *"); err == nil {
		t.Fatal("expected error for bad cron spec")
	}
}
