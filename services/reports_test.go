package services

import (
	"testing"
	"time"

	"barberbook-backend/models"

	"github.com/shopspring/decimal"
)

func TestGrowthPercentage(t *testing.T) {
	cases := []struct {
		current, previous int64
		want              float64
	}{
		{0, 0, 0},
		{50, 0, 100},
		{150, 100, 50},
		{50, 100, -50},
	}
	for _, tc := range cases {
		got := GrowthPercentage(decimal.NewFromInt(tc.current), decimal.NewFromInt(tc.previous))
		if got != tc.want {
			t.Errorf("GrowthPercentage(%d, %d) = %v, want %v", tc.current, tc.previous, got, tc.want)
		}
	}
}

func TestQuarterStart(t *testing.T) {
	cases := map[time.Month]time.Month{
		time.January: time.January, time.March: time.January,
		time.April: time.April, time.June: time.April,
		time.November: time.October,
	}
	for month, want := range cases {
		got := QuarterStart(time.Date(2024, month, 17, 12, 0, 0, 0, time.UTC))
		if got.Month() != want || got.Day() != 1 || got.Hour() != 0 {
			t.Errorf("QuarterStart(%s) = %s", month, got)
		}
	}
}

func TestReportOverview(t *testing.T) {
	f := newFixture(t)
	reports := NewReportService(testDB, testLoc)
	reports.now = func() time.Time { return at(t, "2024-06-10", "12:00") }

	done := f.reserve(t, f.staff, "2024-06-08", "10:00", 30, models.StatusCompleted)
	f.reserve(t, f.staff, "2024-06-10", "09:00", 30, models.StatusConfirmed)
	f.reserve(t, f.staff, "2024-06-10", "15:00", 30, models.StatusPending)
	f.reserve(t, f.staff, "2024-06-10", "16:00", 30, models.StatusCancelled)
	f.reserve(t, f.other, "2024-06-11", "11:00", 30, models.StatusConfirmed)
	f.reserve(t, f.other, "2024-05-20", "11:00", 30, models.StatusCompleted)

	ov, err := reports.Overview(bg, f.shop.ID)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if ov.TodayAppointments != 2 {
		t.Errorf("today = %d, want 2", ov.TodayAppointments)
	}
	if ov.PendingAppointments != 1 {
		t.Errorf("pending = %d, want 1", ov.PendingAppointments)
	}
	// One completed shave this month at 60.
	if !ov.MonthlyRevenue.Equal(decimal.NewFromInt(60)) {
		t.Errorf("monthly revenue = %s", ov.MonthlyRevenue)
	}
	if len(ov.Upcoming) != 2 || ov.Upcoming[0].When != "Today" || ov.Upcoming[1].When != "Tomorrow" {
		t.Errorf("upcoming = %+v", ov.Upcoming)
	}
	if len(ov.RecentCustomers) != 1 || ov.RecentCustomers[0].VisitDate != "2 days ago" {
		t.Errorf("recent = %+v (visit on %s)", ov.RecentCustomers, done.StartTime)
	}
}

func TestReportAnalyticsAndCustomers(t *testing.T) {
	f := newFixture(t)
	reports := NewReportService(testDB, testLoc)
	reports.now = func() time.Time { return at(t, "2024-06-20", "12:00") }

	haircut := func(date, clock, name, phone string, staff models.Staff, status models.AppointmentStatus) {
		start := at(t, date, clock)
		mustCreate(t, &models.Appointment{
			ShopID: f.shop.ID, StaffID: staff.ID, ServiceID: f.haircut.ID,
			StartTime: start.UTC(), EndTime: start.Add(45 * time.Minute).UTC(),
			Status: status, CustomerName: name, CustomerPhone: phone,
		})
	}
	haircut("2024-06-03", "10:00", "Ali Veli", "5551234567", f.staff, models.StatusCompleted)
	haircut("2024-06-10", "10:00", "Ali Veli", "5551234567", f.staff, models.StatusCompleted)
	haircut("2024-06-11", "10:00", "Ayşe Kaya", "5557654321", f.other, models.StatusCompleted)
	haircut("2024-06-12", "10:00", "Ayşe Kaya", "5557654321", f.other, models.StatusCancelled)
	haircut("2024-05-15", "10:00", "Ali Veli", "5551234567", f.staff, models.StatusCompleted)

	a, err := reports.Analytics(bg, f.shop.ID)
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if !a.Month.Current.Equal(decimal.NewFromInt(300)) || !a.Month.Previous.Equal(decimal.NewFromInt(100)) {
		t.Errorf("month revenue = %s / %s", a.Month.Current, a.Month.Previous)
	}
	if a.Month.Growth != 200 {
		t.Errorf("month growth = %v", a.Month.Growth)
	}
	if !a.Year.Current.Equal(decimal.NewFromInt(400)) {
		t.Errorf("year revenue = %s", a.Year.Current)
	}
	if len(a.TopServices) != 1 || a.TopServices[0].Count != 3 {
		t.Errorf("top services = %+v", a.TopServices)
	}
	if len(a.TopStaff) != 2 || a.TopStaff[0].Name != "Ahmet" {
		t.Errorf("top staff = %+v", a.TopStaff)
	}
	if len(a.TopCustomers) != 2 || a.TopCustomers[0].Name != "Ali Veli" || a.TopCustomers[0].Visits != 2 {
		t.Errorf("top customers = %+v", a.TopCustomers)
	}
	if a.QuickStats.CompletedAppointments != 4 || a.QuickStats.TotalCustomers != 2 {
		t.Errorf("quick stats = %+v", a.QuickStats)
	}
	if a.QuickStats.CancellationRate != 20 {
		t.Errorf("cancellation rate = %v", a.QuickStats.CancellationRate)
	}

	all, err := reports.Customers(bg, f.shop.ID, "")
	if err != nil {
		t.Fatalf("Customers: %v", err)
	}
	if len(all) != 2 || all[0].Name != "Ayşe Kaya" {
		t.Fatalf("customers = %+v", all)
	}
	if all[1].Visits != 3 || !all[1].Spent.Equal(decimal.NewFromInt(300)) {
		t.Errorf("Ali Veli = %+v", all[1])
	}

	found, err := reports.Customers(bg, f.shop.ID, "0555 765")
	if err != nil {
		t.Fatalf("Customers by phone: %v", err)
	}
	if len(found) != 1 || found[0].Phone != "5557654321" {
		t.Errorf("phone search = %+v", found)
	}
	found, err = reports.Customers(bg, f.shop.ID, "ali")
	if err != nil {
		t.Fatalf("Customers by name: %v", err)
	}
	if len(found) != 1 || found[0].Name != "Ali Veli" {
		t.Errorf("name search = %+v", found)
	}
}
