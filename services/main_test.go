package services

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"barberbook-backend/models"
	"barberbook-backend/testutil"
	"barberbook-backend/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	testDB  *gorm.DB
	testLoc = time.FixedZone("TRT", 3*60*60)
)

func TestMain(m *testing.M) {
	db, err := testutil.OpenSQLite()
	if err != nil {
		log.Fatalf("open test database: %v", err)
	}
	testDB = db
	os.Exit(m.Run())
}

type fixture struct {
	owner   models.User
	shop    models.Shop
	haircut models.Service // 45 minutes
	shave   models.Service // 30 minutes
	staff   models.Staff
	other   models.Staff
}

// newFixture empties the database and seeds one shop with two services
// and two barbers.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	testutil.Reset(testDB)

	f := &fixture{}
	f.owner = models.User{Email: "owner@example.com", Password: "secret123", Name: "Mehmet Usta", Phone: "5329876543"}
	mustCreate(t, &f.owner)

	f.shop = models.Shop{Slug: "usta-berber", Name: "Usta Berber", OwnerUserID: f.owner.ID, PublicCode: "TR-1001"}
	mustCreate(t, &f.shop)

	f.haircut = models.Service{ShopID: f.shop.ID, Name: "Haircut", Price: decimal.NewFromInt(100), Duration: 45, IsActive: true}
	mustCreate(t, &f.haircut)
	f.shave = models.Service{ShopID: f.shop.ID, Name: "Shave", Price: decimal.NewFromInt(60), Duration: 30, IsActive: true, DisplayOrder: 1}
	mustCreate(t, &f.shave)

	f.staff = models.Staff{ShopID: f.shop.ID, FullName: "Ahmet", IsActive: true}
	mustCreate(t, &f.staff)
	f.other = models.Staff{ShopID: f.shop.ID, FullName: "Can", IsActive: true, DisplayOrder: 1}
	mustCreate(t, &f.other)
	return f
}

func mustCreate(t *testing.T, value interface{}) {
	t.Helper()
	if err := testDB.Create(value).Error; err != nil {
		t.Fatalf("create %T: %v", value, err)
	}
}

// reserve stores an appointment directly, bypassing the booking checks.
func (f *fixture) reserve(t *testing.T, staff models.Staff, date, clock string, minutes int, status models.AppointmentStatus) models.Appointment {
	t.Helper()
	start := at(t, date, clock)
	appt := models.Appointment{
		ShopID:        f.shop.ID,
		StaffID:       staff.ID,
		ServiceID:     f.shave.ID,
		StartTime:     start.UTC(),
		EndTime:       start.Add(time.Duration(minutes) * time.Minute).UTC(),
		Status:        status,
		CustomerName:  "Existing Customer",
		CustomerPhone: "5550000000",
	}
	mustCreate(t, &appt)
	return appt
}

func at(t *testing.T, date, clock string) time.Time {
	t.Helper()
	day, err := utils.ParseDate(date, testLoc)
	if err != nil {
		t.Fatal(err)
	}
	ts, err := utils.CombineDateTime(day, clock)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func countRows(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := testDB.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}

func busyTimes(slots []Slot) []string {
	busy := []string{}
	for _, s := range slots {
		if s.Busy {
			busy = append(busy, s.Time)
		}
	}
	return busy
}

var bg = context.Background()
