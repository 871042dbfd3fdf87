package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"barberbook-backend/models"
	"barberbook-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportService aggregates a shop's appointments for the owner dashboard.
// Revenue is the price of the service of each completed appointment.
type ReportService struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

func NewReportService(db *gorm.DB, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{db: db, loc: loc, now: time.Now}
}

type UpcomingAppointment struct {
	ID           uuid.UUID `json:"id"`
	CustomerName string    `json:"customerName"`
	ServiceName  string    `json:"serviceName"`
	StaffName    string    `json:"staffName"`
	StartTime    time.Time `json:"startTime"`
	When         string    `json:"when"` // "Today", "Tomorrow", "3 days"
}

type RecentCustomer struct {
	Name      string `json:"name"`
	Service   string `json:"service"`
	VisitDate string `json:"visitDate"` // "Today", "Yesterday", "3 days ago"
}

type Overview struct {
	TodayAppointments   int                   `json:"todayAppointments"`
	PendingAppointments int                   `json:"pendingAppointments"`
	MonthlyRevenue      decimal.Decimal       `json:"monthlyRevenue"`
	Upcoming            []UpcomingAppointment `json:"upcoming"`
	RecentCustomers     []RecentCustomer      `json:"recentCustomers"`
}

// Overview is the at-a-glance view of today and the coming week.
func (s *ReportService) Overview(ctx context.Context, shopID uuid.UUID) (*Overview, error) {
	now := s.now().In(s.loc)
	today := utils.BeginningOfDay(now)
	db := s.db.WithContext(ctx)

	out := &Overview{Upcoming: []UpcomingAppointment{}, RecentCustomers: []RecentCustomer{}}

	var n int64
	if err := db.Model(&models.Appointment{}).
		Where("shop_id = ? AND status <> ? AND start_time >= ? AND start_time <= ?",
			shopID, models.StatusCancelled, today.UTC(), utils.EndOfDay(today).UTC()).
		Count(&n).Error; err != nil {
		return nil, &PersistenceError{Op: "count today", Err: err}
	}
	out.TodayAppointments = int(n)

	if err := db.Model(&models.Appointment{}).
		Where("shop_id = ? AND status = ? AND start_time >= ?", shopID, models.StatusPending, now.UTC()).
		Count(&n).Error; err != nil {
		return nil, &PersistenceError{Op: "count pending", Err: err}
	}
	out.PendingAppointments = int(n)

	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	revenue, err := s.revenue(ctx, shopID, firstOfMonth, firstOfMonth.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	out.MonthlyRevenue = revenue

	var upcoming []models.Appointment
	if err := db.Preload("Service").Preload("Staff").
		Where("shop_id = ? AND status IN ? AND start_time >= ? AND start_time < ?",
			shopID, models.ActiveStatuses, now.UTC(), today.AddDate(0, 0, 7).UTC()).
		Order("start_time ASC").Limit(7).
		Find(&upcoming).Error; err != nil {
		return nil, &PersistenceError{Op: "load upcoming", Err: err}
	}
	for _, a := range upcoming {
		start := a.StartTime.In(s.loc)
		item := UpcomingAppointment{
			ID:           a.ID,
			CustomerName: a.CustomerName,
			StartTime:    start,
			When:         daysUntilLabel(utils.DaysBetween(today, start)),
		}
		if a.Service != nil {
			item.ServiceName = a.Service.Name
		}
		if a.Staff != nil {
			item.StaffName = a.Staff.FullName
		}
		out.Upcoming = append(out.Upcoming, item)
	}

	// Last three distinct customers with a completed visit
	var recent []models.Appointment
	if err := db.Preload("Service").
		Where("shop_id = ? AND status = ?", shopID, models.StatusCompleted).
		Order("start_time DESC").Limit(30).
		Find(&recent).Error; err != nil {
		return nil, &PersistenceError{Op: "load recent", Err: err}
	}
	seen := make(map[string]bool)
	for _, a := range recent {
		key := customerKey(a)
		if seen[key] {
			continue
		}
		seen[key] = true
		rc := RecentCustomer{
			Name:      a.CustomerName,
			VisitDate: daysAgoLabel(utils.DaysBetween(a.StartTime.In(s.loc), today)),
		}
		if a.Service != nil {
			rc.Service = a.Service.Name
		}
		out.RecentCustomers = append(out.RecentCustomers, rc)
		if len(out.RecentCustomers) >= 3 {
			break
		}
	}

	return out, nil
}

type PeriodRevenue struct {
	Current  decimal.Decimal `json:"current"`
	Previous decimal.Decimal `json:"previous"`
	Growth   float64         `json:"growth"` // percent
}

type ServiceSummary struct {
	Name    string          `json:"name"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

type StaffSummary struct {
	Name    string          `json:"name"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

type QuickStatistics struct {
	TotalCustomers        int             `json:"totalCustomers"`
	CompletedAppointments int             `json:"completedAppointments"`
	AvgOrderValue         decimal.Decimal `json:"avgOrderValue"`
	CancellationRate      float64         `json:"cancellationRate"` // percent of all appointments
}

type Analytics struct {
	Month        PeriodRevenue    `json:"month"`
	Quarter      PeriodRevenue    `json:"quarter"`
	Year         PeriodRevenue    `json:"year"`
	TopServices  []ServiceSummary `json:"topServices"`
	TopStaff     []StaffSummary   `json:"topStaff"`
	TopCustomers []CustomerRecord `json:"topCustomers"`
	QuickStats   QuickStatistics  `json:"quickStats"`
}

// Analytics compares revenue with the previous month, quarter and year and
// ranks this month's services, barbers and customers.
func (s *ReportService) Analytics(ctx context.Context, shopID uuid.UUID) (*Analytics, error) {
	now := s.now().In(s.loc)
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	quarterStart := QuarterStart(now)
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, s.loc)

	var out Analytics
	var err error
	if out.Month, err = s.compare(ctx, shopID, firstOfMonth, 1); err != nil {
		return nil, err
	}
	if out.Quarter, err = s.compare(ctx, shopID, quarterStart, 3); err != nil {
		return nil, err
	}
	if out.Year, err = s.compare(ctx, shopID, yearStart, 12); err != nil {
		return nil, err
	}

	done, err := s.completedBetween(ctx, shopID, firstOfMonth, firstOfMonth.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	out.TopServices = topServices(done, 4)
	out.TopStaff = topStaff(done, 4)
	customers := groupCustomers(done)
	sort.SliceStable(customers, func(i, j int) bool { return customers[i].Spent.GreaterThan(customers[j].Spent) })
	if len(customers) > 4 {
		customers = customers[:4]
	}
	out.TopCustomers = customers

	if out.QuickStats, err = s.quickStats(ctx, shopID); err != nil {
		return nil, err
	}
	return &out, nil
}

// CustomerRecord is a customer as seen from a shop's appointment book.
type CustomerRecord struct {
	Name      string          `json:"name"`
	Phone     string          `json:"phone"`
	UserID    *uuid.UUID      `json:"userId,omitempty"`
	Visits    int             `json:"visits"`
	Spent     decimal.Decimal `json:"spent"`
	LastVisit time.Time       `json:"lastVisit"`
}

// Customers lists everyone who has completed a visit at the shop, most
// recent first. A non-empty search matches name or phone.
func (s *ReportService) Customers(ctx context.Context, shopID uuid.UUID, search string) ([]CustomerRecord, error) {
	q := s.db.WithContext(ctx).Preload("Service").
		Where("shop_id = ? AND status = ?", shopID, models.StatusCompleted)
	if term := strings.TrimSpace(search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		if digits := utils.ValidatePhone(term).Clean; digits != "" {
			q = q.Where("LOWER(customer_name) LIKE ? OR customer_phone LIKE ?", like, "%"+digits+"%")
		} else {
			q = q.Where("LOWER(customer_name) LIKE ?", like)
		}
	}

	var done []models.Appointment
	if err := q.Find(&done).Error; err != nil {
		return nil, &PersistenceError{Op: "load customers", Err: err}
	}
	list := groupCustomers(done)
	for i := range list {
		list[i].LastVisit = list[i].LastVisit.In(s.loc)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].LastVisit.After(list[j].LastVisit) })
	return list, nil
}

func (s *ReportService) completedBetween(ctx context.Context, shopID uuid.UUID, start, end time.Time) ([]models.Appointment, error) {
	var list []models.Appointment
	err := s.db.WithContext(ctx).Preload("Service").Preload("Staff").
		Where("shop_id = ? AND status = ? AND start_time >= ? AND start_time < ?",
			shopID, models.StatusCompleted, start.UTC(), end.UTC()).
		Find(&list).Error
	if err != nil {
		return nil, &PersistenceError{Op: "load completed appointments", Err: err}
	}
	return list, nil
}

func (s *ReportService) revenue(ctx context.Context, shopID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	done, err := s.completedBetween(ctx, shopID, start, end)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, a := range done {
		total = total.Add(price(a))
	}
	return total, nil
}

// compare sums the period of the given length in months starting at start,
// and the one right before it.
func (s *ReportService) compare(ctx context.Context, shopID uuid.UUID, start time.Time, months int) (PeriodRevenue, error) {
	current, err := s.revenue(ctx, shopID, start, start.AddDate(0, months, 0))
	if err != nil {
		return PeriodRevenue{}, err
	}
	previous, err := s.revenue(ctx, shopID, start.AddDate(0, -months, 0), start)
	if err != nil {
		return PeriodRevenue{}, err
	}
	return PeriodRevenue{Current: current, Previous: previous, Growth: GrowthPercentage(current, previous)}, nil
}

func (s *ReportService) quickStats(ctx context.Context, shopID uuid.UUID) (QuickStatistics, error) {
	var stats QuickStatistics

	var all []models.Appointment
	if err := s.db.WithContext(ctx).Preload("Service").
		Where("shop_id = ?", shopID).Find(&all).Error; err != nil {
		return stats, &PersistenceError{Op: "load appointments", Err: err}
	}

	var done []models.Appointment
	cancelled := 0
	for _, a := range all {
		switch a.Status {
		case models.StatusCompleted:
			done = append(done, a)
		case models.StatusCancelled:
			cancelled++
		}
	}

	stats.TotalCustomers = len(groupCustomers(done))
	stats.CompletedAppointments = len(done)
	stats.AvgOrderValue = decimal.Zero
	if len(done) > 0 {
		total := decimal.Zero
		for _, a := range done {
			total = total.Add(price(a))
		}
		stats.AvgOrderValue = total.Div(decimal.NewFromInt(int64(len(done)))).Round(2)
	}
	if len(all) > 0 {
		stats.CancellationRate = float64(cancelled) / float64(len(all)) * 100
	}
	return stats, nil
}

// QuarterStart is the first day of the calendar quarter containing t.
func QuarterStart(t time.Time) time.Time {
	startMonth := time.Month((int(t.Month())-1)/3*3 + 1)
	return time.Date(t.Year(), startMonth, 1, 0, 0, 0, 0, t.Location())
}

// GrowthPercentage is the change from previous to current in percent. Growth
// from nothing counts as 100.
func GrowthPercentage(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsZero() {
			return 0
		}
		return 100
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

func price(a models.Appointment) decimal.Decimal {
	if a.Service == nil {
		return decimal.Zero
	}
	return a.Service.Price
}

func customerKey(a models.Appointment) string {
	if a.CreatedByUserID != nil {
		return a.CreatedByUserID.String()
	}
	if a.CustomerPhone != "" {
		return a.CustomerPhone
	}
	return strings.ToLower(a.CustomerName)
}

func groupCustomers(list []models.Appointment) []CustomerRecord {
	index := make(map[string]int)
	out := []CustomerRecord{}
	for _, a := range list {
		key := customerKey(a)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, CustomerRecord{Name: a.CustomerName, Phone: a.CustomerPhone, UserID: a.CreatedByUserID, Spent: decimal.Zero})
		}
		rec := &out[i]
		rec.Visits++
		rec.Spent = rec.Spent.Add(price(a))
		if a.StartTime.After(rec.LastVisit) {
			rec.LastVisit = a.StartTime
			rec.Name = a.CustomerName
		}
	}
	return out
}

func topServices(list []models.Appointment, limit int) []ServiceSummary {
	index := make(map[uuid.UUID]int)
	out := []ServiceSummary{}
	for _, a := range list {
		i, ok := index[a.ServiceID]
		if !ok {
			i = len(out)
			index[a.ServiceID] = i
			name := ""
			if a.Service != nil {
				name = a.Service.Name
			}
			out = append(out, ServiceSummary{Name: name, Revenue: decimal.Zero})
		}
		out[i].Count++
		out[i].Revenue = out[i].Revenue.Add(price(a))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Revenue.GreaterThan(out[j].Revenue) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func topStaff(list []models.Appointment, limit int) []StaffSummary {
	index := make(map[uuid.UUID]int)
	out := []StaffSummary{}
	for _, a := range list {
		i, ok := index[a.StaffID]
		if !ok {
			i = len(out)
			index[a.StaffID] = i
			name := ""
			if a.Staff != nil {
				name = a.Staff.FullName
			}
			out = append(out, StaffSummary{Name: name, Revenue: decimal.Zero})
		}
		out[i].Count++
		out[i].Revenue = out[i].Revenue.Add(price(a))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func daysUntilLabel(days int) string {
	switch days {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	}
	return fmt.Sprintf("%d days", days)
}

func daysAgoLabel(days int) string {
	switch days {
	case 0:
		return "Today"
	case 1:
		return "Yesterday"
	}
	return fmt.Sprintf("%d days ago", days)
}
