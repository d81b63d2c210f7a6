package service

import (
	"fmt"
	"testing"

	"github.com/stayhub/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupStatisticsTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.Hotel{}, &db.Booking{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb

	return func() {
		sqlDB, err := db.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func seedStatBooking(t *testing.T, hotelID uint, status string, total float64) {
	t.Helper()
	booking := db.Booking{
		BookingNo:    fmt.Sprintf("bn-%d-%s", hotelID, status),
		HotelID:      hotelID,
		GuestName:    "张三",
		GuestPhone:   "13800138000",
		CheckInDate:  "2025-10-01",
		CheckOutDate: "2025-10-03",
		TotalPrice:   total,
		Status:       status,
	}
	if err := db.DB.Create(&booking).Error; err != nil {
		t.Fatalf("failed to seed booking: %v", err)
	}
}

func TestRevenueSummaryScoping(t *testing.T) {
	cleanup := setupStatisticsTestDB(t)
	defer cleanup()

	mine := db.Hotel{Name: "云端客栈", Location: "a", City: "大理", PricePerNight: 100, MerchantID: 10}
	other := db.Hotel{Name: "山海民宿", Location: "b", City: "丽江", PricePerNight: 200, MerchantID: 20}
	if err := db.DB.Create(&mine).Error; err != nil {
		t.Fatalf("failed to seed hotel: %v", err)
	}
	if err := db.DB.Create(&other).Error; err != nil {
		t.Fatalf("failed to seed hotel: %v", err)
	}

	seedStatBooking(t, mine.ID, db.BookingStatusConfirmed, 380)
	seedStatBooking(t, mine.ID, db.BookingStatusPending, 100)
	seedStatBooking(t, other.ID, db.BookingStatusConfirmed, 600)

	svc := NewStatisticsService(db.DB)

	merchant, err := svc.RevenueSummaryFor(10, db.RoleMerchant)
	if err != nil {
		t.Fatalf("RevenueSummaryFor returned error: %v", err)
	}
	if merchant.TotalRevenue != 380 {
		t.Fatalf("expected merchant revenue 380, got %v", merchant.TotalRevenue)
	}
	if merchant.TotalBookings != 2 || merchant.ConfirmedBookings != 1 || merchant.PendingBookings != 1 {
		t.Fatalf("unexpected merchant counts: %+v", merchant)
	}
	if merchant.AvgRevenuePerBooking != 380 {
		t.Fatalf("expected avg 380, got %v", merchant.AvgRevenuePerBooking)
	}
	if len(merchant.ByHotel) != 1 || merchant.ByHotel[0].HotelID != mine.ID {
		t.Fatalf("unexpected merchant breakdown: %+v", merchant.ByHotel)
	}

	admin, err := svc.RevenueSummaryFor(1, db.RoleAdmin)
	if err != nil {
		t.Fatalf("RevenueSummaryFor returned error: %v", err)
	}
	if admin.TotalRevenue != 980 {
		t.Fatalf("expected platform revenue 980, got %v", admin.TotalRevenue)
	}
	if admin.AvgRevenuePerBooking != 490 {
		t.Fatalf("expected avg 490, got %v", admin.AvgRevenuePerBooking)
	}
	if len(admin.ByHotel) != 2 {
		t.Fatalf("expected 2 hotels in breakdown, got %d", len(admin.ByHotel))
	}
}

func TestRevenueSummaryEmptyScope(t *testing.T) {
	cleanup := setupStatisticsTestDB(t)
	defer cleanup()

	svc := NewStatisticsService(db.DB)

	summary, err := svc.RevenueSummaryFor(10, db.RoleMerchant)
	if err != nil {
		t.Fatalf("RevenueSummaryFor returned error: %v", err)
	}
	if summary.TotalRevenue != 0 || summary.TotalBookings != 0 {
		t.Fatalf("expected zeroed summary, got %+v", summary)
	}
	if summary.ByHotel == nil {
		t.Fatal("expected empty breakdown slice, got nil")
	}
}
