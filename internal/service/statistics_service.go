package service

import (
	"fmt"

	"github.com/stayhub/internal/db"
	"gorm.io/gorm"
)

// StatisticsService 负责营收和订单量的汇总统计
// 商户只统计名下酒店，管理员统计全平台
type StatisticsService struct {
	db *gorm.DB
}

// HotelRevenue 描述单家酒店的营收分项
type HotelRevenue struct {
	HotelID   uint    `json:"hotelId"`
	HotelName string  `json:"hotelName"`
	Bookings  int     `json:"bookings"`
	Revenue   float64 `json:"revenue"`
}

// RevenueSummary 描述营收汇总
// 营收只计已确认订单，平均值按确认订单数折算
type RevenueSummary struct {
	TotalRevenue         float64        `json:"totalRevenue"`
	TotalBookings        int64          `json:"totalBookings"`
	ConfirmedBookings    int64          `json:"confirmedBookings"`
	PendingBookings      int64          `json:"pendingBookings"`
	AvgRevenuePerBooking float64        `json:"avgRevenuePerBooking"`
	ByHotel              []HotelRevenue `json:"byHotel"`
}

// NewStatisticsService 构造 StatisticsService
func NewStatisticsService(gdb *gorm.DB) *StatisticsService {
	return &StatisticsService{db: gdb}
}

// RevenueSummaryFor 汇总指定操作者可见范围内的营收
func (s *StatisticsService) RevenueSummaryFor(actorID uint, role string) (*RevenueSummary, error) {
	hotelQuery := s.db.Model(&db.Hotel{})
	if role == db.RoleMerchant {
		hotelQuery = hotelQuery.Where("merchant_id = ?", actorID)
	}

	var hotels []db.Hotel
	if err := hotelQuery.Find(&hotels).Error; err != nil {
		return nil, fmt.Errorf("list hotels for statistics: %w", err)
	}

	hotelIDs := make([]uint, 0, len(hotels))
	for _, hotel := range hotels {
		hotelIDs = append(hotelIDs, hotel.ID)
	}

	summary := &RevenueSummary{ByHotel: []HotelRevenue{}}
	if len(hotelIDs) == 0 {
		return summary, nil
	}

	scoped := s.db.Model(&db.Booking{}).Where("hotel_id IN ?", hotelIDs)

	if err := scoped.Session(&gorm.Session{}).Count(&summary.TotalBookings).Error; err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	if err := scoped.Session(&gorm.Session{}).
		Where("status = ?", db.BookingStatusPending).
		Count(&summary.PendingBookings).Error; err != nil {
		return nil, fmt.Errorf("count pending bookings: %w", err)
	}

	var confirmed []db.Booking
	if err := s.db.
		Where("hotel_id IN ? AND status = ?", hotelIDs, db.BookingStatusConfirmed).
		Find(&confirmed).Error; err != nil {
		return nil, fmt.Errorf("list confirmed bookings: %w", err)
	}

	summary.ConfirmedBookings = int64(len(confirmed))
	byHotel := make(map[uint]*HotelRevenue, len(hotels))
	for _, hotel := range hotels {
		byHotel[hotel.ID] = &HotelRevenue{HotelID: hotel.ID, HotelName: hotel.Name}
	}

	for _, booking := range confirmed {
		summary.TotalRevenue += booking.TotalPrice
		if entry, ok := byHotel[booking.HotelID]; ok {
			entry.Bookings++
			entry.Revenue += booking.TotalPrice
		}
	}
	summary.TotalRevenue = roundToCent(summary.TotalRevenue)

	if summary.ConfirmedBookings > 0 {
		summary.AvgRevenuePerBooking = roundToCent(summary.TotalRevenue / float64(summary.ConfirmedBookings))
	}

	for _, hotel := range hotels {
		entry := byHotel[hotel.ID]
		entry.Revenue = roundToCent(entry.Revenue)
		summary.ByHotel = append(summary.ByHotel, *entry)
	}

	return summary, nil
}
