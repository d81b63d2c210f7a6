package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stayhub/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrBookingNotFound 在指定订单不存在时返回
	ErrBookingNotFound = errors.New("booking not found")
	// ErrBookingInvalid 在订单字段校验失败时返回
	ErrBookingInvalid = errors.New("invalid booking input")
	// ErrBookingForbidden 在操作者无权访问订单时返回
	ErrBookingForbidden = errors.New("booking access denied")
)

// BookingService 负责订单的创建、查询和状态流转
// 订单总价统一由节假日定价引擎计算，前端传来的价格只作为每晚单价参考
type BookingService struct {
	db      *gorm.DB
	pricing *HolidayPricingService
}

// BookingInput 定义下单字段
// UnitPrice 不为正数时回退到酒店每晚基准价
type BookingInput struct {
	HotelID        uint
	GuestName      string
	GuestPhone     string
	GuestEmail     string
	CheckInDate    string
	CheckOutDate   string
	NumberOfRooms  int
	NumberOfGuests int
	UnitPrice      float64
	Remarks        string
}

// BookingFilter 描述订单列表过滤条件
type BookingFilter struct {
	HotelID uint
	Status  string
}

// NewBookingService 构造 BookingService
func NewBookingService(gdb *gorm.DB) *BookingService {
	return &BookingService{
		db:      gdb,
		pricing: NewHolidayPricingService(gdb),
	}
}

// Create 创建订单
// 总价 = 定价引擎按 [checkIn, checkOut) 逐晚结算的折后价
func (s *BookingService) Create(userID *uint, input BookingInput) (*db.Booking, error) {
	if strings.TrimSpace(input.GuestName) == "" {
		return nil, fmt.Errorf("%w: guestName is required", ErrBookingInvalid)
	}
	if strings.TrimSpace(input.GuestPhone) == "" {
		return nil, fmt.Errorf("%w: guestPhone is required", ErrBookingInvalid)
	}

	rooms := input.NumberOfRooms
	if rooms == 0 {
		rooms = 1
	}
	guests := input.NumberOfGuests
	if guests == 0 {
		guests = 1
	}
	if rooms < 1 || guests < 1 {
		return nil, fmt.Errorf("%w: rooms and guests must be at least 1", ErrBookingInvalid)
	}

	var hotel db.Hotel
	if err := s.db.First(&hotel, input.HotelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHotelNotFound
		}
		return nil, fmt.Errorf("get hotel: %w", err)
	}

	unitPrice := input.UnitPrice
	if unitPrice <= 0 {
		unitPrice = hotel.PricePerNight
	}

	quote, err := s.pricing.QuoteStrict(input.CheckInDate, input.CheckOutDate, unitPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: check-in must be before check-out", ErrBookingInvalid)
	}

	booking := db.Booking{
		BookingNo:      uuid.NewString(),
		HotelID:        hotel.ID,
		UserID:         userID,
		GuestName:      strings.TrimSpace(input.GuestName),
		GuestPhone:     strings.TrimSpace(input.GuestPhone),
		GuestEmail:     strings.TrimSpace(input.GuestEmail),
		CheckInDate:    input.CheckInDate,
		CheckOutDate:   input.CheckOutDate,
		NumberOfRooms:  rooms,
		NumberOfGuests: guests,
		UnitPrice:      unitPrice,
		TotalPrice:     quote.TotalPrice,
		Status:         db.BookingStatusPending,
		Remarks:        strings.TrimSpace(input.Remarks),
	}
	if err := s.db.Create(&booking).Error; err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	return &booking, nil
}

// ListForActor 按角色返回可见订单
// 普通用户看自己的，商户看名下酒店的，管理员看全部
func (s *BookingService) ListForActor(actorID uint, role string, filter BookingFilter) ([]db.Booking, error) {
	query := s.db.Model(&db.Booking{}).Preload("Hotel")

	switch role {
	case db.RoleAdmin:
	case db.RoleMerchant:
		query = query.Joins("JOIN hotels ON hotels.id = bookings.hotel_id").
			Where("hotels.merchant_id = ?", actorID)
	default:
		query = query.Where("bookings.user_id = ?", actorID)
	}

	if filter.HotelID != 0 {
		query = query.Where("bookings.hotel_id = ?", filter.HotelID)
	}
	if filter.Status != "" {
		query = query.Where("bookings.status = ?", filter.Status)
	}

	var bookings []db.Booking
	if err := query.Order("bookings.created_at DESC").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// Get 获取订单详情并做访问校验
func (s *BookingService) Get(actorID uint, role string, id uint) (*db.Booking, error) {
	var booking db.Booking
	if err := s.db.Preload("Hotel").First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}

	if !s.canAccess(actorID, role, &booking) {
		return nil, ErrBookingForbidden
	}
	return &booking, nil
}

// UpdateStatus 订单状态流转
// 普通用户只能取消自己的订单，商户/管理员可在合法状态间流转并附备注
func (s *BookingService) UpdateStatus(actorID uint, role string, id uint, status, remarks string) (*db.Booking, error) {
	switch status {
	case db.BookingStatusPending, db.BookingStatusConfirmed, db.BookingStatusCancelled, db.BookingStatusCompleted:
	default:
		return nil, fmt.Errorf("%w: unknown booking status %q", ErrBookingInvalid, status)
	}

	booking, err := s.Get(actorID, role, id)
	if err != nil {
		return nil, err
	}

	if role != db.RoleAdmin && role != db.RoleMerchant && status != db.BookingStatusCancelled {
		return nil, ErrBookingForbidden
	}

	booking.Status = status
	if remarks != "" {
		booking.Remarks = strings.TrimSpace(remarks)
	}
	if err := s.db.Save(booking).Error; err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}
	return booking, nil
}

func (s *BookingService) canAccess(actorID uint, role string, booking *db.Booking) bool {
	switch role {
	case db.RoleAdmin:
		return true
	case db.RoleMerchant:
		return booking.Hotel.MerchantID == actorID
	default:
		return booking.UserID != nil && *booking.UserID == actorID
	}
}
