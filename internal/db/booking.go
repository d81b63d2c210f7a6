package db

import "gorm.io/gorm"

// 订单状态
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

// Booking 定义了预订订单模型
// CheckInDate/CheckOutDate 为 YYYY-MM-DD，区间左闭右开（退房日不计费）
// UnitPrice 为下单时锁定的每晚单价，TotalPrice 由节假日定价引擎算出
type Booking struct {
	gorm.Model
	BookingNo      string `gorm:"size:64;uniqueIndex;not null"`
	HotelID        uint   `gorm:"index;not null"`
	Hotel          Hotel  `gorm:"constraint:OnDelete:CASCADE"`
	UserID         *uint  `gorm:"index"`
	GuestName      string `gorm:"size:255;not null"`
	GuestPhone     string `gorm:"size:20;not null"`
	GuestEmail     string `gorm:"size:255"`
	CheckInDate    string `gorm:"type:text;not null"`
	CheckOutDate   string `gorm:"type:text;not null"`
	NumberOfRooms  int    `gorm:"not null;default:1"`
	NumberOfGuests int    `gorm:"not null;default:1"`
	UnitPrice      float64
	TotalPrice     float64 `gorm:"not null"`
	Status         string  `gorm:"size:20;not null;default:pending;index"`
	Remarks        string
}
