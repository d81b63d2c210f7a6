package db

import "gorm.io/gorm"

// 酒店上架状态
const (
	HotelStatusPending  = "pending"
	HotelStatusApproved = "approved"
	HotelStatusOffline  = "offline"
)

// 首页广告位申请状态：商户提交后进入 pending，由管理员审核流转
const (
	AdStatusNone     = "none"
	AdStatusPending  = "pending"
	AdStatusApproved = "approved"
	AdStatusRejected = "rejected"
)

// Hotel 定义了酒店模型
// PricePerNight 为每晚基准价，节假日折扣在定价引擎中计算
// IsHomeAd 仅在 AdStatus 审核通过后为 true，Status 由管理员审核流转
type Hotel struct {
	gorm.Model
	Name           string `gorm:"size:255;not null"`
	Description    string
	Location       string `gorm:"size:255;not null"`
	City           string `gorm:"size:100;not null;index"`
	Longitude      *float64
	Latitude       *float64
	Rating         float64
	StarLevel      *int
	PricePerNight  float64 `gorm:"not null"`
	TotalRooms     int
	AvailableRooms int
	CoverImage     string `gorm:"size:500"`
	Status         string `gorm:"size:20;not null;default:pending;index"`
	IsHomeAd       bool   `gorm:"not null;default:false"`
	AdStatus       string `gorm:"size:20;not null;default:none;index"`
	MerchantID     uint   `gorm:"index"`
	Merchant       User   `gorm:"foreignKey:MerchantID"`
}
