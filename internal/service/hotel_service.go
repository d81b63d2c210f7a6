package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stayhub/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrHotelNotFound 在指定酒店不存在时返回
	ErrHotelNotFound = errors.New("hotel not found")
	// ErrHotelInvalid 在酒店字段校验失败时返回
	ErrHotelInvalid = errors.New("invalid hotel input")
	// ErrHotelForbidden 在操作者无权访问酒店时返回
	ErrHotelForbidden = errors.New("hotel access denied")
)

// HotelService 负责酒店的增删改查和审核流转
// 商户只能操作自己名下的酒店，管理员不受限制
type HotelService struct {
	db *gorm.DB
}

// HotelFilter 描述酒店列表过滤条件
type HotelFilter struct {
	City       string
	Keyword    string
	Status     string
	MerchantID uint
}

// HotelInput 定义创建/更新酒店时可配置字段
type HotelInput struct {
	Name           string
	Description    string
	Location       string
	City           string
	Longitude      *float64
	Latitude       *float64
	StarLevel      *int
	PricePerNight  float64
	TotalRooms     int
	AvailableRooms int
	CoverImage     string
}

// NewHotelService 构造 HotelService
func NewHotelService(gdb *gorm.DB) *HotelService {
	return &HotelService{db: gdb}
}

// List 返回酒店集合，支持城市/关键字/状态过滤
func (s *HotelService) List(filter HotelFilter) ([]db.Hotel, error) {
	query := s.db.Model(&db.Hotel{})

	if filter.City != "" {
		query = query.Where("city = ?", strings.TrimSpace(filter.City))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.MerchantID != 0 {
		query = query.Where("merchant_id = ?", filter.MerchantID)
	}
	if filter.Keyword != "" {
		like := fmt.Sprintf("%%%s%%", strings.TrimSpace(filter.Keyword))
		query = query.Where("name LIKE ? OR location LIKE ?", like, like)
	}

	var hotels []db.Hotel
	if err := query.Order("created_at DESC").Find(&hotels).Error; err != nil {
		return nil, fmt.Errorf("list hotels: %w", err)
	}
	return hotels, nil
}

// ListHomeAds 返回首页广告位酒店（仅审核通过的申请）
func (s *HotelService) ListHomeAds() ([]db.Hotel, error) {
	var hotels []db.Hotel
	if err := s.db.
		Where("is_home_ad = ? AND ad_status = ?", true, db.AdStatusApproved).
		Order("updated_at DESC").
		Find(&hotels).Error; err != nil {
		return nil, fmt.Errorf("list home ad hotels: %w", err)
	}
	return hotels, nil
}

// LatestHomeAd 兼容旧版单广告接口，返回最近更新的一条，无投放时为 nil
func (s *HotelService) LatestHomeAd() (*db.Hotel, error) {
	var hotel db.Hotel
	err := s.db.
		Where("is_home_ad = ? AND ad_status = ?", true, db.AdStatusApproved).
		Order("updated_at DESC").
		First(&hotel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get home ad hotel: %w", err)
	}
	return &hotel, nil
}

// Get 根据 ID 获取酒店
func (s *HotelService) Get(id uint) (*db.Hotel, error) {
	var hotel db.Hotel
	if err := s.db.First(&hotel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHotelNotFound
		}
		return nil, fmt.Errorf("get hotel: %w", err)
	}
	return &hotel, nil
}

// Create 新建酒店，归属当前商户，初始状态为待审核
func (s *HotelService) Create(merchantID uint, input HotelInput) (*db.Hotel, error) {
	if err := validateHotelInput(input); err != nil {
		return nil, err
	}

	hotel := db.Hotel{
		Name:           strings.TrimSpace(input.Name),
		Description:    strings.TrimSpace(input.Description),
		Location:       strings.TrimSpace(input.Location),
		City:           strings.TrimSpace(input.City),
		Longitude:      input.Longitude,
		Latitude:       input.Latitude,
		StarLevel:      input.StarLevel,
		PricePerNight:  input.PricePerNight,
		TotalRooms:     input.TotalRooms,
		AvailableRooms: input.AvailableRooms,
		CoverImage:     strings.TrimSpace(input.CoverImage),
		Status:         db.HotelStatusPending,
		MerchantID:     merchantID,
	}
	if err := s.db.Create(&hotel).Error; err != nil {
		return nil, fmt.Errorf("create hotel: %w", err)
	}
	return &hotel, nil
}

// Update 更新酒店基础信息，商户仅限自己名下
func (s *HotelService) Update(actorID uint, role string, id uint, input HotelInput) (*db.Hotel, error) {
	hotel, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if role == db.RoleMerchant && hotel.MerchantID != actorID {
		return nil, ErrHotelForbidden
	}
	if err := validateHotelInput(input); err != nil {
		return nil, err
	}

	hotel.Name = strings.TrimSpace(input.Name)
	hotel.Description = strings.TrimSpace(input.Description)
	hotel.Location = strings.TrimSpace(input.Location)
	hotel.City = strings.TrimSpace(input.City)
	hotel.Longitude = input.Longitude
	hotel.Latitude = input.Latitude
	hotel.StarLevel = input.StarLevel
	hotel.PricePerNight = input.PricePerNight
	hotel.TotalRooms = input.TotalRooms
	hotel.AvailableRooms = input.AvailableRooms
	hotel.CoverImage = strings.TrimSpace(input.CoverImage)

	if err := s.db.Save(hotel).Error; err != nil {
		return nil, fmt.Errorf("update hotel: %w", err)
	}
	return hotel, nil
}

// SetStatus 审核流转，仅管理员可用
func (s *HotelService) SetStatus(role string, id uint, status string) (*db.Hotel, error) {
	if role != db.RoleAdmin {
		return nil, ErrHotelForbidden
	}
	switch status {
	case db.HotelStatusPending, db.HotelStatusApproved, db.HotelStatusOffline:
	default:
		return nil, fmt.Errorf("%w: status must be pending, approved or offline", ErrHotelInvalid)
	}

	hotel, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	hotel.Status = status
	if err := s.db.Save(hotel).Error; err != nil {
		return nil, fmt.Errorf("update hotel status: %w", err)
	}
	return hotel, nil
}

// ApplyHomeAd 商户提交/取消广告位申请，仅限自己名下的酒店
// 提交进入 pending 待审，取消回到 none；两种情况都不直接投放
func (s *HotelService) ApplyHomeAd(merchantID uint, id uint, enabled bool) (*db.Hotel, error) {
	hotel, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if hotel.MerchantID != merchantID {
		return nil, ErrHotelForbidden
	}

	if enabled {
		hotel.AdStatus = db.AdStatusPending
	} else {
		hotel.AdStatus = db.AdStatusNone
	}
	hotel.IsHomeAd = false

	if err := s.db.Save(hotel).Error; err != nil {
		return nil, fmt.Errorf("update hotel ad application: %w", err)
	}
	return hotel, nil
}

// ReviewHomeAd 管理员审核广告申请
// 通过即投放（允许多个广告并行），拒绝则撤下
func (s *HotelService) ReviewHomeAd(role string, id uint, approved bool) (*db.Hotel, error) {
	if role != db.RoleAdmin {
		return nil, ErrHotelForbidden
	}

	hotel, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if approved {
		hotel.IsHomeAd = true
		hotel.AdStatus = db.AdStatusApproved
	} else {
		hotel.IsHomeAd = false
		hotel.AdStatus = db.AdStatusRejected
	}

	if err := s.db.Save(hotel).Error; err != nil {
		return nil, fmt.Errorf("update hotel ad review: %w", err)
	}
	return hotel, nil
}

// Delete 删除酒店，商户仅限自己名下
func (s *HotelService) Delete(actorID uint, role string, id uint) error {
	hotel, err := s.Get(id)
	if err != nil {
		return err
	}
	if role == db.RoleMerchant && hotel.MerchantID != actorID {
		return ErrHotelForbidden
	}

	if err := s.db.Delete(hotel).Error; err != nil {
		return fmt.Errorf("delete hotel: %w", err)
	}
	return nil
}

func validateHotelInput(input HotelInput) error {
	name := strings.TrimSpace(input.Name)
	if len([]rune(name)) < 2 || len([]rune(name)) > 100 {
		return fmt.Errorf("%w: name must be 2-100 characters", ErrHotelInvalid)
	}
	if strings.TrimSpace(input.Location) == "" {
		return fmt.Errorf("%w: location is required", ErrHotelInvalid)
	}
	if strings.TrimSpace(input.City) == "" {
		return fmt.Errorf("%w: city is required", ErrHotelInvalid)
	}
	if input.PricePerNight < 0 {
		return fmt.Errorf("%w: pricePerNight must not be negative", ErrHotelInvalid)
	}
	if input.Longitude != nil && (*input.Longitude < -180 || *input.Longitude > 180) {
		return fmt.Errorf("%w: longitude must be in [-180, 180]", ErrHotelInvalid)
	}
	if input.Latitude != nil && (*input.Latitude < -90 || *input.Latitude > 90) {
		return fmt.Errorf("%w: latitude must be in [-90, 90]", ErrHotelInvalid)
	}
	if input.StarLevel != nil && (*input.StarLevel < 1 || *input.StarLevel > 5) {
		return fmt.Errorf("%w: starLevel must be in [1, 5]", ErrHotelInvalid)
	}
	if input.TotalRooms < 0 || input.AvailableRooms < 0 {
		return fmt.Errorf("%w: room counts must not be negative", ErrHotelInvalid)
	}
	return nil
}
