package handler

import (
	"github.com/stayhub/internal/config"
	"github.com/stayhub/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db              *gorm.DB
	users           *service.UserService
	hotels          *service.HotelService
	bookings        *service.BookingService
	holidays        *service.HolidayRuleService
	pricing         *service.HolidayPricingService
	sync            *service.HolidaySyncService
	stats           *service.StatisticsService
	maps            *service.MapClient
	wechat          *service.WechatAuthService
	defaultDiscount float64
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, cfg config.AppConfig) *API {
	defaultDiscount := cfg.HolidayDefaultDiscountRate
	if defaultDiscount <= 0 || defaultDiscount > 1 {
		defaultDiscount = service.DefaultHolidayDiscountRate
	}

	return &API{
		db:              gdb,
		users:           service.NewUserService(gdb),
		hotels:          service.NewHotelService(gdb),
		bookings:        service.NewBookingService(gdb),
		holidays:        service.NewHolidayRuleService(gdb),
		pricing:         service.NewHolidayPricingService(gdb),
		sync:            service.NewHolidaySyncService(gdb, cfg.HolidaySyncURLTemplate),
		stats:           service.NewStatisticsService(gdb),
		maps:            service.NewMapClient(cfg.TencentMapKey, cfg.BaiduMapAK),
		wechat:          service.NewWechatAuthService(gdb, cfg.WechatAppID, cfg.WechatSecret),
		defaultDiscount: defaultDiscount,
	}
}

// DB exposes the underlying gorm instance for legacy paths.
func (a *API) DB() *gorm.DB {
	return a.db
}

// SyncService exposes the holiday sync service for test injection.
func (a *API) SyncService() *service.HolidaySyncService {
	return a.sync
}

// MapClient exposes the map proxy client for test injection.
func (a *API) MapClient() *service.MapClient {
	return a.maps
}

// WechatService exposes the wechat auth service for test injection.
func (a *API) WechatService() *service.WechatAuthService {
	return a.wechat
}
