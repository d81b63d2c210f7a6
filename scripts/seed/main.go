package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/stayhub/internal/config"
	"github.com/stayhub/internal/db"
	"golang.org/x/crypto/bcrypt"
)

// 本地开发用的测试数据生成器
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")

	createTestUsers()
	createTestHotels()
	createTestHolidayRules(cfg.HolidayDefaultDiscountRate)

	fmt.Println("测试数据生成完成！")
	fmt.Println("账号: admin / admin123, merchant1 / merchant123, testuser / user123")
}

// 创建测试账号
func createTestUsers() {
	var count int64
	db.DB.Model(&db.User{}).Count(&count)
	if count > 0 {
		fmt.Println("用户已存在，跳过创建")
		return
	}

	users := []struct {
		username string
		password string
		role     string
		nickname string
	}{
		{"admin", "admin123", db.RoleAdmin, "平台管理员"},
		{"merchant1", "merchant123", db.RoleMerchant, "云端客栈掌柜"},
		{"testuser", "user123", db.RoleUser, "张三"},
	}

	for _, u := range users {
		hashed, _ := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		db.DB.Create(&db.User{
			Username: u.username,
			Password: string(hashed),
			Role:     u.role,
			Nickname: u.nickname,
		})
	}

	fmt.Println("✅ 测试用户创建完成")
}

// 创建测试酒店
func createTestHotels() {
	var count int64
	db.DB.Model(&db.Hotel{}).Count(&count)
	if count > 0 {
		fmt.Println("酒店已存在，跳过创建")
		return
	}

	var merchant db.User
	if err := db.DB.Where("role = ?", db.RoleMerchant).First(&merchant).Error; err != nil {
		log.Printf("未找到商户账号，跳过酒店创建: %v", err)
		return
	}

	hotels := []db.Hotel{
		{
			Name:          "云端客栈",
			Description:   "洱海边的白族小院，步行两分钟到湖边。",
			Location:      "洱海西路 88 号",
			City:          "大理",
			PricePerNight: 388,
			TotalRooms:    20,
			Status:        db.HotelStatusApproved,
			IsHomeAd:      true,
			AdStatus:      db.AdStatusApproved,
			MerchantID:    merchant.ID,
		},
		{
			Name:          "山海民宿",
			Description:   "古城南门旁的纳西庭院。",
			Location:      "七一街 12 号",
			City:          "丽江",
			PricePerNight: 268,
			TotalRooms:    12,
			Status:        db.HotelStatusApproved,
			MerchantID:    merchant.ID,
		},
	}
	for i := range hotels {
		db.DB.Create(&hotels[i])
	}

	fmt.Println("✅ 测试酒店创建完成")
}

// 创建测试节假日规则
func createTestHolidayRules(discountRate float64) {
	var count int64
	db.DB.Model(&db.HolidayRule{}).Count(&count)
	if count > 0 {
		fmt.Println("节假日规则已存在，跳过创建")
		return
	}

	if discountRate <= 0 || discountRate > 1 {
		discountRate = 0.9
	}

	rules := []db.HolidayRule{
		{
			Name:         "国庆节",
			HolidayType:  db.HolidayTypeOfficial,
			StartDate:    "2026-10-01",
			EndDate:      "2026-10-07",
			DiscountRate: discountRate,
			IsActive:     true,
			Source:       "manual",
		},
		{
			Name:         "元旦",
			HolidayType:  db.HolidayTypeOfficial,
			StartDate:    "2026-01-01",
			EndDate:      "2026-01-03",
			DiscountRate: discountRate,
			IsActive:     true,
			Source:       "manual",
		},
		{
			Name:         "淡季促销",
			HolidayType:  db.HolidayTypeCampaign,
			StartDate:    "2026-03-01",
			EndDate:      "2026-03-31",
			DiscountRate: 0.8,
			IsActive:     true,
			Source:       "manual",
			Notes:        "春季淡季引流活动",
		},
	}
	for i := range rules {
		db.DB.Create(&rules[i])
	}

	fmt.Println("✅ 节假日规则创建完成")
}
