package service

import (
	"testing"

	"github.com/stayhub/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupCacheTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.HolidayRule{}); err != nil {
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

func TestHolidayRuleCacheRefreshAndLookup(t *testing.T) {
	cleanup := setupCacheTestDB(t)
	defer cleanup()

	ruleSvc := NewHolidayRuleService(db.DB)
	if _, err := ruleSvc.Create(HolidayRuleInput{
		Name: "国庆节", HolidayType: db.HolidayTypeOfficial,
		StartDate: "2025-10-01", EndDate: "2025-10-07",
		DiscountRate: 0.9, IsActive: true,
	}); err != nil {
		t.Fatalf("failed to seed rule: %v", err)
	}
	if _, err := ruleSvc.Create(HolidayRuleInput{
		Name: "秋季大促", HolidayType: db.HolidayTypeCampaign,
		StartDate: "2025-10-01", EndDate: "2025-10-03",
		DiscountRate: 0.8, IsActive: true,
	}); err != nil {
		t.Fatalf("failed to seed rule: %v", err)
	}

	cache := NewHolidayRuleCache(ruleSvc)

	// 未加载前查询返回空
	if rule := cache.RuleForDate("2025-10-01"); rule != nil {
		t.Fatalf("expected nil before refresh, got %s", rule.Name)
	}
	if cache.Loaded() {
		t.Fatal("expected cache not loaded before refresh")
	}

	if err := cache.Refresh(nil); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if !cache.Loaded() {
		t.Fatal("expected cache loaded after refresh")
	}

	// 与定价引擎同口径：最低折扣优先
	rule := cache.RuleForDate("2025-10-02")
	if rule == nil || rule.Name != "秋季大促" {
		t.Fatalf("expected cheapest rule from cache, got %+v", rule)
	}
	if name := cache.HolidayNameForDate("2025-10-05"); name != "国庆节" {
		t.Fatalf("expected 国庆节 on 10-05, got %q", name)
	}
	if name := cache.HolidayNameForDate("2025-10-08"); name != "" {
		t.Fatalf("expected no holiday on 10-08, got %q", name)
	}

	// 返回副本，调用方修改不影响快照
	rule.Name = "改名"
	if again := cache.RuleForDate("2025-10-02"); again.Name != "秋季大促" {
		t.Fatalf("expected snapshot isolation, got %q", again.Name)
	}

	cache.Invalidate()
	if cache.Loaded() {
		t.Fatal("expected cache unloaded after invalidate")
	}
	if rule := cache.RuleForDate("2025-10-01"); rule != nil {
		t.Fatalf("expected nil after invalidate, got %s", rule.Name)
	}
}

func TestHolidayRuleCacheScopedRefresh(t *testing.T) {
	cleanup := setupCacheTestDB(t)
	defer cleanup()

	ruleSvc := NewHolidayRuleService(db.DB)
	if _, err := ruleSvc.Create(HolidayRuleInput{
		Name: "元旦", StartDate: "2025-01-01", DiscountRate: 0.95, IsActive: true,
	}); err != nil {
		t.Fatalf("failed to seed rule: %v", err)
	}
	if _, err := ruleSvc.Create(HolidayRuleInput{
		Name: "国庆节", StartDate: "2025-10-01", EndDate: "2025-10-07", DiscountRate: 0.9, IsActive: true,
	}); err != nil {
		t.Fatalf("failed to seed rule: %v", err)
	}

	cache := NewHolidayRuleCache(ruleSvc)
	if err := cache.Refresh(&DateRange{Start: "2025-09-01", End: "2025-10-31"}); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}

	if name := cache.HolidayNameForDate("2025-10-01"); name != "国庆节" {
		t.Fatalf("expected 国庆节 in scoped cache, got %q", name)
	}
	// 区间外的规则没有进入快照
	if name := cache.HolidayNameForDate("2025-01-01"); name != "" {
		t.Fatalf("expected 元旦 outside scoped cache, got %q", name)
	}
}
