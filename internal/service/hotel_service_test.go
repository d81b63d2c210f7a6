package service

import (
	"errors"
	"testing"

	"github.com/stayhub/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupHotelTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.Hotel{}); err != nil {
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

func validHotelInput() HotelInput {
	return HotelInput{
		Name:          "云端客栈",
		Location:      "洱海西路 88 号",
		City:          "大理",
		PricePerNight: 388,
		TotalRooms:    20,
	}
}

func TestHotelServiceCreateAndList(t *testing.T) {
	cleanup := setupHotelTestDB(t)
	defer cleanup()

	svc := NewHotelService(db.DB)

	hotel, err := svc.Create(1, validHotelInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if hotel.Status != db.HotelStatusPending {
		t.Fatalf("expected pending status, got %s", hotel.Status)
	}
	if hotel.MerchantID != 1 {
		t.Fatalf("expected merchant ownership, got %d", hotel.MerchantID)
	}

	input := validHotelInput()
	input.Name = "山海民宿"
	input.City = "丽江"
	if _, err := svc.Create(2, input); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	byCity, err := svc.List(HotelFilter{City: "大理"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(byCity) != 1 || byCity[0].Name != "云端客栈" {
		t.Fatalf("unexpected city filter result: %d", len(byCity))
	}

	byKeyword, err := svc.List(HotelFilter{Keyword: "山海"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(byKeyword) != 1 || byKeyword[0].Name != "山海民宿" {
		t.Fatalf("unexpected keyword filter result: %d", len(byKeyword))
	}
}

func TestHotelServiceValidation(t *testing.T) {
	cleanup := setupHotelTestDB(t)
	defer cleanup()

	svc := NewHotelService(db.DB)

	bad := validHotelInput()
	bad.Name = "短"
	if _, err := svc.Create(1, bad); !errors.Is(err, ErrHotelInvalid) {
		t.Fatalf("expected ErrHotelInvalid for short name, got %v", err)
	}

	bad = validHotelInput()
	lng := 190.0
	bad.Longitude = &lng
	if _, err := svc.Create(1, bad); !errors.Is(err, ErrHotelInvalid) {
		t.Fatalf("expected ErrHotelInvalid for longitude, got %v", err)
	}

	bad = validHotelInput()
	bad.PricePerNight = -1
	if _, err := svc.Create(1, bad); !errors.Is(err, ErrHotelInvalid) {
		t.Fatalf("expected ErrHotelInvalid for negative price, got %v", err)
	}
}

func TestHotelServiceRoleGating(t *testing.T) {
	cleanup := setupHotelTestDB(t)
	defer cleanup()

	svc := NewHotelService(db.DB)

	hotel, err := svc.Create(1, validHotelInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// 其他商户不能改别人的酒店
	if _, err := svc.Update(2, db.RoleMerchant, hotel.ID, validHotelInput()); !errors.Is(err, ErrHotelForbidden) {
		t.Fatalf("expected ErrHotelForbidden, got %v", err)
	}

	// 管理员不受归属限制
	input := validHotelInput()
	input.Name = "云端客栈·洱海店"
	updated, err := svc.Update(99, db.RoleAdmin, hotel.ID, input)
	if err != nil {
		t.Fatalf("admin Update returned error: %v", err)
	}
	if updated.Name != "云端客栈·洱海店" {
		t.Fatalf("unexpected name: %s", updated.Name)
	}

	// 审核只有管理员能做
	if _, err := svc.SetStatus(db.RoleMerchant, hotel.ID, db.HotelStatusApproved); !errors.Is(err, ErrHotelForbidden) {
		t.Fatalf("expected ErrHotelForbidden for merchant status change, got %v", err)
	}
	approved, err := svc.SetStatus(db.RoleAdmin, hotel.ID, db.HotelStatusApproved)
	if err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}
	if approved.Status != db.HotelStatusApproved {
		t.Fatalf("expected approved, got %s", approved.Status)
	}
	if _, err := svc.SetStatus(db.RoleAdmin, hotel.ID, "closed"); !errors.Is(err, ErrHotelInvalid) {
		t.Fatalf("expected ErrHotelInvalid for unknown status, got %v", err)
	}

	if err := svc.Delete(2, db.RoleMerchant, hotel.ID); !errors.Is(err, ErrHotelForbidden) {
		t.Fatalf("expected ErrHotelForbidden on delete, got %v", err)
	}
	if err := svc.Delete(1, db.RoleMerchant, hotel.ID); err != nil {
		t.Fatalf("owner Delete returned error: %v", err)
	}
	if _, err := svc.Get(hotel.ID); !errors.Is(err, ErrHotelNotFound) {
		t.Fatalf("expected ErrHotelNotFound after delete, got %v", err)
	}
}

func TestHomeAdWorkflow(t *testing.T) {
	cleanup := setupHotelTestDB(t)
	defer cleanup()

	svc := NewHotelService(db.DB)

	hotel, err := svc.Create(1, validHotelInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// 非本人商户不能申请
	if _, err := svc.ApplyHomeAd(2, hotel.ID, true); !errors.Is(err, ErrHotelForbidden) {
		t.Fatalf("expected ErrHotelForbidden, got %v", err)
	}

	// 商户申请只进入待审，不直接投放
	applied, err := svc.ApplyHomeAd(1, hotel.ID, true)
	if err != nil {
		t.Fatalf("ApplyHomeAd returned error: %v", err)
	}
	if applied.AdStatus != db.AdStatusPending || applied.IsHomeAd {
		t.Fatalf("expected pending application without placement, got %+v", applied)
	}
	ads, err := svc.ListHomeAds()
	if err != nil {
		t.Fatalf("ListHomeAds returned error: %v", err)
	}
	if len(ads) != 0 {
		t.Fatalf("expected no ads before review, got %d", len(ads))
	}

	// 审核只有管理员能做
	if _, err := svc.ReviewHomeAd(db.RoleMerchant, hotel.ID, true); !errors.Is(err, ErrHotelForbidden) {
		t.Fatalf("expected ErrHotelForbidden for merchant review, got %v", err)
	}

	approved, err := svc.ReviewHomeAd(db.RoleAdmin, hotel.ID, true)
	if err != nil {
		t.Fatalf("ReviewHomeAd returned error: %v", err)
	}
	if approved.AdStatus != db.AdStatusApproved || !approved.IsHomeAd {
		t.Fatalf("expected approved placement, got %+v", approved)
	}
	ads, err = svc.ListHomeAds()
	if err != nil {
		t.Fatalf("ListHomeAds returned error: %v", err)
	}
	if len(ads) != 1 || ads[0].ID != hotel.ID {
		t.Fatalf("expected hotel in home ads, got %d", len(ads))
	}
	latest, err := svc.LatestHomeAd()
	if err != nil {
		t.Fatalf("LatestHomeAd returned error: %v", err)
	}
	if latest == nil || latest.ID != hotel.ID {
		t.Fatalf("expected latest home ad, got %+v", latest)
	}

	// 拒绝后撤下
	rejected, err := svc.ReviewHomeAd(db.RoleAdmin, hotel.ID, false)
	if err != nil {
		t.Fatalf("ReviewHomeAd returned error: %v", err)
	}
	if rejected.AdStatus != db.AdStatusRejected || rejected.IsHomeAd {
		t.Fatalf("expected rejected placement, got %+v", rejected)
	}
	latest, err = svc.LatestHomeAd()
	if err != nil {
		t.Fatalf("LatestHomeAd returned error: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected no home ad after rejection, got %+v", latest)
	}

	// 取消申请回到 none
	cancelled, err := svc.ApplyHomeAd(1, hotel.ID, false)
	if err != nil {
		t.Fatalf("ApplyHomeAd returned error: %v", err)
	}
	if cancelled.AdStatus != db.AdStatusNone || cancelled.IsHomeAd {
		t.Fatalf("expected cancelled application, got %+v", cancelled)
	}
}
