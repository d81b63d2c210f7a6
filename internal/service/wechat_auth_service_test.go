package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stayhub/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupWechatTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}); err != nil {
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

type wechatStubDoer struct {
	body     string
	requests []string
}

func (s *wechatStubDoer) Do(req *http.Request) (*http.Response, error) {
	s.requests = append(s.requests, req.URL.String())
	return &http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(strings.NewReader(s.body)),
		Header:     make(http.Header),
	}, nil
}

func newWechatServiceWithOpenID(openid string) (*WechatAuthService, *wechatStubDoer) {
	svc := NewWechatAuthService(db.DB, "wx-app", "wx-secret")
	doer := &wechatStubDoer{body: fmt.Sprintf(`{"openid": %q}`, openid)}
	svc.SetHTTPClient(doer)
	return svc, doer
}

func TestWechatLoginCreatesUser(t *testing.T) {
	cleanup := setupWechatTestDB(t)
	defer cleanup()

	svc, doer := newWechatServiceWithOpenID("oABCDEFGH1234567890")

	user, err := svc.Login(context.Background(), "login-code", "张三", "http://a/avatar.png")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.WechatOpenID != "oABCDEFGH1234567890" {
		t.Fatalf("expected openid recorded, got %q", user.WechatOpenID)
	}
	if user.Role != db.RoleUser {
		t.Fatalf("expected user role, got %q", user.Role)
	}
	if !strings.HasPrefix(user.Username, "wx_") {
		t.Fatalf("expected wx_ username, got %q", user.Username)
	}
	if user.Nickname != "张三" {
		t.Fatalf("expected nickname recorded, got %q", user.Nickname)
	}
	if user.Password == "" {
		t.Fatal("expected hashed random password")
	}

	if len(doer.requests) != 1 || !strings.Contains(doer.requests[0], "js_code=login-code") {
		t.Fatalf("unexpected code2session request: %v", doer.requests)
	}

	// 同一 openid 再次登录复用账号
	again, err := svc.Login(context.Background(), "login-code", "", "")
	if err != nil {
		t.Fatalf("repeat Login returned error: %v", err)
	}
	if again.ID != user.ID {
		t.Fatalf("expected same account, got %d and %d", user.ID, again.ID)
	}

	var count int64
	if err := db.DB.Model(&db.User{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 user, got %d", count)
	}
}

func TestWechatUsernameCollisionGetsSuffix(t *testing.T) {
	cleanup := setupWechatTestDB(t)
	defer cleanup()

	if err := db.DB.Create(&db.User{Username: "wx_1234567890", Password: "x", Role: db.RoleUser}).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	svc, _ := newWechatServiceWithOpenID("oXYZ1234567890")

	user, err := svc.Login(context.Background(), "login-code", "", "")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.Username != "wx_12345678901" {
		t.Fatalf("expected suffixed username, got %q", user.Username)
	}
}

func TestWechatLoginFailures(t *testing.T) {
	cleanup := setupWechatTestDB(t)
	defer cleanup()

	svc := NewWechatAuthService(db.DB, "wx-app", "wx-secret")

	if _, err := svc.Login(context.Background(), "", "", ""); !errors.Is(err, ErrUserInvalid) {
		t.Fatalf("expected ErrUserInvalid for empty code, got %v", err)
	}

	svc.SetHTTPClient(&wechatStubDoer{body: `{"errcode": 40029, "errmsg": "invalid code"}`})
	if _, err := svc.Login(context.Background(), "bad-code", "", ""); !errors.Is(err, ErrWechatUnavailable) {
		t.Fatalf("expected ErrWechatUnavailable, got %v", err)
	}

	svc.SetHTTPClient(&wechatStubDoer{body: `not json`})
	if _, err := svc.Login(context.Background(), "bad-code", "", ""); !errors.Is(err, ErrWechatUnavailable) {
		t.Fatalf("expected ErrWechatUnavailable for bad JSON, got %v", err)
	}
}

func TestWechatDevMockWithoutSecret(t *testing.T) {
	cleanup := setupWechatTestDB(t)
	defer cleanup()

	// 未配置 appid/secret 时不发请求，走本地 mock openid
	svc := NewWechatAuthService(db.DB, "", "")

	user, err := svc.Login(context.Background(), "dev-code", "", "")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.WechatOpenID != "dev_openid_dev-code" {
		t.Fatalf("expected dev mock openid, got %q", user.WechatOpenID)
	}
}

func TestWechatBind(t *testing.T) {
	cleanup := setupWechatTestDB(t)
	defer cleanup()

	account := db.User{Username: "zhangsan", Password: "x", Role: db.RoleUser}
	other := db.User{Username: "lisi", Password: "x", Role: db.RoleUser, WechatOpenID: "oTAKEN1234567890"}
	if err := db.DB.Create(&account).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	if err := db.DB.Create(&other).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	// 目标微信已绑定其他账号
	svc, _ := newWechatServiceWithOpenID("oTAKEN1234567890")
	if _, err := svc.Bind(context.Background(), account.ID, "bind-code"); !errors.Is(err, ErrWechatTaken) {
		t.Fatalf("expected ErrWechatTaken, got %v", err)
	}

	svc, _ = newWechatServiceWithOpenID("oFRESH1234567890")
	bound, err := svc.Bind(context.Background(), account.ID, "bind-code")
	if err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}
	if bound.WechatOpenID != "oFRESH1234567890" {
		t.Fatalf("expected openid bound, got %q", bound.WechatOpenID)
	}

	// 重复绑定自己的微信是幂等的
	if _, err := svc.Bind(context.Background(), account.ID, "bind-code"); err != nil {
		t.Fatalf("rebinding own wechat returned error: %v", err)
	}

	// 该微信已归属 account，其他用户无法再绑
	if _, err := svc.Bind(context.Background(), 9999, "bind-code"); !errors.Is(err, ErrWechatTaken) {
		t.Fatalf("expected ErrWechatTaken, got %v", err)
	}

	svc, _ = newWechatServiceWithOpenID("oNOUSER1234567890")
	if _, err := svc.Bind(context.Background(), 9999, "bind-code"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
