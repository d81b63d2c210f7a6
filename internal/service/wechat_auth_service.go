package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stayhub/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrWechatUnavailable 在微信登录凭证换取失败时返回
	ErrWechatUnavailable = errors.New("wechat session service unavailable")
	// ErrWechatTaken 在目标微信已绑定其他账号时返回
	ErrWechatTaken = errors.New("wechat account already bound")
)

const (
	defaultWechatSessionURL = "https://api.weixin.qq.com/sns/jscode2session"
	wechatAuthTimeout       = 8 * time.Second
)

// WechatAuthService 负责小程序微信登录和账号绑定
// 未配置 appid/secret 时使用本地 mock openid，方便开发环境联调
type WechatAuthService struct {
	db         *gorm.DB
	http       httpDoer
	appID      string
	secret     string
	sessionURL string
}

type wechatSession struct {
	OpenID  string `json:"openid"`
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// NewWechatAuthService 构造 WechatAuthService
func NewWechatAuthService(gdb *gorm.DB, appID, secret string) *WechatAuthService {
	return &WechatAuthService{
		db:         gdb,
		http:       &http.Client{Timeout: wechatAuthTimeout},
		appID:      strings.TrimSpace(appID),
		secret:     strings.TrimSpace(secret),
		sessionURL: defaultWechatSessionURL,
	}
}

// SetHTTPClient 替换底层 HTTP 客户端，便于测试注入
func (s *WechatAuthService) SetHTTPClient(client httpDoer) {
	if client == nil {
		s.http = &http.Client{Timeout: wechatAuthTimeout}
		return
	}
	s.http = client
}

// SetSessionURL 替换 code2session 地址，便于测试注入
func (s *WechatAuthService) SetSessionURL(sessionURL string) {
	if strings.TrimSpace(sessionURL) == "" {
		s.sessionURL = defaultWechatSessionURL
		return
	}
	s.sessionURL = sessionURL
}

// Login 用小程序登录 code 换取 openid 并登录
// openid 未注册时自动创建 wx_ 前缀的普通用户账号
func (s *WechatAuthService) Login(ctx context.Context, code, nickname, avatar string) (*db.User, error) {
	openid, err := s.session(ctx, code)
	if err != nil {
		return nil, err
	}

	var user db.User
	err = s.db.Where("wechat_open_id = ?", openid).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.createWechatUser(openid, nickname, avatar)
	}
	if err != nil {
		return nil, fmt.Errorf("find wechat user: %w", err)
	}

	changed := false
	if nickname != "" && nickname != user.Nickname {
		user.Nickname = nickname
		changed = true
	}
	if avatar != "" && avatar != user.Avatar {
		user.Avatar = avatar
		changed = true
	}
	if changed {
		if err := s.db.Save(&user).Error; err != nil {
			return nil, fmt.Errorf("update wechat user: %w", err)
		}
	}
	return &user, nil
}

// Bind 把当前账号绑定到 code 对应的微信
func (s *WechatAuthService) Bind(ctx context.Context, userID uint, code string) (*db.User, error) {
	openid, err := s.session(ctx, code)
	if err != nil {
		return nil, err
	}

	var occupied db.User
	err = s.db.Where("wechat_open_id = ?", openid).First(&occupied).Error
	if err == nil && occupied.ID != userID {
		return nil, ErrWechatTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find wechat binding: %w", err)
	}

	var user db.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	user.WechatOpenID = openid
	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("bind wechat: %w", err)
	}
	return &user, nil
}

// session 调 code2session 换取 openid
func (s *WechatAuthService) session(ctx context.Context, code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("%w: wechat login code is required", ErrUserInvalid)
	}

	if s.appID == "" || s.secret == "" {
		mock := code
		if len(mock) > 24 {
			mock = mock[:24]
		}
		log.Println("wechat appid/secret not configured, using dev mock openid")
		return "dev_openid_" + mock, nil
	}

	query := url.Values{}
	query.Set("appid", s.appID)
	query.Set("secret", s.secret)
	query.Set("js_code", code)
	query.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.sessionURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWechatUnavailable, err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWechatUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWechatUnavailable, err)
	}

	var session wechatSession
	if err := json.Unmarshal(body, &session); err != nil {
		return "", fmt.Errorf("%w: invalid code2session response", ErrWechatUnavailable)
	}
	if session.ErrCode != 0 || session.OpenID == "" {
		return "", fmt.Errorf("%w: code2session failed (%d %s)", ErrWechatUnavailable, session.ErrCode, session.ErrMsg)
	}
	return session.OpenID, nil
}

// createWechatUser 为新 openid 创建随机密码的普通用户
func (s *WechatAuthService) createWechatUser(openid, nickname, avatar string) (*db.User, error) {
	username, err := s.uniqueWechatUsername(openid)
	if err != nil {
		return nil, err
	}

	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(raw)), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := db.User{
		Username:     username,
		Password:     string(hashed),
		Role:         db.RoleUser,
		Nickname:     nickname,
		Avatar:       avatar,
		WechatOpenID: openid,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create wechat user: %w", err)
	}
	return &user, nil
}

// uniqueWechatUsername 以 openid 尾部生成 wx_ 用户名，冲突时追加数字后缀
func (s *WechatAuthService) uniqueWechatUsername(openid string) (string, error) {
	tail := openid
	if len(tail) > 10 {
		tail = tail[len(tail)-10:]
	}
	base := "wx_" + tail

	username := base
	for suffix := 1; ; suffix++ {
		var count int64
		if err := s.db.Model(&db.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return "", fmt.Errorf("check username: %w", err)
		}
		if count == 0 {
			return username, nil
		}
		username = fmt.Sprintf("%s%d", base, suffix)
	}
}
