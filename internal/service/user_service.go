package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stayhub/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound 在指定用户不存在时返回
	ErrUserNotFound = errors.New("user not found")
	// ErrUserInvalid 在注册/更新字段校验失败时返回
	ErrUserInvalid = errors.New("invalid user input")
	// ErrUsernameTaken 在用户名已被占用时返回
	ErrUsernameTaken = errors.New("username already exists")
	// ErrWrongCredentials 在用户名或密码不匹配时返回
	ErrWrongCredentials = errors.New("incorrect username or password")
)

// UserService 负责账号注册、登录校验和资料维护
type UserService struct {
	db *gorm.DB
}

// RegisterInput 定义注册字段，Role 为空时默认普通用户
type RegisterInput struct {
	Username string
	Password string
	Role     string
	Phone    string
	Nickname string
}

// ProfileInput 定义资料更新字段
type ProfileInput struct {
	Nickname string
	Phone    string
	Avatar   string
}

// NewUserService 构造 UserService
func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb}
}

// Register 创建账号，密码以 bcrypt 散列存储
func (s *UserService) Register(input RegisterInput) (*db.User, error) {
	username := strings.TrimSpace(input.Username)
	if len(username) < 3 || len(username) > 50 {
		return nil, fmt.Errorf("%w: username must be 3-50 characters", ErrUserInvalid)
	}
	if len(input.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrUserInvalid)
	}

	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = db.RoleUser
	}
	switch role {
	case db.RoleAdmin, db.RoleMerchant, db.RoleUser:
	default:
		return nil, fmt.Errorf("%w: role must be admin, merchant or user", ErrUserInvalid)
	}

	var count int64
	if err := s.db.Model(&db.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := db.User{
		Username: username,
		Password: string(hashed),
		Role:     role,
		Phone:    strings.TrimSpace(input.Phone),
		Nickname: strings.TrimSpace(input.Nickname),
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Authenticate 校验用户名密码
func (s *UserService) Authenticate(username, password string) (*db.User, error) {
	var user db.User
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWrongCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrWrongCredentials
	}
	return &user, nil
}

// Get 根据 ID 获取用户
func (s *UserService) Get(id uint) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// UpdateProfile 更新昵称、电话和头像
func (s *UserService) UpdateProfile(id uint, input ProfileInput) (*db.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	user.Nickname = strings.TrimSpace(input.Nickname)
	user.Phone = strings.TrimSpace(input.Phone)
	user.Avatar = strings.TrimSpace(input.Avatar)

	if err := s.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}
