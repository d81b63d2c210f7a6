package db

import "gorm.io/gorm"

// 用户角色：admin 平台管理员，merchant 商户，user 普通客人。
const (
	RoleAdmin    = "admin"
	RoleMerchant = "merchant"
	RoleUser     = "user"
)

// User 定义了平台账号模型
// Password 存储 bcrypt 散列，WechatOpenID 供小程序登录绑定
type User struct {
	gorm.Model
	Username     string `gorm:"size:50;uniqueIndex;not null"`
	Password     string `gorm:"size:255;not null"`
	Role         string `gorm:"size:20;not null;default:user"`
	Phone        string `gorm:"size:20"`
	Avatar       string `gorm:"size:500"`
	Nickname     string `gorm:"size:100"`
	WechatOpenID string `gorm:"size:128;index"`
}
