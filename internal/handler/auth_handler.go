package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/stayhub/internal/db"
	"github.com/stayhub/internal/middleware"
	"github.com/stayhub/internal/service"
)

type registerPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Nickname string `json:"nickname"`
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type profilePayload struct {
	Nickname string `json:"nickname"`
	Phone    string `json:"phone"`
	Avatar   string `json:"avatar"`
}

type wechatLoginPayload struct {
	Code      string `json:"code"`
	LoginCode string `json:"loginCode"`
	Nickname  string `json:"nickname"`
	Avatar    string `json:"avatar"`
}

type wechatBindPayload struct {
	Code string `json:"code"`
}

func userToJSON(user *db.User) gin.H {
	return gin.H{
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
		"phone":    user.Phone,
		"avatar":   user.Avatar,
		"nickname": user.Nickname,
	}
}

// Register 注册账号
func (a *API) Register(c *gin.Context) {
	var payload registerPayload
	if !bindJSON(c, &payload, "请求体格式错误") {
		return
	}

	user, err := a.users.Register(service.RegisterInput{
		Username: payload.Username,
		Password: payload.Password,
		Role:     payload.Role,
		Phone:    payload.Phone,
		Nickname: payload.Nickname,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "注册成功", userToJSON(user))
}

// Login 登录并签发 token
func (a *API) Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload, "请求体格式错误") {
		return
	}

	user, err := a.users.Authenticate(payload.Username, payload.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "登录成功", gin.H{"token": token, "user": userToJSON(user)})
}

// WechatLogin 小程序微信登录，openid 未注册时自动建号
// loginCode 与 code 等价，兼容旧版小程序字段
func (a *API) WechatLogin(c *gin.Context) {
	var payload wechatLoginPayload
	if !bindJSON(c, &payload, "请求体格式错误") {
		return
	}

	code := payload.LoginCode
	if code == "" {
		code = payload.Code
	}

	user, err := a.wechat.Login(c.Request.Context(), code, payload.Nickname, payload.Avatar)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "微信登录成功", gin.H{"token": token, "user": userToJSON(user)})
}

// WechatBind 把当前账号绑定到微信
func (a *API) WechatBind(c *gin.Context) {
	var payload wechatBindPayload
	if !bindJSON(c, &payload, "请求体格式错误") {
		return
	}

	user, err := a.wechat.Bind(c.Request.Context(), middleware.CurrentUserID(c), payload.Code)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "微信绑定成功", userToJSON(user))
}

// Profile 返回当前登录用户资料
func (a *API) Profile(c *gin.Context) {
	user, err := a.users.Get(middleware.CurrentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "获取成功", userToJSON(user))
}

// UpdateProfile 更新当前登录用户资料
func (a *API) UpdateProfile(c *gin.Context) {
	var payload profilePayload
	if !bindJSON(c, &payload, "请求体格式错误") {
		return
	}

	user, err := a.users.UpdateProfile(middleware.CurrentUserID(c), service.ProfileInput{
		Nickname: payload.Nickname,
		Phone:    payload.Phone,
		Avatar:   payload.Avatar,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "更新成功", userToJSON(user))
}
