package service

import (
	"github.com/byliew07/CheckMeIN/internal/dto"
	"github.com/byliew07/CheckMeIN/internal/export"
	"github.com/byliew07/CheckMeIN/internal/model"
)

// ToUserResponse 转换为对外的用户信息（不含密码）
func ToUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		Username:    u.Username,
		Role:        string(u.Role),
		DisplayName: u.DisplayName,
		Label:       u.Label(),
	}
}

// ToClassResponse 转换为对外的班级信息
func ToClassResponse(c *model.Class) dto.ClassResponse {
	return dto.ClassResponse{ClassName: c.ClassName, LecturerUsername: c.LecturerUsername}
}

// ToExportResponse 转换导出结果
func ToExportResponse(r *export.Result) dto.ExportResponse {
	resp := dto.ExportResponse{Path: r.Path, Format: string(r.Format)}
	if r.Fallback != nil {
		resp.Fallback = r.Fallback.Error()
	}
	return resp
}
