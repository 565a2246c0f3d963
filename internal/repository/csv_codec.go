package repository

import (
	"fmt"

	"github.com/byliew07/CheckMeIN/internal/model"
	"github.com/byliew07/CheckMeIN/pkg/csvtable"
	pkgerrors "github.com/byliew07/CheckMeIN/pkg/errors"
)

// ── CSV 行 ↔ 模型 编解码 ──
//
// 加载时校验必需列与必需字段，格式错误统一返回 pkgerrors.ErrParse。

var (
	userHeader       = []string{"username", "password", "role"}
	classHeader      = []string{"class_name", "lecturer_username"}
	attendanceHeader = []string{"date", "class_name", "student_username", "status", "time_in"}
)

const colDisplayName = "display_name"

// 首次创建用户表时写入的内置管理员
var seedAdmin = csvtable.Row{"username": "admin", "password": "admin123", "role": string(model.RoleAdmin)}

func requireColumns(table string, header []string, required ...string) error {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	for _, col := range required {
		if !have[col] {
			return fmt.Errorf("%w: %s 缺少列 %q", pkgerrors.ErrParse, table, col)
		}
	}
	return nil
}

// 数据行号从 2 开始（第 1 行为表头）
func rowErr(table string, idx int, format string, args ...any) error {
	return fmt.Errorf("%w: %s 第 %d 行: %s", pkgerrors.ErrParse, table, idx+2, fmt.Sprintf(format, args...))
}

func decodeUser(table string, idx int, r csvtable.Row) (model.User, error) {
	u := model.User{
		Username: r["username"],
		Password: r["password"],
		Role:     model.Role(r["role"]),
	}
	if u.Username == "" {
		return u, rowErr(table, idx, "username 为空")
	}
	if !u.Role.Valid() {
		return u, rowErr(table, idx, "未知角色 %q", r["role"])
	}
	if name := r[colDisplayName]; name != "" {
		u.DisplayName = &name
	}
	return u, nil
}

func encodeUser(u *model.User) csvtable.Row {
	row := csvtable.Row{
		"username": u.Username,
		"password": u.Password,
		"role":     string(u.Role),
	}
	if u.DisplayName != nil {
		row[colDisplayName] = *u.DisplayName
	}
	return row
}

func decodeClass(table string, idx int, r csvtable.Row) (model.Class, error) {
	c := model.Class{ClassName: r["class_name"], LecturerUsername: r["lecturer_username"]}
	if c.ClassName == "" {
		return c, rowErr(table, idx, "class_name 为空")
	}
	return c, nil
}

func encodeClass(c *model.Class) csvtable.Row {
	return csvtable.Row{"class_name": c.ClassName, "lecturer_username": c.LecturerUsername}
}

// decodeRecord 日期格式与状态不在此校验：无法解析的日期在排序时视为最早，缺失状态按 Absent 统计
func decodeRecord(table string, idx int, r csvtable.Row) (model.AttendanceRecord, error) {
	rec := model.AttendanceRecord{
		Date:            r["date"],
		ClassName:       r["class_name"],
		StudentUsername: r["student_username"],
		Status:          model.Status(r["status"]),
		TimeIn:          r["time_in"],
	}
	if rec.ClassName == "" {
		return rec, rowErr(table, idx, "class_name 为空")
	}
	if rec.StudentUsername == "" {
		return rec, rowErr(table, idx, "student_username 为空")
	}
	return rec, nil
}

func encodeRecord(rec *model.AttendanceRecord) csvtable.Row {
	return csvtable.Row{
		"date":             rec.Date,
		"class_name":       rec.ClassName,
		"student_username": rec.StudentUsername,
		"status":           string(rec.Status),
		"time_in":          rec.TimeIn,
	}
}
