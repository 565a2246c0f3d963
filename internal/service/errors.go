package service

import (
	"errors"
	"fmt"

	pkgerrors "github.com/byliew07/CheckMeIN/pkg/errors"
)

// BizError 业务规则失败：Message 直接展示给调用方，Kind 为 pkg/errors 中的分类哨兵
type BizError struct {
	Kind    error
	Message string
}

func (e *BizError) Error() string { return e.Message }

// Unwrap 使 errors.Is(err, pkgerrors.ErrXxx) 可用于分类
func (e *BizError) Unwrap() error { return e.Kind }

func bizErr(kind error, format string, args ...any) *BizError {
	return &BizError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// 展示给调用方的固定消息
const (
	MsgUsernameExists   = "Username exists"
	MsgUserAdded        = "User added"
	MsgClassExists      = "Class exists"
	MsgClassAdded       = "Class added"
	MsgAlreadyMarked    = "Already marked"
	MsgMarked           = "Marked"
	MsgDisplayNameSet   = "Display name updated"
	MsgNoClassRecords   = "No records for this class"
	MsgNoStudentRecords = "No records for this student"
	MsgNoRecords        = "No records"
	MsgNoRecentData     = "No recent data"
	MsgCheckInBusy      = "Check-in in progress, try again"
)

// ErrInvalidCredentials 用户名或密码错误
var ErrInvalidCredentials = &BizError{Kind: pkgerrors.ErrNotFound, Message: "Invalid username or password."}

// Outcome 把 (结果, 错误) 转换为 (成功与否, 消息)
// 业务失败返回其消息；其他错误返回错误文本
func Outcome(msg string, err error) (bool, string) {
	if err == nil {
		return true, msg
	}
	var be *BizError
	if errors.As(err, &be) {
		return false, be.Message
	}
	return false, err.Error()
}

// IsBizError 是否为业务规则失败（非存储故障）
func IsBizError(err error) bool {
	var be *BizError
	return errors.As(err, &be)
}
