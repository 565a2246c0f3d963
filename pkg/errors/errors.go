package errors

import "errors"

// ── 业务错误分类 ──
//
// Service 层的业务错误（BizError）均可通过 errors.Is 归类到以下哨兵错误之一。
// 导出格式降级（xlsx → csv）不属于错误，记录在导出结果中。

var (
	// ErrDuplicateKey 主键冲突：用户名、班级名或当天签到已存在
	ErrDuplicateKey = errors.New("记录已存在")
	// ErrNotFound 删除或更新的目标不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrNoData 导出或绘图时没有可用数据
	ErrNoData = errors.New("没有可用数据")
	// ErrStorageUnavailable 底层存储不可读写
	ErrStorageUnavailable = errors.New("存储不可用")
	// ErrParse 存储内容格式错误（缺少必需列或字段）
	ErrParse = errors.New("存储数据解析失败")
	// ErrInvalidArgument 调用参数不合法
	ErrInvalidArgument = errors.New("参数不合法")
)
