package domain

import "errors"

// 核心错误类别，edge 层负责翻译成 HTTP 状态码
var (
	// ErrNotFound 引用的实体不存在（HTTP 404）
	ErrNotFound = errors.New("not found")

	// ErrValidation 请求体不满足数据模型不变式（HTTP 400）
	ErrValidation = errors.New("validation failed")

	// ErrAlreadyRecorded 同一 (reminder, local day) 已有完成记录（HTTP 409）
	ErrAlreadyRecorded = errors.New("completion already recorded for this occurrence")
)
