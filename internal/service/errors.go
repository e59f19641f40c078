package service

import "errors"

var (
	// ErrTenantRequired 请求没有租户身份
	ErrTenantRequired = errors.New("organization_id is required")
	// ErrRunInProgress 同一租户已有导入或计算在进行
	ErrRunInProgress = errors.New("another import or calculation is running for this organization")
	// ErrInvalidWorkbook 上传内容不是合法的工作簿
	ErrInvalidWorkbook = errors.New("invalid workbook")
	// ErrInvalidInput 参数校验失败
	ErrInvalidInput = errors.New("invalid input")
)
