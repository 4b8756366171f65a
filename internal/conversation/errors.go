package conversation

import (
	"AvisoBot/pkg/errors"
)

// 会话错误码，千位数前三位对应 HTTP 状态
const (
	CodeInvalidSelection = 4001
	CodeEmptyInput       = 4002
	CodeNoActiveSession  = 4041
	CodeStoreFailure     = 5001
	CodeDispatchFailure  = 5021
)

// 哨兵错误，配合 errors.Is 按错误码比较
var (
	ErrInvalidSelection = errors.WithCode(CodeInvalidSelection, "selection does not apply to the current step")
	ErrEmptyInput       = errors.WithCode(CodeEmptyInput, "answer must not be empty")
	ErrNoActiveSession  = errors.WithCode(CodeNoActiveSession, "no report in progress")
	ErrStoreFailure     = errors.WithCode(CodeStoreFailure, "session store unavailable")
	ErrDispatchFailure  = errors.WithCode(CodeDispatchFailure, "report could not be delivered")
)

// outcome 事件处理结果的指标标签
func outcome(err error) string {
	switch errors.GetCode(err) {
	case 0:
		if err != nil {
			return "error"
		}
		return "accepted"
	case CodeInvalidSelection:
		return "invalid_selection"
	case CodeEmptyInput:
		return "empty_input"
	case CodeNoActiveSession:
		return "no_active_session"
	case CodeStoreFailure:
		return "store_failure"
	case CodeDispatchFailure:
		return "dispatch_failure"
	}
	return "error"
}
