package usecase

import "errors"

// 機械可読なエラー種別。JSONのcodeにそのまま出す。
const (
	CodeUnauthorized         = "unauthorized"
	CodeValidation           = "validation_error"
	CodeItemNotFound         = "item_not_found"
	CodeOrderNotFound        = "order_not_found"
	CodePaymentNotFound      = "payment_not_found"
	CodeDuplicateTransaction = "duplicate_transaction"
	CodeIllegalTransition    = "illegal_transition"
	CodeForbidden            = "forbidden"
	CodeServiceUnavailable   = "service_unavailable"
	CodeStorageFailure       = "storage_failure"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

func NewHTTPError(status int, code string, message string) error {
	return &HTTPError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
