package borrow

import "errors"

// error codes surfaced to controllers

type ErrCode string

const (
	ErrNotFound  ErrCode = "NOT_FOUND"
	ErrConflict  ErrCode = "CONFLICT"
	ErrNoStock   ErrCode = "INSUFFICIENT_STOCK"
	ErrPolicy    ErrCode = "POLICY_VIOLATION"
	ErrForbidden ErrCode = "FORBIDDEN"
	ErrInvalid   ErrCode = "INVALID_INPUT"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e codedError) Error() string {
	if e.msg != "" {
		return string(e.code) + ": " + e.msg
	}
	return string(e.code)
}
func (e codedError) Code() ErrCode { return e.code }

func makeErr(c ErrCode, msg string) error { return codedError{code: c, msg: msg} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}
