// app/echoServer/jwtx/user.go
package jwtx

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/qihfathny29/perpustakaandigital40-sub000/model"
)

// Context keys populated by the auth middleware in routes.go.
const (
	KeyUserID = "user_id"
	KeyRole   = "role"
)

func UserID(c echo.Context) (int64, error) {
	id, ok := c.Get(KeyUserID).(int64)
	if !ok || id <= 0 {
		return 0, errors.New("no user id in context")
	}
	return id, nil
}

func Role(c echo.Context) (model.Role, error) {
	r, ok := c.Get(KeyRole).(model.Role)
	if !ok {
		return "", errors.New("no role in context")
	}
	return r, nil
}
