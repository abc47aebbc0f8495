package borrow

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/qihfathny29/perpustakaandigital40-sub000/app/echoServer/jwtx"
	"github.com/qihfathny29/perpustakaandigital40-sub000/model"
	bs "github.com/qihfathny29/perpustakaandigital40-sub000/service/borrow"
)

type Controller struct {
	Svc bs.Service
	V   *validator.Validate
	Log *slog.Logger
}

func isStaff(c echo.Context) bool {
	role, err := jwtx.Role(c)
	return err == nil && role.Staff()
}

// fail maps a lifecycle error to its fixed status and message.
func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch bs.Code(err) {
	case bs.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	case bs.ErrNoStock:
		return c.JSON(http.StatusConflict, echo.Map{"message": "no stock available"})
	case bs.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"message": err.Error()})
	case bs.ErrPolicy:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": err.Error()})
	case bs.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case bs.ErrInvalid:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// POST /v1/borrows
// @Summary Request a loan
// @Success 201 {object} model.BorrowRecord
// @Failure 400,404,409,422,500
func (h *Controller) Request(c echo.Context) error {
	var req RequestLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	rec, err := h.Svc.Request(c.Request().Context(), uid, req.BookID,
		bs.Window{BorrowDate: req.BorrowDate, DueDate: req.DueDate})
	if err != nil {
		return h.fail(c, "borrow request", err)
	}
	return c.JSON(http.StatusCreated, rec)
}

// PUT /v1/borrows/:id/approve  (staff/admin)
func (h *Controller) Approve(c echo.Context) error {
	return h.transition(c, "borrow approve", h.Svc.Approve)
}

// PUT /v1/borrows/:id/reject  (staff/admin)
func (h *Controller) Reject(c echo.Context) error {
	return h.transition(c, "borrow reject", h.Svc.Reject)
}

// PUT /v1/borrows/:id/pickup  (staff/admin)
func (h *Controller) Pickup(c echo.Context) error {
	return h.transition(c, "borrow pickup", h.Svc.ConfirmPickup)
}

func (h *Controller) transition(c echo.Context, op string,
	fn func(ctx context.Context, id int64) (*model.BorrowRecord, error)) error {
	if !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	rec, err := fn(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, op, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// POST /v1/borrows/direct  (staff/admin)
// @Summary Issue a loan directly, skipping the approval queue
func (h *Controller) DirectLoan(c echo.Context) error {
	if !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	var req DirectLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	rec, err := h.Svc.DirectLoan(c.Request().Context(), req.UserID, req.BookID,
		bs.Window{BorrowDate: req.BorrowDate, DueDate: req.DueDate})
	if err != nil {
		return h.fail(c, "direct loan", err)
	}
	return c.JSON(http.StatusCreated, rec)
}

// PUT /v1/borrows/return/:correlationId  (owner or staff/admin)
func (h *Controller) Return(c echo.Context) error {
	cid := c.Param("correlationId")
	if cid == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid correlation id"})
	}
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	role, err := jwtx.Role(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	rec, err := h.Svc.Return(c.Request().Context(), cid, uid, role)
	if err != nil {
		return h.fail(c, "borrow return", err)
	}
	return c.JSON(http.StatusOK, rec)
}

// DELETE /v1/borrows/:id  (owner or staff/admin, terminal records only)
func (h *Controller) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	role, err := jwtx.Role(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	if err := h.Svc.Delete(c.Request().Context(), id, uid, role); err != nil {
		return h.fail(c, "borrow delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// POST /v1/borrows/bulk-delete
func (h *Controller) BulkDelete(c echo.Context) error {
	var req BulkDeleteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	role, err := jwtx.Role(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	deleted, err := h.Svc.BulkDelete(c.Request().Context(), req.RecordIDs, uid, role)
	if err != nil {
		return h.fail(c, "borrow bulk delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": deleted})
}

// GET /v1/borrows/my
func (h *Controller) My(c echo.Context) error {
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := h.Svc.MyLoans(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("borrow history", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/borrows  (staff/admin, filterable by user_id, book_id, status)
func (h *Controller) List(c echo.Context) error {
	if !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	var f bs.Filter
	if v := c.QueryParam("user_id"); v != "" {
		f.UserID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := c.QueryParam("book_id"); v != "" {
		f.BookID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := c.QueryParam("status"); v != "" {
		st := model.BorrowStatus(v)
		if !st.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid status"})
		}
		f.Status = st
	}
	rows, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		h.Log.Error("borrow list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/borrows/overdue  (staff/admin)
func (h *Controller) Overdue(c echo.Context) error {
	if !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	rows, err := h.Svc.Overdue(c.Request().Context())
	if err != nil {
		h.Log.Error("overdue list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
