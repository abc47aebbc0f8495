package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	authctrl "github.com/qihfathny29/perpustakaandigital40-sub000/app/echoServer/controller/auth"
	bookctrl "github.com/qihfathny29/perpustakaandigital40-sub000/app/echoServer/controller/book"
	borrowctrl "github.com/qihfathny29/perpustakaandigital40-sub000/app/echoServer/controller/borrow"
	"github.com/qihfathny29/perpustakaandigital40-sub000/app/echoServer/jwtx"
	"github.com/qihfathny29/perpustakaandigital40-sub000/model"
)

type C struct {
	Auth      *authctrl.Controller
	Book      *bookctrl.Controller
	Borrow    *borrowctrl.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// Auth
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(c.JWTSecret),
		TokenLookup: "header:Authorization:Bearer ",
	}))
	auth.Use(identity)

	// Catalog
	auth.GET("/books", c.Book.List)
	auth.GET("/books/:id", c.Book.Detail)
	auth.GET("/books/:id/availability", c.Book.Availability)
	auth.POST("/books", c.Book.Create)
	auth.POST("/books/:id/copies", c.Book.AddCopies)

	// Borrow lifecycle
	auth.POST("/borrows", c.Borrow.Request)
	auth.PUT("/borrows/:id/approve", c.Borrow.Approve)
	auth.PUT("/borrows/:id/reject", c.Borrow.Reject)
	auth.PUT("/borrows/:id/pickup", c.Borrow.Pickup)
	auth.POST("/borrows/direct", c.Borrow.DirectLoan)
	auth.PUT("/borrows/return/:correlationId", c.Borrow.Return)
	auth.DELETE("/borrows/:id", c.Borrow.Delete)
	auth.POST("/borrows/bulk-delete", c.Borrow.BulkDelete)

	// Listings
	auth.GET("/borrows/my", c.Borrow.My)
	auth.GET("/borrows", c.Borrow.List)
	auth.GET("/borrows/overdue", c.Borrow.Overdue)
}

// identity lifts the caller's id and role out of the verified token so
// controllers never touch raw claims.
func identity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tok, ok := c.Get("user").(*jwt.Token)
		if !ok || tok == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}
		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}

		sub, ok := claims["sub"].(float64)
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}
		role, ok := claims["role"].(string)
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}

		c.Set(jwtx.KeyUserID, int64(sub))
		c.Set(jwtx.KeyRole, model.Role(role))
		return next(c)
	}
}
