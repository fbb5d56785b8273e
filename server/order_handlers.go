package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/example/rostishop/pkg/models"
	"github.com/example/rostishop/pkg/service"
)

type orderItemRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int32   `json:"quantity" binding:"required"`
}

type createOrderRequest struct {
	CustomerName string             `json:"customer_name" binding:"required"`
	Email        string             `json:"email" binding:"omitempty,email"`
	Phone        string             `json:"phone" binding:"required"`
	Address      string             `json:"address" binding:"required"`
	Note         string             `json:"note"`
	Items        []orderItemRequest `json:"items" binding:"required"`
	// Total is accepted for compatibility with older clients but never
	// trusted; the server recomputes it from the items.
	Total float64 `json:"total"`
}

func (s *Server) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.bindError(c, err)
		return
	}

	email := req.Email
	// Guest checkout is allowed; a presented token must still be valid, and
	// its account email wins over whatever the body says.
	if strings.HasPrefix(c.GetHeader("Authorization"), bearerPrefix) {
		user, err := s.authenticateRequest(c)
		if err != nil {
			s.abortWithError(c, err)
			return
		}
		email = user.Email
	}

	items := make([]models.OrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}

	order, err := s.orders.Create(c.Request.Context(), service.CreateOrderInput{
		CustomerName: req.CustomerName,
		Email:        email,
		Phone:        req.Phone,
		Address:      req.Address,
		Note:         req.Note,
		Items:        items,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (s *Server) listOrdersByEmail(c *gin.Context) {
	orders, err := s.orders.ListByEmail(c.Request.Context(), c.Query("email"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) getOrder(c *gin.Context) {
	order, err := s.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) cancelOrder(c *gin.Context) {
	order, err := s.orders.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) adminListOrders(c *gin.Context) {
	orders, err := s.orders.AdminList(c.Request.Context(), c.Query("status"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

type setStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

func (s *Server) adminSetOrderStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.bindError(c, err)
		return
	}

	order, err := s.orders.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
