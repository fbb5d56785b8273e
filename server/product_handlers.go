package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/rostishop/pkg/models"
)

func (s *Server) listProducts(c *gin.Context) {
	products, err := s.products.List(c.Request.Context(), c.Query("category"), c.Query("search"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (s *Server) getProduct(c *gin.Context) {
	product, err := s.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) adminListProducts(c *gin.Context) {
	products, err := s.products.AdminList(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

type createProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Price       float64 `json:"price" binding:"required"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	ImageURL    string  `json:"img"`
	Stock       int32   `json:"stock"`
	Active      *bool   `json:"active"`
}

func (s *Server) createProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.bindError(c, err)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	product, err := s.products.Create(c.Request.Context(), &models.Product{
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
		Active:      active,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (s *Server) updateProduct(c *gin.Context) {
	var upd models.ProductUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		s.bindError(c, err)
		return
	}

	product, err := s.products.Update(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) deleteProduct(c *gin.Context) {
	if err := s.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
