package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/rostishop/pkg/errs"
)

// abortWithError maps a taxonomy error to its HTTP status and a stable
// {code, error} body. Unclassified errors are logged with their cause and
// reported as a generic internal error.
func (s *Server) abortWithError(c *gin.Context, err error) {
	code := errs.CodeOf(err)
	if code == errs.CodeInternal {
		s.logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}

	c.AbortWithStatusJSON(errs.HTTPStatus(code), gin.H{
		"code":  string(code),
		"error": errs.DetailOf(err),
	})
}

func (s *Server) bindError(c *gin.Context, err error) {
	s.abortWithError(c, errs.Validation("invalid request body: "+err.Error()))
}
