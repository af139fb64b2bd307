package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	storedomain "github.com/linkshophq/linkshop/internal/store/domain"
	"github.com/linkshophq/linkshop/internal/storectx"
)

func (s *Server) CreateStore(c *gin.Context) {
	var req storedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	st, err := s.storeSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": st})
}

func (s *Server) GetStoreByHandle(c *gin.Context) {
	handle := strings.TrimSpace(c.Param("handle"))
	st, err := s.storeSvc.GetByHandle(c.Request.Context(), handle)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": st})
}

func (s *Server) GetSubscription(c *gin.Context) {
	storeID, ok := storectx.StoreIDFromContext(c.Request.Context())
	if !ok || storeID == 0 {
		AbortWithError(c, storedomain.ErrNotFound)
		return
	}

	sub, err := s.subscriptionSvc.Get(c.Request.Context(), storeID.Int64())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sub})
}
