package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/linkshophq/linkshop/internal/payment/domain"
	"github.com/linkshophq/linkshop/internal/storectx"
)

func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	provider := strings.TrimSpace(c.Param("provider"))
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	// Webhooks carry no tenant header; the payload's store_id wins, with
	// the configured default store as the single-tenant fallback.
	ctx := c.Request.Context()
	if s.cfg.DefaultStoreID != 0 {
		ctx = storectx.WithStoreID(ctx, s.cfg.DefaultStoreID)
	}

	err = s.paymentSvc.IngestWebhook(ctx, provider, payload)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventIgnored) || errors.Is(err, paymentdomain.ErrDuplicateEvent) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
