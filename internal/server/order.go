package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	checkoutdomain "github.com/linkshophq/linkshop/internal/checkout/domain"
	orderdomain "github.com/linkshophq/linkshop/internal/order/domain"
	paymentdomain "github.com/linkshophq/linkshop/internal/payment/domain"
	"go.uber.org/zap"
)

type orderResponse struct {
	*orderdomain.Order
	Attempts []paymentdomain.PaymentAttempt `json:"payment_attempts,omitempty"`
}

func (s *Server) QuoteCheckout(c *gin.Context) {
	var req checkoutdomain.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	totals, err := s.checkoutSvc.Quote(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": totals})
}

func (s *Server) PlaceOrder(c *gin.Context) {
	var req checkoutdomain.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	order, err := s.checkoutSvc.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": order})
}

func (s *Server) ListOrders(c *gin.Context) {
	var query struct {
		Status string `form:"status"`
		Limit  string `form:"limit"`
		Offset string `form:"offset"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := orderdomain.ListRequest{}
	if raw := strings.TrimSpace(query.Status); raw != "" {
		status := orderdomain.Status(strings.ToUpper(raw))
		if !status.IsValid() {
			AbortWithError(c, newValidationError("status", "invalid_status", "invalid status"))
			return
		}
		req.Status = &status
	}

	limit, err := parseOptionalInt(query.Limit)
	if err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	}
	offset, err := parseOptionalInt(query.Offset)
	if err != nil {
		AbortWithError(c, newValidationError("offset", "invalid_offset", "invalid offset"))
		return
	}
	req.Limit = limit
	req.Offset = offset

	orders, err := s.orderSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orders})
}

func (s *Server) GetOrderByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	order, err := s.orderSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	attempts, err := s.paymentSvc.ListAttempts(c.Request.Context(), order.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orderResponse{Order: order, Attempts: attempts}})
}

type updateOrderRequest struct {
	Action string `json:"action"`

	// action: transition
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number"`
	CancelReason   string `json:"cancel_reason"`
	RefundReason   string `json:"refund_reason"`

	// action: add_note
	Note   string `json:"note"`
	Author string `json:"author"`

	// action: upload_proof
	ProofURL string `json:"proof_url"`

	// action: confirm_payment / reject_payment
	ConfirmedBy string `json:"confirmed_by"`
	Reason      string `json:"reason"`
}

// UpdateOrder dispatches admin actions against a single order. Restock
// hints from post-payment cancellations and refunds are consumed here so
// the returned merchandise goes back into stock.
func (s *Server) UpdateOrder(c *gin.Context) {
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	orderID := strings.TrimSpace(c.Param("id"))

	switch strings.TrimSpace(req.Action) {
	case "transition":
		order, hint, err := s.orderSvc.RequestTransition(c.Request.Context(), orderdomain.TransitionRequest{
			OrderID:        orderID,
			Target:         orderdomain.Status(strings.ToUpper(strings.TrimSpace(req.Status))),
			TrackingNumber: req.TrackingNumber,
			CancelReason:   req.CancelReason,
			RefundReason:   req.RefundReason,
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		s.consumeRestockHint(c, order, hint)
		c.JSON(http.StatusOK, gin.H{"data": order})

	case "add_note":
		order, err := s.orderSvc.AddNote(c.Request.Context(), orderID, req.Note, req.Author)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": order})

	case "upload_proof":
		order, err := s.orderSvc.UploadPaymentProof(c.Request.Context(), orderID, req.ProofURL)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": order})

	case "confirm_payment":
		order, hint, err := s.orderSvc.ConfirmPayment(c.Request.Context(), orderID, req.ConfirmedBy)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		s.consumeRestockHint(c, order, hint)
		c.JSON(http.StatusOK, gin.H{"data": order})

	case "reject_payment":
		order, err := s.orderSvc.RejectPayment(c.Request.Context(), orderID, req.Reason)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": order})

	default:
		AbortWithError(c, newValidationError("action", "invalid_action", "invalid action"))
	}
}

func (s *Server) consumeRestockHint(c *gin.Context, order *orderdomain.Order, hint *orderdomain.RestockHint) {
	if hint == nil {
		return
	}
	if err := s.checkoutSvc.Restock(c.Request.Context(), hint); err != nil {
		// The transition itself committed; a failed restock is logged,
		// not surfaced as a request failure.
		s.log.Error("restock after transition failed",
			zap.String("order_id", snowflake.ID(order.ID).String()),
			zap.Error(err),
		)
	}
}
