package handler

import (
	"social-wallet-api/internal/adapter/http/dto"
	"social-wallet-api/internal/adapter/http/middleware"
	"social-wallet-api/internal/core/domain"
	"social-wallet-api/internal/core/ports"
	"social-wallet-api/pkg/apperror"
	"social-wallet-api/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderIdempotencyKey carries the client's payment idempotency key.
const HeaderIdempotencyKey = "Idempotency-Key"

// WalletHandler handles per-network wallet endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// caller extracts the authenticated user and the :network path segment.
// On failure it writes the error response and returns ok=false.
func caller(c *gin.Context) (uuid.UUID, domain.Network, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return uuid.Nil, "", false
	}
	network, ok := networkParam(c)
	if !ok {
		return uuid.Nil, "", false
	}
	return userID, network, true
}

func networkParam(c *gin.Context) (domain.Network, bool) {
	network, ok := domain.ParseNetwork(c.Param("network"))
	if !ok {
		response.Error(c, apperror.ErrUnsupportedNetwork(c.Param("network")))
		return "", false
	}
	return network, true
}

// Create handles POST /api/v1/wallets/:network.
func (h *WalletHandler) Create(c *gin.Context) {
	userID, network, ok := caller(c)
	if !ok {
		return
	}

	wallet, err := h.walletSvc.CreateWallet(c.Request.Context(), userID, network)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, wallet)
}

// Get handles GET /api/v1/wallets/:network.
func (h *WalletHandler) Get(c *gin.Context) {
	userID, network, ok := caller(c)
	if !ok {
		return
	}

	wallet, err := h.walletSvc.GetWallet(c.Request.Context(), userID, network)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewWalletResponse(wallet))
}

// Balance handles GET /api/v1/wallets/:network/balance.
func (h *WalletHandler) Balance(c *gin.Context) {
	userID, network, ok := caller(c)
	if !ok {
		return
	}

	balances, err := h.walletSvc.GetBalance(c.Request.Context(), userID, network)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.BalanceResponse{Network: network, Balances: balances})
}

// SendPayment handles POST /api/v1/wallets/:network/payments.
func (h *WalletHandler) SendPayment(c *gin.Context) {
	userID, network, ok := caller(c)
	if !ok {
		return
	}

	var req dto.SendPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	receipt, err := h.walletSvc.SendPayment(c.Request.Context(), ports.SendPaymentRequest{
		UserID:  userID,
		Network: network,
		Destination: ports.Destination{
			Account:  req.To,
			Platform: domain.Platform(req.Platform),
			Handle:   req.Handle,
		},
		Amount:         req.Amount,
		Memo:           req.Memo,
		IdempotencyKey: c.GetHeader(HeaderIdempotencyKey),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, receipt)
}

// ListTransactions handles GET /api/v1/wallets/:network/transactions.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, network, ok := caller(c)
	if !ok {
		return
	}

	var q dto.LimitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	txs, err := h.walletSvc.ListTransactions(c.Request.Context(), userID, network, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, txs)
}

// IssueToken handles POST /api/v1/wallets/:network/tokens.
func (h *WalletHandler) IssueToken(c *gin.Context) {
	userID, network, ok := caller(c)
	if !ok {
		return
	}

	var req dto.IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	token, err := h.walletSvc.IssueToken(c.Request.Context(), ports.IssueTokenRequest{
		UserID:        userID,
		Network:       network,
		Name:          req.Name,
		Symbol:        req.Symbol,
		InitialSupply: req.InitialSupply,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, token)
}

// ListAssets handles GET /api/v1/wallets/:network/assets. It needs no session.
func (h *WalletHandler) ListAssets(c *gin.Context) {
	network, ok := networkParam(c)
	if !ok {
		return
	}

	var q dto.LimitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	assets, err := h.walletSvc.ListAssets(c.Request.Context(), network, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, assets)
}
