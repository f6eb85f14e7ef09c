package handler

import (
	"social-wallet-api/internal/adapter/http/middleware"
	"social-wallet-api/internal/adapter/metrics"
	"social-wallet-api/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	ProfileSvc     ports.ProfileService
	WalletSvc      ports.WalletService
	TokenSvc       ports.TokenService
	RateLimitStore middleware.Counter // nil = rate limiting disabled
	RateLimitRules map[string]middleware.RateLimitRule
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Metrics        *metrics.Metrics   // nil = no /metrics endpoint
	MaxBodySize    int64
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.GinMiddleware())
	}
	maxBody := deps.MaxBodySize
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	r.Use(middleware.MaxBodySize(maxBody))
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := deps.RateLimitRules
	if rules == nil {
		rules = middleware.RateLimitRules(0, 0, 0)
	}
	rl := func(group string) gin.HandlerFunc {
		rule, ok := rules[group]
		if deps.RateLimitStore == nil || !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")
	jwtAuth := middleware.JWTAuth(deps.TokenSvc)

	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth"), authHandler.Register)
		auth.POST("/login", rl("auth"), authHandler.Login)
		auth.GET("/me", jwtAuth, authHandler.Me)
	}

	profileHandler := NewProfileHandler(deps.ProfileSvc)
	profiles := v1.Group("/profiles")
	{
		profiles.POST("", jwtAuth, profileHandler.Create)
		profiles.GET("/me", jwtAuth, profileHandler.Me)
		profiles.PUT("/me", jwtAuth, profileHandler.Update)
		profiles.GET("/users/:username", rl("auth"), profileHandler.ByUsername)
		profiles.GET("/:platform/:handle", rl("auth"), profileHandler.BySocialHandle)
	}

	walletHandler := NewWalletHandler(deps.WalletSvc)
	wallets := v1.Group("/wallets/:network", jwtAuth)
	{
		wallets.POST("", rl("wallets"), walletHandler.Create)
		wallets.GET("", rl("wallets"), walletHandler.Get)
		wallets.GET("/balance", rl("wallets"), walletHandler.Balance)
		wallets.POST("/payments", rl("payments"), walletHandler.SendPayment)
		wallets.GET("/transactions", rl("wallets"), walletHandler.ListTransactions)
		wallets.POST("/tokens", rl("payments"), walletHandler.IssueToken)
	}
	v1.GET("/wallets/:network/assets", rl("wallets"), walletHandler.ListAssets)

	return r
}
