package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"supplierapi/auth"
)

// NewRouter wires gin routes and middleware. Read routes on suppliers are
// anonymous; mutating routes need a valid token; deletion additionally needs
// the ExcluirFornecedor policy.
func NewRouter(logger *zap.Logger, tokens *auth.TokenService, authorizer *auth.Authorizer, authHandler *AuthHandler, supplierHandler *SupplierHandler, pool *pgxpool.Pool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))

	r.POST("/registro", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.GET("/healthz", healthHandler(pool))

	fornecedores := r.Group("/fornecedores")
	{
		fornecedores.GET("", supplierHandler.List)
		fornecedores.GET("/:id", supplierHandler.Get)
		fornecedores.POST("", auth.RequireToken(tokens), supplierHandler.Create)
		fornecedores.PUT("/:id", auth.RequireToken(tokens), supplierHandler.Update)
		fornecedores.DELETE("/:id",
			auth.RequireToken(tokens),
			auth.RequirePolicy(authorizer, auth.PolicyDeleteSupplier, logger),
			supplierHandler.Delete)
	}

	return r
}

func healthHandler(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if pool != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := pool.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
