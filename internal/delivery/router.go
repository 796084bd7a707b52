package delivery

import (
	"net/http"

	"grouporder/internal/domain"
	"grouporder/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UseCases struct {
	Auth    domain.AuthUseCase
	Catalog domain.CatalogUseCase
	Orders  domain.OrderUseCase
}

func NewRouter(uc UseCases, logger *logrus.Logger) *gin.Engine {
	useJSONFieldNames()
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		SuccessResponse(c, http.StatusOK, "ok", nil)
	})

	authHandler := NewAuthHandler(uc.Auth, logger)
	authHandler.RegisterPublicRoutes(router)

	protected := router.Group("/")
	protected.Use(middleware.AuthMiddleware(uc.Auth, logger))
	{
		authHandler.RegisterRoutes(protected)
		NewCatalogHandler(uc.Catalog, logger).RegisterRoutes(protected)
		NewOrderHandler(uc.Orders, uc.Auth, logger).RegisterRoutes(protected)
	}

	logger.Info("API Routes registered.")
	return router
}
