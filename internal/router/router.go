package router

import (
	"net/http"

	"burgerpos/internal/apierror"
	"burgerpos/internal/config"
	"burgerpos/internal/handler"
	"burgerpos/internal/infra"
	"burgerpos/internal/metrics"
	"burgerpos/internal/middleware"
	"burgerpos/internal/model"
	"burgerpos/internal/realtime"
	"burgerpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs. Services are built in main so the
// snapshot writer and event sinks can be attached before serving.
type Deps struct {
	DB      *gorm.DB
	Redis   *redis.Client // optional
	CB      *infra.CircuitBreaker
	Hub     *realtime.Hub
	Metrics *metrics.Recorder

	Auth      service.AuthService
	Catalog   service.CatalogService
	Shifts    service.ShiftService
	Surfaces  service.SurfaceService
	Checkout  service.CheckoutService
	Shortcuts *service.ShortcutDispatcher
	Sales     service.SaleService
	Reports   service.ReportService
}

// New returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Core ← Snapshot store
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	var obs middleware.RequestObserver
	if d.Metrics != nil {
		obs = d.Metrics
	}
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(obs))
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.APIRateLimiter(cfg.RateLimitPerMinute))

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(d.Auth)
	usersH := handler.NewUsersHandler(d.Auth)
	productsH := handler.NewProductsHandler(d.Catalog)
	shiftsH := handler.NewShiftsHandler(d.Shifts)
	surfacesH := handler.NewSurfacesHandler(d.Surfaces)
	checkoutH := handler.NewCheckoutHandler(d.Checkout, d.Shortcuts)
	salesH := handler.NewSalesHandler(d.Sales)
	reportsH := handler.NewReportsHandler(d.Reports)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.Redis, d.CB))
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Protected routes: a valid token issued to the logged-in user.
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	sessionMW := middleware.RequireSession(d.Auth)
	admin := middleware.RequireRole(model.RoleAdmin)

	if d.Hub != nil {
		r.GET("/v1/ws", middleware.TokenFromQuery(), jwtMW, sessionMW, d.Hub.ServeWS)
	}

	v1 := r.Group("/v1", jwtMW, sessionMW)
	{
		v1.POST("/auth/logout", authH.Logout)
		v1.GET("/auth/me", authH.Me)

		users := v1.Group("/users", admin)
		{
			users.GET("", usersH.List)
			users.POST("", usersH.Create)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Delete)
		}

		v1.GET("/products", productsH.List)
		v1.GET("/products/lookup/:code", productsH.Lookup)
		products := v1.Group("/products", admin)
		{
			products.POST("", productsH.Create)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Delete)
		}

		shifts := v1.Group("/shifts")
		{
			shifts.POST("/open", shiftsH.Open)
			shifts.POST("/close", shiftsH.Close)
			shifts.GET("/current", shiftsH.Current)
			shifts.GET("/current/sales", shiftsH.CurrentSales)
			shifts.GET("", shiftsH.List)
			shifts.GET("/:id/summary", shiftsH.Summary)
		}

		surfaces := v1.Group("/surfaces")
		{
			surfaces.GET("", surfacesH.List)
			surfaces.GET("/:id", surfacesH.Get)
			surfaces.POST("/:id/items", surfacesH.AddItem)
			surfaces.PUT("/:id/items/:productId", surfacesH.SetQuantity)
			surfaces.DELETE("/:id/items/:productId", surfacesH.RemoveItem)
			surfaces.POST("/:id/request-bill", surfacesH.RequestBill)
			surfaces.POST("/:id/clear", surfacesH.Clear)
			surfaces.POST("/:id/checkout", checkoutH.Checkout)
			surfaces.POST("/:id/checkout-split", checkoutH.CheckoutSplit)
			surfaces.POST("/:id/shortcut", checkoutH.Shortcut)
		}

		v1.GET("/sales", salesH.List)
		v1.GET("/sales/:id", salesH.Get)
		sales := v1.Group("/sales", admin)
		{
			sales.DELETE("/:id", salesH.Void)
			sales.PATCH("/:id/payment-method", salesH.CorrectPaymentMethod)
		}

		reports := v1.Group("/reports", admin)
		{
			reports.GET("/summary", reportsH.Summary)
			reports.GET("/shifts", reportsH.ShiftHistory)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, apierror.New("Rota não encontrada"))
	})

	return r
}
