package router

import (
	"time"

	"stockroom/internal/config"
	"stockroom/internal/handler"
	"stockroom/internal/infra"
	"stockroom/internal/middleware"
	"stockroom/internal/repository"
	"stockroom/internal/security"
	"stockroom/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Deps are the infrastructure handles the router wires into services.
// Redis is optional: without it rate limiting stays in process memory.
// Mailer defaults to SMTP from config.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Mailer service.ResetMailer
	Hasher security.CredentialHasher
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var attempts middleware.AttemptStore = middleware.NewMemoryAttemptStore()
	if deps.Redis != nil {
		attempts = infra.NewRedisAttemptStore(deps.Redis)
	}
	if deps.Mailer == nil {
		deps.Mailer = infra.NewMailer(cfg)
	}
	if deps.Hasher == nil {
		deps.Hasher = security.NewBcryptHasher(bcrypt.DefaultCost)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler(cfg.Debug))
	r.Use(middleware.RateLimiter(attempts, 1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(deps.DB)
	tokenRepo := repository.NewTokenRepository(deps.DB)
	itemRepo := repository.NewItemRepository(deps.DB)
	supplierRepo := repository.NewSupplierRepository(deps.DB)
	transactionRepo := repository.NewTransactionRepository(deps.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	resetTokens := security.NewJWTResetTokens(cfg.SecretKey, time.Duration(cfg.PasswordResetTimeoutMinutes)*time.Minute)
	authSvc := service.NewAuthService(userRepo, tokenRepo, deps.Hasher, security.RandomTokenIssuer{}, resetTokens, deps.Mailer, cfg)
	itemSvc := service.NewItemService(itemRepo, supplierRepo, transactionRepo, cfg)
	supplierSvc := service.NewSupplierService(supplierRepo, itemRepo, transactionRepo, cfg)
	transactionSvc := service.NewTransactionService(transactionRepo, cfg)
	reportSvc := service.NewReportService(itemRepo, supplierRepo, cfg)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc, handler.CookieSettingsFrom(cfg))
	itemsH := handler.NewItemsHandler(itemSvc)
	suppliersH := handler.NewSuppliersHandler(supplierSvc)
	transactionsH := handler.NewTransactionsHandler(transactionSvc)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	health := handler.HealthDeps{DB: deps.DB, Redis: deps.Redis}
	if reporter, ok := deps.Mailer.(handler.StatusReporter); ok {
		health.Mailer = reporter
	}
	r.GET("/health", handler.Health(health))

	tokenMW := middleware.TokenAuth(authSvc, cfg.AuthCookieName)
	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/signup", authH.Signup)
		auth.POST("/login", middleware.LoginRateLimiter(attempts, cfg.LoginRateLimit), authH.Login)
		auth.POST("/password-reset-request", authH.PasswordResetRequest)
		auth.POST("/password-reset-confirm", authH.PasswordResetConfirm)
		auth.POST("/logout", tokenMW, authH.Logout)
		auth.GET("/profile", tokenMW, authH.Profile)
	}

	// Protected routes. Superuser checks for deletes live in the services.
	inv := api.Group("/inventory", tokenMW)
	{
		inv.POST("/add", itemsH.Create)
		inv.GET("/list", itemsH.List)

		sup := inv.Group("/suppliers")
		{
			sup.POST("/add", suppliersH.Create)
			sup.GET("/list", suppliersH.List)
			sup.GET("/:id", suppliersH.Get)
			sup.PATCH("/:id", suppliersH.Update)
			sup.DELETE("/:id", suppliersH.Delete)
		}

		inv.GET("/transactions", transactionsH.List)

		inv.GET("/reports", reportsH.Summary)
		inv.GET("/reports/export-csv", reportsH.ExportCSV)
		inv.GET("/reports/export-pdf", reportsH.ExportPDF)

		inv.GET("/:id", itemsH.Get)
		inv.PATCH("/:id", itemsH.Update)
		inv.DELETE("/:id", itemsH.Delete)
	}

	// Swagger UI — only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
