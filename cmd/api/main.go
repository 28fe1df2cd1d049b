package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "carwash/api/swagger" // swagger docs
	"carwash/internal/cache"
	"carwash/internal/config"
	"carwash/internal/database"
	"carwash/internal/handler"
	"carwash/internal/logger"
	"carwash/internal/middleware"
	"carwash/internal/repository"
	"carwash/internal/scheduler"
	"carwash/internal/service"
	"carwash/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Carwash Management API
// @version         1.0
// @description     Point of sale, HR, payroll and role based access control for a car wash.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format, "carwash-api")
	if err != nil {
		log.Fatalf("Logger error: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.Database.DSN(), zlog)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	zlog.Info("connected to postgres", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Name))

	permCache := cache.ForConfig(ctx, cfg.Redis, cfg.Cache.PermissionTTL, zlog)

	wsHub := websocket.NewHub(zlog, cfg.Server.CORSOrigins)
	go wsHub.Run(ctx.Done())

	// Repository -> Service -> Handler
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	refreshRepo := repository.NewRefreshTokenRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	permRepo := repository.NewPermissionRepository(db)
	rolePermRepo := repository.NewRolePermissionRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	positionRepo := repository.NewPositionSalaryRepository(db)
	payrollRepo := repository.NewPayrollRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	trainingRepo := repository.NewTrainingRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	washServiceRepo := repository.NewWashServiceRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	financeRepo := repository.NewFinanceRepository(db)
	statisticsRepo := repository.NewStatisticsRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	authz := service.NewAuthorizationService(roleRepo, permRepo, rolePermRepo, permCache, zlog)
	roleService := service.NewRoleService(roleRepo, permRepo, rolePermRepo, userRepo, auditRepo, txManager, authz, zlog)
	userService := service.NewUserService(userRepo, refreshRepo, txManager, authz, cfg.Auth, zlog)
	employeeService := service.NewEmployeeService(employeeRepo)
	attendanceService := service.NewAttendanceService(attendanceRepo, employeeRepo)
	positionService := service.NewPositionSalaryService(positionRepo)
	payrollService := service.NewPayrollService(employeeRepo, positionRepo, attendanceRepo, payrollRepo, auditRepo, txManager, wsHub, cfg.Payroll, zlog)
	leaveService := service.NewLeaveService(leaveRepo, employeeRepo, auditRepo, txManager)
	trainingService := service.NewTrainingService(trainingRepo, employeeRepo, txManager)
	customerService := service.NewCustomerService(customerRepo, txManager)
	catalogService := service.NewCatalogService(washServiceRepo)
	inventoryService := service.NewInventoryService(inventoryRepo, auditRepo, txManager, wsHub, zlog)
	transactionService := service.NewTransactionService(transactionRepo, washServiceRepo, inventoryRepo, customerRepo, auditRepo, txManager, wsHub, zlog)
	expenseService := service.NewExpenseService(expenseRepo, auditRepo, txManager)
	financeService := service.NewFinanceService(financeRepo)
	statisticsService := service.NewStatisticsService(statisticsRepo, employeeRepo, inventoryRepo)
	settingService := service.NewSettingService(settingRepo, auditRepo, txManager)
	auditService := service.NewAuditService(auditRepo)

	// Roles must exist before the first request is authorized.
	if cfg.Seed.OnStartup {
		report := roleService.SeedDefaultRolesAndPermissions(ctx, service.DefaultSeedPlan())
		if len(report.Errors) > 0 {
			zlog.Warn("role seeding finished with errors", zap.Int("errors", len(report.Errors)))
		}
	}

	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs = scheduler.New(inventoryService, settingService, zlog)
		if err := jobs.RegisterLowStock(cfg.Scheduler.LowStockCron); err != nil {
			zlog.Fatal("scheduler setup failed", zap.Error(err))
		}
		jobs.Start()
	}

	guard := middleware.NewGuard(authz, zlog)
	authn := middleware.NewAuthenticator(cfg.Auth, zlog)

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(middleware.Recovery(zlog), middleware.RequestLogger(zlog))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	// WebSocket clients pass the access token as ?token= and must hold a role that still exists.
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, func(c *gin.Context, token string) (*service.Identity, error) {
			id, err := service.ParseAccessToken(token, cfg.Auth.JWTSecret)
			if err != nil {
				return nil, err
			}
			exists, err := authz.RoleExists(c.Request.Context(), id.Role)
			if err != nil {
				return nil, err
			}
			if !exists {
				return nil, service.ErrRoleNotFound
			}
			return id, nil
		})
	})

	public := router.Group("/api")
	protected := router.Group("/api", authn.Authenticate())

	userHandler := handler.NewUserHandler(userService, guard, cfg.Auth)
	userHandler.RegisterPublicRoutes(public)
	userHandler.RegisterRoutes(protected)
	handler.NewRoleHandler(roleService, guard).RegisterRoutes(protected)
	handler.NewEmployeeHandler(employeeService, positionService, guard).RegisterRoutes(protected)
	handler.NewAttendanceHandler(attendanceService, guard).RegisterRoutes(protected)
	handler.NewPayrollHandler(payrollService, guard).RegisterRoutes(protected)
	handler.NewLeaveHandler(leaveService, trainingService, guard).RegisterRoutes(protected)
	handler.NewCustomerHandler(customerService, catalogService, guard).RegisterRoutes(protected)
	handler.NewInventoryHandler(inventoryService, guard).RegisterRoutes(protected)
	handler.NewTransactionHandler(transactionService, guard).RegisterRoutes(protected)
	handler.NewExpenseHandler(expenseService, guard).RegisterRoutes(protected)
	handler.NewStatisticsHandler(statisticsService, financeService, guard).RegisterRoutes(protected)
	handler.NewAuditHandler(auditService, settingService, guard).RegisterRoutes(protected)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
	if jobs != nil {
		jobs.Stop()
	}
}
