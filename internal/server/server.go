package server

import (
	"context"
	"log"
	"strings"
	"time"

	"anoa.com/studentrecords/internal/config"
	"anoa.com/studentrecords/internal/handler"
	"anoa.com/studentrecords/internal/middleware"
	"anoa.com/studentrecords/internal/repository"
	"anoa.com/studentrecords/internal/service"
	"anoa.com/studentrecords/internal/worker"
	"anoa.com/studentrecords/internal/ws"
	"anoa.com/studentrecords/pkg/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)

	photoStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Fatalf("failed to initialize cloudinary storage: %v", err)
	}

	// Meilisearch is optional; without a host the service falls back to SQL search.
	var meiliClient meilisearch.ServiceManager
	if cfg.MeiliSearchHost != "" {
		host := cfg.MeiliSearchHost
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host + ":7700"
		}
		meiliClient = meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	}
	searchSvc := service.NewSearchService(meiliClient)

	hub := ws.NewHub()
	go hub.Run()

	authSvc := service.NewAuthService(userRepo, studentRepo, searchSvc, cfg.JWTSecret, cfg.JWTTTL, cfg.AdminSecret)
	authHandler := handler.NewAuthHandler(authSvc, redisClient, cfg.LoginRateLimit)

	studentSvc := service.NewStudentService(studentRepo, searchSvc, photoStorage, cfg.CloudinaryUploadFolder)
	studentHandler := handler.NewStudentHandler(studentSvc)

	gradeSvc := service.NewGradeService(studentRepo)
	gradeHandler := handler.NewGradeHandler(gradeSvc)

	projectSvc := service.NewProjectService(studentRepo)
	projectHandler := handler.NewProjectHandler(projectSvc)

	librarySvc := service.NewLibraryService(studentRepo, hub)
	libraryHandler := handler.NewLibraryHandler(librarySvc)

	wsHandler := handler.NewWSHandler(hub)

	reminder := worker.NewReminderWorker(studentRepo, userRepo, hub, cfg.ReminderInterval)
	go reminder.Run(context.Background())

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.Metrics())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.NewAuthMiddleware()

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/create-admin", authHandler.CreateAdmin)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Student routes
		protected.GET("/students", studentHandler.List)
		protected.GET("/students/stats/overview", studentHandler.Stats)
		protected.POST("/students", studentHandler.Create)
		protected.GET("/students/:id", studentHandler.Get)
		protected.PUT("/students/:id", studentHandler.Update)
		protected.DELETE("/students/:id", studentHandler.Delete)
		protected.POST("/students/:id/photo", studentHandler.UploadPhoto)

		// Grade routes
		protected.POST("/students/:id/grades", gradeHandler.Add)
		protected.PUT("/students/:id/grades/:gradeId", gradeHandler.Update)
		protected.DELETE("/students/:id/grades/:gradeId", gradeHandler.Delete)

		// Project routes
		protected.POST("/students/:id/projects", projectHandler.Add)
		protected.PUT("/students/:id/projects/:projectId", projectHandler.Update)
		protected.DELETE("/students/:id/projects/:projectId", projectHandler.Delete)

		// Library routes
		protected.POST("/students/:id/library/borrow", libraryHandler.Borrow)
		protected.PUT("/students/:id/library/:loanId/return", libraryHandler.Return)
		protected.GET("/students/:id/library/borrowed", libraryHandler.Borrowed)

		// Loan routes scoped to the caller's own student record
		protected.POST("/loans/borrow", libraryHandler.BorrowOwn)
		protected.PUT("/loans/:loanId/return", libraryHandler.ReturnOwn)
		protected.GET("/loans", libraryHandler.ListOwn)

		// Notification stream
		protected.GET("/ws", wsHandler.Connect)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
