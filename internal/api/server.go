package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/civeni/civeni-api/docs"
	v1 "github.com/civeni/civeni-api/internal/api/handler/v1"
	"github.com/civeni/civeni-api/internal/api/middleware"
	"github.com/civeni/civeni-api/internal/cache"
	"github.com/civeni/civeni-api/internal/clock"
	"github.com/civeni/civeni-api/internal/config"
	stripegw "github.com/civeni/civeni-api/internal/gateway/stripe"
	"github.com/civeni/civeni-api/internal/realtime"
	"github.com/civeni/civeni-api/internal/repository"
	"github.com/civeni/civeni-api/internal/repository/dao"
	"github.com/civeni/civeni-api/internal/service"
	"github.com/civeni/civeni-api/internal/storage"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
	Hub    *realtime.Hub

	clock   clock.Clock
	gateway *stripegw.Gateway
	store   cache.Store
	bucket  *storage.Bucket
}

type handlers struct {
	auth         *v1.AuthHandler
	registration *v1.RegistrationHandler
	webhook      *v1.WebhookHandler
	finance      *v1.FinanceHandler
	media        *v1.MediaHandler
	schedule     *v1.ScheduleHandler
	certificate  *v1.CertificateHandler
	realtime     *v1.RealtimeHandler
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config:  conf,
		Router:  engine,
		Hub:     realtime.NewHub(conf.API.AllowedCORSDomains),
		clock:   clock.NewSystem(),
		gateway: stripegw.NewGateway(conf.Stripe),
		store:   cache.NewMemoryStore(conf.Cache.PaymentMethodTTL, 2*conf.Cache.PaymentMethodTTL),
		bucket:  storage.NewDiskBucket(conf.Media.BucketDir, conf.Media.PublicBaseURL),
	}

	s.MountMiddlewares()

	h := handlers{
		auth:         s.initAuthHandler(db),
		registration: s.initRegistrationHandler(db),
		webhook:      s.initWebhookHandler(db),
		finance:      s.initFinanceHandler(db),
		media:        s.initMediaHandler(db),
		schedule:     s.initScheduleHandler(db),
		certificate:  s.initCertificateHandler(db),
		realtime:     v1.NewRealtimeHandler(s.Hub),
	}
	s.MountHandlers(h)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	adminDAO := dao.NewAdminDAO(db)
	repo := repository.NewAdminRepository(adminDAO)
	svc := service.NewAdminService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initRegistrationHandler(db *gorm.DB) *v1.RegistrationHandler {
	catalogRepo := repository.NewCatalogRepository(dao.NewCatalogDAO(db))
	repo := repository.NewRegistrationRepository(dao.NewRegistrationDAO(db))
	catalog := service.NewCatalogService(catalogRepo, s.gateway, s.clock)
	svc := service.NewRegistrationService(repo, catalogRepo, catalog, s.gateway, s.clock)
	handler := v1.NewRegistrationHandler(svc, catalog)

	return handler
}

func (s *Server) initWebhookHandler(db *gorm.DB) *v1.WebhookHandler {
	stripeDAO := dao.NewStripeDAO(db)
	repo := repository.NewStripeRepository(stripeDAO)
	svc := service.NewWebhookService(repo, s.gateway, s.Hub, s.clock)
	handler := v1.NewWebhookHandler(stripegw.NewVerifier(s.Config.Stripe.WebhookSecret), svc)

	return handler
}

func (s *Server) initFinanceHandler(db *gorm.DB) *v1.FinanceHandler {
	financeDAO := dao.NewFinanceDAO(db)
	repo := repository.NewFinanceRepository(financeDAO)
	svc := service.NewFinanceService(repo, s.clock, s.Config.Finance.UseMaterializedView)
	resolver := service.NewPaymentMethodResolver(s.gateway, repo, s.store,
		s.Config.Cache.PaymentMethodTTL, s.Config.Finance.RecentChargesLimit)
	handler := v1.NewFinanceHandler(svc, resolver)

	return handler
}

func (s *Server) initMediaHandler(db *gorm.DB) *v1.MediaHandler {
	mediaDAO := dao.NewMediaDAO(db)
	repo := repository.NewMediaRepository(mediaDAO)
	svc := service.NewMediaService(repo, s.bucket, s.Hub, s.clock, s.Config.Media.MaxWidth)
	handler := v1.NewMediaHandler(svc, s.bucket)

	return handler
}

func (s *Server) initScheduleHandler(db *gorm.DB) *v1.ScheduleHandler {
	scheduleDAO := dao.NewScheduleDAO(db)
	repo := repository.NewScheduleRepository(scheduleDAO)
	svc := service.NewScheduleService(repo, s.Config.Schedule.Title)
	handler := v1.NewScheduleHandler(svc)

	return handler
}

func (s *Server) initCertificateHandler(db *gorm.DB) *v1.CertificateHandler {
	certificateDAO := dao.NewCertificateDAO(db)
	repo := repository.NewCertificateRepository(certificateDAO)
	svc := service.NewCertificateService(repo, s.clock)
	handler := v1.NewCertificateHandler(svc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(h handlers) {
	const basePath = "/api/v1"

	limiter := cache.NewRateLimiter(s.store, s.Config.Cache.RateLimitWindow, s.Config.Cache.RateLimitMax)
	limited := middleware.RateLimit(limiter)

	public := s.Router.Group(basePath)
	{
		public.GET("/categories", h.registration.HandleListCategories)
		public.POST("/registrations", limited, h.registration.HandleRegister)
		public.POST("/coupons/validate", limited, h.registration.HandleValidateCoupon)
		public.POST("/payments/verify", limited, h.registration.HandleVerifyPayment)

		public.POST("/webhooks/stripe", middleware.MaxBodySize(v1.MaxWebhookBody), h.webhook.HandleStripeWebhook)

		public.GET("/media/:id", h.media.HandleGetMedia)
		public.GET("/schedule", h.schedule.HandleGetSchedule)
		public.GET("/schedule/pdf", h.schedule.HandleSchedulePDF)

		public.GET("/certificates/:code", limited, h.certificate.HandleGetCertificate)
		public.POST("/certificates/verify", limited, h.certificate.HandleVerifyCertificate)

		public.POST("/admin/login", limited, h.auth.HandleLogin)
	}

	admin := s.Router.Group(basePath+"/admin", middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		admin.GET("/me", h.auth.HandleGetMe)
		admin.POST("/users", h.auth.HandleCreateAdmin)

		admin.POST("/categories/:id/sync", h.registration.HandleSyncCategory)
		admin.POST("/registrations/dedup", h.registration.HandleDeduplicate)

		admin.GET("/finance/kpis", h.finance.HandleKPIs)
		admin.GET("/finance/series", h.finance.HandleSeries)
		admin.GET("/finance/breakdown", h.finance.HandleBreakdown)
		admin.GET("/finance/payment-method", h.finance.HandlePaymentMethod)

		admin.POST("/media", h.media.HandleUpload)
		admin.PUT("/schedule", h.schedule.HandleReplaceSchedule)

		admin.POST("/certificates", h.certificate.HandleIssueCertificate)
		admin.POST("/certificates/:code/revoke", h.certificate.HandleRevokeCertificate)

		admin.GET("/realtime", h.realtime.HandleRealtime)
	}

	s.Router.GET("/media/*key", h.media.HandleServeObject)
	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "CIVENI 2025 API"
	docs.SwaggerInfo.Description = "Registrations, payments, finance and content for CIVENI 2025."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
