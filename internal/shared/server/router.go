package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	auth0 "github.com/bootstrappedbetas/EOB-explainer/internal/auth"
	"github.com/bootstrappedbetas/EOB-explainer/internal/billing"
	"github.com/bootstrappedbetas/EOB-explainer/internal/eobs"
	"github.com/bootstrappedbetas/EOB-explainer/internal/extract"
	"github.com/bootstrappedbetas/EOB-explainer/internal/llm"
	openai "github.com/bootstrappedbetas/EOB-explainer/internal/llm/openai"
	"github.com/bootstrappedbetas/EOB-explainer/internal/shared/config"
	"github.com/bootstrappedbetas/EOB-explainer/internal/shared/server/middleware"
	"github.com/bootstrappedbetas/EOB-explainer/internal/shared/server/respond"
	"github.com/bootstrappedbetas/EOB-explainer/internal/shared/storage/db"
	"github.com/bootstrappedbetas/EOB-explainer/internal/shared/storage/object"
	localstore "github.com/bootstrappedbetas/EOB-explainer/internal/shared/storage/object/local"
	s3store "github.com/bootstrappedbetas/EOB-explainer/internal/shared/storage/object/s3"
	"github.com/bootstrappedbetas/EOB-explainer/internal/users"
)

// NewRouter constructs the Gin engine with middleware, dependencies, and
// routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.Env == "production"),
	)

	ctx := context.Background()

	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		conn, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			log.Printf("failed to connect database, falling back to memory: %v", err)
		} else {
			if err := db.RunMigrations(ctx, conn); err != nil {
				log.Printf("failed to run migrations, falling back to memory: %v", err)
				conn = nil
			}
			sqlDB = conn
		}
	}

	var usersRepo users.Repo
	var eobsRepo eobs.Repo
	if sqlDB != nil {
		usersRepo = &users.PGRepo{DB: sqlDB}
		eobsRepo = &eobs.PGRepo{DB: sqlDB}
	} else {
		usersRepo = users.NewMemoryRepo()
		eobsRepo = eobs.NewMemoryRepo()
	}

	store := buildStore(ctx, cfg)

	var llmClient llm.Client
	if cfg.AIEnabled() {
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			log.Printf("failed to build AI client, continuing without AI: %v", err)
		} else {
			llmClient = client
		}
	}

	usersSvc := users.NewService(usersRepo)
	eobsSvc := eobs.NewService(eobsRepo, usersSvc, store, extract.NewProcessor(cfg.PDFProcessorURL), llmClient)
	eobsHandler := eobs.NewHandler(eobsSvc)

	auth0Svc := auth0.NewAuth0Service(
		cfg.Auth0Domain,
		cfg.Auth0ClientID,
		cfg.Auth0ClientSecret,
		cfg.Auth0RedirectURL,
		cfg.UIRedirectURL,
	)

	billingSvc := billing.NewService(usersSvc, cfg.StripeSecretKey, cfg.StripePriceID, cfg.StripeWebhookSecret, cfg.AppURL)
	billingHandler := billing.NewHandler(billingSvc)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	auth0Svc.RegisterRoutes(api)
	eobsHandler.RegisterRoutes(api)
	billingHandler.RegisterRoutes(api)

	// Signature-verified, not session-authenticated.
	billingHandler.RegisterWebhook(r)

	return r
}

func buildStore(ctx context.Context, cfg config.Config) object.Store {
	if cfg.ObjectStoreType == "s3" {
		remote, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err == nil {
			return remote
		}
		log.Printf("failed to build S3 store, falling back to local: %v", err)
	}
	local, err := localstore.New(cfg.LocalStoreDir)
	if err != nil {
		log.Fatalf("failed to prepare local store dir: %v", err)
	}
	return local
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
