package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "docchat-backend/internal/auth"
	"docchat-backend/internal/chat"
	"docchat-backend/internal/files"
	"docchat-backend/internal/generated"
	"docchat-backend/internal/ingest"
	"docchat-backend/internal/llm"
	openai "docchat-backend/internal/llm/openai"
	"docchat-backend/internal/plans"
	"docchat-backend/internal/queue"
	"docchat-backend/internal/shared/config"
	"docchat-backend/internal/shared/server"
	"docchat-backend/internal/shared/storage/db"
	"docchat-backend/internal/shared/storage/object"
	localstore "docchat-backend/internal/shared/storage/object/local"
	s3store "docchat-backend/internal/shared/storage/object/s3"
	"docchat-backend/internal/shared/telemetry"
	"docchat-backend/internal/vectorindex"
)

// App holds shared dependencies for the API and worker processes.
type App struct {
	Config config.Config
	Router *gin.Engine
	Log    *telemetry.Logger
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client
	Index  vectorindex.Index

	FilesRepo     files.Repo
	GeneratedRepo generated.Repo
	PlansResolver plans.Resolver

	Embedder  llm.Embedder
	Completer llm.Completer

	FilesService     *files.Service
	IngestService    *ingest.Service
	GeneratedService *generated.Service
	ChatService      *chat.Service

	FilesHandler     *files.Handler
	GeneratedHandler *generated.Handler
	ChatHandler      *chat.Handler
	GoogleAuth       *googleauth.GoogleService
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		Log:    telemetry.New(os.Stdout),
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		FilesHandler:     app.FilesHandler,
		GeneratedHandler: app.GeneratedHandler,
		ChatHandler:      app.ChatHandler,
		GoogleAuth:       app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.IngestQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.IngestQueueURL)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var filesRepo files.Repo
	var generatedRepo generated.Repo
	var plansResolver plans.Resolver
	var index vectorindex.Index

	if app.DB != nil {
		filesRepo = &files.PGRepo{DB: app.DB}
		generatedRepo = &generated.PGRepo{DB: app.DB}
		plansResolver = &plans.PGResolver{DB: app.DB}
		index = &vectorindex.PGIndex{DB: app.DB}
	} else {
		filesRepo = files.NewMemoryRepo()
		generatedRepo = generated.NewMemoryRepo()
		plansResolver = plans.NewMemoryResolver()
		index = vectorindex.NewMemoryIndex()
	}

	embedder := llm.Embedder(llm.PlaceholderEmbedder{})
	completer := llm.Completer(llm.PlaceholderCompleter{})
	if app.Config.LLMProvider == "openai" {
		model := app.Config.LLMModel
		if strings.TrimSpace(model) == "" {
			model = "gpt-3.5-turbo"
		}
		client, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), model, app.Config.EmbeddingModel)
		if err != nil {
			if !isDevLike(app.Config.Env) {
				return err
			}
			log.Printf("bootstrap: openai client unavailable; using placeholders: %v", err)
		} else {
			embedder = client
			completer = client
		}
	}

	ingestSvc := &ingest.Service{
		Repo:     filesRepo,
		Download: ingest.NewHTTPDownloader(),
		Plans:    plansResolver,
		Tiers:    plans.NewTable(app.Config.FreePagesPerPDF, app.Config.ProPagesPerPDF),
		Store:    app.Store,
		Embedder: embedder,
		Index:    index,
		Log:      app.Log,
	}

	filesSvc := &files.Service{
		Repo:    filesRepo,
		Ingest:  ingestSvc,
		Queue:   app.Queue,
		Vectors: index,
		Log:     app.Log,
	}

	generator, err := generated.NewGenerator(app.Config.GeneratorStrategy, completer)
	if err != nil {
		return err
	}
	generatedSvc := &generated.Service{
		Repo:     generatedRepo,
		Files:    filesRepo,
		Store:    app.Store,
		Generate: generator,
		Strategy: app.Config.GeneratorStrategy,
		Log:      app.Log,
	}

	chatSvc := &chat.Service{
		Files:    filesRepo,
		Index:    index,
		Embedder: embedder,
		Complete: completer,
		TopK:     app.Config.ChatTopK,
		Log:      app.Log,
	}

	app.Index = index
	app.FilesRepo = filesRepo
	app.GeneratedRepo = generatedRepo
	app.PlansResolver = plansResolver
	app.Embedder = embedder
	app.Completer = completer
	app.FilesService = filesSvc
	app.IngestService = ingestSvc
	app.GeneratedService = generatedSvc
	app.ChatService = chatSvc
	app.FilesHandler = files.NewHandler(filesSvc)
	app.GeneratedHandler = generated.NewHandler(generatedSvc)
	app.ChatHandler = chat.NewHandler(chatSvc)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
	)

	return nil
}
