package api

import (
	"context"
	"fmt"
	"os"

	"github.com/alex-pricope/teacher-evaluation-system/api/controllers"
	"github.com/alex-pricope/teacher-evaluation-system/api/transport"
	"github.com/alex-pricope/teacher-evaluation-system/evaluation"
	"github.com/alex-pricope/teacher-evaluation-system/feedback"
	"github.com/alex-pricope/teacher-evaluation-system/logging"
	"github.com/alex-pricope/teacher-evaluation-system/scoring"
	"github.com/alex-pricope/teacher-evaluation-system/storage"
	"github.com/alex-pricope/teacher-evaluation-system/syncer"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
)

type Server struct {
	config *Config
}

func NewServer(config *Config) *Server {
	return &Server{
		config: config,
	}
}

func (s *Server) Start() {
	ctx := context.Background()
	r := transport.NewRouter(gin.DebugMode)

	// Create storage
	stores, err := s.stores(ctx)
	if err != nil {
		logging.Log.Errorf("failed to create storage: %v", err)
		panic("failed to create storage")
	}
	legacy, err := s.config.LegacyLocation()
	if err != nil {
		logging.Log.Errorf("failed to load legacy timezone: %v", err)
		panic("failed to load legacy timezone")
	}
	scoring.SetLegacyLocation(legacy)

	state := evaluation.New(stores)
	if err := state.Load(ctx); err != nil {
		logging.Log.Errorf("failed to load state: %v", err)
		panic("failed to load state")
	}

	remote, err := s.remote()
	if err != nil {
		logging.Log.Errorf("failed to create sync remote: %v", err)
		panic("failed to create sync remote")
	}
	scheduler := syncer.NewScheduler(state, remote, s.config.SyncInterval)

	//Register controllers
	adminAuth := transport.AdminAuthMiddleware(s.config.AdminToken)
	submissionController := controllers.NewSubmissionController(state, s.polisher(ctx), scheduler)
	submissionController.RegisterRoutes(r)
	candidateController := controllers.NewCandidateController(state)
	candidateController.RegisterRoutes(r, adminAuth)
	dataController := controllers.NewDataController(state)
	dataController.RegisterRoutes(r, adminAuth)
	judgeController := controllers.NewJudgeController(state)
	judgeController.RegisterRoutes(r, adminAuth)
	syncController := controllers.NewSyncController(state, scheduler)
	syncController.RegisterRoutes(r, adminAuth)

	//Do not run lambda helper locally
	if os.Getenv("APP_ENV") == "local" {
		go scheduler.Run(ctx)
		startLocal(r, s.config.Port)
	} else {
		// Lambda freezes between invocations; sync runs on save and on manual trigger.
		startLambda(r)
	}
}

func (s *Server) stores(ctx context.Context) (evaluation.Stores, error) {
	if s.config.Backend == BackendMemory {
		logging.Log.Warn("using in-memory storage, data is lost on restart")
		mem := storage.NewMemoryStorage()
		return evaluation.Stores{
			Submissions: mem.Submissions(),
			Judges:      mem.Judges(),
			Overrides:   mem.Overrides(),
			SyncConfig:  mem.SyncConfig(),
		}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return evaluation.Stores{}, fmt.Errorf("load AWS config: %w", err)
	}
	dynamoClient := dynamodb.NewFromConfig(cfg)

	return evaluation.Stores{
		Submissions: &storage.DynamoSubmissionStorage{
			Client:    dynamoClient,
			TableName: s.config.TableNameSubmissions,
		},
		Judges: &storage.DynamoJudgeStorage{
			Client:    dynamoClient,
			TableName: s.config.TableNameJudges,
		},
		Overrides: &storage.DynamoOverrideStorage{
			Client:    dynamoClient,
			TableName: s.config.TableNameOverrides,
		},
		SyncConfig: &storage.DynamoSyncConfigStorage{
			Client:    dynamoClient,
			TableName: s.config.TableNameSettings,
		},
	}, nil
}

func (s *Server) remote() (syncer.Remote, error) {
	if s.config.SyncRemote == RemoteRedis {
		remote, err := syncer.NewRedisRemote(s.config.RedisURL)
		if err != nil {
			return nil, err
		}
		return remote, nil
	}
	return syncer.NewBinRemote(s.config.BinURL, s.config.SyncTimeout), nil
}

func (s *Server) polisher(ctx context.Context) feedback.Polisher {
	if s.config.FeedbackAPIKey == "" {
		logging.Log.Info("no feedback API key, polishing disabled")
		return feedback.NoopPolisher{}
	}
	p, err := feedback.NewGeminiPolisher(ctx, s.config.FeedbackAPIKey, s.config.FeedbackModel)
	if err != nil {
		logging.Log.Errorf("failed to create feedback polisher, polishing disabled: %v", err)
		return feedback.NoopPolisher{}
	}
	return p
}

// StartLambda sets up for AWS Lambda
func startLambda(engine *gin.Engine) {
	ginLambda := ginadapter.NewV2(engine)

	handler := func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		logging.Log.Infof("Lambda handler triggered on path: %s", req.RawPath)
		return ginLambda.ProxyWithContext(ctx, req)
	}

	logging.Log.Info("Starting lambda")
	lambda.Start(handler)
}

// StartLocal starts a normal HTTP server on the configured port
func startLocal(engine *gin.Engine, port int) {
	logging.Log.Info(fmt.Sprintf("Starting server on http://localhost:%d", port))

	if err := engine.Run(fmt.Sprintf(":%d", port)); err != nil {
		logging.Log.Fatalf("Failed to run server: %v", err)
	}
}
