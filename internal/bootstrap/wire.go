package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"application-generator/handler"
	"application-generator/internal/config"
	"application-generator/internal/integrations/openai"
	"application-generator/internal/integrations/paramstore"
	"application-generator/internal/repository"
	"application-generator/internal/usecase"
)

// AWSConfigLoader is swapped in tests.
type AWSConfigLoader func(ctx context.Context) (aws.Config, error)

func defaultAWSConfig(ctx context.Context) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx)
}

// NewHandler builds the generate handler from cfg. AWS configuration is only
// loaded when SSM or the generation log is in use.
func NewHandler(ctx context.Context, cfg config.Config, logger *slog.Logger) (*handler.Handler, error) {
	return newHandler(ctx, cfg, logger, defaultAWSConfig)
}

func newHandler(ctx context.Context, cfg config.Config, logger *slog.Logger, loadAWS AWSConfigLoader) (*handler.Handler, error) {
	var (
		awsCfg    aws.Config
		awsLoaded bool
	)
	needAWS := cfg.UsesParamStore() || cfg.GenerationLogTable != ""
	if needAWS {
		c, err := loadAWS(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		awsCfg, awsLoaded = c, true
	}

	keys, err := keySource(cfg, awsCfg, awsLoaded)
	if err != nil {
		return nil, err
	}

	llm, err := openai.NewClient(keys,
		openai.WithBaseURL(cfg.OpenAIBaseURL),
		openai.WithHTTPClient(&http.Client{Timeout: cfg.OpenAITimeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("create OpenAI client: %w", err)
	}

	var recorder usecase.Recorder = repository.Noop{}
	if cfg.GenerationLogTable != "" {
		rec, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.GenerationLogTable)
		if err != nil {
			return nil, fmt.Errorf("create generation log: %w", err)
		}
		recorder = rec
	}

	svc, err := usecase.NewGenerateService(llm, recorder, cfg.OpenAIModel, logger)
	if err != nil {
		return nil, fmt.Errorf("create generate service: %w", err)
	}

	h, err := handler.NewHandler(svc, handler.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create handler: %w", err)
	}
	return h, nil
}

func keySource(cfg config.Config, awsCfg aws.Config, awsLoaded bool) (openai.KeySource, error) {
	if !cfg.UsesParamStore() {
		return openai.StaticKey(cfg.OpenAIAPIKey), nil
	}
	if !awsLoaded {
		return nil, errors.New("AWS config required for OPENAI_TOKEN_PARAM")
	}
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return nil, fmt.Errorf("create SSM client: %w", err)
	}
	keys, err := openai.NewParamStoreKey(ssmClient, cfg.OpenAITokenParam)
	if err != nil {
		return nil, fmt.Errorf("create key source: %w", err)
	}
	return keys, nil
}
