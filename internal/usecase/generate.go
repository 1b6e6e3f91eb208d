package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"application-generator/internal/domain"
)

const (
	DefaultModel = "gpt-3.5-turbo"

	statusSuccess = "success"
	statusFailed  = "failed"
)

type LLMClient interface {
	Chat(ctx context.Context, model string, messages []domain.ChatMessage) (string, error)
}

// Recorder stores metadata about finished generations.
type Recorder interface {
	Record(ctx context.Context, rec domain.GenerationRecord) error
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

type GenerateService struct {
	llm      LLMClient
	recorder Recorder
	model    string
	logger   *slog.Logger
	now      func() time.Time
}

type GenerateInput struct {
	ResumeText     string
	JobDescription string
	CorrelationID  string
}

type GenerateOutput struct {
	// Application is the completion's JSON value, relayed as returned.
	Application json.RawMessage
}

func NewGenerateService(llm LLMClient, recorder Recorder, model string, logger *slog.Logger) (*GenerateService, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	if recorder == nil {
		return nil, errors.New("usecase: recorder must not be nil")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerateService{
		llm:      llm,
		recorder: recorder,
		model:    model,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (s *GenerateService) Generate(ctx context.Context, in GenerateInput) (GenerateOutput, error) {
	if strings.TrimSpace(in.ResumeText) == "" || strings.TrimSpace(in.JobDescription) == "" {
		return GenerateOutput{}, newError(ErrorInvalidInput, "missing_field", nil)
	}

	start := s.now()
	raw, err := s.llm.Chat(ctx, s.model, buildPromptMessages(in.ResumeText, in.JobDescription))
	if err != nil {
		reason := "openai_error"
		if status, ok := upstreamStatusCode(err); ok {
			s.logger.WarnContext(ctx, "completion api rejected request", "correlation_id", in.CorrelationID, "status", status)
		}
		s.record(ctx, in, start, statusFailed, reason)
		return GenerateOutput{}, newError(ErrorUpstream, reason, err)
	}

	application, err := parseCompletion(raw)
	if err != nil {
		reason := "openai_malformed_response"
		s.record(ctx, in, start, statusFailed, reason)
		return GenerateOutput{}, newError(ErrorUpstream, reason, err)
	}

	s.record(ctx, in, start, statusSuccess, "")
	return GenerateOutput{Application: application}, nil
}

// record never fails the request; errors are only logged.
func (s *GenerateService) record(ctx context.Context, in GenerateInput, start time.Time, status, reason string) {
	rec := domain.GenerationRecord{
		ID:                  newUUID(),
		CorrelationID:       in.CorrelationID,
		Status:              status,
		Reason:              reason,
		Model:               s.model,
		ResumeChars:         len([]rune(in.ResumeText)),
		JobDescriptionChars: len([]rune(in.JobDescription)),
		DurationMs:          s.now().Sub(start).Milliseconds(),
	}
	if err := s.recorder.Record(ctx, rec); err != nil {
		s.logger.WarnContext(ctx, "failed to record generation", "correlation_id", in.CorrelationID, "err", err)
	}
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

var newUUID = func() string {
	return uuid.NewString()
}
