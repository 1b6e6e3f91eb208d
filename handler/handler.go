package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"application-generator/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"

	codeMethodNotAllowed = "METHOD_NOT_ALLOWED"

	msgMethodNotAllowed = "Method not allowed"
	msgMissingFields    = "Missing resumeText or jobDescription"
	msgInvalidBody      = "Invalid JSON body"
	msgGenerateFailed   = "Failed to generate application"
)

// Generator is the use case behind POST /api/generate.
type Generator interface {
	Generate(ctx context.Context, in usecase.GenerateInput) (usecase.GenerateOutput, error)
}

type generateRequest struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

type Handler struct {
	uc     Generator
	logger *slog.Logger
}

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func NewHandler(uc Generator, opts ...Option) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: generator must not be nil")
	}
	h := &Handler{uc: uc, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Handle serves one API Gateway proxy event.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()
	corrID := correlationID(req.Headers)
	logger := h.logger.With("correlation_id", corrID)

	resp := h.serve(ctx, logger, corrID, req)
	logger.InfoContext(ctx, "request complete",
		"method", req.HTTPMethod,
		"path", req.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

func (h *Handler) serve(ctx context.Context, logger *slog.Logger, corrID string, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if !strings.EqualFold(req.HTTPMethod, http.MethodPost) {
		return errorJSON(corrID, http.StatusMethodNotAllowed, errorResponse{Error: msgMethodNotAllowed, Code: codeMethodNotAllowed})
	}

	body, err := decodeBody(req)
	if err != nil {
		logger.WarnContext(ctx, "invalid request body", "err", err)
		return errorJSON(corrID, http.StatusBadRequest, errorResponse{Error: msgInvalidBody, Code: string(usecase.ErrorInvalidInput)})
	}

	out, err := h.uc.Generate(ctx, usecase.GenerateInput{
		ResumeText:     body.ResumeText,
		JobDescription: body.JobDescription,
		CorrelationID:  corrID,
	})
	if err != nil {
		return h.mapError(ctx, logger, corrID, err)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    responseHeaders(corrID),
		Body:       string(out.Application),
	}
}

func (h *Handler) mapError(ctx context.Context, logger *slog.Logger, corrID string, err error) events.APIGatewayProxyResponse {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		logger.ErrorContext(ctx, "unexpected generate error", "err", err)
		return errorJSON(corrID, http.StatusInternalServerError, errorResponse{
			Error:   msgGenerateFailed,
			Code:    string(usecase.ErrorInternal),
			Details: err.Error(),
		})
	}

	switch ucErr.Code {
	case usecase.ErrorInvalidInput:
		return errorJSON(corrID, http.StatusBadRequest, errorResponse{Error: msgMissingFields, Code: string(ucErr.Code)})
	default:
		logger.ErrorContext(ctx, "generate failed", "code", ucErr.Code, "reason", ucErr.Reason, "err", ucErr.Err)
		return errorJSON(corrID, http.StatusInternalServerError, errorResponse{
			Error:   msgGenerateFailed,
			Code:    string(ucErr.Code),
			Details: ucErr.Detail(),
		})
	}
}

func decodeBody(req events.APIGatewayProxyRequest) (generateRequest, error) {
	raw := req.Body
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return generateRequest{}, err
		}
		raw = string(decoded)
	}
	var body generateRequest
	if strings.TrimSpace(raw) == "" {
		return body, nil
	}
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return generateRequest{}, err
	}
	return body, nil
}

func errorJSON(corrID string, status int, payload errorResponse) events.APIGatewayProxyResponse {
	buf, err := json.Marshal(payload)
	if err != nil {
		buf = []byte(`{"error":"` + msgGenerateFailed + `","code":"` + string(usecase.ErrorInternal) + `"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    responseHeaders(corrID),
		Body:       string(buf),
	}
}

func responseHeaders(corrID string) map[string]string {
	return map[string]string{
		"Content-Type":    "application/json",
		correlationHeader: corrID,
	}
}

// correlationID returns the caller's X-Correlation-Id, matched case-insensitively,
// or a fresh UUID.
func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return uuid.NewString()
}
