package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"application-generator/internal/domain"
)

// Generator is satisfied by *APIClient.
type Generator interface {
	Generate(ctx context.Context, in domain.ApplicationRequest) (domain.ApplicationResult, error)
}

// TextExtractor converts a selected file to plain text.
type TextExtractor func(name, mimeType string, data []byte) (string, error)

// Form drives the resume form. All state changes go through Reduce.
type Form struct {
	api     Generator
	extract TextExtractor
	logger  *slog.Logger

	mu    sync.Mutex
	state State
}

type FormOption func(*Form)

func WithExtractor(fn TextExtractor) FormOption {
	return func(f *Form) {
		if fn != nil {
			f.extract = fn
		}
	}
}

func WithLogger(logger *slog.Logger) FormOption {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

func NewForm(api Generator, opts ...FormOption) (*Form, error) {
	if api == nil {
		return nil, errors.New("client: generator must not be nil")
	}
	f := &Form{api: api, extract: ExtractText, logger: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// State returns a snapshot of the current view state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Dispatch applies a and returns the new state.
func (f *Form) Dispatch(a Action) State {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = Reduce(f.state, a)
	return f.state
}

// Submit runs one generation attempt. It is a no-op while a previous attempt
// is in flight. Without a selected file it fails validation and makes no
// request. The busy flag is cleared on every return path, including panics.
func (f *Form) Submit(ctx context.Context) (st State) {
	f.mu.Lock()
	current := f.state
	if current.Loading {
		f.mu.Unlock()
		return current
	}
	if current.File == nil {
		f.state = Reduce(current, ValidationFailed{})
		st = f.state
		f.mu.Unlock()
		return st
	}
	f.state = Reduce(current, SubmitStarted{})
	file := *current.File
	jobDescription := current.JobDescription
	f.mu.Unlock()

	var outcome Action = SubmitFailed{}
	defer func() {
		st = f.Dispatch(outcome)
	}()

	resumeText, err := f.extract(file.Name, file.Type, file.Data)
	if err != nil {
		f.logger.WarnContext(ctx, "failed to read resume file", "file", file.Name, "err", err)
		return
	}

	result, err := f.api.Generate(ctx, domain.ApplicationRequest{
		ResumeText:     resumeText,
		JobDescription: jobDescription,
	})
	if err != nil {
		f.logger.ErrorContext(ctx, "generate request failed", "err", err)
		return
	}

	outcome = SubmitSucceeded{Result: result}
	return
}
