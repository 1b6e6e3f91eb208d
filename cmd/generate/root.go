package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"application-generator/internal/client"
)

type options struct {
	resume         string
	jobDescription string
	jobFile        string
	endpoint       string
	timeout        time.Duration
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "generate",
		Short:         "Generate a tailored resume and cover letter",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, stdout, stderr)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.resume, "resume", "", "resume file (.pdf, .docx or plain text)")
	f.StringVar(&opts.jobDescription, "job-description", "", "job description text")
	f.StringVar(&opts.jobFile, "job-file", "", "file containing the job description")
	f.StringVar(&opts.endpoint, "endpoint", envOr("GENERATE_ENDPOINT", "http://localhost:8080"), "base URL serving /api/generate")
	f.DurationVar(&opts.timeout, "timeout", 0, "request timeout (0 waits indefinitely)")
	cmd.MarkFlagsMutuallyExclusive("job-description", "job-file")
	return cmd
}

func run(cmd *cobra.Command, opts *options, stdout, stderr io.Writer) error {
	jobDescription := opts.jobDescription
	if opts.jobFile != "" {
		b, err := os.ReadFile(opts.jobFile)
		if err != nil {
			return fmt.Errorf("read job file: %w", err)
		}
		jobDescription = string(b)
	}

	api, err := client.NewAPIClient(opts.endpoint, client.WithHTTPClient(&http.Client{Timeout: opts.timeout}))
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	form, err := client.NewForm(api, client.WithLogger(logger))
	if err != nil {
		return err
	}

	if opts.resume != "" {
		data, err := os.ReadFile(opts.resume)
		if err != nil {
			return fmt.Errorf("read resume: %w", err)
		}
		name := filepath.Base(opts.resume)
		form.Dispatch(client.FileSelected{File: client.SelectedFile{
			Name: name,
			Type: client.DetectType(name, ""),
			Size: int64(len(data)),
			Data: data,
		}})
	}
	form.Dispatch(client.JobDescriptionChanged{Text: jobDescription})

	st := form.Submit(cmd.Context())
	if st.Error != "" {
		return errors.New(st.Error)
	}
	if st.Result == nil {
		return errors.New(client.MsgGenerateFailed)
	}
	return client.Render(stdout, *st.Result)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
