package client

import "application-generator/internal/domain"

const (
	MsgResumeRequired = "Please upload a resume file."
	MsgGenerateFailed = "Failed to generate application. Please try again."

	labelIdle    = "Generate Tailored Application"
	labelLoading = "Generating..."
)

// SelectedFile is the resume chosen by the user.
type SelectedFile struct {
	Name string
	Type string
	Size int64
	Data []byte
}

// State is the form's view state. Values are replaced, never mutated, by Reduce.
type State struct {
	File           *SelectedFile
	JobDescription string
	DragOver       bool
	Loading        bool
	Error          string
	Result         *domain.ApplicationResult
}

// CanSubmit reports whether the generate trigger is enabled.
func (s State) CanSubmit() bool {
	return !s.Loading
}

func (s State) ButtonLabel() string {
	if s.Loading {
		return labelLoading
	}
	return labelIdle
}

// Action is a discrete UI event.
type Action interface {
	apply(State) State
}

// Reduce returns the state that results from applying a to s.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}

type FileSelected struct{ File SelectedFile }

func (a FileSelected) apply(s State) State {
	f := a.File
	s.File = &f
	return s
}

type JobDescriptionChanged struct{ Text string }

func (a JobDescriptionChanged) apply(s State) State {
	s.JobDescription = a.Text
	return s
}

type DragEntered struct{}

func (DragEntered) apply(s State) State {
	s.DragOver = true
	return s
}

type DragLeft struct{}

func (DragLeft) apply(s State) State {
	s.DragOver = false
	return s
}

// FileDropped only accepts PDF and DOCX files.
type FileDropped struct{ File SelectedFile }

func (a FileDropped) apply(s State) State {
	s.DragOver = false
	switch a.File.Type {
	case MimePDF, MimeDOCX:
		f := a.File
		s.File = &f
	}
	return s
}

type SubmitStarted struct{}

func (SubmitStarted) apply(s State) State {
	s.Loading = true
	s.Error = ""
	s.Result = nil
	return s
}

type ValidationFailed struct{}

func (ValidationFailed) apply(s State) State {
	s.Loading = false
	s.Error = MsgResumeRequired
	return s
}

type SubmitSucceeded struct{ Result domain.ApplicationResult }

func (a SubmitSucceeded) apply(s State) State {
	r := a.Result
	s.Loading = false
	s.Error = ""
	s.Result = &r
	return s
}

type SubmitFailed struct{}

func (SubmitFailed) apply(s State) State {
	s.Loading = false
	s.Error = MsgGenerateFailed
	return s
}
