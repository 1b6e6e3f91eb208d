package domain

// ApplicationRequest is the body accepted by the generation endpoint.
type ApplicationRequest struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
}

// ApplicationResult is the tailored resume and cover letter pair, both Markdown.
type ApplicationResult struct {
	Resume      string `json:"resume"`
	CoverLetter string `json:"cover_letter"`
}
