package domain

// GenerationRecord is a metadata-only audit entry for one generation request.
// It never carries resume, job description or generated text.
type GenerationRecord struct {
	PK                  string
	SK                  string
	ID                  string
	CorrelationID       string
	Status              string
	Reason              string
	Model               string
	ResumeChars         int
	JobDescriptionChars int
	DurationMs          int64
	CreatedAt           string
	TTL                 int64
}
