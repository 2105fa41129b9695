package domain

// FailedTranscriptMarker is persisted as the transcript when insight
// generation fails. Degraded insights are never indexed for search.
const FailedTranscriptMarker = "Error processing audio."

// VideoInsights is the structured result of processing a lesson's audio
// track: a verbatim transcript plus generated takeaways and chapters.
type VideoInsights struct {
	Transcript   string    `json:"transcript"`
	KeyTakeaways []string  `json:"key_takeaways"`
	Chapters     []Chapter `json:"chapters"`

	// Degraded marks the placeholder produced when the generation
	// provider fails. The pipeline persists it so the lesson keeps an
	// explanation, but skips chunking and embedding.
	Degraded bool `json:"-"`
}

// DegradedInsights returns the placeholder stored when insight generation
// fails, so that losing a transcript never loses the lesson itself.
func DegradedInsights() *VideoInsights {
	return &VideoInsights{
		Transcript:   FailedTranscriptMarker,
		KeyTakeaways: []string{},
		Chapters:     []Chapter{},
		Degraded:     true,
	}
}
