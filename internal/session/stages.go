package session

import "strings"

// Stage is one pipeline step label with the status-message substrings that
// select it. The protocol carries no stage identifier, only free text, so the
// mapping lives here as swappable data rather than inline matching logic.
type Stage struct {
	Label    string
	Keywords []string
}

// DefaultStages is the fixed, ordered pipeline-stage list. Order matters:
// the first stage with a matching keyword wins.
var DefaultStages = []Stage{
	{Label: "Extracting frames", Keywords: []string{"extract", "decoding"}},
	{Label: "Detecting faces", Keywords: []string{"face"}},
	{Label: "Recognizing actors", Keywords: []string{"actor", "recogni"}},
	{Label: "Analyzing emotions", Keywords: []string{"emotion"}},
	{Label: "Classifying shots", Keywords: []string{"shot"}},
	{Label: "Analyzing lighting", Keywords: []string{"light"}},
	{Label: "Analyzing color", Keywords: []string{"color", "palette"}},
	{Label: "Tracking camera movement", Keywords: []string{"camera", "movement"}},
	{Label: "Scoring composition", Keywords: []string{"composition"}},
	{Label: "Finalizing results", Keywords: []string{"final", "aggregat"}},
}

// matchStage picks the first stage whose keywords appear in msg
// (case-insensitive). Returns "" when nothing matches so the caller can keep
// its previous label.
func matchStage(stages []Stage, msg string) string {
	lower := strings.ToLower(msg)
	for _, stage := range stages {
		for _, kw := range stage.Keywords {
			if strings.Contains(lower, kw) {
				return stage.Label
			}
		}
	}
	return ""
}
