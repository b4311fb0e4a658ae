// Package views renders records, accounts and session state for the
// terminal, plus the printable report shared with the web UI.
package views

import "github.com/ahmed-kaif/hcv-frontend/internal/models"

// Guidance is the advice attached to a classification.
type Guidance struct {
	// Title heads the result panel after a submission.
	Title string
	// Advice is the long text shown with a fresh result.
	Advice string
	// Assessment is the short text shown in history and detail views.
	Assessment string
}

var guidance = map[string]Guidance{
	models.LabelNegative: {
		Title:      "No HCV Detected",
		Advice:     "The test results indicate no presence of HCV. Continue maintaining good health practices and regular check-ups.",
		Assessment: "No signs of HCV detected. Continue regular health monitoring.",
	},
	models.LabelHepatitis: {
		Title:      "Hepatitis Detected",
		Advice:     "The results indicate hepatitis. Please consult with a healthcare professional immediately for proper diagnosis and treatment plan.",
		Assessment: "Hepatitis detected. Immediate medical consultation recommended.",
	},
	models.LabelFibrosis: {
		Title:      "Liver Fibrosis Detected",
		Advice:     "The results indicate liver fibrosis. This is a serious condition requiring immediate medical attention. Please consult a hepatologist as soon as possible.",
		Assessment: "Liver fibrosis detected. Urgent specialist consultation required.",
	},
	models.LabelCirrhosis: {
		Title:      "Cirrhosis Detected - Critical",
		Advice:     "The results indicate cirrhosis, an advanced stage of liver disease. Seek immediate medical attention from a liver specialist. Early intervention is crucial.",
		Assessment: "Advanced liver cirrhosis detected. Seek emergency medical care.",
	},
}

// GuidanceFor returns the advice for a result label. Unknown labels get
// an empty Guidance.
func GuidanceFor(label string) Guidance {
	return guidance[label]
}
