package models

// Severity is the risk level attached to a classification.
type Severity string

// Severity levels, lowest first.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
	SeverityUnknown  Severity = "unknown"
)

// Result labels.
const (
	LabelNegative  = "Negative"
	LabelHepatitis = "Hepatitis"
	LabelFibrosis  = "Fibrosis"
	LabelCirrhosis = "Cirrhosis"
	LabelUnknown   = "Unknown"
)

// ResultInfo is the display classification of a result code.
type ResultInfo struct {
	Label    string   `json:"label"`
	Severity Severity `json:"severity"`
	Color    string   `json:"color"`
}

var resultTable = map[int]ResultInfo{
	0: {Label: LabelNegative, Severity: SeverityLow, Color: "green"},
	1: {Label: LabelHepatitis, Severity: SeverityMedium, Color: "yellow"},
	2: {Label: LabelFibrosis, Severity: SeverityHigh, Color: "orange"},
	3: {Label: LabelCirrhosis, Severity: SeverityCritical, Color: "red"},
}

var unknownResult = ResultInfo{Label: LabelUnknown, Severity: SeverityUnknown, Color: "gray"}

// Classify maps a result code from the prediction service to its label and
// severity. Codes outside 0..3 map to Unknown.
func Classify(resultID int) ResultInfo {
	if info, ok := resultTable[resultID]; ok {
		return info
	}
	return unknownResult
}

// ResultCodes returns the defined result codes in ascending order.
func ResultCodes() []int {
	return []int{0, 1, 2, 3}
}
