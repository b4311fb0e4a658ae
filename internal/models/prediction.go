package models

// Sex is the patient sex sent with a prediction request.
type Sex string

// Accepted values for Sex.
const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

// PredictionRequest holds the lab values submitted for classification.
// ALB, ALP, AST, CHE and CGT are required; the rest default to zero.
type PredictionRequest struct {
	ALB  float64 `json:"ALB"`
	ALP  float64 `json:"ALP"`
	AST  float64 `json:"AST"`
	CHE  float64 `json:"CHE"`
	CGT  float64 `json:"CGT"`
	CREA float64 `json:"CREA"`
	CHOL float64 `json:"CHOL"`
	PROT float64 `json:"PROT"`
	BIL  float64 `json:"BIL"`
	ALT  float64 `json:"ALT"`
	Age  float64 `json:"Age"`
	Sex  Sex     `json:"Sex"`
}

// PredictionRecord is a stored classification returned by the backend.
type PredictionRecord struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"`
	ResultID  int       `json:"result_id"`
	CreatedAt Timestamp `json:"created_at"`
	PredictionRequest
}

// Result classifies the record's result code.
func (p PredictionRecord) Result() ResultInfo {
	return Classify(p.ResultID)
}
