package views

import (
	_ "embed"
	"html/template"
	"io"

	"github.com/ahmed-kaif/hcv-frontend/internal/models"
)

//go:embed report.html
var reportSource string

var reportTemplate = template.Must(template.New("report").Parse(reportSource))

// ReportData is the model of the HTML report.
type ReportData struct {
	ID         int64
	Date       string
	Info       models.ResultInfo
	Assessment string
	Params     []Param
	AutoPrint  bool
}

// NewReportData builds the report model of rec.
func NewReportData(rec *models.PredictionRecord) ReportData {
	info := rec.Result()
	return ReportData{
		ID:         rec.ID,
		Date:       Date(rec.CreatedAt),
		Info:       info,
		Assessment: GuidanceFor(info.Label).Assessment,
		Params:     Params(rec.PredictionRequest),
	}
}

// ReportHTML writes the standalone printable HTML report. With autoPrint
// the page opens the print dialog when loaded.
func ReportHTML(w io.Writer, rec *models.PredictionRecord, autoPrint bool) error {
	data := NewReportData(rec)
	data.AutoPrint = autoPrint
	return reportTemplate.Execute(w, data)
}
