package prediction

import "github.com/ahmed-kaif/hcv-frontend/internal/models"

// LabelCount is how many records carry one classification.
type LabelCount struct {
	models.ResultInfo
	Count      int
	Percentage float64
}

// Summarize counts records per classification, in severity order. Labels
// with no records are included with a zero count; Unknown only appears
// when present.
func Summarize(recs []models.PredictionRecord) []LabelCount {
	counts := make(map[string]int)
	for _, r := range recs {
		counts[r.Result().Label]++
	}

	var out []LabelCount
	for _, code := range models.ResultCodes() {
		info := models.Classify(code)
		out = append(out, LabelCount{ResultInfo: info, Count: counts[info.Label]})
	}
	if n := counts[models.LabelUnknown]; n > 0 {
		out = append(out, LabelCount{ResultInfo: models.Classify(-1), Count: n})
	}

	for i := range out {
		if len(recs) > 0 {
			out[i].Percentage = float64(out[i].Count) / float64(len(recs)) * 100
		}
	}
	return out
}
