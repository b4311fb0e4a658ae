package handlers

import (
	"net/http"

	"github.com/ahmed-kaif/hcv-frontend/internal/prediction"
)

// StatsViewModel is the data passed to the statistics view template.
type StatsViewModel struct {
	Layout
	Total   int
	Summary []prediction.LabelCount
	Error   string
}

// Statistics renders how the session's records are spread over the
// classifications.
func (h *Handlers) Statistics(w http.ResponseWriter, r *http.Request) {
	wf := h.workflow()
	vm := StatsViewModel{Layout: h.layout()}
	if err := wf.ListAll(r.Context()); err != nil {
		vm.Error = err.Error()
	}

	recs := wf.Predictions()
	vm.Total = len(recs)
	vm.Summary = prediction.Summarize(recs)
	h.render(w, r, "stats.html", vm)
}
