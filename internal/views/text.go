package views

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ahmed-kaif/hcv-frontend/internal/models"
	"github.com/ahmed-kaif/hcv-frontend/internal/prediction"
)

const dateLayout = "2006-01-02 15:04"

// Number formats a lab value without trailing zeros.
func Number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Date formats a timestamp in local time, or "N/A" when unset.
func Date(ts models.Timestamp) string {
	if ts.IsZero() {
		return "N/A"
	}
	return ts.In(time.Local).Format(dateLayout)
}

// SexName spells out a sex code.
func SexName(s models.Sex) string {
	switch s {
	case models.SexMale:
		return "Male"
	case models.SexFemale:
		return "Female"
	}
	return "N/A"
}

// Param is one named lab value of a record.
type Param struct {
	Name  string
	Value string
}

// Params lists the values of a record in form order. Optional values that
// are zero are left out, except Age which shows as N/A.
func Params(req models.PredictionRequest) []Param {
	out := []Param{
		{"ALB", Number(req.ALB)},
		{"ALP", Number(req.ALP)},
		{"AST", Number(req.AST)},
		{"CHE", Number(req.CHE)},
		{"CGT", Number(req.CGT)},
	}
	for _, p := range []struct {
		name string
		v    float64
	}{{"CREA", req.CREA}, {"CHOL", req.CHOL}, {"PROT", req.PROT}, {"BIL", req.BIL}, {"ALT", req.ALT}} {
		if p.v != 0 {
			out = append(out, Param{p.name, Number(p.v)})
		}
	}
	age := "N/A"
	if req.Age > 0 {
		age = Number(req.Age)
	}
	return append(out, Param{"Age", age}, Param{"Sex", SexName(req.Sex)})
}

// Result prints a freshly submitted record with its full advice.
func Result(w io.Writer, rec *models.PredictionRecord) {
	info := rec.Result()
	g := GuidanceFor(info.Label)

	fmt.Fprintf(w, "Prediction #%d\n", rec.ID)
	fmt.Fprintf(w, "Result:     %s\n", info.Label)
	fmt.Fprintf(w, "Risk level: %s\n", info.Severity)
	fmt.Fprintf(w, "Date:       %s\n", Date(rec.CreatedAt))
	if g.Title != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", g.Title, g.Advice)
	}
	fmt.Fprintln(w, "\nTest Parameters")
	writeParams(w, rec.PredictionRequest)
}

// Detail prints a stored record with the short assessment.
func Detail(w io.Writer, rec *models.PredictionRecord) {
	info := rec.Result()
	fmt.Fprintf(w, "Prediction #%d (%s)\n", rec.ID, Date(rec.CreatedAt))
	fmt.Fprintf(w, "Result: %s (%s risk)\n", info.Label, info.Severity)
	if a := GuidanceFor(info.Label).Assessment; a != "" {
		fmt.Fprintf(w, "Clinical Assessment: %s\n", a)
	}
	fmt.Fprintln(w)
	writeParams(w, rec.PredictionRequest)
}

// History prints the record list followed by the per-label summary.
func History(w io.Writer, recs []models.PredictionRecord) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "No predictions yet. Run `hcv predict` to create one.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tRESULT\tRISK")
	for _, r := range recs {
		info := r.Result()
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, Date(r.CreatedAt), info.Label, info.Severity)
	}
	tw.Flush()

	fmt.Fprintln(w)
	Summary(w, prediction.Summarize(recs))
}

// Summary prints per-label counts.
func Summary(w io.Writer, counts []prediction.LabelCount) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range counts {
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", c.Label, c.Count, c.Percentage)
	}
	tw.Flush()
}

// Report prints the plain-text printable report of a record.
func Report(w io.Writer, rec *models.PredictionRecord) {
	info := rec.Result()
	fmt.Fprintln(w, "HCV Prediction Report")
	fmt.Fprintln(w, strings.Repeat("=", 21))
	fmt.Fprintf(w, "ID:     #%d\n", rec.ID)
	fmt.Fprintf(w, "Date:   %s\n", Date(rec.CreatedAt))
	fmt.Fprintf(w, "Result: %s (%s risk)\n", info.Label, info.Severity)
	if a := GuidanceFor(info.Label).Assessment; a != "" {
		fmt.Fprintf(w, "\n%s\n", a)
	}
	fmt.Fprintln(w)
	writeParams(w, rec.PredictionRequest)
}

// Profile prints the signed-in account.
func Profile(w io.Writer, u *models.User) {
	fmt.Fprintf(w, "Name:     %s\n", u.Name)
	fmt.Fprintf(w, "Email:    %s\n", u.Email)
	fmt.Fprintf(w, "Provider: %s\n", u.Provider())
	if u.IsAdmin {
		fmt.Fprintln(w, "Role:     admin")
	}
	fmt.Fprintf(w, "Joined:   %s\n", Date(u.CreatedAt))
}

// Users prints the account list.
func Users(w io.Writer, users []models.User) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPROVIDER\tADMIN\tACTIVE")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Provider(), yesNo(u.IsAdmin), yesNo(u.IsActive))
	}
	tw.Flush()
}

// User prints one account in full.
func User(w io.Writer, u *models.User) {
	fmt.Fprintf(w, "ID:       %d\n", u.ID)
	Profile(w, u)
	fmt.Fprintf(w, "Active:   %s\n", yesNo(u.IsActive))
}

// Status prints the session state.
func Status(w io.Writer, loading bool, s models.Session) {
	switch {
	case loading:
		fmt.Fprintln(w, "Session: loading")
		return
	case !s.Authenticated:
		fmt.Fprintln(w, "Session: signed out")
		return
	}
	fmt.Fprintln(w, "Session: signed in")
	id := s.Identity
	if id == nil {
		return
	}
	if id.Subject != "" {
		fmt.Fprintf(w, "Subject: %s\n", id.Subject)
	}
	if id.IsAdmin {
		fmt.Fprintln(w, "Role:    admin")
	}
	if !id.ExpiresAt.IsZero() {
		fmt.Fprintf(w, "Expires: %s\n", id.ExpiresAt.In(time.Local).Format(dateLayout))
	}
}

func writeParams(w io.Writer, req models.PredictionRequest) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, p := range Params(req) {
		fmt.Fprintf(tw, "  %s\t%s\n", p.Name, p.Value)
	}
	tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
