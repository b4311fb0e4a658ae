package prediction

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/ahmed-kaif/hcv-frontend/internal/models"
)

// MsgRequiredFields is the validation message for a form missing any
// required value.
const MsgRequiredFields = "Please fill in all required fields"

// RequiredFields lists the lab values a submission must carry, in form
// order.
var RequiredFields = []string{"ALB", "ALP", "AST", "CHE", "CGT"}

// OptionalFields lists the numeric values that default to zero.
var OptionalFields = []string{"CREA", "CHOL", "PROT", "BIL", "ALT", "Age"}

// Form is the raw input of a prediction request. Required values are kept
// as typed so that "empty" can be told apart from zero-by-default.
type Form struct {
	ALB, ALP, AST, CHE, CGT string

	CREA, CHOL, PROT, BIL, ALT, Age float64
	Sex                             models.Sex
}

// DefaultForm returns an empty form: required values blank, optional
// values zero, Sex M.
func DefaultForm() Form {
	return Form{Sex: models.SexMale}
}

// Set updates one field by name. Optional numeric fields that do not parse
// become zero; Sex accepts M or F.
func (f *Form) Set(name, value string) error {
	value = strings.TrimSpace(value)
	if p := f.required(name); p != nil {
		*p = value
		return nil
	}
	if p := f.optional(name); p != nil {
		n, ok := parseNumber(value)
		if !ok {
			n = 0
		}
		*p = n
		return nil
	}
	if name == "Sex" {
		switch models.Sex(strings.ToUpper(value)) {
		case models.SexMale, "":
			f.Sex = models.SexMale
		case models.SexFemale:
			f.Sex = models.SexFemale
		default:
			return fmt.Errorf("sex must be M or F, got %q", value)
		}
		return nil
	}
	return fmt.Errorf("unknown field %q", name)
}

// FormFromValues builds a form from submitted values, e.g. an HTML form or
// parsed flags. Unknown keys are ignored.
func FormFromValues(values url.Values) (Form, error) {
	f := DefaultForm()
	for _, name := range append(append(append([]string{}, RequiredFields...), OptionalFields...), "Sex") {
		if v, ok := values[name]; ok && len(v) > 0 {
			if err := f.Set(name, v[0]); err != nil {
				return f, err
			}
		}
	}
	return f, nil
}

// Values returns the form as submitted values, the inverse of
// FormFromValues. Optional values that are zero are left blank.
func (f Form) Values() url.Values {
	v := url.Values{"Sex": {string(f.Sex)}}
	for _, name := range RequiredFields {
		v.Set(name, *f.required(name))
	}
	for _, name := range OptionalFields {
		if n := *f.optional(name); n != 0 {
			v.Set(name, strconv.FormatFloat(n, 'f', -1, 64))
		}
	}
	return v
}

// Request validates the form and converts it to a request. A required
// value that is blank, not a finite number, or zero counts as missing.
func (f Form) Request() (models.PredictionRequest, error) {
	req := models.PredictionRequest{
		CREA: f.CREA,
		CHOL: f.CHOL,
		PROT: f.PROT,
		BIL:  f.BIL,
		ALT:  f.ALT,
		Age:  f.Age,
		Sex:  f.Sex,
	}
	if req.Sex == "" {
		req.Sex = models.SexMale
	}

	var missing []string
	targets := []*float64{&req.ALB, &req.ALP, &req.AST, &req.CHE, &req.CGT}
	for i, name := range RequiredFields {
		n, ok := parseNumber(*f.required(name))
		if !ok || n == 0 {
			missing = append(missing, name)
			continue
		}
		*targets[i] = n
	}
	if len(missing) > 0 {
		return models.PredictionRequest{}, &models.ValidationError{Message: MsgRequiredFields, Fields: missing}
	}
	return req, nil
}

// parseNumber accepts finite decimal numbers only; NaN and infinities
// cannot be encoded as JSON.
func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func (f *Form) required(name string) *string {
	switch name {
	case "ALB":
		return &f.ALB
	case "ALP":
		return &f.ALP
	case "AST":
		return &f.AST
	case "CHE":
		return &f.CHE
	case "CGT":
		return &f.CGT
	}
	return nil
}

func (f *Form) optional(name string) *float64 {
	switch name {
	case "CREA":
		return &f.CREA
	case "CHOL":
		return &f.CHOL
	case "PROT":
		return &f.PROT
	case "BIL":
		return &f.BIL
	case "ALT":
		return &f.ALT
	case "Age":
		return &f.Age
	}
	return nil
}
