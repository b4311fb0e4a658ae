package prediction

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/ahmed-kaif/hcv-frontend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultForm(t *testing.T) {
	f := DefaultForm()
	assert.Equal(t, models.SexMale, f.Sex)
	assert.Empty(t, f.ALB)
	assert.Zero(t, f.Age)

	_, err := f.Request()
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, RequiredFields, verr.Fields)
}

func TestFormSet(t *testing.T) {
	f := DefaultForm()
	require.NoError(t, f.Set("ALB", " 47 "))
	require.NoError(t, f.Set("CREA", "not a number"))
	require.NoError(t, f.Set("Age", "52"))
	require.NoError(t, f.Set("Sex", "f"))

	assert.Equal(t, "47", f.ALB)
	assert.Zero(t, f.CREA)
	assert.Equal(t, 52.0, f.Age)
	assert.Equal(t, models.SexFemale, f.Sex)

	assert.Error(t, f.Set("Sex", "X"))
	assert.Error(t, f.Set("GGT", "1"))
}

func TestFormRequest(t *testing.T) {
	tests := []struct {
		name    string
		alb     string
		missing bool
	}{
		{"number", "47", false},
		{"decimal", "3.5", false},
		{"blank", "", true},
		{"zero", "0", true},
		{"text", "abc", true},
		{"not a number", "NaN", true},
		{"infinity", "Inf", true},
		{"negative infinity", "-Infinity", true},
		{"overflow", "1e400", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := completeForm()
			f.ALB = tt.alb
			req, err := f.Request()
			if tt.missing {
				assert.ErrorIs(t, err, models.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, req.ALB)
		})
	}
}

func TestFormOptionalNonFinite(t *testing.T) {
	f := completeForm()
	require.NoError(t, f.Set("Age", "NaN"))
	require.NoError(t, f.Set("BIL", "+Inf"))
	assert.Zero(t, f.Age)
	assert.Zero(t, f.BIL)

	req, err := f.Request()
	require.NoError(t, err)
	_, err = json.Marshal(req)
	assert.NoError(t, err, "request must encode")
}

func TestFormValuesRoundTrip(t *testing.T) {
	f := completeForm()
	require.NoError(t, f.Set("Age", "52"))
	require.NoError(t, f.Set("Sex", "F"))

	v := f.Values()
	assert.Equal(t, "47", v.Get("ALB"))
	assert.Equal(t, "52", v.Get("Age"))
	assert.Equal(t, "", v.Get("CREA"))
	assert.Equal(t, "F", v.Get("Sex"))

	back, err := FormFromValues(v)
	require.NoError(t, err)
	assert.Equal(t, f, back)
}

func TestFormFromValues(t *testing.T) {
	f, err := FormFromValues(url.Values{
		"ALB": {"47"}, "ALP": {"37.9"}, "AST": {"7.1"}, "CHE": {"6.6"}, "CGT": {"12.1"},
		"ALT": {"20"}, "Sex": {"F"}, "ignored": {"x"},
	})
	require.NoError(t, err)

	req, err := f.Request()
	require.NoError(t, err)
	assert.Equal(t, models.PredictionRequest{
		ALB: 47, ALP: 37.9, AST: 7.1, CHE: 6.6, CGT: 12.1, ALT: 20, Sex: models.SexFemale,
	}, req)

	_, err = FormFromValues(url.Values{"Sex": {"Q"}})
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	recs := []models.PredictionRecord{{ResultID: 0}, {ResultID: 0}, {ResultID: 3}, {ResultID: 9}}
	got := Summarize(recs)

	require.Len(t, got, 5)
	assert.Equal(t, "Negative", got[0].Label)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, 50.0, got[0].Percentage)
	assert.Equal(t, 0, got[1].Count)
	assert.Equal(t, "Cirrhosis", got[3].Label)
	assert.Equal(t, 25.0, got[3].Percentage)
	assert.Equal(t, "Unknown", got[4].Label)

	empty := Summarize(nil)
	require.Len(t, empty, 4)
	assert.Zero(t, empty[0].Percentage)
}
