package command

import (
	"testing"

	"avrctl/pkg/models"

	"github.com/stretchr/testify/assert"
)

func f64(v float64) *float64 { return &v }

func levelParam() models.CommandParameter {
	return models.CommandParameter{
		ParamName: "level",
		ParamType: models.ParamInteger,
		Required:  true,
		MinValue:  f64(-80),
		MaxValue:  f64(18),
	}
}

func TestValidate_RequiredMissing(t *testing.T) {
	_, err := Validate([]models.CommandParameter{levelParam()}, map[string]any{})

	var cmdErr *Error
	assert.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, KindMissingParameter, cmdErr.Kind)
	assert.Equal(t, "level", cmdErr.Param)
}

func TestValidate_UnknownParameterRejected(t *testing.T) {
	_, err := Validate([]models.CommandParameter{levelParam()}, map[string]any{
		"level": "0",
		"zone":  "2",
	})

	var cmdErr *Error
	assert.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, KindUnknownParameter, cmdErr.Kind)
	assert.Equal(t, "zone", cmdErr.Param)
}

func TestValidate_IntegerCoercion(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		want     string
		wantKind Kind
	}{
		{name: "string digits", raw: "-30", want: "-30"},
		{name: "json number", raw: float64(-30), want: "-30"},
		{name: "trailing garbage", raw: "30x", wantKind: KindTypeMismatch},
		{name: "fractional json number", raw: 30.5, wantKind: KindTypeMismatch},
		{name: "boolean", raw: true, wantKind: KindTypeMismatch},
		{name: "at minimum", raw: "-80", want: "-80"},
		{name: "at maximum", raw: "18", want: "18"},
		{name: "below minimum", raw: "-81", wantKind: KindRange},
		{name: "above maximum", raw: "19", wantKind: KindRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := Validate([]models.CommandParameter{levelParam()}, map[string]any{"level": tt.raw})
			if tt.wantKind != "" {
				var cmdErr *Error
				assert.ErrorAs(t, err, &cmdErr)
				assert.Equal(t, tt.wantKind, cmdErr.Kind)
				assert.Equal(t, "level", cmdErr.Param)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, values["level"])
		})
	}
}

func TestValidate_FloatBounds(t *testing.T) {
	param := models.CommandParameter{
		ParamName: "db",
		ParamType: models.ParamFloat,
		Required:  true,
		MinValue:  f64(-80),
		MaxValue:  f64(18),
	}

	values, err := Validate([]models.CommandParameter{param}, map[string]any{"db": "-40.5"})
	assert.NoError(t, err)
	assert.Equal(t, "-40.5", values["db"])

	_, err = Validate([]models.CommandParameter{param}, map[string]any{"db": "18.0001"})
	var cmdErr *Error
	assert.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, KindRange, cmdErr.Kind)

	_, err = Validate([]models.CommandParameter{param}, map[string]any{"db": "4x0"})
	assert.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, KindTypeMismatch, cmdErr.Kind)
}

func TestValidate_EnumCaseSensitive(t *testing.T) {
	param := models.CommandParameter{
		ParamName:   "input_source",
		ParamType:   models.ParamEnum,
		Required:    true,
		ValidValues: "A,B",
	}

	values, err := Validate([]models.CommandParameter{param}, map[string]any{"input_source": "A"})
	assert.NoError(t, err)
	assert.Equal(t, "A", values["input_source"])

	_, err = Validate([]models.CommandParameter{param}, map[string]any{"input_source": "a"})
	var cmdErr *Error
	assert.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, KindInvalidEnumValue, cmdErr.Kind)
	assert.Equal(t, "input_source", cmdErr.Param)
}

func TestValidate_BooleanSpellings(t *testing.T) {
	param := models.CommandParameter{ParamName: "enabled", ParamType: models.ParamBoolean, Required: true}

	for raw, want := range map[any]string{
		true: "true", false: "false",
		"true": "true", "false": "false",
		"1": "true", "0": "false",
		"on": "true", "off": "false",
		"yes": "true", "no": "false",
	} {
		values, err := Validate([]models.CommandParameter{param}, map[string]any{"enabled": raw})
		assert.NoError(t, err)
		assert.Equal(t, want, values["enabled"])
	}

	_, err := Validate([]models.CommandParameter{param}, map[string]any{"enabled": "maybe"})
	var cmdErr *Error
	assert.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, KindTypeMismatch, cmdErr.Kind)
}

func TestValidate_DefaultValueApplied(t *testing.T) {
	param := models.CommandParameter{
		ParamName:    "zone",
		ParamType:    models.ParamInteger,
		DefaultValue: "1",
		MinValue:     f64(1),
		MaxValue:     f64(3),
	}

	values, err := Validate([]models.CommandParameter{param}, map[string]any{})
	assert.NoError(t, err)
	assert.Equal(t, "1", values["zone"])
}

func TestValidate_Idempotent(t *testing.T) {
	declared := []models.CommandParameter{levelParam()}
	supplied := map[string]any{"level": "-30"}

	first, err := Validate(declared, supplied)
	assert.NoError(t, err)
	second, err := Validate(declared, supplied)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, map[string]any{"level": "-30"}, supplied)
}
