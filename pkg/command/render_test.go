package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender_VolumeRoundTrip(t *testing.T) {
	rendered, err := Render("?cmd0=PutMasterVolumeSet/{level}", map[string]string{"level": "-30"}, EncodeQuery)
	assert.NoError(t, err)
	assert.Equal(t, "?cmd0=PutMasterVolumeSet/-30", rendered)
}

func TestRender_NoPlaceholders(t *testing.T) {
	rendered, err := Render("?cmd0=PutZone_OnOff/ON", map[string]string{}, EncodeQuery)
	assert.NoError(t, err)
	assert.Equal(t, "?cmd0=PutZone_OnOff/ON", rendered)
}

func TestRender_DriftedPlaceholder(t *testing.T) {
	_, err := Render("?MV{level}", map[string]string{}, EncodeQuery)

	var cmdErr *Error
	assert.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, KindTemplateMismatch, cmdErr.Kind)
	assert.Equal(t, "level", cmdErr.Param)
}

func TestRender_ExtraValuesIgnored(t *testing.T) {
	rendered, err := Render("?MVUP", map[string]string{"level": "10"}, EncodeQuery)
	assert.NoError(t, err)
	assert.Equal(t, "?MVUP", rendered)
}

func TestRender_QueryEscaping(t *testing.T) {
	rendered, err := Render("?SI{input_source}", map[string]string{"input_source": "SAT/CBL"}, EncodeQuery)
	assert.NoError(t, err)
	assert.Equal(t, "?SI"+"SAT%2FCBL", rendered)
}

func TestRender_XMLEscaping(t *testing.T) {
	rendered, err := Render("<Name>{name}</Name>", map[string]string{"name": `A&B <"tv">`}, EncodeXML)
	assert.NoError(t, err)
	assert.Equal(t, "<Name>A&amp;B &lt;&quot;tv&quot;&gt;</Name>", rendered)
}

func TestRender_RawRejectsLineTerminators(t *testing.T) {
	for _, value := range []string{"ON\rPWSTANDBY", "ON\nMUON", "\r\n"} {
		_, err := Render("PW{state}", map[string]string{"state": value}, EncodeRaw)

		var cmdErr *Error
		assert.ErrorAs(t, err, &cmdErr)
		assert.Equal(t, KindInvalidValue, cmdErr.Kind)
		assert.Equal(t, "state", cmdErr.Param)
	}
}

func TestRender_SinglePass(t *testing.T) {
	// A value that looks like a placeholder must not be expanded again.
	rendered, err := Render("SI{input_source}", map[string]string{"input_source": "{level}"}, EncodeRaw)
	assert.NoError(t, err)
	assert.Equal(t, "SI{level}", rendered)
}
