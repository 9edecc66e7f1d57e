package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schedule-editor-bot/internal/models"
)

func TestEncodeCallbackChooseField(t *testing.T) {
	id := int64(123456)
	data, err := EncodeCallback(models.Event{Kind: models.EventChooseField, Catalog: models.CatalogCertifications, RecordID: &id, FieldID: "certification_type"})
	require.NoError(t, err)
	assert.Equal(t, "1|cf|ce|123456|certification_type|", data)

	event, err := DecodeCallback(data)
	require.NoError(t, err)
	assert.Equal(t, models.EventChooseField, event.Kind)
	assert.Equal(t, models.CatalogCertifications, event.Catalog)
	require.NotNil(t, event.RecordID)
	assert.Equal(t, id, *event.RecordID)
	assert.Equal(t, "certification_type", event.FieldID)
	assert.Zero(t, event.OperatorID)
}

func TestDecodeCallbackKeepsSeparatorsInPayload(t *testing.T) {
	event, err := DecodeCallback("1|sv||||a|b")
	require.NoError(t, err)
	assert.Equal(t, models.EventSubmitValue, event.Kind)
	assert.Nil(t, event.RecordID)
	assert.Equal(t, "a|b", event.Payload)
}

func TestEncodeCallbackOptionCarriesField(t *testing.T) {
	data, err := EncodeCallback(models.Event{Kind: models.EventSubmitValue, FieldID: "day_of_week", Payload: "Wednesday"})
	require.NoError(t, err)
	assert.Equal(t, "1|sv|||day_of_week|Wednesday", data)

	event, err := DecodeCallback(data)
	require.NoError(t, err)
	assert.Equal(t, "day_of_week", event.FieldID)
	assert.Equal(t, "Wednesday", event.Payload)
}

func TestEncodeCallbackRejectsOversizedData(t *testing.T) {
	_, err := EncodeCallback(models.Event{Kind: models.EventSubmitValue, Payload: strings.Repeat("x", MaxCallbackData)})
	assert.Error(t, err)

	_, err = EncodeCallback(models.Event{Kind: "explode"})
	assert.Error(t, err)
}

func TestDecodeCallbackRejectsGarbage(t *testing.T) {
	for _, data := range []string{"", "edit_deadline_5", "2|op||||", "1|zz||||", "1|st|xx|1||", "1|st|dl|abc||"} {
		_, err := DecodeCallback(data)
		assert.Error(t, err, data)
	}
}
