package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/schedule-editor-bot/internal/models"
)

// MaxCallbackData is the Telegram limit for inline button callback data, in bytes.
const MaxCallbackData = 64

const (
	callbackVersion = "1"
	callbackSep     = "|"
	callbackParts   = 6
)

var kindCodes = map[models.EventKind]string{
	models.EventOpenPanel:   "op",
	models.EventListRecords: "ls",
	models.EventStartEdit:   "st",
	models.EventChooseField: "cf",
	models.EventSubmitValue: "sv",
	models.EventCancel:      "cx",
}

var catalogCodes = map[models.Catalog]string{
	models.CatalogSessionPeriod:  "sp",
	models.CatalogDeadlines:      "dl",
	models.CatalogCertifications: "ce",
	models.CatalogTeachers:       "te",
	models.CatalogSchedule:       "sc",
}

var (
	kindsByCode    = invert(kindCodes)
	catalogsByCode = invert(catalogCodes)
)

func invert[K comparable](m map[K]string) map[string]K {
	out := make(map[string]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// EncodeCallback packs a choice event into button callback data:
// version|kind|catalog|record|field|payload. The operator id is never encoded; it always
// comes from the sender of the callback.
func EncodeCallback(event models.Event) (string, error) {
	kind, ok := kindCodes[event.Kind]
	if !ok {
		return "", fmt.Errorf("encode callback: unknown event kind %q", event.Kind)
	}
	catalog := ""
	if event.Catalog != "" {
		if catalog, ok = catalogCodes[event.Catalog]; !ok {
			return "", fmt.Errorf("encode callback: unknown catalog %q", event.Catalog)
		}
	}
	record := ""
	if event.RecordID != nil {
		record = strconv.FormatInt(*event.RecordID, 10)
	}
	if strings.Contains(event.FieldID, callbackSep) {
		return "", fmt.Errorf("encode callback: field %q contains separator", event.FieldID)
	}

	data := strings.Join([]string{callbackVersion, kind, catalog, record, event.FieldID, event.Payload}, callbackSep)
	if len(data) > MaxCallbackData {
		return "", fmt.Errorf("encode callback: %d bytes exceeds limit of %d", len(data), MaxCallbackData)
	}
	return data, nil
}

// DecodeCallback reverses EncodeCallback. OperatorID is left zero.
func DecodeCallback(data string) (models.Event, error) {
	parts := strings.SplitN(data, callbackSep, callbackParts)
	if len(parts) != callbackParts || parts[0] != callbackVersion {
		return models.Event{}, fmt.Errorf("decode callback %q: unsupported format", data)
	}

	kind, ok := kindsByCode[parts[1]]
	if !ok {
		return models.Event{}, fmt.Errorf("decode callback %q: unknown kind", data)
	}
	event := models.Event{Kind: kind, FieldID: parts[4], Payload: parts[5]}

	if parts[2] != "" {
		catalog, ok := catalogsByCode[parts[2]]
		if !ok {
			return models.Event{}, fmt.Errorf("decode callback %q: unknown catalog", data)
		}
		event.Catalog = catalog
	}
	if parts[3] != "" {
		id, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil {
			return models.Event{}, fmt.Errorf("decode callback %q: bad record id: %w", data, err)
		}
		event.RecordID = &id
	}
	return event, nil
}
