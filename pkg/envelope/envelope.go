// Package envelope turns raw stream frames into a closed set of message
// variants. Anything that gets past Parse is safe to hand to the store.
package envelope

import (
	"errors"
	"fmt"

	"optimus-dashboard/pkg/model"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
)

// Wire message kinds.
const (
	KindTelemetry   = "telemetry"
	KindInitialData = "initial_data"
)

var (
	ErrMalformed      = errors.New("malformed envelope")
	ErrInvalidSample  = errors.New("invalid telemetry sample")
	ErrInvalidPayload = errors.New("invalid payload")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Message is implemented by Telemetry, InitialData and Unknown only.
type Message interface {
	Kind() string
	isMessage()
}

// Telemetry is a live delta: an optional sample plus alert events in the order
// the server raised them. The two payloads decode independently: when the
// sample is rejected Data is nil, SampleErr wraps ErrInvalidSample and Alerts
// still holds the alert events.
type Telemetry struct {
	Data      *model.TelemetrySample
	Alerts    []model.Alert
	SampleErr error
}

// InitialData is the history backfill sent once after a connection opens.
type InitialData struct {
	Samples []model.TelemetrySample
}

// Unknown is any well-formed envelope with an unrecognised type.
type Unknown struct {
	Type string
}

func (Telemetry) Kind() string   { return KindTelemetry }
func (InitialData) Kind() string { return KindInitialData }
func (u Unknown) Kind() string   { return u.Type }

func (Telemetry) isMessage()   {}
func (InitialData) isMessage() {}
func (Unknown) isMessage()     {}

// Parse classifies and decodes one frame. Errors wrap ErrMalformed,
// ErrInvalidPayload or ErrInvalidSample. A bad sample inside a telemetry
// frame is reported on Telemetry.SampleErr instead.
func Parse(raw []byte) (Message, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrMalformed)
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: expected object, got %s", ErrMalformed, root.Type)
	}

	kind := root.Get("type").String()
	switch kind {
	case KindTelemetry:
		return parseTelemetry(root)
	case KindInitialData:
		return parseInitialData(root)
	default:
		return Unknown{Type: kind}, nil
	}
}

func parseTelemetry(root gjson.Result) (Message, error) {
	var msg Telemetry

	if data := root.Get("data"); present(data) {
		if sample, err := decodeSample(data); err != nil {
			msg.SampleErr = err
		} else {
			msg.Data = &sample
		}
	}

	if alerts := root.Get("alerts"); present(alerts) {
		if !alerts.IsArray() {
			return nil, fmt.Errorf("%w: alerts must be a list", ErrInvalidPayload)
		}
		for i, item := range alerts.Array() {
			var a model.Alert
			if !item.IsObject() {
				return nil, fmt.Errorf("%w: alert %d is not an object", ErrInvalidPayload, i)
			}
			if err := json.UnmarshalFromString(item.Raw, &a); err != nil {
				return nil, fmt.Errorf("%w: alert %d: %v", ErrInvalidPayload, i, err)
			}
			msg.Alerts = append(msg.Alerts, a)
		}
	}

	return msg, nil
}

func parseInitialData(root gjson.Result) (Message, error) {
	var msg InitialData

	data := root.Get("data")
	if !present(data) {
		return msg, nil
	}
	if !data.IsArray() {
		return nil, fmt.Errorf("%w: initial_data payload must be a list", ErrInvalidPayload)
	}
	for _, item := range data.Array() {
		sample, err := decodeSample(item)
		if err != nil {
			return nil, err
		}
		msg.Samples = append(msg.Samples, sample)
	}
	return msg, nil
}

func decodeSample(v gjson.Result) (model.TelemetrySample, error) {
	var s model.TelemetrySample
	if !v.IsObject() {
		return s, fmt.Errorf("%w: expected object, got %s", ErrInvalidSample, v.Type)
	}
	if err := json.UnmarshalFromString(v.Raw, &s); err != nil {
		return s, fmt.Errorf("%w: %v", ErrInvalidSample, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("%w: %v", ErrInvalidSample, err)
	}
	return s, nil
}

// present mirrors a truthiness check on the wire: absent and null are skipped.
func present(v gjson.Result) bool {
	return v.Exists() && v.Type != gjson.Null
}
