package envelope

import (
	"fmt"

	"optimus-dashboard/pkg/model"
)

type wireTelemetry struct {
	Type   string                 `json:"type"`
	Data   *model.TelemetrySample `json:"data,omitempty"`
	Alerts []model.Alert          `json:"alerts,omitempty"`
}

type wireInitialData struct {
	Type string                  `json:"type"`
	Data []model.TelemetrySample `json:"data"`
}

// Encode renders a message in the server's wire format. Used by test servers
// and replay tooling.
func Encode(msg Message) ([]byte, error) {
	switch m := msg.(type) {
	case Telemetry:
		return json.Marshal(wireTelemetry{Type: KindTelemetry, Data: m.Data, Alerts: m.Alerts})
	case InitialData:
		data := m.Samples
		if data == nil {
			data = []model.TelemetrySample{}
		}
		return json.Marshal(wireInitialData{Type: KindInitialData, Data: data})
	case Unknown:
		return json.Marshal(map[string]string{"type": m.Type})
	default:
		return nil, fmt.Errorf("unsupported message %T", msg)
	}
}

// Marshal encodes an arbitrary outbound message.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}
