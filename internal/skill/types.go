package skill

// ProtocolVersion is the Alice webhook protocol version tag.
const ProtocolVersion = "1.0"

// EntityTypeGeo is the NLU entity type carrying a recognized city.
const EntityTypeGeo = "YANDEX.GEO"

// Request is the inbound Alice webhook envelope, reduced to the fields the
// skill uses. Missing substructures decode to zero values and are tolerated.
type Request struct {
	Version string `json:"version"`
	Session struct {
		SessionID string `json:"session_id"`
	} `json:"session"`
	Request struct {
		NLU struct {
			Entities []Entity `json:"entities"`
		} `json:"nlu"`
	} `json:"request"`
}

// Entity is one recognized NLU entity.
type Entity struct {
	Type  string `json:"type"`
	Value struct {
		City string `json:"city"`
	} `json:"value"`
}

// Response is the outbound Alice webhook envelope.
type Response struct {
	Version  string  `json:"version"`
	Response Payload `json:"response"`
}

// Payload carries the spoken text and the session-termination flag.
type Payload struct {
	Text       string `json:"text"`
	EndSession bool   `json:"end_session"`
}

// NewResponse wraps text in a protocol envelope. The skill never ends the
// session itself, so end_session is always false.
func NewResponse(text string) Response {
	return Response{
		Version:  ProtocolVersion,
		Response: Payload{Text: text, EndSession: false},
	}
}
