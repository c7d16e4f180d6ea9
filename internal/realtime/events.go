package realtime

import "encoding/json"

// Channel protocol event names. Inbound register/send-notification/mark-read
// frames never get a reply; the only outbound event is "notification".
const (
	EventRegister         = "register"
	EventSendNotification = "send-notification"
	EventMarkRead         = "mark-read"
	EventNotification     = "notification"
)

// Event is the JSON frame exchanged over the channel.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// registerPayload is the data of a register event. The bare-string form
// ("data": "alice") is the default client-declared-identity mode; the object
// form additionally carries a credential for the verifier.
type registerPayload struct {
	UserID string `json:"userId"`
	Token  string `json:"token,omitempty"`
}

func parseRegister(data json.RawMessage) (registerPayload, error) {
	var userID string
	if err := json.Unmarshal(data, &userID); err == nil {
		return registerPayload{UserID: userID}, nil
	}
	var p registerPayload
	err := json.Unmarshal(data, &p)
	return p, err
}
