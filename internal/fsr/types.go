package fsr

import (
	"encoding/json"
	"strconv"
)

// Readings and thresholds share the controller's 10-bit ADC range.
const (
	MinReading = 0
	MaxReading = 1023
)

// Inbound actions sent by the pad server over the websocket.
const (
	ActionValues              = "values"
	ActionThresholds          = "thresholds"
	ActionGetProfiles         = "get_profiles"
	ActionGetCurProfile       = "get_cur_profile"
	ActionThresholdsPersisted = "thresholds_persisted"
)

// Outbound actions understood by the pad server.
const (
	ActionUpdateThreshold   = "update_threshold"
	ActionAddProfile        = "add_profile"
	ActionRemoveProfile     = "remove_profile"
	ActionChangeProfile     = "change_profile"
	ActionPersistThresholds = "persist_thresholds"
)

// Snapshot is one reading per sensor channel.
type Snapshot []int

// Defaults mirrors the payload returned by /defaults.
type Defaults struct {
	Thresholds []int    `json:"thresholds"`
	Profiles   []string `json:"profiles"`
	CurProfile string   `json:"cur_profile"`
}

// Channels returns the sensor count implied by the threshold array.
func (d Defaults) Channels() int {
	return len(d.Thresholds)
}

// ValuesPayload is the body of a "values" message.
type ValuesPayload struct {
	Values []int `json:"values"`
}

// ThresholdsPayload is the body of a "thresholds" message.
type ThresholdsPayload struct {
	Thresholds []int `json:"thresholds"`
}

// ProfilesPayload is the body of a "get_profiles" message.
type ProfilesPayload struct {
	Profiles []string `json:"profiles"`
}

// CurProfilePayload is the body of a "get_cur_profile" message.
type CurProfilePayload struct {
	CurProfile string `json:"cur_profile"`
}

// ParsePayload decodes a message body into dest. An absent body decodes as
// an empty object so acknowledgment-style messages never fail.
func ParsePayload(raw json.RawMessage, dest any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

// ChannelName returns a display label for a channel. Four-panel pads use
// arrow names; anything else is numbered.
func ChannelName(index, channels int) string {
	if channels == len(padNames) && index >= 0 && index < len(padNames) {
		return padNames[index]
	}
	return strconv.Itoa(index)
}

var padNames = [...]string{"Left", "Down", "Up", "Right"}
