package models

import (
	"encoding/json"
	"fmt"
)

// Channel tags used inside omni scenario flows.
const (
	FlowChannelSMS      = "SMS"
	FlowChannelViber    = "VIBER"
	FlowChannelWhatsApp = "WHATSAPP"
)

// Scenario is an omni failover scenario as listed, created and templated on
// the communications platform. Fields without a typed counterpart are kept
// in Extra and written back out unchanged.
type Scenario struct {
	Key     string     `json:"key,omitempty"`
	Name    string     `json:"name"`
	Flow    []FlowStep `json:"flow"`
	Default bool       `json:"default,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// FlowStep is one channel of a scenario, tried in order.
type FlowStep struct {
	From                   string `json:"from,omitempty"`
	Channel                string `json:"channel"`
	ValidityPeriod         int    `json:"validityPeriod,omitempty"`
	ValidityPeriodTimeUnit string `json:"validityPeriodTimeUnit,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Method-less copies used to reach the default encoding.
type (
	scenarioFields Scenario
	flowStepFields FlowStep
)

func (s *Scenario) UnmarshalJSON(data []byte) error {
	var f scenarioFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	extra, err := unknownFields(data, "key", "name", "flow", "default")
	if err != nil {
		return err
	}
	*s = Scenario(f)
	s.Extra = extra
	return nil
}

func (s Scenario) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(scenarioFields(s))
	if err != nil {
		return nil, err
	}
	return withFields(data, s.Extra)
}

func (f *FlowStep) UnmarshalJSON(data []byte) error {
	var ff flowStepFields
	if err := json.Unmarshal(data, &ff); err != nil {
		return err
	}
	extra, err := unknownFields(data, "from", "channel", "validityPeriod", "validityPeriodTimeUnit")
	if err != nil {
		return err
	}
	*f = FlowStep(ff)
	f.Extra = extra
	return nil
}

func (f FlowStep) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(flowStepFields(f))
	if err != nil {
		return nil, err
	}
	return withFields(data, f.Extra)
}

// unknownFields returns the members of the JSON object data not named in
// known, or nil when there are none.
func unknownFields(data []byte, known ...string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// withFields adds extra to the encoded object data. Typed fields win over
// extra members of the same name.
func withFields(data []byte, extra map[string]json.RawMessage) ([]byte, error) {
	if len(extra) == 0 {
		return data, nil
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := all[k]; !ok {
			all[k] = v
		}
	}
	return json.Marshal(all)
}

func cloneFields(m map[string]json.RawMessage) map[string]json.RawMessage {
	if m == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Clone returns a copy that shares no flow or extra-field storage with s.
func (s Scenario) Clone() Scenario {
	flow := make([]FlowStep, len(s.Flow))
	for i, step := range s.Flow {
		step.Extra = cloneFields(step.Extra)
		flow[i] = step
	}
	s.Flow = flow
	s.Extra = cloneFields(s.Extra)
	return s
}

// SetSender sets the from-address of the first flow step using channel.
func (s *Scenario) SetSender(channel, from string) error {
	for i := range s.Flow {
		if s.Flow[i].Channel == channel {
			s.Flow[i].From = from
			return nil
		}
	}
	return fmt.Errorf("scenario %q has no %s flow step", s.Name, channel)
}

// ScenarioList is the body returned when listing scenarios.
type ScenarioList struct {
	Scenarios []Scenario `json:"scenarios"`
}
