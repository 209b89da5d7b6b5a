package infobip

// Request bodies for the send endpoints, built per recipient and encoded at
// the restclient boundary.

// SMSRequest is the body of an advanced SMS send.
type SMSRequest struct {
	Messages []SMSMessage `json:"messages"`
}

type SMSMessage struct {
	From         string           `json:"from"`
	Destinations []SMSDestination `json:"destinations"`
	Text         string           `json:"text"`
}

type SMSDestination struct {
	To string `json:"to"`
}

// NewSMSRequest builds a single-message, single-destination SMS body.
func NewSMSRequest(from, to, text string) SMSRequest {
	return SMSRequest{Messages: []SMSMessage{{
		From:         from,
		Destinations: []SMSDestination{{To: to}},
		Text:         text,
	}}}
}

// TextContent carries a plain text payload.
type TextContent struct {
	Text string `json:"text"`
}

// WhatsAppTextRequest is the body of a WhatsApp text message send.
type WhatsAppTextRequest struct {
	From      string      `json:"from"`
	To        string      `json:"to"`
	MessageID string      `json:"messageId"`
	Content   TextContent `json:"content"`
}

func NewWhatsAppTextRequest(from, to, messageID, text string) WhatsAppTextRequest {
	return WhatsAppTextRequest{
		From:      from,
		To:        to,
		MessageID: messageID,
		Content:   TextContent{Text: text},
	}
}

// OmniRequest is the body of an omni failover send. Exactly one of Viber and
// WhatsApp is set, SMS carries the failover text.
type OmniRequest struct {
	ScenarioKey  string            `json:"scenarioKey"`
	Destinations []OmniDestination `json:"destinations"`
	SMS          *TextContent      `json:"sms,omitempty"`
	Viber        *TextContent      `json:"viber,omitempty"`
	WhatsApp     *TextContent      `json:"whatsApp,omitempty"`
}

type OmniDestination struct {
	To OmniAddress `json:"to"`
}

type OmniAddress struct {
	PhoneNumber string `json:"phoneNumber"`
}

// NewOmniRequest builds an omni body for one phone number with SMS failover.
func NewOmniRequest(scenarioKey, to, failover string) OmniRequest {
	return OmniRequest{
		ScenarioKey:  scenarioKey,
		Destinations: []OmniDestination{{To: OmniAddress{PhoneNumber: to}}},
		SMS:          &TextContent{Text: failover},
	}
}

// WithViber sets the primary Viber text.
func (r OmniRequest) WithViber(text string) OmniRequest {
	r.Viber = &TextContent{Text: text}
	return r
}

// WithWhatsApp sets the primary WhatsApp text.
func (r OmniRequest) WithWhatsApp(text string) OmniRequest {
	r.WhatsApp = &TextContent{Text: text}
	return r
}
