package models

import "strings"

// Channel selects how an alert report reaches the recipient list.
type Channel string

const (
	ChannelSMS         Channel = "sms"
	ChannelWhatsApp    Channel = "whatsapp"
	ChannelWhatsAppSMS Channel = "whatsapp-sms"
	ChannelViberSMS    Channel = "viber-sms"
)

// DefaultChannel is used when the configured selector is empty or unknown.
const DefaultChannel = ChannelViberSMS

// ParseChannel maps a configured selector to a Channel, falling back to
// DefaultChannel.
func ParseChannel(selector string) Channel {
	switch c := Channel(strings.TrimSpace(selector)); c {
	case ChannelSMS, ChannelWhatsApp, ChannelWhatsAppSMS, ChannelViberSMS:
		return c
	default:
		return DefaultChannel
	}
}

func (c Channel) String() string {
	return string(c)
}
