package infobip

import (
	"context"
	"fmt"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"alert-notifier/internal/config"
	"alert-notifier/internal/models"
	"alert-notifier/pkg/restclient"
)

const (
	smsPath      = "sms/2/text/advanced"
	whatsAppPath = "whatsapp/1/message/text"
	omniPath     = "omni/1/advanced"

	messageIDPrefix = "infobip-acronis-"
)

// ScenarioKeys resolves well-known scenario names to remote keys.
type ScenarioKeys interface {
	Key(ctx context.Context, name string) (string, bool)
}

// Result is the outcome of one send to one recipient. Err is set only for
// transport failures; API rejections are left in Response.
type Result struct {
	To       string
	Response *restclient.Response
	Err      error
}

// OK reports whether the platform accepted the message.
func (r Result) OK() bool {
	return r.Err == nil && r.Response.OK()
}

type sendFunc func(ctx context.Context, report, summary string) []Result

// Dispatcher sends one message per configured recipient over the selected
// channel. It does not retry or aggregate failures.
type Dispatcher struct {
	rest         *restclient.Client
	scenarios    ScenarioKeys
	recipients   []string
	smsFrom      string
	whatsAppFrom string
	clock        clock.Clock
	logger       logrus.FieldLogger

	senders map[models.Channel]sendFunc
}

// NewDispatcher builds a Dispatcher for the recipients and senders in cfg.
func NewDispatcher(rest *restclient.Client, scenarios ScenarioKeys, cfg config.Config, logger logrus.FieldLogger) *Dispatcher {
	d := &Dispatcher{
		rest:         rest,
		scenarios:    scenarios,
		recipients:   cfg.Notify.Recipients,
		smsFrom:      cfg.Senders.SMSFrom,
		whatsAppFrom: cfg.Senders.WhatsAppFrom,
		clock:        clock.New(),
		logger:       logger,
	}
	// sms carries only the short summary, whatsapp only the full report.
	d.senders = map[models.Channel]sendFunc{
		models.ChannelSMS: func(ctx context.Context, _, summary string) []Result {
			return d.SendSMS(ctx, summary)
		},
		models.ChannelWhatsApp: func(ctx context.Context, report, _ string) []Result {
			return d.SendWhatsApp(ctx, report)
		},
		models.ChannelWhatsAppSMS: d.SendOmniWhatsAppSMS,
		models.ChannelViberSMS:    d.SendOmniViberSMS,
	}
	return d
}

// Dispatch routes report and summary to the channel named by selector; an
// unknown selector uses models.DefaultChannel.
func (d *Dispatcher) Dispatch(ctx context.Context, selector, report, summary string) (models.Channel, []Result) {
	ch := models.ParseChannel(selector)
	if string(ch) != strings.TrimSpace(selector) {
		d.logger.WithField("selector", selector).Debugf("Unknown channel selector, using %s", ch)
	}
	return ch, d.senders[ch](ctx, report, summary)
}

// SendSMS sends text as a plain SMS.
func (d *Dispatcher) SendSMS(ctx context.Context, text string) []Result {
	return d.each(ctx, models.ChannelSMS, smsPath, func(to string) interface{} {
		return NewSMSRequest(d.smsFrom, to, text)
	})
}

// SendWhatsApp sends text as a WhatsApp message.
func (d *Dispatcher) SendWhatsApp(ctx context.Context, text string) []Result {
	return d.each(ctx, models.ChannelWhatsApp, whatsAppPath, func(to string) interface{} {
		return NewWhatsAppTextRequest(d.whatsAppFrom, to, d.messageID(), text)
	})
}

// SendOmniViberSMS sends msg over Viber, falling back to failover by SMS.
func (d *Dispatcher) SendOmniViberSMS(ctx context.Context, msg, failover string) []Result {
	key := d.scenarioKey(ctx, ScenarioViberSMS)
	return d.each(ctx, models.ChannelViberSMS, omniPath, func(to string) interface{} {
		return NewOmniRequest(key, to, failover).WithViber(msg)
	})
}

// SendOmniWhatsAppSMS sends msg over WhatsApp, falling back to failover by SMS.
func (d *Dispatcher) SendOmniWhatsAppSMS(ctx context.Context, msg, failover string) []Result {
	key := d.scenarioKey(ctx, ScenarioWhatsAppSMS)
	return d.each(ctx, models.ChannelWhatsAppSMS, omniPath, func(to string) interface{} {
		return NewOmniRequest(key, to, failover).WithWhatsApp(msg)
	})
}

// scenarioKey returns "" when the scenario is not registered; the platform
// then rejects each send and the rejection is reported per recipient.
func (d *Dispatcher) scenarioKey(ctx context.Context, name string) string {
	key, ok := d.scenarios.Key(ctx, name)
	if !ok {
		d.logger.WithField("scenario", name).Warn("No key registered for scenario, sending without one")
	}
	return key
}

func (d *Dispatcher) messageID() string {
	now := d.clock.Now()
	return fmt.Sprintf("%s%d.%06d", messageIDPrefix, now.Unix(), now.Nanosecond()/1000)
}

func (d *Dispatcher) each(ctx context.Context, ch models.Channel, path string, build func(to string) interface{}) []Result {
	results := make([]Result, 0, len(d.recipients))
	for _, to := range d.recipients {
		resp, err := d.rest.Post(ctx, path, build(to))
		res := Result{To: to, Response: resp, Err: err}

		log := d.logger.WithFields(logrus.Fields{"channel": ch, "to": to})
		switch {
		case err != nil:
			log.WithError(err).Error("Send failed")
		case !resp.OK():
			log.WithField("status", resp.StatusCode).Warnf("Send rejected: %s", resp.Body)
		default:
			log.Info("Sent")
		}
		results = append(results, res)
	}
	return results
}
