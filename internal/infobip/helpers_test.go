package infobip

import (
	"context"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"alert-notifier/internal/config"
	"alert-notifier/internal/infobip/infobiptest"
	"alert-notifier/internal/models"
)

func testConfig(srv *infobiptest.Server) config.Config {
	var cfg config.Config
	cfg.Infobip.BaseURL = srv.URL
	cfg.Infobip.APIKey = "api-key"
	cfg.HTTP.UserAgent = config.DefaultUserAgent
	cfg.Senders.SMSFrom = "InfoSMS"
	cfg.Senders.WhatsAppFrom = "+4479"
	cfg.Senders.ViberFrom = "ViberAccount"
	cfg.Notify.Recipients = []string{"+1000", "+2000"}
	cfg.Scenarios.ViberSMS = &models.Scenario{
		Name: "template",
		Flow: []models.FlowStep{
			{Channel: models.FlowChannelViber},
			{From: "InfoSMS", Channel: models.FlowChannelSMS},
		},
	}
	cfg.Scenarios.WhatsAppSMS = &models.Scenario{
		Name: "template",
		Flow: []models.FlowStep{
			{Channel: models.FlowChannelWhatsApp},
			{From: "InfoSMS", Channel: models.FlowChannelSMS},
		},
	}
	cfg.Scenarios.RegisterCreated = true
	return cfg
}

func testLogger() (logrus.FieldLogger, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

// staticKeys is a ScenarioKeys backed by a map.
type staticKeys map[string]string

func (k staticKeys) Key(_ context.Context, name string) (string, bool) {
	v, ok := k[name]
	return v, ok
}
