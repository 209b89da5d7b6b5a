package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"alert-notifier/internal/config"
	"alert-notifier/internal/infobip"
	"alert-notifier/internal/models"
)

// ErrAlertsUnavailable is returned by Run when the alert listing fails.
var ErrAlertsUnavailable = errors.New("can't retrieve alerts information")

// AlertSource reads current alerts and resource names.
type AlertSource interface {
	ResourceStatuses(ctx context.Context) ([]models.ResourceStatus, error)
	ResourceName(ctx context.Context, id string) (string, error)
}

// Notifier delivers a report over the channel named by selector.
type Notifier interface {
	Dispatch(ctx context.Context, selector, report, summary string) (models.Channel, []infobip.Result)
}

// Service fetches active alerts, formats a report and hands it to the
// Notifier.
type Service struct {
	alerts   AlertSource
	notifier Notifier
	config   config.Config
	logger   logrus.FieldLogger
}

// New constructs a notification Service.
func New(alerts AlertSource, notifier Notifier, cfg config.Config, logger logrus.FieldLogger) *Service {
	return &Service{
		alerts:   alerts,
		notifier: notifier,
		config:   cfg,
		logger:   logger,
	}
}

// Summary describes what one run did.
type Summary struct {
	RunID   string
	Alerts  int
	Channel models.Channel
	Results []infobip.Result
}

// Delivered counts the recipients the platform accepted.
func (s Summary) Delivered() int {
	n := 0
	for _, r := range s.Results {
		if r.OK() {
			n++
		}
	}
	return n
}

// Run performs one fetch, format and notify cycle. Nothing is sent when
// there are no alerts.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	sum := Summary{RunID: uuid.New().String()}
	log := s.logger.WithField("run_id", sum.RunID)

	statuses, err := s.alerts.ResourceStatuses(ctx)
	if err != nil {
		log.WithError(err).Error("Alert listing failed")
		return sum, fmt.Errorf("%w: %w", ErrAlertsUnavailable, err)
	}
	sum.Alerts = len(statuses)
	if len(statuses) == 0 {
		log.Info("No active alerts, nothing to send")
		return sum, nil
	}

	report := s.buildReport(ctx, log, statuses)
	summary := FailoverSummary(len(statuses))

	sum.Channel, sum.Results = s.notifier.Dispatch(ctx, s.config.Notify.Channel, report, summary)
	log.WithFields(logrus.Fields{
		"alerts":     sum.Alerts,
		"channel":    sum.Channel,
		"recipients": len(sum.Results),
		"delivered":  sum.Delivered(),
	}).Info("Alert report dispatched")
	return sum, nil
}

// buildReport falls back to the resource id when the name lookup fails or
// returns an empty name.
func (s *Service) buildReport(ctx context.Context, log logrus.FieldLogger, statuses []models.ResourceStatus) string {
	var b strings.Builder
	for _, st := range statuses {
		name, err := s.alerts.ResourceName(ctx, st.ID)
		if err != nil || name == "" {
			log.WithError(err).WithField("resource_id", st.ID).Debug("Resource name lookup failed, using id")
			name = st.ID
		}
		b.WriteString(FormatLine(name, st.Severity, st.Alert.Type))
	}
	return b.String()
}

// FormatLine renders one alert of the report.
func FormatLine(name, severity, alertType string) string {
	return fmt.Sprintf("Resource: %s\n\rSeverity: %s\n\rType: %s\r\n###\r\n", name, severity, alertType)
}

// FailoverSummary is the short text used where the full report does not fit.
func FailoverSummary(count int) string {
	return fmt.Sprintf("You have severe %d alerts.", count)
}
