package infobip

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"alert-notifier/internal/config"
	"alert-notifier/internal/models"
	"alert-notifier/pkg/restclient"
)

// Well-known names of the omni failover scenarios this job relies on.
const (
	ScenarioViberSMS    = "acronis-infobip-viber-sms-omni"
	ScenarioWhatsAppSMS = "acronis-infobip-whatsapp-sms-omni"
)

const scenariosPath = "omni/1/scenarios"

type scenarioSpec struct {
	name     string
	template *models.Scenario
	channel  string
	from     string
}

// Reconciler makes sure the well-known scenarios exist remotely and caches
// their keys for the lifetime of the process.
type Reconciler struct {
	rest            *restclient.Client
	specs           []scenarioSpec
	registerCreated bool
	logger          logrus.FieldLogger

	keys      map[string]string
	attempted bool
}

// NewReconciler wires the scenario templates and senders from cfg.
func NewReconciler(rest *restclient.Client, cfg config.Config, logger logrus.FieldLogger) *Reconciler {
	return &Reconciler{
		rest: rest,
		specs: []scenarioSpec{
			{name: ScenarioViberSMS, template: cfg.Scenarios.ViberSMS, channel: models.FlowChannelViber, from: cfg.Senders.ViberFrom},
			{name: ScenarioWhatsAppSMS, template: cfg.Scenarios.WhatsAppSMS, channel: models.FlowChannelWhatsApp, from: cfg.Senders.WhatsAppFrom},
		},
		registerCreated: cfg.Scenarios.RegisterCreated,
		logger:          logger,
		keys:            make(map[string]string),
	}
}

// Reconcile lists remote scenarios once, records the keys of the well-known
// ones and creates those that are missing. Duplicate names are not cleaned
// up; the first match wins.
func (r *Reconciler) Reconcile(ctx context.Context) error {
	r.attempted = true

	resp, err := r.rest.Get(ctx, scenariosPath, nil)
	if err != nil {
		return fmt.Errorf("failed to list scenarios: %w", err)
	}
	if !resp.OK() {
		return fmt.Errorf("scenario listing returned %d: %s", resp.StatusCode, resp.Body)
	}
	var list models.ScenarioList
	if err := resp.DecodeJSON(&list); err != nil {
		return err
	}

	var errs []error
	for _, spec := range r.specs {
		if key, ok := findScenario(list.Scenarios, spec.name); ok {
			r.keys[spec.name] = key
			r.logger.WithField("scenario", spec.name).Debug("Scenario already registered")
			continue
		}
		if err := r.create(ctx, spec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Key returns the remote key of a well-known scenario, reconciling on first
// use. The second result is false when no key is registered.
func (r *Reconciler) Key(ctx context.Context, name string) (string, bool) {
	if !r.attempted {
		if err := r.Reconcile(ctx); err != nil {
			r.logger.WithError(err).Warn("Scenario reconciliation incomplete")
		}
	}
	key, ok := r.keys[name]
	return key, ok
}

func (r *Reconciler) create(ctx context.Context, spec scenarioSpec) error {
	if spec.template == nil {
		return fmt.Errorf("no template configured for scenario %s", spec.name)
	}
	s := spec.template.Clone()
	s.Key = ""
	s.Name = spec.name
	if err := s.SetSender(spec.channel, spec.from); err != nil {
		return err
	}

	resp, err := r.rest.Post(ctx, scenariosPath, s)
	if err != nil {
		return fmt.Errorf("failed to create scenario %s: %w", spec.name, err)
	}
	if !resp.OK() {
		return fmt.Errorf("creating scenario %s returned %d: %s", spec.name, resp.StatusCode, resp.Body)
	}

	log := r.logger.WithField("scenario", spec.name)
	if !r.registerCreated {
		log.Info("Created scenario, usable from the next run")
		return nil
	}
	var created models.Scenario
	if err := resp.DecodeJSON(&created); err != nil {
		return err
	}
	if created.Key == "" {
		return fmt.Errorf("created scenario %s but response carried no key", spec.name)
	}
	r.keys[spec.name] = created.Key
	log.WithField("key", created.Key).Info("Created scenario")
	return nil
}

func findScenario(scenarios []models.Scenario, name string) (string, bool) {
	for _, s := range scenarios {
		if s.Name == name {
			return s.Key, true
		}
	}
	return "", false
}
