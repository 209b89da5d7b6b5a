package infobip

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alert-notifier/internal/infobip/infobiptest"
	"alert-notifier/internal/models"
)

func bothRegistered() []models.Scenario {
	return []models.Scenario{
		{Key: "viber-key", Name: ScenarioViberSMS},
		{Key: "other", Name: "unrelated"},
		{Key: "wa-key", Name: ScenarioWhatsAppSMS},
	}
}

func TestReconciler_ExistingScenariosAreNotRecreated(t *testing.T) {
	srv := infobiptest.NewServer(bothRegistered()...)
	defer srv.Close()
	cfg := testConfig(srv)
	logger, _ := testLogger()

	r := NewReconciler(NewClient(cfg), cfg, logger)
	require.NoError(t, r.Reconcile(context.Background()))
	require.NoError(t, r.Reconcile(context.Background()))

	assert.Len(t, srv.RequestsTo(http.MethodGet, "/omni/1/scenarios"), 2)
	assert.Empty(t, srv.RequestsTo(http.MethodPost, "/omni/1/scenarios"))

	key, ok := r.Key(context.Background(), ScenarioViberSMS)
	assert.True(t, ok)
	assert.Equal(t, "viber-key", key)
	key, ok = r.Key(context.Background(), ScenarioWhatsAppSMS)
	assert.True(t, ok)
	assert.Equal(t, "wa-key", key)
}

func TestReconciler_FirstMatchWins(t *testing.T) {
	srv := infobiptest.NewServer(append(bothRegistered(), models.Scenario{Key: "dup", Name: ScenarioViberSMS})...)
	defer srv.Close()
	cfg := testConfig(srv)
	logger, _ := testLogger()

	r := NewReconciler(NewClient(cfg), cfg, logger)
	key, ok := r.Key(context.Background(), ScenarioViberSMS)
	assert.True(t, ok)
	assert.Equal(t, "viber-key", key)
}

func TestReconciler_CreatesMissingViberScenario(t *testing.T) {
	srv := infobiptest.NewServer(models.Scenario{Key: "wa-key", Name: ScenarioWhatsAppSMS})
	defer srv.Close()
	cfg := testConfig(srv)
	logger, _ := testLogger()

	r := NewReconciler(NewClient(cfg), cfg, logger)
	require.NoError(t, r.Reconcile(context.Background()))

	creates := srv.RequestsTo(http.MethodPost, "/omni/1/scenarios")
	require.Len(t, creates, 1)
	assert.Equal(t, "App api-key", creates[0].Authorization)
	assert.Equal(t, "application/json", creates[0].ContentType)

	var sent models.Scenario
	require.NoError(t, creates[0].Decode(&sent))
	assert.Equal(t, "acronis-infobip-viber-sms-omni", sent.Name)
	require.Len(t, sent.Flow, 2)
	assert.Equal(t, models.FlowChannelViber, sent.Flow[0].Channel)
	assert.Equal(t, "ViberAccount", sent.Flow[0].From)
	assert.Equal(t, "InfoSMS", sent.Flow[1].From)

	// The configured template is left untouched.
	assert.Equal(t, "template", cfg.Scenarios.ViberSMS.Name)
	assert.Empty(t, cfg.Scenarios.ViberSMS.Flow[0].From)

	key, ok := r.Key(context.Background(), ScenarioViberSMS)
	assert.True(t, ok)
	assert.Equal(t, "created-1", key)
}

func TestReconciler_CreationForwardsTemplateFields(t *testing.T) {
	srv := infobiptest.NewServer(models.Scenario{Key: "wa-key", Name: ScenarioWhatsAppSMS})
	defer srv.Close()
	cfg := testConfig(srv)
	var tpl models.Scenario
	require.NoError(t, json.Unmarshal([]byte(`{"name":"template","label":"keep","notifyUrl":"https://hook",`+
		`"description":"keep-me","flow":[{"channel":"VIBER","validityPeriod":1,"validityPeriodTimeUnit":"HOURS"},`+
		`{"from":"InfoSMS","channel":"SMS","text":"fallback"}]}`), &tpl))
	cfg.Scenarios.ViberSMS = &tpl
	logger, _ := testLogger()

	r := NewReconciler(NewClient(cfg), cfg, logger)
	require.NoError(t, r.Reconcile(context.Background()))

	creates := srv.RequestsTo(http.MethodPost, "/omni/1/scenarios")
	require.Len(t, creates, 1)
	assert.JSONEq(t, `{"name":"acronis-infobip-viber-sms-omni","label":"keep","notifyUrl":"https://hook",`+
		`"description":"keep-me","flow":[{"from":"ViberAccount","channel":"VIBER","validityPeriod":1,"validityPeriodTimeUnit":"HOURS"},`+
		`{"from":"InfoSMS","channel":"SMS","text":"fallback"}]}`, string(creates[0].Body))
}

func TestReconciler_CreatedScenarioNotRegisteredWhenDisabled(t *testing.T) {
	srv := infobiptest.NewServer()
	defer srv.Close()
	cfg := testConfig(srv)
	cfg.Scenarios.RegisterCreated = false
	logger, _ := testLogger()

	r := NewReconciler(NewClient(cfg), cfg, logger)
	require.NoError(t, r.Reconcile(context.Background()))

	creates := srv.RequestsTo(http.MethodPost, "/omni/1/scenarios")
	require.Len(t, creates, 2)
	var wa models.Scenario
	require.NoError(t, creates[1].Decode(&wa))
	assert.Equal(t, ScenarioWhatsAppSMS, wa.Name)
	assert.Equal(t, "+4479", wa.Flow[0].From)

	_, ok := r.Key(context.Background(), ScenarioViberSMS)
	assert.False(t, ok)
	_, ok = r.Key(context.Background(), ScenarioWhatsAppSMS)
	assert.False(t, ok)
	// Key does not reconcile again within the run.
	assert.Len(t, srv.RequestsTo(http.MethodGet, "/omni/1/scenarios"), 1)
}

func TestReconciler_MissingTemplateAndFailedCreation(t *testing.T) {
	srv := infobiptest.NewServer()
	defer srv.Close()
	srv.FailCreation()
	cfg := testConfig(srv)
	cfg.Scenarios.WhatsAppSMS = nil
	logger, _ := testLogger()

	r := NewReconciler(NewClient(cfg), cfg, logger)
	err := r.Reconcile(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), ScenarioViberSMS)
	assert.Contains(t, err.Error(), "no template configured for scenario "+ScenarioWhatsAppSMS)

	assert.Len(t, srv.RequestsTo(http.MethodPost, "/omni/1/scenarios"), 1)
	_, ok := r.Key(context.Background(), ScenarioViberSMS)
	assert.False(t, ok)
}

func TestReconciler_TemplateWithoutChannelFlow(t *testing.T) {
	srv := infobiptest.NewServer(models.Scenario{Key: "wa-key", Name: ScenarioWhatsAppSMS})
	defer srv.Close()
	cfg := testConfig(srv)
	cfg.Scenarios.ViberSMS = &models.Scenario{Flow: []models.FlowStep{{Channel: models.FlowChannelSMS}}}
	logger, _ := testLogger()

	r := NewReconciler(NewClient(cfg), cfg, logger)
	assert.Error(t, r.Reconcile(context.Background()))
	assert.Empty(t, srv.RequestsTo(http.MethodPost, "/omni/1/scenarios"))
}

func TestReconciler_ListingFailureLeavesRegistryEmpty(t *testing.T) {
	srv := infobiptest.NewServer(bothRegistered()...)
	defer srv.Close()
	srv.FailListing(http.StatusUnauthorized)
	cfg := testConfig(srv)
	logger, hook := testLogger()

	r := NewReconciler(NewClient(cfg), cfg, logger)
	_, ok := r.Key(context.Background(), ScenarioViberSMS)
	assert.False(t, ok)
	assert.Empty(t, srv.RequestsTo(http.MethodPost, "/omni/1/scenarios"))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Scenario reconciliation incomplete", hook.LastEntry().Message)
}
