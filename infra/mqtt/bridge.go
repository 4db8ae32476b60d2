package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/evfleet/ocppcore/core/charging"
	"github.com/evfleet/ocppcore/core/model"
	"github.com/evfleet/ocppcore/infra/logger"
	"github.com/evfleet/ocppcore/infra/ocppmsg"
)

// Actions handled by the bridge.
const (
	ActionSetChargingProfile   = "SetChargingProfile"
	ActionClearChargingProfile = "ClearChargingProfile"
	ActionGetCompositeSchedule = "GetCompositeSchedule"
	ActionGetChargingProfiles  = "GetChargingProfiles"

	notifyReportProfiles = "ReportChargingProfiles"
)

// Engine is the charging engine surface the bridge drives.
type Engine interface {
	SetProfile(evseID int, profile *model.ChargingProfile) (charging.ValidationResult, error)
	ClearProfile(id int) bool
	ClearProfiles(c charging.ClearCriteria) bool
	GetCompositeSchedule(ctx context.Context, evseID, duration int, unit model.ChargingRateUnit) (*model.CompositeSchedule, error)
	ReportedProfiles(c charging.ReportCriteria) []charging.StoredProfile
}

// envelope wraps every request and response payload with a correlation id.
type envelope struct {
	MessageID string             `json:"messageId"`
	Payload   json.RawMessage    `json:"payload,omitempty"`
	Error     *ocppmsg.WireError `json:"error,omitempty"`
}

// Bridge subscribes to {prefix}/req/{action}, drives the charging engine and
// answers on {prefix}/resp/{action}. Report streams go out on
// {prefix}/notify/ReportChargingProfiles.
type Bridge struct {
	cli        pahoClient
	engine     Engine
	prefix     string
	qos        map[string]byte
	log        logger.Logger
	maxRetries int
	backoff    time.Duration
}

// NewBridge connects to the broker and subscribes to the request topics.
func NewBridge(cfg Config, engine Engine) (*Bridge, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_bridge")
	b := &Bridge{
		engine:     engine,
		prefix:     strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:        cfg.QoS,
		log:        log,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	if b.prefix == "" {
		b.prefix = "ocpp"
	}
	if b.maxRetries <= 0 {
		b.maxRetries = 3
	}
	if b.backoff <= 0 {
		b.backoff = 100 * time.Millisecond
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		topic := b.prefix + "/req/+"
		if token := c.Subscribe(topic, b.qosFor("req"), b.onRequest); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	b.cli = c
	return b, nil
}

func (b *Bridge) qosFor(kind string) byte {
	if q, ok := b.qos[kind]; ok {
		return q
	}
	return 0
}

func (b *Bridge) onRequest(_ paho.Client, msg paho.Message) {
	action := msg.Topic()[strings.LastIndex(msg.Topic(), "/")+1:]

	var env envelope
	if err := json.Unmarshal(msg.Payload(), &env); err != nil {
		b.log.Errorf("malformed request envelope on %s: %v", msg.Topic(), err)
		b.respondError(action, uuid.NewString(), &ocppmsg.WireError{
			Code:        ocppmsg.ErrorCodeFormationViolation,
			Description: err.Error(),
		})
		return
	}
	if env.MessageID == "" {
		env.MessageID = uuid.NewString()
	}

	var (
		resp any
		err  error
	)
	switch action {
	case ActionSetChargingProfile:
		resp, err = b.handleSetProfile(env.Payload)
	case ActionClearChargingProfile:
		resp, err = b.handleClearProfile(env.Payload)
	case ActionGetCompositeSchedule:
		resp, err = b.handleCompositeSchedule(env.Payload)
	case ActionGetChargingProfiles:
		resp, err = b.handleGetProfiles(env.Payload)
	default:
		err = &ocppmsg.WireError{Code: ocppmsg.ErrorCodeNotSupported, Description: action}
	}
	if err != nil {
		werr, ok := err.(*ocppmsg.WireError)
		if !ok {
			werr = &ocppmsg.WireError{Code: ocppmsg.ErrorCodeInternalError, Description: err.Error()}
		}
		b.log.Warnf("%s request %s failed: %v", action, env.MessageID, werr)
		b.respondError(action, env.MessageID, werr)
		return
	}
	b.respond(action, env.MessageID, resp)
}

func (b *Bridge) handleSetProfile(payload []byte) (any, error) {
	var req ocppmsg.SetChargingProfileRequest
	if err := ocppmsg.Decode(payload, &req); err != nil {
		return nil, err
	}
	result, err := b.engine.SetProfile(req.EvseID, &req.ChargingProfile)
	if err != nil {
		return nil, err
	}
	if !result.Accepted() {
		return ocppmsg.SetChargingProfileResponse{
			Status:     ocppmsg.ProfileStatusRejected,
			StatusInfo: &ocppmsg.StatusInfo{ReasonCode: result.String()},
		}, nil
	}
	return ocppmsg.SetChargingProfileResponse{Status: ocppmsg.ProfileStatusAccepted}, nil
}

func (b *Bridge) handleClearProfile(payload []byte) (any, error) {
	var req ocppmsg.ClearChargingProfileRequest
	if err := ocppmsg.Decode(payload, &req); err != nil {
		return nil, err
	}
	criteria := charging.ClearCriteria{ProfileID: req.ChargingProfileID}
	if req.ChargingProfileCriteria == nil {
		criteria.CheckIDOnly = req.ChargingProfileID != nil
	} else {
		criteria.EvseID = req.ChargingProfileCriteria.EvseID
		criteria.Purpose = req.ChargingProfileCriteria.ChargingProfilePurpose
		criteria.StackLevel = req.ChargingProfileCriteria.StackLevel
	}
	if b.engine.ClearProfiles(criteria) {
		return ocppmsg.ClearChargingProfileResponse{Status: ocppmsg.ClearStatusAccepted}, nil
	}
	return ocppmsg.ClearChargingProfileResponse{Status: ocppmsg.ClearStatusUnknown}, nil
}

func (b *Bridge) handleCompositeSchedule(payload []byte) (any, error) {
	var req ocppmsg.GetCompositeScheduleRequest
	if err := ocppmsg.Decode(payload, &req); err != nil {
		return nil, err
	}
	unit := model.ChargingRateUnit("")
	if req.ChargingRateUnit != nil {
		unit = *req.ChargingRateUnit
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	schedule, err := b.engine.GetCompositeSchedule(ctx, req.EvseID, req.Duration, unit)
	if err != nil {
		return ocppmsg.GetCompositeScheduleResponse{
			Status:     ocppmsg.GenericStatusRejected,
			StatusInfo: &ocppmsg.StatusInfo{ReasonCode: reasonFor(err)},
		}, nil
	}
	return ocppmsg.GetCompositeScheduleResponse{
		Status:   ocppmsg.GenericStatusAccepted,
		Schedule: schedule,
	}, nil
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, charging.ErrEvseUnavailable):
		return "EvseUnavailable"
	case errors.Is(err, charging.ErrTimeout):
		return "Timeout"
	default:
		return "InternalError"
	}
}

func (b *Bridge) handleGetProfiles(payload []byte) (any, error) {
	var req ocppmsg.GetChargingProfilesRequest
	if err := ocppmsg.Decode(payload, &req); err != nil {
		return nil, err
	}
	criteria := charging.ReportCriteria{
		Purpose:    req.ChargingProfile.ChargingProfilePurpose,
		StackLevel: req.ChargingProfile.StackLevel,
		EvseID:     req.EvseID,
		ProfileIDs: req.ChargingProfile.ChargingProfileID,
	}
	profiles := b.engine.ReportedProfiles(criteria)
	if len(profiles) == 0 {
		return ocppmsg.GetChargingProfilesResponse{Status: ocppmsg.GetProfilesStatusNoProfiles}, nil
	}
	go b.streamReports(req.RequestID, profiles)
	return ocppmsg.GetChargingProfilesResponse{Status: ocppmsg.GetProfilesStatusAccepted}, nil
}

// streamReports publishes one notification per EVSE, preserving the ascending
// profile id order within each message. The last message carries tbc=false.
func (b *Bridge) streamReports(requestID int, profiles []charging.StoredProfile) {
	var evseOrder []int
	grouped := make(map[int][]model.ChargingProfile)
	for _, sp := range profiles {
		if _, ok := grouped[sp.EvseID]; !ok {
			evseOrder = append(evseOrder, sp.EvseID)
		}
		grouped[sp.EvseID] = append(grouped[sp.EvseID], *sp.Profile)
	}

	topic := fmt.Sprintf("%s/notify/%s", b.prefix, notifyReportProfiles)
	for i, evseID := range evseOrder {
		report := ocppmsg.ReportChargingProfilesRequest{
			RequestID:       requestID,
			EvseID:          evseID,
			ChargingProfile: grouped[evseID],
			Tbc:             i < len(evseOrder)-1,
		}
		payload, err := ocppmsg.Encode(report)
		if err != nil {
			b.log.Errorf("encode report for request %d: %v", requestID, err)
			return
		}
		env := envelope{MessageID: uuid.NewString(), Payload: payload}
		data, err := json.Marshal(env)
		if err != nil {
			b.log.Errorf("encode report envelope: %v", err)
			return
		}
		if err := b.publish(topic, b.qosFor("notify"), data); err != nil {
			b.log.Errorf("publish report for request %d: %v", requestID, err)
			return
		}
	}
}

func (b *Bridge) respond(action, messageID string, resp any) {
	payload, err := ocppmsg.Encode(resp)
	if err != nil {
		b.log.Errorf("encode %s response: %v", action, err)
		return
	}
	b.publishEnvelope(action, envelope{MessageID: messageID, Payload: payload})
}

func (b *Bridge) respondError(action, messageID string, werr *ocppmsg.WireError) {
	b.publishEnvelope(action, envelope{MessageID: messageID, Error: werr})
}

func (b *Bridge) publishEnvelope(action string, env envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		b.log.Errorf("encode %s envelope: %v", action, err)
		return
	}
	topic := fmt.Sprintf("%s/resp/%s", b.prefix, action)
	if err := b.publish(topic, b.qosFor("resp"), data); err != nil {
		b.log.Errorf("publish %s response: %v", action, err)
	}
}

func (b *Bridge) publish(topic string, qos byte, payload []byte) error {
	var publishErr error
	for attempt := 0; attempt <= b.maxRetries; attempt++ {
		token := b.cli.Publish(topic, qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			return nil
		}
		b.log.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		time.Sleep(b.backoff * time.Duration(1<<attempt))
	}
	return publishErr
}

// Disconnect gracefully closes the MQTT connection.
func (b *Bridge) Disconnect() {
	if b.cli != nil && b.cli.IsConnected() {
		b.cli.Disconnect(250)
	}
}
