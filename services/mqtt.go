package services

import (
	"encoding/json"
	"fmt"
	"time"

	"rovermon/config"
	"rovermon/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// MQTTService is the telemetry link to the vehicle-side bridge. It consumes
// one topic per telemetry event kind and publishes mode-change requests and
// relay commands back, so it doubles as the Actuator and Commander gateways.
type MQTTService struct {
	config *config.Config
	client mqtt.Client
	logger *zap.Logger
}

// NewMQTTService connects to the broker with retry.
func NewMQTTService(cfg *config.Config, logger *zap.Logger) (*MQTTService, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTTBrokerURL)
	opts.SetClientID(cfg.MQTTClientID)
	if cfg.MQTTUsername != "" {
		opts.SetUsername(cfg.MQTTUsername)
		opts.SetPassword(cfg.MQTTPassword)
	}
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetOrderMatters(true)

	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("Connected to MQTT broker", zap.String("broker", cfg.MQTTBrokerURL))
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Error("MQTT connection lost", zap.Error(err))
	}

	client := mqtt.NewClient(opts)

	// Connect with retry
	maxRetries := 5
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		token := client.Connect()
		token.Wait()
		err = token.Error()
		if err == nil {
			break
		}

		logger.Warn("Failed to connect to MQTT broker",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err))

		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * 2 * time.Second)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker after %d attempts: %w", maxRetries, err)
	}

	return &MQTTService{
		config: cfg,
		client: client,
		logger: logger,
	}, nil
}

func (s *MQTTService) topic(suffix string) string {
	return s.config.MQTTTopicPrefix + "/" + suffix
}

// SubscribeTelemetry subscribes to every telemetry topic and dispatches
// decoded payloads to the handler. Malformed payloads are logged and dropped.
func (s *MQTTService) SubscribeTelemetry(handler TelemetryHandler) error {
	subscriptions := map[string]mqtt.MessageHandler{
		s.topic("heartbeat"): func(_ mqtt.Client, msg mqtt.Message) {
			var hb models.Heartbeat
			if !s.decode(msg, &hb) {
				return
			}
			handler.OnHeartbeat(hb)
		},
		s.topic("mission_item_reached"): func(_ mqtt.Client, msg mqtt.Message) {
			var item models.MissionItemReached
			if !s.decode(msg, &item) {
				return
			}
			handler.OnMissionItemReached(item)
		},
		s.topic("nav_output"): func(_ mqtt.Client, msg mqtt.Message) {
			var nav models.NavOutput
			if !s.decode(msg, &nav) {
				return
			}
			handler.OnNavOutput(nav)
		},
		s.topic("mission_current"): func(_ mqtt.Client, msg mqtt.Message) {
			var current models.MissionCurrent
			if !s.decode(msg, &current) {
				return
			}
			handler.OnMissionCurrent(current)
		},
		s.topic("gps_raw"): func(_ mqtt.Client, msg mqtt.Message) {
			var gps models.GpsRaw
			if !s.decode(msg, &gps) {
				return
			}
			handler.OnGpsRaw(gps)
		},
		s.topic("gps2_raw"): func(_ mqtt.Client, msg mqtt.Message) {
			var gps models.GpsRaw
			if !s.decode(msg, &gps) {
				return
			}
			handler.OnGps2Raw(gps)
		},
	}

	for topic, msgHandler := range subscriptions {
		token := s.client.Subscribe(topic, 1, msgHandler)
		if token.Wait() && token.Error() != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, token.Error())
		}
		s.logger.Info("Subscribed to telemetry topic", zap.String("topic", topic))
	}

	return nil
}

func (s *MQTTService) decode(msg mqtt.Message, v interface{}) bool {
	if err := json.Unmarshal(msg.Payload(), v); err != nil {
		s.logger.Error("Failed to decode telemetry payload",
			zap.String("topic", msg.Topic()),
			zap.Error(err))
		return false
	}
	return true
}

// RequestMode implements Commander by publishing a set_mode command.
func (s *MQTTService) RequestMode(mode models.VehicleMode) {
	s.logger.Info("Requesting mode change", zap.String("mode", mode.String()))
	s.publish("cmd/set_mode", map[string]interface{}{"mode": uint32(mode)})
}

// SetDrivePower implements Actuator for the drive power relay.
func (s *MQTTService) SetDrivePower(on bool) {
	s.publish("cmd/drive_power", map[string]interface{}{"on": on})
}

// SetAlarm implements Actuator for the alarm relay.
func (s *MQTTService) SetAlarm(on bool) {
	s.publish("cmd/alarm", map[string]interface{}{"on": on})
}

func (s *MQTTService) publish(suffix string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to marshal command", zap.String("topic", suffix), zap.Error(err))
		return
	}

	topic := s.topic(suffix)
	token := s.client.Publish(topic, 1, false, body)
	if !token.WaitTimeout(5 * time.Second) {
		s.logger.Error("Timeout publishing command", zap.String("topic", topic))
		return
	}
	if token.Error() != nil {
		s.logger.Error("Failed to publish command",
			zap.String("topic", topic),
			zap.Error(token.Error()))
	}
}

// Close disconnects from the broker.
func (s *MQTTService) Close() {
	s.logger.Info("Disconnecting from MQTT broker")
	s.client.Disconnect(250)
}
