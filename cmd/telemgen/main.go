package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rovermon/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

var (
	mqttBroker = flag.String("broker", "tcp://localhost:1883", "MQTT broker URL")
	mqttUser   = flag.String("user", "", "MQTT username")
	mqttPass   = flag.String("pass", "", "MQTT password")
	prefix     = flag.String("prefix", "rover", "Telemetry topic prefix")
	wrongDir   = flag.Float64("wrongdir", 0.05, "Probability of a wrong-direction sample (0.0-1.0)")
	gpsLoss    = flag.Float64("gpsloss", 0.02, "Probability of a GPS fix dropout (0.0-1.0)")
	linkDrop   = flag.Int("linkdrop", 0, "Stop publishing after this many seconds (0 = never)")
	stallAfter = flag.Int("stall", 0, "Freeze waypoint distance after this many seconds (0 = never)")
)

// MockRoverSimulator fakes a ground rover driving a waypoint mission so the
// supervisor can be exercised without a vehicle.
type MockRoverSimulator struct {
	mode     models.VehicleMode
	waypoint int
	distance int
	ticks    int
	logger   *zap.Logger
}

func NewMockRoverSimulator(logger *zap.Logger) *MockRoverSimulator {
	return &MockRoverSimulator{
		mode:     models.ModeInitializing,
		waypoint: 1,
		distance: 120,
		logger:   logger,
	}
}

// Step advances the simulated mission by one second.
func (m *MockRoverSimulator) Step() {
	m.ticks++

	// Come alive after a few heartbeats, then drive
	if m.ticks == 3 {
		m.mode = models.ModeAuto
		m.logger.Info("Simulated rover entering AUTO mode")
	}

	if m.mode != models.ModeAuto {
		return
	}

	if *stallAfter > 0 && m.ticks >= *stallAfter {
		return
	}

	if rand.Float64() < *wrongDir {
		m.distance += 5 + rand.Intn(10)
		return
	}

	m.distance -= 3 + rand.Intn(5)
	if m.distance <= 0 {
		m.waypoint++
		m.distance = 80 + rand.Intn(80)
		m.logger.Info("Simulated waypoint reached", zap.Int("next", m.waypoint))
	}
}

func (m *MockRoverSimulator) GpsFix() models.GpsFixQuality {
	if rand.Float64() < *gpsLoss {
		return models.GpsNoFix
	}
	return models.GpsFix3D
}

func main() {
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	logger.Info("Rover telemetry generator started",
		zap.String("broker", *mqttBroker),
		zap.String("prefix", *prefix),
		zap.Float64("wrongdir_probability", *wrongDir),
		zap.Float64("gpsloss_probability", *gpsLoss),
		zap.Int("linkdrop_seconds", *linkDrop),
		zap.Int("stall_seconds", *stallAfter),
	)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(*mqttBroker)
	opts.SetClientID("rover-telemgen")
	if *mqttUser != "" {
		opts.SetUsername(*mqttUser)
		opts.SetPassword(*mqttPass)
	}
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)

	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Error("MQTT connection lost", zap.Error(err))
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		logger.Fatal("Failed to connect to MQTT broker", zap.Error(token.Error()))
	}
	defer client.Disconnect(250)

	publish := func(suffix string, payload interface{}) {
		body, err := json.Marshal(payload)
		if err != nil {
			logger.Error("Failed to marshal payload", zap.Error(err))
			return
		}
		topic := fmt.Sprintf("%s/%s", *prefix, suffix)
		token := client.Publish(topic, 1, false, body)
		if token.Wait() && token.Error() != nil {
			logger.Error("Failed to publish", zap.String("topic", topic), zap.Error(token.Error()))
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sim := NewMockRoverSimulator(logger)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	seconds := 0
	lastWaypoint := sim.waypoint

	for {
		select {
		case <-sigChan:
			logger.Info("Shutting down generator", zap.Int("seconds_run", seconds))
			return

		case <-ticker.C:
			seconds++
			if *linkDrop > 0 && seconds >= *linkDrop {
				logger.Warn("Simulating link drop, publishing stopped")
				continue
			}

			sim.Step()

			publish("heartbeat", models.Heartbeat{
				VehicleType: models.VehicleGroundRover,
				CustomMode:  uint32(sim.mode),
				BaseMode:    0x81,
			})

			if sim.mode == models.ModeAuto {
				publish("nav_output", models.NavOutput{WaypointDistance: sim.distance})
				publish("mission_current", models.MissionCurrent{Seq: sim.waypoint})

				if sim.waypoint != lastWaypoint {
					publish("mission_item_reached", models.MissionItemReached{Seq: lastWaypoint})
					lastWaypoint = sim.waypoint
				}
			}

			publish("gps_raw", models.GpsRaw{FixType: sim.GpsFix()})
			publish("gps2_raw", models.GpsRaw{FixType: sim.GpsFix()})
		}
	}
}
