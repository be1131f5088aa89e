package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"rovermon/models"

	"go.uber.org/zap"
)

// AudioAlertService plays alert sounds through the audio-player sidecar over
// HTTP. Playback failures are logged, never fatal; the supervisor must keep
// running with a dead speaker.
type AudioAlertService struct {
	logger     *zap.Logger
	apiURL     string
	httpClient *http.Client
}

// audioPlayRequest is the payload sent to the audio player API
type audioPlayRequest struct {
	Sound models.AlertSound `json:"sound"`
}

// NewAudioAlertService creates a new audio alert service
func NewAudioAlertService(logger *zap.Logger, apiURL string) *AudioAlertService {
	return &AudioAlertService{
		logger: logger,
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Play sends the sound to the audio player.
func (a *AudioAlertService) Play(sound models.AlertSound) {
	if err := a.play(sound); err != nil {
		a.logger.Error("Failed to play alert sound",
			zap.String("sound", string(sound)),
			zap.Error(err))
		return
	}

	a.logger.Debug("Alert sound played", zap.String("sound", string(sound)))
}

func (a *AudioAlertService) play(sound models.AlertSound) error {
	jsonData, err := json.Marshal(audioPlayRequest{Sound: sound})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v1/play", a.apiURL)

	req, err := http.NewRequest("POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "rovermon/1.0")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	return fmt.Errorf("audio player API error: %s", resp.Status)
}
