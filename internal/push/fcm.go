package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/oauth2/google"

	"github.com/mompick/mompick-admin/internal/config"
)

const (
	fcmScope = "https://www.googleapis.com/auth/firebase.messaging"

	// notificationColor is the accent color of Android notifications.
	notificationColor = "#fb8678"
)

// ErrCredentialsMissing is returned when no service account is configured.
var ErrCredentialsMissing = errors.New("fcm service account credentials are not configured")

// FCM sends through the Firebase Cloud Messaging HTTP v1 API.
type FCM struct {
	client   *http.Client
	endpoint string
}

// NewFCM creates an FCM transport authorized by a service account.
func NewFCM(ctx context.Context, cfg config.FCM) (*FCM, error) {
	creds := []byte(cfg.CredentialsJSON)

	if len(creds) == 0 && cfg.CredentialsFile != "" {
		var err error
		if creds, err = os.ReadFile(cfg.CredentialsFile); err != nil {
			return nil, errors.Wrap(err, "read fcm credentials")
		}
	}

	if len(creds) == 0 {
		return nil, ErrCredentialsMissing
	}

	jwt, err := google.JWTConfigFromJSON(creds, fcmScope)
	if err != nil {
		return nil, errors.Wrap(err, "parse fcm credentials")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = config.DefaultFCMEndpoint
	}

	return NewFCMWithClient(jwt.Client(ctx), fmt.Sprintf(endpoint, cfg.ProjectID)), nil
}

// NewFCMWithClient creates an FCM transport posting to endpoint with an
// already authorized client.
func NewFCMWithClient(client *http.Client, endpoint string) *FCM {
	return &FCM{client: client, endpoint: endpoint}
}

// Name implements Transport.
func (f *FCM) Name() string { return config.PushFCM }

type fcmRequest struct {
	Message fcmMessage `json:"message"`
}

type fcmMessage struct {
	Token        string            `json:"token"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	Android      fcmAndroid        `json:"android"`
	APNS         fcmAPNS           `json:"apns"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmAndroid struct {
	Priority     string                 `json:"priority"`
	Notification fcmAndroidNotification `json:"notification"`
}

type fcmAndroidNotification struct {
	ChannelID string `json:"channel_id"`
	Sound     string `json:"sound"`
	Color     string `json:"color"`
}

type fcmAPNS struct {
	Payload struct {
		APS struct {
			Sound string `json:"sound"`
			Badge int    `json:"badge"`
		} `json:"aps"`
	} `json:"payload"`
}

type fcmError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			ErrorCode string `json:"errorCode"`
		} `json:"details"`
	} `json:"error"`
}

func (e fcmError) unregistered(status int) bool {
	if status == http.StatusNotFound || e.Error.Status == "NOT_FOUND" {
		return true
	}

	for _, d := range e.Error.Details {
		if d.ErrorCode == "UNREGISTERED" {
			return true
		}
	}

	return strings.Contains(e.Error.Message, "registration-token-not-registered")
}

// Send implements Transport.
func (f *FCM) Send(ctx context.Context, d Delivery) error {
	msg := fcmMessage{
		Token:        d.Token,
		Notification: fcmNotification{Title: d.Title, Body: d.Body},
		Data:         d.Data,
		Android: fcmAndroid{
			Priority: "high",
			Notification: fcmAndroidNotification{
				ChannelID: d.Channel,
				Sound:     "default",
				Color:     notificationColor,
			},
		},
	}
	msg.APNS.Payload.APS.Sound = "default"
	msg.APNS.Payload.APS.Badge = 1

	body, err := json.Marshal(fcmRequest{Message: msg})
	if err != nil {
		return errors.Wrap(err, "encode fcm message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build fcm request")
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "send fcm request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var fe fcmError
	_ = json.Unmarshal(raw, &fe)

	if fe.unregistered(resp.StatusCode) {
		return errors.Wrapf(ErrInvalidToken, "fcm %d %s", resp.StatusCode, fe.Error.Status)
	}

	return fmt.Errorf("fcm %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
}
