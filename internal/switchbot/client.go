// Package switchbot adapts the SwitchBot cloud API to the panel's device backend.
package switchbot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"switchbot_panel/internal/models"

	sb "github.com/nasa9084/go-switchbot/v4"
)

const (
	commandTypeCommand   = "command"
	commandTypeCustomize = "customize"
	defaultParameter     = "default"
	setAllCommand        = "setAll"

	// substring of the API error returned for commands a remote does not know
	notSupportedMessage = "command is not supported"
)

var ErrMissingCredentials = errors.New("switchbot token/secret are not configured")

// DeviceAPI is the part of the go-switchbot device service the panel uses.
type DeviceAPI interface {
	List(ctx context.Context) ([]sb.Device, []sb.InfraredDevice, error)
	Command(ctx context.Context, id string, cmd sb.Command) error
	Status(ctx context.Context, id string) (sb.DeviceStatus, error)
}

// Client implements the panel's device backend.
type Client struct {
	api DeviceAPI
}

// NewClient builds a client for the given credentials. Missing credentials
// do not fail construction; every call then returns ErrMissingCredentials.
func NewClient(token, secret string) *Client {
	if strings.TrimSpace(token) == "" || strings.TrimSpace(secret) == "" {
		return &Client{}
	}
	return NewClientWithAPI(sb.New(token, secret).Device())
}

func NewClientWithAPI(api DeviceAPI) *Client {
	return &Client{api: api}
}

// FetchCatalog lists physical devices and infrared remotes in backend order.
func (c *Client) FetchCatalog(ctx context.Context) (models.BackendCatalog, error) {
	if c.api == nil {
		return models.BackendCatalog{}, ErrMissingCredentials
	}
	devices, remotes, err := c.api.List(ctx)
	if err != nil {
		return models.BackendCatalog{}, fmt.Errorf("list devices: %w", err)
	}

	out := models.BackendCatalog{
		Physical:        make([]models.BackendDevice, 0, len(devices)),
		InfraredRemotes: make([]models.BackendDevice, 0, len(remotes)),
	}
	for _, d := range devices {
		out.Physical = append(out.Physical, models.BackendDevice{ID: d.ID, Name: d.Name, TypeTag: string(d.Type)})
	}
	for _, r := range remotes {
		out.InfraredRemotes = append(out.InfraredRemotes, models.BackendDevice{ID: r.ID, Name: r.Name, TypeTag: string(r.Type)})
	}
	return out, nil
}

// Status reads the live state of a physical device.
func (c *Client) Status(ctx context.Context, deviceID string) (models.DeviceStatus, error) {
	if c.api == nil {
		return models.DeviceStatus{}, ErrMissingCredentials
	}
	st, err := c.api.Status(ctx, deviceID)
	if err != nil {
		return models.DeviceStatus{}, fmt.Errorf("status of %s: %w", deviceID, err)
	}
	return models.DeviceStatus{
		ID:          deviceID,
		Power:       strings.ToLower(string(st.Power)),
		Temperature: float64(st.Temperature),
		Humidity:    int(st.Humidity),
	}, nil
}

// Dispatch sends one infrared command. A setAll-prefixed command is sent as
// the composite aircon command; anything else is sent as a named command and
// retried as a customize (learned button) command when the remote rejects it.
func (c *Client) Dispatch(ctx context.Context, deviceID, command string) error {
	if c.api == nil {
		return ErrMissingCredentials
	}

	if params, ok := strings.CutPrefix(command, models.AirconCommandPrefix); ok {
		req := sb.DeviceCommandRequest{Command: setAllCommand, Parameter: params, CommandType: commandTypeCommand}
		if err := c.api.Command(ctx, deviceID, req); err != nil {
			return fmt.Errorf("send setAll to %s: %w", deviceID, err)
		}
		return nil
	}

	req := sb.DeviceCommandRequest{Command: command, Parameter: defaultParameter, CommandType: commandTypeCommand}
	err := c.api.Command(ctx, deviceID, req)
	if err == nil {
		return nil
	}
	if !strings.Contains(err.Error(), notSupportedMessage) {
		return fmt.Errorf("send %q to %s: %w", command, deviceID, err)
	}

	req.CommandType = commandTypeCustomize
	if err := c.api.Command(ctx, deviceID, req); err != nil {
		return fmt.Errorf("send %q to %s (customize): %w", command, deviceID, err)
	}
	return nil
}
