package cloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/linode/linodego"
)

// LinodeClient implements InstanceAPI against the Linode API.
type LinodeClient struct {
	client linodego.Client
	logger *slog.Logger
}

// NewLinodeClient creates a Linode API client authenticated with a personal
// access token.
func NewLinodeClient(token string, logger *slog.Logger) *LinodeClient {
	if logger == nil {
		logger = slog.Default()
	}
	client := linodego.NewClient(nil)
	client.SetToken(token)
	return &LinodeClient{
		client: client,
		logger: logger.With("component", "linode_client"),
	}
}

// CreateInstance provisions a Linode instance. The provisioning document
// travels base64-encoded in metadata.user_data.
func (c *LinodeClient) CreateInstance(ctx context.Context, req CreateRequest) (*Instance, error) {
	opts := linodego.InstanceCreateOptions{
		Region:   req.Region,
		Type:     req.Type,
		Image:    req.Image,
		Label:    req.Label,
		RootPass: req.RootPass,
		Tags:     req.Tags,
	}
	if req.UserData != "" {
		opts.Metadata = &linodego.InstanceMetadataOptions{UserData: req.UserData}
	}

	inst, err := c.client.CreateInstance(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	c.logger.Info("instance created",
		"instance_id", inst.ID,
		"region", req.Region,
		"type", req.Type,
	)
	return fromLinode(inst), nil
}

// GetInstance fetches one instance by id.
func (c *LinodeClient) GetInstance(ctx context.Context, id int) (*Instance, error) {
	inst, err := c.client.GetInstance(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInstanceNotFound
		}
		return nil, fmt.Errorf("get instance %d: %w", id, err)
	}
	return fromLinode(inst), nil
}

// ListInstances enumerates all instances on the account.
func (c *LinodeClient) ListInstances(ctx context.Context) ([]Instance, error) {
	linodes, err := c.client.ListInstances(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	instances := make([]Instance, 0, len(linodes))
	for i := range linodes {
		instances = append(instances, *fromLinode(&linodes[i]))
	}
	return instances, nil
}

// DeleteInstance terminates an instance.
func (c *LinodeClient) DeleteInstance(ctx context.Context, id int) error {
	if err := c.client.DeleteInstance(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrInstanceNotFound
		}
		return fmt.Errorf("delete instance %d: %w", id, err)
	}
	c.logger.Info("instance deleted", "instance_id", id)
	return nil
}

func fromLinode(inst *linodego.Instance) *Instance {
	out := &Instance{
		ID:     inst.ID,
		Label:  inst.Label,
		Status: string(inst.Status),
		Region: inst.Region,
		Type:   inst.Type,
		Tags:   inst.Tags,
	}
	for _, ip := range inst.IPv4 {
		if ip != nil {
			out.IPv4 = append(out.IPv4, ip.String())
		}
	}
	if inst.Created != nil {
		out.Created = *inst.Created
	}
	return out
}

func isNotFound(err error) bool {
	var apiErr *linodego.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
