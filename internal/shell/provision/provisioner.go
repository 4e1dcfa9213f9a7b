// Package provision creates cloud instances from templates. This is part of
// the Imperative Shell - it calls the provider API and writes local state.
package provision

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/buildvm/buildvm/internal/core/capability"
	"github.com/buildvm/buildvm/internal/core/cloudinit"
	"github.com/buildvm/buildvm/internal/core/domain"
	"github.com/buildvm/buildvm/internal/core/template"
	"github.com/buildvm/buildvm/internal/shell/cloud"
	"github.com/buildvm/buildvm/internal/shell/registry"
)

// Default base image when neither the request nor the template picks one.
const DefaultImage = "linode/ubuntu24.04"

// passwordFileName receives a generated administrative credential so the
// operator can log in later. Never written when the credential was supplied.
const passwordFileName = "linode-root-password.txt"

// Options configures poll behavior. The zero value gets defaults.
type Options struct {
	// WaitTimeout bounds the wait for the instance to reach running state.
	WaitTimeout time.Duration

	// WaitInterval is the fixed poll interval. No backoff: the command path
	// is synchronous and the wait is hard-bounded.
	WaitInterval time.Duration
}

func (o *Options) applyDefaults() {
	if o.WaitTimeout == 0 {
		o.WaitTimeout = 10 * time.Minute
	}
	if o.WaitInterval == 0 {
		o.WaitInterval = 10 * time.Second
	}
}

// Request describes one deployment to provision. Override fields beat the
// template's defaults.
type Request struct {
	Directory string
	Template  *template.Template

	AppName string
	EnvName string

	Region       string
	InstanceType string
	Image        string

	EnvFile  string
	RootPass string
	Wait     bool
}

// Result reports a created deployment.
type Result struct {
	Deployment   domain.Deployment
	PasswordFile string
	Document     string
}

// Provisioner creates instances and records their identity.
type Provisioner struct {
	api    cloud.InstanceAPI
	meta   *registry.MetadataStore
	opts   Options
	logger *slog.Logger

	// Injectable for deterministic tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a provisioner.
func New(api cloud.InstanceAPI, meta *registry.MetadataStore, opts Options, logger *slog.Logger) *Provisioner {
	opts.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{
		api:    api,
		meta:   meta,
		opts:   opts,
		logger: logger.With("component", "provisioner"),
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Provision creates one instance from the request's template and registers
// the deployment. Any failure before the create call aborts cleanly; a
// create response without a network address is fatal so no partial resource
// is implicitly tracked.
func (p *Provisioner) Provision(ctx context.Context, req Request) (*Result, error) {
	prep, err := p.prepare(req)
	if err != nil {
		return nil, err
	}

	rootPass := req.RootPass
	passwordFile := ""
	if rootPass == "" {
		rootPass, err = domain.GenerateRootPassword()
		if err != nil {
			return nil, err
		}
		passwordFile = filepath.Join(req.Directory, passwordFileName)
		if err := os.WriteFile(passwordFile, []byte(rootPass+"\n"), 0o600); err != nil {
			return nil, fmt.Errorf("write password file: %w", err)
		}
	} else if err := domain.ValidateRootPassword(rootPass); err != nil {
		return nil, err
	}

	createdAt := p.now().UTC()
	label := domain.BuildLabel(prep.appName, prep.envName, domain.CompactTimestamp(createdAt))
	tags := domain.BuildTags(prep.deploymentID, prep.appName, prep.envName, req.Template.Name, req.Template.Version)

	p.logger.Info("creating instance",
		"deployment_id", prep.deploymentID,
		"region", prep.region,
		"type", prep.instanceType,
		"image", prep.image,
	)

	inst, err := p.api.CreateInstance(ctx, cloud.CreateRequest{
		Region:   prep.region,
		Type:     prep.instanceType,
		Image:    prep.image,
		Label:    label,
		RootPass: rootPass,
		Tags:     tags,
		UserData: base64.StdEncoding.EncodeToString([]byte(prep.document)),
	})
	if err != nil {
		return nil, &ProvisionError{Reason: "instance creation rejected", Err: err}
	}
	if len(inst.IPv4) == 0 {
		return nil, &ProvisionError{Reason: fmt.Sprintf("instance %d has no network address", inst.ID)}
	}

	hostname := domain.DeriveHostname(inst.IPv4[0])
	container := req.Template.Deploy.Linode.Container

	if err := p.meta.Save(inst.ID, registry.Metadata{
		DeploymentID: prep.deploymentID,
		AppName:      prep.appName,
		EnvName:      prep.envName,
		CreatedAt:    createdAt,
		CreatedFrom:  prep.sourceDir,
		Health:       container.Health,
		Hostname:     hostname,
		ExternalPort: container.ExternalPort,
		InternalPort: container.InternalPort,
	}); err != nil {
		p.logger.Warn("failed to cache deployment metadata", "error", err)
	}

	if err := registry.WriteState(req.Directory, registry.State{
		InstanceID:    inst.ID,
		AppName:       prep.appName,
		Environment:   prep.envName,
		DeploymentID:  prep.deploymentID,
		Created:       createdAt,
		Addresses:     inst.IPv4,
		Region:        prep.region,
		InstanceClass: prep.instanceType,
	}); err != nil {
		p.logger.Warn("failed to write state artifact", "error", err)
	}

	dep := domain.Deployment{
		ID:           prep.deploymentID,
		AppName:      prep.appName,
		EnvName:      prep.envName,
		Template:     domain.TemplateRef{Name: req.Template.Name, Version: req.Template.Version},
		Region:       prep.region,
		InstanceType: prep.instanceType,
		InstanceID:   inst.ID,
		Label:        label,
		IPv4:         inst.IPv4,
		Hostname:     hostname,
		Health:       container.Health,
		ExternalPort: container.ExternalPort,
		InternalPort: container.InternalPort,
		SourceDir:    prep.sourceDir,
		CreatedAt:    createdAt,
		LastStatus:   domain.MapInstanceStatus(inst.Status),
	}

	if req.Wait {
		final, err := p.waitForStatus(ctx, inst.ID, "running")
		if err != nil {
			return nil, err
		}
		dep.LastStatus = domain.MapInstanceStatus(final.Status)
	}

	return &Result{Deployment: dep, PasswordFile: passwordFile, Document: prep.document}, nil
}

// RenderDocument builds the provisioning document without creating anything.
// Document generation is pure, so the dry run renders exactly what Provision
// would send for the same inputs and deployment id.
func (p *Provisioner) RenderDocument(req Request) (string, error) {
	prep, err := p.prepare(req)
	if err != nil {
		return "", err
	}
	return prep.document, nil
}

// Destroy terminates a deployment's instance and removes its local records.
func (p *Provisioner) Destroy(ctx context.Context, dep *domain.Deployment) error {
	if err := p.api.DeleteInstance(ctx, dep.InstanceID); err != nil {
		return fmt.Errorf("destroy deployment %s: %w", dep.ID, err)
	}
	if err := p.meta.Delete(dep.InstanceID); err != nil {
		p.logger.Warn("failed to drop metadata entry", "instance_id", dep.InstanceID, "error", err)
	}
	if dep.SourceDir != "" {
		if err := registry.RemoveState(dep.SourceDir); err != nil {
			p.logger.Warn("failed to remove state artifact", "dir", dep.SourceDir, "error", err)
		}
	}
	p.logger.Info("deployment destroyed", "deployment_id", dep.ID, "instance_id", dep.InstanceID)
	return nil
}

// preparation carries everything resolved before the create call.
type preparation struct {
	deploymentID string
	appName      string
	envName      string
	region       string
	instanceType string
	image        string
	sourceDir    string
	document     string
}

// prepare resolves settings, composes capabilities, and builds the document.
// Pure except for reading the project's env file.
func (p *Provisioner) prepare(req Request) (*preparation, error) {
	if req.Template == nil {
		return nil, &ConfigurationError{Field: "template"}
	}
	linodeCfg := req.Template.Deploy.Linode
	container := linodeCfg.Container

	region := valueOr(req.Region, linodeCfg.RegionDefault)
	instanceType := valueOr(req.InstanceType, linodeCfg.TypeDefault)
	image := valueOr(req.Image, valueOr(linodeCfg.Image, DefaultImage))
	appName := valueOr(req.AppName, req.Template.Name)
	envName := valueOr(req.EnvName, "default")

	if region == "" {
		return nil, &ConfigurationError{Field: "region"}
	}
	if instanceType == "" {
		return nil, &ConfigurationError{Field: "instance type"}
	}
	if container.Image == "" {
		return nil, &ConfigurationError{Field: "container image"}
	}

	sourceDir, err := filepath.Abs(req.Directory)
	if err != nil {
		return nil, fmt.Errorf("resolve directory: %w", err)
	}

	envFile := valueOr(req.EnvFile, ".env")
	projectEnv, err := template.LoadEnvFile(filepath.Join(req.Directory, envFile), req.Template.Env.Required)
	if err != nil {
		return nil, err
	}

	envVars := template.ExpandEnv(container.Env, projectEnv)
	envVars["BUILD_APP_NAME"] = appName
	envVars["BUILD_ENV"] = envName

	deploymentID := domain.NewDeploymentID()
	composer, err := capability.FromSpec(req.Template.Capabilities, deploymentID, appName)
	if err != nil {
		return nil, err
	}

	doc := cloudinit.Build(cloudinit.Config{
		ContainerImage:    container.Image,
		InternalPort:      container.InternalPort,
		ExternalPort:      container.ExternalPort,
		EnvVars:           envVars,
		Command:           container.Command,
		PostStartScript:   container.PostStartScript,
		CustomSetupScript: req.Template.Setup.Script,
		CustomFiles:       req.Template.Setup.Files,
		Volumes:           container.Volumes,
		Capabilities:      composer.Names(),
		Fragments:         composer.Compose(),
	})
	encoded, err := doc.Encode()
	if err != nil {
		return nil, err
	}

	return &preparation{
		deploymentID: deploymentID,
		appName:      appName,
		envName:      envName,
		region:       region,
		instanceType: instanceType,
		image:        image,
		sourceDir:    sourceDir,
		document:     encoded,
	}, nil
}

// waitForStatus spin-polls the instance at a fixed interval until it reports
// the desired status or the deadline passes. There is no cancellation token
// beyond ctx; the deadline is hard.
func (p *Provisioner) waitForStatus(ctx context.Context, instanceID int, desired string) (*cloud.Instance, error) {
	start := p.now()
	deadline := start.Add(p.opts.WaitTimeout)

	for p.now().Before(deadline) {
		inst, err := p.api.GetInstance(ctx, instanceID)
		if err == nil && inst.Status == desired {
			return inst, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.sleep(p.opts.WaitInterval)
	}
	return nil, &PollTimeoutError{
		Target:  fmt.Sprintf("instance %d status %q", instanceID, desired),
		Elapsed: p.now().Sub(start),
	}
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
