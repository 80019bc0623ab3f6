// Package compute drives the EC2 instance that hosts the inference server.
package compute

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"

	domain "github.com/aakankshagupta18/klean-backend/internal/domain/compute"
)

// EC2API is the subset of the EC2 client used here.
type EC2API interface {
	StartInstances(ctx context.Context, in *ec2.StartInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error)
	StopInstances(ctx context.Context, in *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error)
}

type Controller struct {
	api        EC2API
	instanceID string
}

func NewController(api EC2API, instanceID string) *Controller {
	return &Controller{api: api, instanceID: instanceID}
}

// NewFromConfig builds a controller on top of a loaded AWS config.
func NewFromConfig(cfg aws.Config, instanceID string) *Controller {
	return NewController(ec2.NewFromConfig(cfg), instanceID)
}

func (c *Controller) Start(ctx context.Context) (domain.State, error) {
	if c.instanceID == "" {
		return domain.State{}, domain.ErrNotConfigured
	}
	out, err := c.api.StartInstances(ctx, &ec2.StartInstancesInput{InstanceIds: []string{c.instanceID}})
	if err != nil {
		return domain.State{}, fmt.Errorf("start %s: %w: %w", c.instanceID, domain.ErrUnavailable, err)
	}
	st := domain.State{InstanceID: c.instanceID}
	for _, ch := range out.StartingInstances {
		if aws.ToString(ch.InstanceId) != c.instanceID {
			continue
		}
		if ch.PreviousState != nil {
			st.PreviousState = string(ch.PreviousState.Name)
		}
		if ch.CurrentState != nil {
			st.CurrentState = string(ch.CurrentState.Name)
		}
	}
	return st, nil
}

func (c *Controller) Stop(ctx context.Context) (domain.State, error) {
	if c.instanceID == "" {
		return domain.State{}, domain.ErrNotConfigured
	}
	out, err := c.api.StopInstances(ctx, &ec2.StopInstancesInput{InstanceIds: []string{c.instanceID}})
	if err != nil {
		return domain.State{}, fmt.Errorf("stop %s: %w: %w", c.instanceID, domain.ErrUnavailable, err)
	}
	st := domain.State{InstanceID: c.instanceID}
	for _, ch := range out.StoppingInstances {
		if aws.ToString(ch.InstanceId) != c.instanceID {
			continue
		}
		if ch.PreviousState != nil {
			st.PreviousState = string(ch.PreviousState.Name)
		}
		if ch.CurrentState != nil {
			st.CurrentState = string(ch.CurrentState.Name)
		}
	}
	return st, nil
}
