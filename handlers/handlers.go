// Package handlers implements the Lambda side of the custom resources the
// constructs declare. A single function binary serves every resource type;
// the Router picks the handler from the event's ResourceType.
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"go.uber.org/zap"

	"github.com/lex00/wetwire-aws-constructs-go/constructs/custom"
	"github.com/lex00/wetwire-aws-constructs-go/internal/logging"
)

// Handler processes one custom resource event and returns the attributes
// exposed through Fn::GetAtt.
type Handler func(ctx context.Context, event cfn.Event) (map[string]interface{}, error)

// Router dispatches custom resource events by resource type.
type Router struct {
	client   ec2iface.EC2API
	logger   *zap.Logger
	handlers map[string]Handler
}

// New returns a Router with a handler registered for every custom resource
// type in package custom.
func New(client ec2iface.EC2API, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Router{
		client: client,
		logger: logger,
	}
	r.handlers = map[string]Handler{
		custom.TypeSubnetTagging:        r.subnetTagging,
		custom.TypeVpcPeeringRoutes:     r.vpcPeeringRoutes,
		custom.TypeVpcPeerDnsResolution: r.vpcPeerDnsResolution,
		custom.TypeVpcPeeringAccepter:   r.vpcPeeringAccepter,
		custom.TypeEksCleanup:           r.eksCleanup,
	}
	return r
}

// Types returns the resource types the router serves.
func (r *Router) Types() []string {
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	return types
}

// Handle is a cfn.CustomResourceFunction. The physical resource ID is the
// logical ID, so updates never trigger a replacement delete.
func (r *Router) Handle(ctx context.Context, event cfn.Event) (string, map[string]interface{}, error) {
	physicalID := event.PhysicalResourceID
	if physicalID == "" {
		physicalID = event.LogicalResourceID
	}

	logger := r.logger.With(
		zap.String(logging.FieldResourceType, event.ResourceType),
		zap.String(logging.FieldRequestType, string(event.RequestType)),
		zap.String(logging.FieldRequestID, event.RequestID),
		zap.String(logging.FieldLogicalID, event.LogicalResourceID),
		zap.String(logging.FieldPhysicalID, physicalID),
	)
	ctx = logging.WithLogger(ctx, logger)

	handler, ok := r.handlers[event.ResourceType]
	if !ok {
		logger.Error("unknown resource type")
		return physicalID, nil, fmt.Errorf("unsupported resource type %q", event.ResourceType)
	}

	start := time.Now()
	logger.Info("handling request")
	data, err := handler(ctx, event)
	if err != nil {
		logger.Error("request failed", zap.Error(err), zap.Int64(logging.FieldDuration, time.Since(start).Milliseconds()))
		return physicalID, nil, fmt.Errorf("%s %s: %w", event.ResourceType, event.RequestType, err)
	}
	logger.Info("request complete", zap.Int64(logging.FieldDuration, time.Since(start).Milliseconds()))
	return physicalID, data, nil
}
