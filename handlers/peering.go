package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"go.uber.org/zap"

	"github.com/lex00/wetwire-aws-constructs-go/internal/logging"
)

type peeringRoute struct {
	vpcID       string
	peeringID   string
	destination string
}

func peeringRouteProps(props map[string]interface{}) (peeringRoute, error) {
	var (
		route peeringRoute
		err   error
	)
	if route.vpcID, err = stringProp(props, "VpcId"); err != nil {
		return route, err
	}
	if route.peeringID, err = stringProp(props, "PeeringConnectionId"); err != nil {
		return route, err
	}
	if route.destination, err = stringProp(props, "DestinationCidrBlock"); err != nil {
		return route, err
	}
	return route, nil
}

// vpcPeeringRoutes adds a route to DestinationCidrBlock through the peering
// connection in every route table of VpcId. The route tables of an imported
// VPC are not known at synth time, so they are listed here.
func (r *Router) vpcPeeringRoutes(ctx context.Context, event cfn.Event) (map[string]interface{}, error) {
	logger := logging.FromContext(ctx)

	route, err := peeringRouteProps(event.ResourceProperties)
	if err != nil {
		return nil, err
	}

	if event.RequestType == cfn.RequestDelete {
		tables, err := r.routeTables(ctx, route.vpcID)
		if err != nil {
			return nil, err
		}
		if err := r.deleteRoutes(ctx, tables, route.destination); err != nil {
			return nil, err
		}
		logger.Info("deleted peering routes", zap.Strings("route_tables", tables))
		return map[string]interface{}{"Response": strings.Join(tables, ",")}, nil
	}

	if event.RequestType == cfn.RequestUpdate {
		if old, err := peeringRouteProps(event.OldResourceProperties); err == nil && old != route {
			tables, err := r.routeTables(ctx, old.vpcID)
			if err != nil {
				return nil, err
			}
			if err := r.deleteRoutes(ctx, tables, old.destination); err != nil {
				return nil, err
			}
		}
	}

	tables, err := r.routeTables(ctx, route.vpcID)
	if err != nil {
		return nil, err
	}
	for _, table := range tables {
		_, err := r.client.CreateRouteWithContext(ctx, &ec2.CreateRouteInput{
			RouteTableId:           aws.String(table),
			DestinationCidrBlock:   aws.String(route.destination),
			VpcPeeringConnectionId: aws.String(route.peeringID),
		})
		if hasErrorCode(err, "RouteAlreadyExists") {
			logger.Warn("route already exists", zap.String("route_table", table))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("creating route in %s: %w", table, err)
		}
	}
	logger.Info("created peering routes",
		zap.Strings("route_tables", tables),
		zap.String("destination", route.destination))
	return map[string]interface{}{"Response": strings.Join(tables, ",")}, nil
}

func (r *Router) routeTables(ctx context.Context, vpcID string) ([]string, error) {
	input := &ec2.DescribeRouteTablesInput{
		Filters: []*ec2.Filter{{Name: aws.String("vpc-id"), Values: aws.StringSlice([]string{vpcID})}},
	}
	var tables []string
	for {
		out, err := r.client.DescribeRouteTablesWithContext(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("describing route tables of %s: %w", vpcID, err)
		}
		for _, t := range out.RouteTables {
			tables = append(tables, aws.StringValue(t.RouteTableId))
		}
		if aws.StringValue(out.NextToken) == "" {
			return tables, nil
		}
		input.NextToken = out.NextToken
	}
}

func (r *Router) deleteRoutes(ctx context.Context, tables []string, destination string) error {
	for _, table := range tables {
		_, err := r.client.DeleteRouteWithContext(ctx, &ec2.DeleteRouteInput{
			RouteTableId:         aws.String(table),
			DestinationCidrBlock: aws.String(destination),
		})
		if err != nil && !hasErrorCode(err, "InvalidRoute.NotFound") {
			return fmt.Errorf("deleting route in %s: %w", table, err)
		}
	}
	return nil
}

// vpcPeerDnsResolution toggles private DNS resolution across a peering
// connection for the requester side, the accepter side or both. Deleting
// the resource turns resolution back off.
func (r *Router) vpcPeerDnsResolution(ctx context.Context, event cfn.Event) (map[string]interface{}, error) {
	peeringID, err := stringProp(event.ResourceProperties, "PeeringConnectionId")
	if err != nil {
		return nil, err
	}
	requester, err := boolProp(event.ResourceProperties, "IsRequester")
	if err != nil {
		return nil, err
	}
	accepter, err := boolProp(event.ResourceProperties, "IsAccepter")
	if err != nil {
		return nil, err
	}

	var wasRequester, wasAccepter bool
	if event.RequestType == cfn.RequestUpdate && event.OldResourceProperties != nil {
		wasRequester, _ = boolProp(event.OldResourceProperties, "IsRequester")
		wasAccepter, _ = boolProp(event.OldResourceProperties, "IsAccepter")
	}
	if event.RequestType == cfn.RequestDelete {
		wasRequester, wasAccepter = requester, accepter
		requester, accepter = false, false
	}

	input := &ec2.ModifyVpcPeeringConnectionOptionsInput{
		VpcPeeringConnectionId: aws.String(peeringID),
	}
	if requester || wasRequester {
		input.RequesterPeeringConnectionOptions = &ec2.PeeringConnectionOptionsRequest{
			AllowDnsResolutionFromRemoteVpc: aws.Bool(requester),
		}
	}
	if accepter || wasAccepter {
		input.AccepterPeeringConnectionOptions = &ec2.PeeringConnectionOptionsRequest{
			AllowDnsResolutionFromRemoteVpc: aws.Bool(accepter),
		}
	}
	if input.RequesterPeeringConnectionOptions == nil && input.AccepterPeeringConnectionOptions == nil {
		return nil, nil
	}

	_, err = r.client.ModifyVpcPeeringConnectionOptionsWithContext(ctx, input)
	if event.RequestType == cfn.RequestDelete && hasErrorCode(err, "InvalidVpcPeeringConnectionID.NotFound") {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("updated peering dns resolution",
		zap.String("peering_connection", peeringID),
		zap.Bool("requester", requester),
		zap.Bool("accepter", accepter))
	return nil, nil
}

// vpcPeeringAccepter accepts a pending peering request. The requester side
// owns the connection, so delete is a no-op.
func (r *Router) vpcPeeringAccepter(ctx context.Context, event cfn.Event) (map[string]interface{}, error) {
	peeringID, err := stringProp(event.ResourceProperties, "PeeringConnectionId")
	if err != nil {
		return nil, err
	}
	if event.RequestType == cfn.RequestDelete {
		return nil, nil
	}
	if event.RequestType == cfn.RequestUpdate {
		if old, _ := stringProp(event.OldResourceProperties, "PeeringConnectionId"); old == peeringID {
			return nil, nil
		}
	}

	out, err := r.client.AcceptVpcPeeringConnectionWithContext(ctx, &ec2.AcceptVpcPeeringConnectionInput{
		VpcPeeringConnectionId: aws.String(peeringID),
	})
	if err != nil {
		return nil, err
	}
	status := ""
	if out.VpcPeeringConnection != nil && out.VpcPeeringConnection.Status != nil {
		status = aws.StringValue(out.VpcPeeringConnection.Status.Code)
	}
	logging.FromContext(ctx).Info("accepted peering connection",
		zap.String("peering_connection", peeringID),
		zap.String("status", status))
	return map[string]interface{}{"Status": status}, nil
}
