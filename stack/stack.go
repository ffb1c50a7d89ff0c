// Package stack collects resources added by constructs and synthesizes them
// into a CloudFormation template.
//
// Constructs receive a *Scope, add resources under it and return the
// identifiers other constructs need:
//
//	s := stack.New("network", stack.WithLogger(logger))
//	vpc, err := s.Root().Add("Vpc", ec2.VPC{CidrBlock: "10.1.0.0/16"})
//	subnet, err := s.Root().Add("Subnet", ec2.Subnet{VpcId: vpc.Ref()})
//	tmpl, nodes, err := s.Synth()
package stack

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	wetwire "github.com/lex00/wetwire-aws-constructs-go"
	"github.com/lex00/wetwire-aws-constructs-go/internal/template"
	"github.com/lex00/wetwire-aws-constructs-go/intrinsics"
)

// ErrDuplicateID is returned when two resources resolve to the same logical ID.
var ErrDuplicateID = errors.New("duplicate logical ID")

// Stack is a single CloudFormation stack.
type Stack struct {
	name       string
	account    string
	region     string
	logger     *zap.Logger
	builder    *template.Builder
	owners     map[string]string
	outputs    map[string]bool
	singletons map[string]any
	tags       map[string]string
}

// Option configures a Stack.
type Option func(*Stack)

// WithDescription sets the template description.
func WithDescription(description string) Option {
	return func(s *Stack) { s.builder.SetDescription(description) }
}

// WithLogger sets the logger used while constructs are added.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Stack) { s.logger = logger }
}

// WithTags applies tags to every taggable resource in the stack.
func WithTags(tags map[string]string) Option {
	return func(s *Stack) {
		for k, v := range tags {
			s.tags[k] = v
			s.builder.SetTag(k, v)
		}
	}
}

// WithEnv pins the account and region. Constructs fall back to the
// AWS::AccountId and AWS::Region pseudo parameters when these are empty.
func WithEnv(account, region string) Option {
	return func(s *Stack) {
		s.account = account
		s.region = region
	}
}

// New creates an empty stack.
func New(name string, opts ...Option) *Stack {
	s := &Stack{
		name:       name,
		logger:     zap.NewNop(),
		owners:     make(map[string]string),
		outputs:    make(map[string]bool),
		singletons: make(map[string]any),
		tags:       make(map[string]string),
	}
	s.builder = template.NewBuilder("")
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the stack name.
func (s *Stack) Name() string { return s.name }

// Logger returns the stack logger.
func (s *Stack) Logger() *zap.Logger { return s.logger }

// Tags returns the stack-wide tags.
func (s *Stack) Tags() map[string]string {
	tags := make(map[string]string, len(s.tags))
	for k, v := range s.tags {
		tags[k] = v
	}
	return tags
}

// Account returns the pinned account ID, or the AWS::AccountId pseudo parameter.
func (s *Stack) Account() any {
	if s.account != "" {
		return s.account
	}
	return intrinsics.AWS_ACCOUNT_ID
}

// Region returns the pinned region, or the AWS::Region pseudo parameter.
func (s *Stack) Region() any {
	if s.region != "" {
		return s.region
	}
	return intrinsics.AWS_REGION
}

// Root returns the top-level scope.
func (s *Stack) Root() *Scope {
	return &Scope{stack: s}
}

// Singleton returns the value stored under key, creating it on first use.
// Constructs use it to share one custom-resource provider per stack.
func (s *Stack) Singleton(key string, create func() (any, error)) (any, error) {
	if v, ok := s.singletons[key]; ok {
		return v, nil
	}
	v, err := create()
	if err != nil {
		return nil, err
	}
	s.singletons[key] = v
	return v, nil
}

// Synth builds the template. Resources are returned in dependency order.
func (s *Stack) Synth() (*wetwire.Template, []wetwire.ResourceNode, error) {
	tmpl, nodes, err := s.builder.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("synthesizing stack %s: %w", s.name, err)
	}
	s.logger.Info("stack synthesized",
		zap.String("stack", s.name),
		zap.Int("resources", len(tmpl.Resources)),
		zap.Int("outputs", len(tmpl.Outputs)))
	return tmpl, nodes, nil
}

// Scope is a position in the construct tree. Logical IDs of resources added
// under a scope are prefixed with its path.
type Scope struct {
	stack *Stack
	path  []string
}

// Stack returns the stack the scope belongs to.
func (sc *Scope) Stack() *Stack { return sc.stack }

// Child returns a nested scope.
func (sc *Scope) Child(id string) *Scope {
	path := make([]string, len(sc.path), len(sc.path)+1)
	copy(path, sc.path)
	return &Scope{stack: sc.stack, path: append(path, id)}
}

// Path returns the slash-separated construct path.
func (sc *Scope) Path() string {
	return strings.Join(sc.path, "/")
}

// ID returns the logical ID for parts under this scope.
func (sc *Scope) ID(parts ...string) string {
	all := make([]string, 0, len(sc.path)+len(parts))
	all = append(all, sc.path...)
	all = append(all, parts...)
	return ConstructID(all...)
}

// Add registers a resource under this scope.
func (sc *Scope) Add(id string, r wetwire.Resource, opts ...ResourceOption) (Handle, error) {
	logicalID := sc.ID(id)
	if owner, ok := sc.stack.owners[logicalID]; ok {
		return Handle{}, fmt.Errorf("%w: %s (added by %q and %q)", ErrDuplicateID, logicalID, owner, sc.Path())
	}

	entry := template.Entry{
		LogicalID: logicalID,
		Construct: sc.Path(),
		Resource:  r,
	}
	for _, opt := range opts {
		opt(&entry)
	}

	if err := sc.stack.builder.AddResource(entry); err != nil {
		return Handle{}, err
	}
	sc.stack.owners[logicalID] = sc.Path()

	sc.stack.logger.Debug("resource added",
		zap.String("id", logicalID),
		zap.String("type", r.ResourceType()),
		zap.String("construct", sc.Path()))

	return Handle{LogicalID: logicalID, Type: r.ResourceType()}, nil
}

// AddParameter registers a template parameter and returns a Ref to it.
func (sc *Scope) AddParameter(id string, p wetwire.Parameter) (intrinsics.Ref, error) {
	logicalID := sc.ID(id)
	if owner, ok := sc.stack.owners[logicalID]; ok {
		return intrinsics.Ref{}, fmt.Errorf("%w: %s (added by %q and %q)", ErrDuplicateID, logicalID, owner, sc.Path())
	}
	if err := sc.stack.builder.AddParameter(logicalID, p); err != nil {
		return intrinsics.Ref{}, err
	}
	sc.stack.owners[logicalID] = sc.Path()
	return intrinsics.Ref{LogicalName: logicalID}, nil
}

// AddOutput registers a template output.
func (sc *Scope) AddOutput(id string, o wetwire.Output) error {
	logicalID := sc.ID(id)
	if sc.stack.outputs[logicalID] {
		return fmt.Errorf("%w: output %s", ErrDuplicateID, logicalID)
	}
	if err := sc.stack.builder.AddOutput(logicalID, o); err != nil {
		return err
	}
	sc.stack.outputs[logicalID] = true
	return nil
}

// Handle identifies a resource added to a stack.
type Handle struct {
	LogicalID string
	Type      string
}

// Ref returns a Ref to the resource.
func (h Handle) Ref() intrinsics.Ref {
	return intrinsics.Ref{LogicalName: h.LogicalID}
}

// GetAtt returns a GetAtt of the resource attribute.
func (h Handle) GetAtt(attribute string) intrinsics.GetAtt {
	return intrinsics.GetAtt{LogicalName: h.LogicalID, Attribute: attribute}
}

// IsZero reports whether the handle refers to nothing.
func (h Handle) IsZero() bool {
	return h.LogicalID == ""
}

// Deletion and replacement policies.
const (
	PolicyDelete   = "Delete"
	PolicyRetain   = "Retain"
	PolicySnapshot = "Snapshot"
)

// ResourceOption sets resource attributes outside Properties.
type ResourceOption func(*template.Entry)

// DependsOn adds explicit dependencies.
func DependsOn(handles ...Handle) ResourceOption {
	return func(e *template.Entry) {
		for _, h := range handles {
			if !h.IsZero() {
				e.DependsOn = append(e.DependsOn, h.LogicalID)
			}
		}
	}
}

// RemovalPolicy sets both DeletionPolicy and UpdateReplacePolicy.
func RemovalPolicy(policy string) ResourceOption {
	return func(e *template.Entry) {
		e.DeletionPolicy = policy
		e.UpdateReplacePolicy = policy
	}
}

// DeletionPolicy sets the DeletionPolicy attribute.
func DeletionPolicy(policy string) ResourceOption {
	return func(e *template.Entry) { e.DeletionPolicy = policy }
}

// UpdateReplacePolicy sets the UpdateReplacePolicy attribute.
func UpdateReplacePolicy(policy string) ResourceOption {
	return func(e *template.Entry) { e.UpdateReplacePolicy = policy }
}
