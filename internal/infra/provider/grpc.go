package provider

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vietddude/coach/internal/core/domain"
)

// generateMethod is the full method name of the remote generator. The
// service exchanges structpb payloads, so no generated stubs are required.
const generateMethod = "/coach.v1.WorkoutGenerator/Generate"

// GRPCProvider implements Provider over a gRPC generator service.
type GRPCProvider struct {
	name     string
	endpoint string
	conn     *grpc.ClientConn
}

// NewGRPCProvider creates a gRPC-based generation provider. TLS is chosen
// from the endpoint scheme.
func NewGRPCProvider(cfg Config) (*GRPCProvider, error) {
	target := cfg.URL
	var opts []grpc.DialOption

	if strings.HasPrefix(target, "https://") || strings.HasSuffix(target, ":443") {
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{})))
		target = strings.TrimPrefix(target, "https://")
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
		target = strings.TrimPrefix(target, "http://")
	}

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("create grpc client for %s: %w", target, err)
	}

	return &GRPCProvider{name: cfg.Name, endpoint: cfg.URL, conn: conn}, nil
}

func (p *GRPCProvider) Name() string { return p.name }

// Ready queries the standard gRPC health service.
func (p *GRPCProvider) Ready(ctx context.Context) error {
	resp, err := grpc_health_v1.NewHealthClient(p.conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		return domain.Classify(err, domain.ErrServiceUnavailable)
	}
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		return domain.NewClassified(domain.ErrServiceUnavailable,
			fmt.Errorf("health status %s", resp.GetStatus()))
	}
	return nil
}

// Generate invokes the remote generator. gRPC status codes carry the error
// type across the boundary; classification happens in domain.Classify.
func (p *GRPCProvider) Generate(ctx context.Context, vars domain.CanonicalVariables, recs []domain.Recommendation, prompt string) (*domain.GeneratedWorkout, error) {
	in, err := toStruct(generateRequest{Variables: vars, Recommendations: recs, Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	out := &structpb.Struct{}
	if err := p.conn.Invoke(ctx, generateMethod, in, out); err != nil {
		return nil, domain.Classify(err, domain.ErrAPI)
	}

	var resp generateResponse
	if err := fromStruct(out, &resp); err != nil {
		return nil, domain.NewClassified(domain.ErrAPI, fmt.Errorf("decode response: %w", err))
	}
	if resp.Error != "" {
		return nil, domain.NewClassified(domain.ErrAPI, errors.New(resp.Error))
	}
	if resp.Workout == nil {
		return nil, domain.NewClassified(domain.ErrAPI, errors.New("response missing workout"))
	}

	resp.Workout.Origin = domain.OriginExternal
	return resp.Workout, nil
}

// Close releases the underlying connection.
func (p *GRPCProvider) Close() error { return p.conn.Close() }

func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func fromStruct(s *structpb.Struct, v any) error {
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
