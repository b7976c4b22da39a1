package grpc

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/turtacn/keyip-citation-network/internal/application/citation"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-citation-network/pkg/errors"
	apiCitation "github.com/turtacn/keyip-citation-network/pkg/types/citation"
)

const (
	CitationServiceName      = "citenet.v1.CitationNetworkService"
	getCitationNetworkMethod = "/" + CitationServiceName + "/GetCitationNetwork"

	defaultRequestDepth = 1
)

// NetworkRequest is a decoded GetCitationNetwork request.  The wire form is a
// Struct with patent_id, backward_depth and forward_depth; absent depths are 1.
type NetworkRequest struct {
	PatentID      string
	BackwardDepth int
	ForwardDepth  int

	invalid error
}

func (r *NetworkRequest) Validate() error {
	if r.invalid != nil {
		return r.invalid
	}
	if strings.TrimSpace(r.PatentID) == "" {
		return errors.New(errors.ErrCodePatentNumberInvalid, "patent_id is required")
	}
	return nil
}

// CitationNetworkServer is the server side of CitationServiceName.
type CitationNetworkServer interface {
	GetCitationNetwork(ctx context.Context, req *NetworkRequest) (*structpb.Struct, error)
}

// CitationService adapts the network service to CitationNetworkServer.
type CitationService struct {
	service citation.Service
	logger  logging.Logger
}

func NewCitationService(service citation.Service, logger logging.Logger) *CitationService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CitationService{service: service, logger: logger}
}

func (s *CitationService) GetCitationNetwork(ctx context.Context, req *NetworkRequest) (*structpb.Struct, error) {
	network := s.service.FetchCitationNetwork(ctx, strings.TrimSpace(req.PatentID), req.BackwardDepth, req.ForwardDepth)

	body, err := json.Marshal(network)
	if err != nil {
		s.logger.Error("failed to encode citation network", logging.PatentID(req.PatentID), logging.Err(err))
		return nil, status.Error(codes.Internal, "failed to encode citation network")
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(body, out); err != nil {
		s.logger.Error("failed to convert citation network", logging.PatentID(req.PatentID), logging.Err(err))
		return nil, status.Error(codes.Internal, "failed to encode citation network")
	}
	return out, nil
}

// RegisterCitationService must be called before Start.
func RegisterCitationService(s *Server, impl CitationNetworkServer) {
	s.RegisterService(&CitationNetworkServiceDesc, impl)
}

var CitationNetworkServiceDesc = grpc.ServiceDesc{
	ServiceName: CitationServiceName,
	HandlerType: (*CitationNetworkServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCitationNetwork", Handler: getCitationNetworkHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "citenet/v1/citation_network",
}

func getCitationNetworkHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	req := parseNetworkRequest(in)
	if interceptor == nil {
		if err := req.Validate(); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return srv.(CitationNetworkServer).GetCitationNetwork(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getCitationNetworkMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CitationNetworkServer).GetCitationNetwork(ctx, req.(*NetworkRequest))
	}
	return interceptor(ctx, req, info, handler)
}

// parseNetworkRequest never fails; a malformed field is reported by Validate
// so the failure passes through the interceptor chain.
func parseNetworkRequest(in *structpb.Struct) *NetworkRequest {
	req := &NetworkRequest{BackwardDepth: defaultRequestDepth, ForwardDepth: defaultRequestDepth}
	fields := in.GetFields()

	if v, ok := fields["patent_id"]; ok {
		s, isString := v.GetKind().(*structpb.Value_StringValue)
		if !isString {
			req.invalid = errors.New(errors.ErrCodePatentNumberInvalid, "patent_id must be a string")
			return req
		}
		req.PatentID = s.StringValue
	}

	var err error
	if req.BackwardDepth, err = depthField(fields, "backward_depth"); err != nil {
		req.invalid = err
		return req
	}
	if req.ForwardDepth, err = depthField(fields, "forward_depth"); err != nil {
		req.invalid = err
	}
	return req
}

func depthField(fields map[string]*structpb.Value, name string) (int, error) {
	v, ok := fields[name]
	if !ok {
		return defaultRequestDepth, nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return defaultRequestDepth, nil
	}
	n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber || n.NumberValue != math.Trunc(n.NumberValue) || math.IsInf(n.NumberValue, 0) {
		return 0, errors.New(errors.ErrCodeCitationDepthInvalid, name+" must be an integer").
			WithDetail(fmt.Sprintf("%s=%v", name, v.AsInterface()))
	}
	// the service clamps to [0, 1]
	d := n.NumberValue
	if d > math.MaxInt32 {
		d = math.MaxInt32
	} else if d < math.MinInt32 {
		d = math.MinInt32
	}
	return int(d), nil
}

// CitationNetworkClient is the client side of CitationServiceName.
type CitationNetworkClient struct {
	cc grpc.ClientConnInterface
}

func NewCitationNetworkClient(cc grpc.ClientConnInterface) *CitationNetworkClient {
	return &CitationNetworkClient{cc: cc}
}

// GetCitationNetwork fetches and decodes one network.
func (c *CitationNetworkClient) GetCitationNetwork(ctx context.Context, patentID string, backwardDepth, forwardDepth int, opts ...grpc.CallOption) (*apiCitation.Network, error) {
	in, err := structpb.NewStruct(map[string]interface{}{
		"patent_id":      patentID,
		"backward_depth": backwardDepth,
		"forward_depth":  forwardDepth,
	})
	if err != nil {
		return nil, err
	}
	out, err := c.Invoke(ctx, in, opts...)
	if err != nil {
		return nil, err
	}

	body, err := protojson.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	var network apiCitation.Network
	if err := json.Unmarshal(body, &network); err != nil {
		return nil, fmt.Errorf("failed to decode citation network: %w", err)
	}
	return &network, nil
}

// Invoke sends a raw request Struct.
func (c *CitationNetworkClient) Invoke(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getCitationNetworkMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

//Personal.AI order the ending
