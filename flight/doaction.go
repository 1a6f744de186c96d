package flight

import (
	"context"
	"encoding/json"
	"runtime"
	"time"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/flightbridge/flightbridge/internal/serialize"
)

const (
	actionRefreshDatasets = "refresh-datasets"
	actionGetServerInfo   = "get-server-info"
)

// refreshResult is the JSON body of a successful refresh-datasets action.
type refreshResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// datasetSummary is one entry of get-server-info's datasets array.
type datasetSummary struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	TotalBytes int64    `json:"totalBytes"`
	Schema     []string `json:"schema"`
}

// serverInfoResult is the JSON body of a successful get-server-info action.
type serverInfoResult struct {
	Host          string           `json:"host"`
	Port          int              `json:"port"`
	DataDirectory string           `json:"dataDirectory"`
	Datasets      []datasetSummary `json:"datasets"`
	Uptime        string           `json:"uptime"`
	MemoryUsage   uint64           `json:"memoryUsage"`
}

// DoAction dispatches on action.type. Two actions are recognized per
// spec.md 4.F; any other type fails with UNIMPLEMENTED.
func (s *Server) DoAction(action *flight.Action, stream flight.FlightService_DoActionServer) error {
	ctx := EnrichContextMetadata(stream.Context())

	s.logger.Debug("DoAction called", "type", action.GetType())

	switch action.GetType() {
	case actionRefreshDatasets:
		return s.handleRefreshDatasets(ctx, stream)
	case actionGetServerInfo:
		return s.handleGetServerInfo(ctx, stream)
	default:
		return status.Errorf(codes.Unimplemented, "%v: %s", ErrUnknownAction, action.GetType())
	}
}

func (s *Server) handleRefreshDatasets(ctx context.Context, stream flight.FlightService_DoActionServer) error {
	count, err := s.catalog.Refresh(ctx)
	if err != nil {
		s.logger.Error("refresh-datasets failed", "error", err)
		return status.Errorf(codes.Internal, "refresh failed: %v", err)
	}

	return s.sendActionResult(stream, refreshResult{
		Success: true,
		Message: "catalog refreshed",
		Count:   count,
	})
}

func (s *Server) handleGetServerInfo(ctx context.Context, stream flight.FlightService_DoActionServer) error {
	datasets := s.catalog.All()
	summaries := make([]datasetSummary, 0, len(datasets))
	for _, ds := range datasets {
		fields := make([]string, ds.ArrowSchema.NumFields())
		for i, f := range ds.ArrowSchema.Fields() {
			fields[i] = f.Name
		}
		summaries = append(summaries, datasetSummary{
			ID:         ds.ID,
			Name:       ds.ID,
			TotalBytes: ds.Metadata.TotalBytes,
			Schema:     fields,
		})
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return s.sendActionResult(stream, serverInfoResult{
		Host:          s.host,
		Port:          s.port,
		DataDirectory: s.dataDirectory,
		Datasets:      summaries,
		Uptime:        time.Since(s.startTime).String(),
		MemoryUsage:   mem.Alloc,
	})
}

// sendActionResult marshals body to JSON and sends it as a single DoAction
// Result. This is plain UTF-8 JSON, matching spec.md §6's action encoding,
// unless the server was built with WithCompressActionResults(true), in
// which case bodies over serialize.CompressThreshold are zstd-compressed —
// an opt-in for callers that control both ends and know their client can
// zstd-sniff the body (this repo's own client package does).
func (s *Server) sendActionResult(stream flight.FlightService_DoActionServer, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return status.Errorf(codes.Internal, "failed to encode action result: %v", err)
	}

	if s.compressActionResults && len(data) > serialize.CompressThreshold {
		compressed, cerr := serialize.CompressBody(data)
		if cerr == nil {
			data = compressed
		}
	}

	if err := stream.Send(&flight.Result{Body: data}); err != nil {
		return status.Errorf(codes.Internal, "failed to send action result: %v", err)
	}
	return nil
}
