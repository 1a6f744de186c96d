package client

import (
	"bytes"
	"context"

	flightpb "github.com/apache/arrow-go/v18/arrow/flight"

	"github.com/flightbridge/flightbridge/internal/serialize"
)

// zstdMagic is the frame magic number zstd prefixes every compressed
// stream with (RFC 8878 §3.1.1).
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// ActionDescriptor describes one action type the server advertises via
// ListActions.
type ActionDescriptor struct {
	Type        string
	Description string
}

// ServerInfo aggregates ListDatasets and ListActions into one snapshot,
// per the client's getServerInfo contract.
type ServerInfo struct {
	Datasets []DatasetSummary
	Actions  []ActionDescriptor
}

// DoAction invokes a named action and returns its decoded result bodies.
// Each body is zstd-decompressed when it carries the zstd frame magic
// number, and returned as-is otherwise (plain UTF-8 JSON, per spec.md
// §6's action encoding).
func (c *Client) DoAction(ctx context.Context, actionType string, body []byte) ([][]byte, error) {
	fc, err := c.flightOrErr()
	if err != nil {
		return nil, err
	}

	var results [][]byte
	retryErr := c.retry.Execute(ctx, "do-action:"+actionType, func() error {
		results = nil
		stream, err := fc.DoAction(c.withAuth(ctx), &flightpb.Action{Type: actionType, Body: body})
		if err != nil {
			return err
		}
		for {
			result, err := stream.Recv()
			if isStreamEnd(err) {
				return nil
			}
			if err != nil {
				return err
			}
			decoded, err := decodeActionBody(result.GetBody())
			if err != nil {
				return err
			}
			results = append(results, decoded)
		}
	})
	if retryErr != nil {
		return nil, retryErr
	}
	return results, nil
}

// ListActions lists the action types the server advertises.
func (c *Client) ListActions(ctx context.Context) ([]ActionDescriptor, error) {
	fc, err := c.flightOrErr()
	if err != nil {
		return nil, err
	}

	var descriptors []ActionDescriptor
	retryErr := c.retry.Execute(ctx, "list-actions", func() error {
		descriptors = nil
		stream, err := fc.ListActions(c.withAuth(ctx), &flightpb.Empty{})
		if err != nil {
			return err
		}
		for {
			actionType, err := stream.Recv()
			if isStreamEnd(err) {
				return nil
			}
			if err != nil {
				return err
			}
			descriptors = append(descriptors, ActionDescriptor{
				Type:        actionType.GetType(),
				Description: actionType.GetDescription(),
			})
		}
	})
	if retryErr != nil {
		return nil, retryErr
	}
	return descriptors, nil
}

// GetServerInfo aggregates ListDatasets and ListActions into one
// snapshot.
func (c *Client) GetServerInfo(ctx context.Context) (ServerInfo, error) {
	datasets, err := c.ListDatasets(ctx)
	if err != nil {
		return ServerInfo{}, err
	}
	actions, err := c.ListActions(ctx)
	if err != nil {
		return ServerInfo{}, err
	}
	return ServerInfo{Datasets: datasets, Actions: actions}, nil
}

// TestConnection probes the server with a ListFlights call, returning
// any error without retry. Intended for use as a reliability.
// ConnectionManager health check.
func (c *Client) TestConnection(ctx context.Context) error {
	fc, err := c.flightOrErr()
	if err != nil {
		return err
	}

	stream, err := fc.ListFlights(c.withAuth(ctx), &flightpb.Criteria{})
	if err != nil {
		return err
	}
	_, err = stream.Recv()
	if err != nil && !isStreamEnd(err) {
		return err
	}
	return nil
}

func decodeActionBody(body []byte) ([]byte, error) {
	if len(body) < len(zstdMagic) || !bytes.Equal(body[:len(zstdMagic)], zstdMagic) {
		return body, nil
	}
	return serialize.DecompressBody(body)
}
