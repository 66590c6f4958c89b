package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Fuabioo/hhdt/internal/envelope"
	"github.com/Fuabioo/hhdt/internal/errors"
	"github.com/Fuabioo/hhdt/internal/logging"
	"github.com/Fuabioo/hhdt/internal/metrics"
	"github.com/Fuabioo/hhdt/internal/source"
)

const (
	toolEncode      = "envelope_encode"
	toolEncodeError = "envelope_encode_error"
	toolDecode      = "envelope_decode"
	toolValidate    = "envelope_validate"
	toolSources     = "envelope_sources"
)

// instrument wraps a handler with a span, the active-call gauge and a log line.
func (s *Server) instrument(name string, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := s.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		s.metrics.IncrementActiveCalls()
		defer s.metrics.DecrementActiveCalls()

		result, err := h(ctx, request)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.Error("tool call failed", err, logging.String("tool", name))
			return result, err
		}
		if result != nil && result.IsError {
			span.SetStatus(codes.Error, "tool returned an error package")
		}
		s.logger.Debug("tool call", logging.String("tool", name), logging.Bool("is_error", result != nil && result.IsError))
		return result, nil
	}
}

// handleEncode implements envelope_encode: wraps a JSON value in a success package.
func (s *Server) handleEncode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("payload")
	if err != nil {
		return s.failure(ctx, errors.InvalidArgument("payload is required")), nil
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		s.metrics.RecordRejected(metrics.StageEncode)
		return s.failure(ctx, errors.InvalidArgument("payload is not valid JSON: %v", err)), nil
	}

	var opts []envelope.Option
	if id, ok := s.responseID(request); ok {
		opts = append(opts, envelope.WithResponseID(id))
	}

	pkg, err := envelope.New(value, opts...)
	if err != nil {
		s.metrics.RecordRejected(metrics.StageEncode)
		return s.failure(ctx, err), nil
	}
	s.metrics.RecordEncoded(string(pkg.Type()))

	return s.success(ctx, encodeResponse(pkg)), nil
}

// handleEncodeError implements envelope_encode_error: builds an error package.
func (s *Server) handleEncodeError(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return s.failure(ctx, errors.InvalidArgument("name is required")), nil
	}
	message, err := request.RequireString("message")
	if err != nil {
		return s.failure(ctx, errors.InvalidArgument("message is required")), nil
	}
	src := request.GetString("source", string(s.cfg.DefaultSource))

	caught := map[string]any{
		"name":    name,
		"message": message,
	}
	if stack := request.GetString("stack", ""); stack != "" {
		caught["stack"] = strings.TrimRight(stack, "\n")
	}

	pkg, err := envelope.CreateFromError(src, caught)
	if err != nil {
		s.metrics.RecordRejected(metrics.StageEncode)
		return s.failure(ctx, err), nil
	}

	if id, ok := s.responseID(request); ok {
		d, _ := pkg.Descriptor()
		if pkg, err = envelope.New(d, envelope.WithType(envelope.TypeError), envelope.WithResponseID(id)); err != nil {
			return s.failure(ctx, err), nil
		}
	}
	s.metrics.RecordEncoded(string(pkg.Type()))

	return s.success(ctx, encodeResponse(pkg)), nil
}

// handleDecode implements envelope_decode: parses a package.
func (s *Server) handleDecode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return s.failure(ctx, errors.InvalidArgument("message is required")), nil
	}

	pkg, err := envelope.Parse(message)
	if err != nil {
		s.metrics.RecordRejected(metrics.StageDecode)
		return s.failure(ctx, err), nil
	}
	s.metrics.RecordDecoded(string(pkg.Type()))
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("envelope.decoded_type", string(pkg.Type())))

	return s.success(ctx, decodeResponse(pkg)), nil
}

// handleValidate implements envelope_validate. An invalid message is a
// successful call reporting valid=false.
func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return s.failure(ctx, errors.InvalidArgument("message is required")), nil
	}

	pkg, err := envelope.Parse(message)
	if err != nil {
		s.metrics.RecordRejected(metrics.StageDecode)
		return s.success(ctx, map[string]any{
			"valid":  false,
			"reason": err.Error(),
		}), nil
	}
	s.metrics.RecordDecoded(string(pkg.Type()))

	return s.success(ctx, map[string]any{
		"valid": true,
		"type":  string(pkg.Type()),
	}), nil
}

// handleSources implements envelope_sources: lists the error families.
func (s *Server) handleSources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.success(ctx, map[string]any{
		"sources": source.Sources(),
		"default": s.cfg.DefaultSource,
	}), nil
}

// Helper functions

// responseID returns the explicit response_id argument, or a fresh UUID when
// new_response_id is set.
func (s *Server) responseID(request mcp.CallToolRequest) (string, bool) {
	if id := request.GetString("response_id", ""); id != "" {
		return id, true
	}
	if request.GetBool("new_response_id", false) {
		return uuid.NewString(), true
	}
	return "", false
}

func encodeResponse(pkg *envelope.Package) map[string]any {
	resp := map[string]any{
		"type":    string(pkg.Type()),
		"message": pkg.String(),
	}
	if id, ok := pkg.ResponseID(); ok {
		resp["response_id"] = id
	}
	return resp
}

func decodeResponse(pkg *envelope.Package) map[string]any {
	resp := map[string]any{
		"type": string(pkg.Type()),
	}
	if id, ok := pkg.ResponseID(); ok {
		resp["response_id"] = id
	}
	if pkg.Type() == envelope.TypeError {
		d, _ := pkg.Descriptor()
		resp["error"] = d
	} else {
		resp["value"] = pkg.Value()
	}
	return resp
}

// success wraps response in a success package.
func (s *Server) success(ctx context.Context, response any) *mcp.CallToolResult {
	pkg, err := envelope.New(response)
	if err != nil {
		return s.failure(ctx, err)
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("envelope.type", string(envelope.TypeSuccess)))
	return mcp.NewToolResultText(pkg.String())
}

// failure reports err as an error package. Invalid input is a UserError;
// anything else is an AppError.
func (s *Server) failure(ctx context.Context, err error) *mcp.CallToolResult {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetAttributes(attribute.String("envelope.type", string(envelope.TypeError)))

	src := source.AppError
	if errors.Is(err, errors.CodeInvalidArgument) {
		src = source.UserError
	}

	pkg, perr := envelope.CreateFromError(string(src), err)
	if perr != nil {
		// Only reachable with an err CreateFromError cannot read; report it as text.
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", src, err))
	}

	result := mcp.NewToolResultText(pkg.String())
	result.IsError = true
	return result
}
