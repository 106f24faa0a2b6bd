// Copyright © 2024 The GHLS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentHover handles the textDocument/hover request.
func (s *Server) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	s.captureNotify(ctx)
	rctx, cancel := s.requestContext()
	defer cancel()
	content, ok, err := s.resolver.Hover(rctx, params.TextDocument.URI, toDocumentPosition(params.Position))
	if err != nil {
		log.Debugf("hover %s: %s", params.TextDocument.URI, err)
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: content,
		},
	}, nil
}
