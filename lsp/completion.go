// Copyright © 2024 The GHLS authors

package lsp

import (
	"context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/ghls/complete"
	"github.com/luthersystems/ghls/entity"
)

// textDocumentCompletion handles the textDocument/completion request.
func (s *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	s.captureNotify(ctx)
	rctx, cancel := s.requestContext()
	defer cancel()
	items, err := s.completer.Complete(rctx, params.TextDocument.URI, toDocumentPosition(params.Position))
	if err != nil {
		log.Debugf("completion %s: %s", params.TextDocument.URI, err)
		return nil, err
	}
	result := make([]protocol.CompletionItem, 0, len(items))
	for _, item := range items {
		result = append(result, toCompletionItem(item))
	}
	return result, nil
}

func toCompletionItem(item complete.Item) protocol.CompletionItem {
	kind := completionKind(item.Kind)
	detail := item.Detail
	return protocol.CompletionItem{
		Label:  item.Label,
		Kind:   &kind,
		Detail: &detail,
		TextEdit: protocol.TextEdit{
			Range:   toProtocolRange(item.Edit.Range),
			NewText: item.Edit.NewText,
		},
	}
}

func completionKind(k entity.Kind) protocol.CompletionItemKind {
	switch k {
	case entity.KindIssue:
		return protocol.CompletionItemKindReference
	case entity.KindMember:
		return protocol.CompletionItemKindValue
	case entity.KindRepository:
		return protocol.CompletionItemKindModule
	case entity.KindWikiPage:
		return protocol.CompletionItemKindFile
	}
	return protocol.CompletionItemKindText
}

// requestContext bounds a request by the server lifetime.
func (s *Server) requestContext() (context.Context, context.CancelFunc) {
	return context.WithCancel(s.ctx)
}
