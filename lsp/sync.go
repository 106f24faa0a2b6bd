// Copyright © 2024 The GHLS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/ghls/document"
)

// textDocumentDidOpen handles the textDocument/didOpen notification.
func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	s.session.Docs.Open(
		params.TextDocument.URI,
		params.TextDocument.Version,
		params.TextDocument.Text,
	)
	s.logMessage(protocol.MessageTypeLog, "opened %s", params.TextDocument.URI)
	return nil
}

// textDocumentDidChange handles the textDocument/didChange notification.
// Changes carrying a range are incremental; the others replace the whole
// document.
func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	edits := make([]document.Edit, 0, len(params.ContentChanges))
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			edits = append(edits, document.Edit{Text: c.Text})
		case protocol.TextDocumentContentChangeEvent:
			e := document.Edit{Text: c.Text}
			if c.Range != nil {
				r := toDocumentRange(*c.Range)
				e.Range = &r
			}
			edits = append(edits, e)
		}
	}

	uri := params.TextDocument.URI
	if err := s.session.Docs.Apply(uri, params.TextDocument.Version, edits...); err != nil {
		s.logMessage(protocol.MessageTypeError, "change %s: %s", uri, err)
		return nil
	}
	if buf := s.session.Docs.Get(uri); buf != nil {
		s.logMessage(protocol.MessageTypeLog, "changed %s (version %d, %d lines)", uri, params.TextDocument.Version, buf.LineCount())
	}
	return nil
}

// textDocumentDidSave handles the textDocument/didSave notification. The
// saved text, when the client sends it, replaces the buffer.
func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	uri := params.TextDocument.URI
	if params.Text == nil {
		s.logMessage(protocol.MessageTypeLog, "saved %s", uri)
		return nil
	}
	version, err := s.session.Docs.Version(uri)
	if err != nil {
		s.session.Docs.Open(uri, 0, *params.Text)
	} else if err := s.session.Docs.Apply(uri, version, document.Edit{Text: *params.Text}); err != nil {
		s.logMessage(protocol.MessageTypeError, "save %s: %s", uri, err)
		return nil
	}
	s.logMessage(protocol.MessageTypeLog, "saved %s", uri)
	return nil
}

// textDocumentDidClose handles the textDocument/didClose notification.
func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.captureNotify(ctx)
	s.session.Docs.Close(params.TextDocument.URI)
	s.logMessage(protocol.MessageTypeLog, "closed %s", params.TextDocument.URI)
	return nil
}
