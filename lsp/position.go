// Copyright © 2024 The GHLS authors

package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/ghls/document"
)

// toDocumentPosition converts an LSP position to a document position.
func toDocumentPosition(p protocol.Position) document.Position {
	return document.Position{Line: int(p.Line), Character: int(p.Character)}
}

// toDocumentRange converts an LSP range to a document range.
func toDocumentRange(r protocol.Range) document.Range {
	return document.Range{Start: toDocumentPosition(r.Start), End: toDocumentPosition(r.End)}
}

// toProtocolRange converts a document range to an LSP range.
func toProtocolRange(r document.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: safeUint(r.Start.Line), Character: safeUint(r.Start.Character)},
		End:   protocol.Position{Line: safeUint(r.End.Line), Character: safeUint(r.End.Character)},
	}
}

// safeUint converts a non-negative int to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) // #nosec G115 -- line/col are always small positive ints
}
