// Copyright © 2024 The GHLS authors

// Package lsp implements the Language Server Protocol front end of ghls.
// It keeps the session documents in sync with the editor and answers
// completion and hover requests for markdown files.
package lsp

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/luthersystems/ghls/complete"
	"github.com/luthersystems/ghls/hover"
	"github.com/luthersystems/ghls/session"
	"github.com/luthersystems/ghls/trigger"
)

const serverName = "ghls"

var log = commonlog.GetLogger("ghls.lsp")

// Server is the ghls language server.
type Server struct {
	handler   protocol.Handler
	glspSrv   *glspserver.Server
	session   *session.Session
	completer *complete.Synthesizer
	resolver  *hover.Resolver
	version   string

	// Background cache loading started by the initialized notification.
	ctx      context.Context
	cancel   context.CancelFunc
	loadOnce sync.Once
	loaded   chan struct{}
	report   session.Report

	// Context for sending notifications (captured from latest request).
	notifyMu sync.Mutex
	notify   glsp.NotifyFunc

	// exitFn is called on the LSP exit notification. Defaults to os.Exit.
	// Overridable for testing.
	exitFn func(int)
}

// Option configures the LSP server.
type Option func(*Server)

// WithVersion sets the version reported in the initialize result.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New creates a language server serving sess.
func New(sess *session.Session, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		session:   sess,
		completer: complete.New(sess),
		resolver:  hover.New(sess),
		version:   "0.1.0",
		ctx:       ctx,
		cancel:    cancel,
		loaded:    make(chan struct{}),
		exitFn:    os.Exit,
	}
	for _, o := range opts {
		o(s)
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		Exit:        s.exit,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
	}

	s.glspSrv = glspserver.NewServer(&s.handler, serverName, false)
	return s
}

// RunStdio starts the server using stdio transport.
func (s *Server) RunStdio() error {
	return s.glspSrv.RunStdio()
}

// RunTCP starts the server listening on the given address.
func (s *Server) RunTCP(addr string) error {
	return s.glspSrv.RunTCP(addr)
}

// Loaded is closed once the caches have been loaded.
func (s *Server) Loaded() <-chan struct{} {
	return s.loaded
}

// Report returns the outcome of the cache load. It is only meaningful once
// Loaded is closed.
func (s *Server) Report() session.Report {
	return s.report
}

// initialize handles the LSP initialize request.
func (s *Server) initialize(ctx *glsp.Context, _ *protocol.InitializeParams) (any, error) {
	s.captureNotify(ctx)

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: boolPtr(true)},
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: trigger.Characters,
		ResolveProvider:   boolPtr(false),
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &s.version,
		},
	}, nil
}

// initialized starts loading the caches in the background. Requests are
// served from whatever has been loaded so far.
func (s *Server) initialized(ctx *glsp.Context, _ *protocol.InitializedParams) error {
	s.captureNotify(ctx)
	s.loadOnce.Do(func() {
		go s.load()
	})
	return nil
}

func (s *Server) load() {
	defer close(s.loaded)
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("loading caches: %v", r)
		}
	}()
	s.logMessage(protocol.MessageTypeInfo, "loading %s/%s", s.session.Owner, s.session.Repo)
	report := s.session.Initialize(s.ctx)
	s.report = report
	if err := report.Err(); err != nil {
		s.logMessage(protocol.MessageTypeWarning, "%s", err)
	}
	s.logMessage(protocol.MessageTypeInfo, "%s", report)
}

// shutdown handles the LSP shutdown request.
func (s *Server) shutdown(_ *glsp.Context) error {
	if uris := s.session.Docs.URIs(); len(uris) > 0 {
		log.Infof("shutting down with %d open documents: %s", len(uris), strings.Join(uris, ", "))
	}
	s.cancel()
	return nil
}

// exit handles the LSP exit notification by terminating the process.
func (s *Server) exit(_ *glsp.Context) error {
	s.exitFn(0)
	return nil
}

// setTrace handles the $/setTrace notification (required by some clients).
func (s *Server) setTrace(_ *glsp.Context, _ *protocol.SetTraceParams) error {
	return nil
}

// captureNotify stores the notification function from the context for
// async use (e.g., reporting the outcome of the background load).
func (s *Server) captureNotify(ctx *glsp.Context) {
	if ctx == nil || ctx.Notify == nil {
		return
	}
	s.notifyMu.Lock()
	s.notify = ctx.Notify
	s.notifyMu.Unlock()
}

// sendNotification sends a notification to the client.
func (s *Server) sendNotification(method string, params any) {
	s.notifyMu.Lock()
	fn := s.notify
	s.notifyMu.Unlock()
	if fn != nil {
		fn(method, params)
	}
}

// logMessage writes to the server log and mirrors the message to the
// client as window/logMessage.
func (s *Server) logMessage(typ protocol.MessageType, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	switch typ {
	case protocol.MessageTypeError:
		log.Error(msg)
	case protocol.MessageTypeWarning:
		log.Warning(msg)
	case protocol.MessageTypeInfo:
		log.Info(msg)
	default:
		log.Debug(msg)
	}
	s.sendNotification(protocol.ServerWindowLogMessage, &protocol.LogMessageParams{
		Type:    typ,
		Message: msg,
	})
}

func boolPtr(b bool) *bool {
	return &b
}
