package mapi

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MonetDB/monetdb-go/mapi/internal/proto"
)

// sessionState models spec §4.11's session state machine. NewSession only
// returns a session once it is in stateOpen.
type sessionState int32

const (
	stateOpen sessionState = iota
	stateInQuery
	stateClosed
)

// Session is a connection session (spec §3 "Connection session"). All
// socket access is serialized by mu; the socket, reader and writer are
// owned exclusively by the Session.
type Session struct {
	mu sync.Mutex

	conn   net.Conn
	reader *proto.LineReader
	writer *proto.Writer
	cfg    *Config

	state atomic.Int32

	language   Language
	autocommit bool
	replySize  int
	sizeHeader bool
	tzOffset   string

	// defaultReplySize is the fetch size negotiated at handshake time
	// (cfg.FetchSize, or DefaultReplySize). Unlike replySize, which
	// tracks whatever the wire last agreed to and moves with every
	// PREPARE's temporary raise, this never changes after NewSession; it
	// is the value operations restore to and the basis for the §4.6
	// adaptive-prefetch growth cap.
	defaultReplySize int

	// querySeq increments on every call that submits text to the server;
	// ResultSet.GetRow compares against the value captured at its
	// creation to know whether it is still the most recent query (spec
	// §4.6 "Adaptive prefetch").
	querySeq int64

	warnings []string

	openResults map[int64]proto.BlockTarget
	statements  map[*Statement]struct{}

	uploadHandler   UploadHandler
	downloadHandler DownloadHandler

	bytesRead, bytesWritten int64
}

// NewSession dials cfg.Host:cfg.Port, performs the handshake (spec §4.3),
// and returns an authenticated, open Session.
func NewSession(ctx context.Context, cfg *Config) (*Session, error) {
	if cfg.Host == "" {
		return nil, misuseErr("mapi: config missing host")
	}
	conn, err := cfg.dialer().DialContext(ctx, cfg.address(), DialerOptions{
		Timeout: time.Duration(cfg.SoTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, connErr("dial failed", err)
	}

	timeout := time.Duration(cfg.SoTimeout) * time.Millisecond

	replySize := cfg.FetchSize
	if replySize == 0 {
		replySize = DefaultReplySize
	}
	wantAutocommit := cfg.Autocommit
	wantReplySize := replySize
	wantSizeHeader := true

	params := proto.HandshakeParams{
		User:          cfg.User,
		Password:      cfg.Password,
		Database:      cfg.Database,
		Language:      cfg.Language.String(),
		PreferredHash: cfg.Hash,
		Timeout:       timeout,
		Options: proto.HandshakeOptions{
			Autocommit: &wantAutocommit,
			ReplySize:  &wantReplySize,
			SizeHeader: &wantSizeHeader,
		},
	}

	result, lr, err := proto.Handshake(conn, params)
	if err != nil {
		conn.Close()
		if isAuthFailure(err) {
			return nil, authErr("authentication failed", err)
		}
		return nil, connErr("handshake failed", err)
	}
	if result.Redirect != "" {
		conn.Close()
		return nil, connErr(fmt.Sprintf("mapi: server requested redirect to %s (unhandled by this core)", result.Redirect), nil)
	}

	s := &Session{
		conn:             conn,
		reader:           lr,
		writer:           proto.NewWriter(conn, templateFor(cfg.Language)),
		cfg:              cfg,
		language:         cfg.Language,
		autocommit:       cfg.Autocommit,
		replySize:        replySize,
		defaultReplySize: replySize,
		sizeHeader:       true,
		openResults:      make(map[int64]proto.BlockTarget),
		statements:       make(map[*Statement]struct{}),
	}
	s.state.Store(int32(stateOpen))

	for _, w := range cfg.Warnings {
		s.addWarning(w)
	}
	for _, w := range result.Warnings {
		s.addWarning(w)
	}

	// Apply every option the server did not accept at handshake time via
	// an explicit follow-up control command (spec §4.3 step 6).
	if !result.Accepted["auto_commit"] {
		if err := s.sendControlLocked(fmt.Sprintf("auto_commit %d", boolToInt(cfg.Autocommit))); err != nil {
			conn.Close()
			return nil, err
		}
	}
	if !result.Accepted["reply_size"] {
		if err := s.sendControlLocked(fmt.Sprintf("reply_size %d", replySize)); err != nil {
			conn.Close()
			return nil, err
		}
	}
	if !result.Accepted["sizeheader"] {
		if err := s.sendControlLocked("sizeheader 1"); err != nil {
			conn.Close()
			return nil, err
		}
	}

	return s, nil
}

func isAuthFailure(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "password") ||
		strings.Contains(strings.ToLower(err.Error()), "invalid credentials") ||
		strings.Contains(strings.ToLower(err.Error()), "access denied")
}

func templateFor(l Language) proto.Template {
	if l == LangMAL {
		return proto.MALTemplate
	}
	return proto.SQLTemplate
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// IsClosed reports whether the session has transitioned to stateClosed
// (spec §4.11, §3 invariant: "once closed, all operations except
// idempotent close and status checks fail").
func (s *Session) IsClosed() bool { return sessionState(s.state.Load()) == stateClosed }

// Close is idempotent; it cascades to every open statement's weak
// registry entry (spec §3 "Ownership") and releases the socket.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.IsClosed() {
		return nil
	}
	s.state.Store(int32(stateClosed))
	for stmt := range s.statements {
		stmt.closeLocked()
	}
	s.statements = nil
	s.openResults = nil
	return s.conn.Close()
}

func (s *Session) fail(err error) error {
	s.state.Store(int32(stateClosed))
	return err
}

// Warnings returns the info lines accumulated on the session since the
// last ClearWarnings call (spec §7 "Warnings ... accumulate on the
// session and survive until explicitly cleared").
func (s *Session) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// ClearWarnings discards accumulated warnings.
func (s *Session) ClearWarnings() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = nil
}

func (s *Session) addWarning(w string) {
	s.warnings = append(s.warnings, w)
}

// SetUploadHandler registers the handler invoked for server upload
// requests (spec §4.10).
func (s *Session) SetUploadHandler(h UploadHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadHandler = h
}

// SetDownloadHandler registers the handler invoked for server download
// requests (spec §4.10).
func (s *Session) SetDownloadHandler(h DownloadHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloadHandler = h
}

// SetSoTimeout updates the socket read timeout (spec §5 "per-session
// socket timeout (separately get/set)").
func (s *Session) SetSoTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reader.SetTimeout(d)
}

// Stats exposes plain byte counters for an embedder to scrape, without
// this package importing a metrics client itself (see SPEC_FULL.md DOMAIN
// STACK: metrics export is out of this core's scope). No code in this
// package increments the session's counters, so both fields read as 0.
type Stats struct {
	BytesRead, BytesWritten int64
}

// Stats returns a snapshot of the session's byte counters.
func (s *Session) Stats() Stats {
	return Stats{
		BytesRead:    atomic.LoadInt64(&s.bytesRead),
		BytesWritten: atomic.LoadInt64(&s.bytesWritten),
	}
}

// --- proto.Registry -------------------------------------------------

func (s *Session) Lookup(id int64) (proto.BlockTarget, bool) {
	t, ok := s.openResults[id]
	return t, ok
}

func (s *Session) register(id int64, t proto.BlockTarget) {
	if id > 0 {
		s.openResults[id] = t
	}
}

func (s *Session) unregister(id int64) {
	delete(s.openResults, id)
}

// --- query turn machinery (spec §4.5) --------------------------------

// responseBuilder adapts Session into proto.Builder, producing the
// mapi-level Response objects (ResultSet/updateResponse/schemaResponse/
// autoCommitResponse/prepareResponse) for each fresh start-of-header.
type responseBuilder struct {
	session *Session
}

func (b *responseBuilder) Build(h *proto.Header) (proto.Response, error) {
	switch h.Tag {
	case proto.TagTable:
		return b.session.newResultSet(h, false)
	case proto.TagPrepare:
		return b.session.newResultSet(h, true)
	case proto.TagUpdate:
		return &updateResponse{header: h, affected: h.Affected, lastInsertID: h.LastID}, nil
	case proto.TagSchema:
		return &schemaResponse{header: h}, nil
	case proto.TagTrans:
		b.session.autocommit = h.AutoCommit
		return &autoCommitResponse{header: h, autocommit: h.AutoCommit}, nil
	default:
		return nil, protocolErr(fmt.Sprintf("unexpected top-level response tag %d", h.Tag), nil)
	}
}

// runTurn drains to a prompt, optionally adjusts the reply size, writes
// text, and runs the dispatcher loop, all under the session mutex (spec
// §4.5, §5 "one outstanding request per session"). writeFn performs the
// actual write (WriteQuery or WriteControl) once any reply-size
// adjustment has been sent.
func (s *Session) runTurn(wantReplySize int, writeFn func() error) (*proto.ResponseList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.IsClosed() {
		return nil, s.fail(fmt.Errorf("%w", ErrClosed))
	}

	// Step 1: drain any leftover data from an aborted previous turn. A
	// reader already positioned on a prompt has nothing left to drain.
	var leftoverErr string
	if s.reader.CurrentLineType() != proto.LinePrompt {
		var err error
		leftoverErr, err = s.reader.DiscardRemainder()
		if err != nil {
			return nil, s.fail(connErr("draining previous turn", err))
		}
	}

	if err := s.setReplySizeLocked(wantReplySize); err != nil {
		return nil, err
	}

	s.querySeq++

	if err := writeFn(); err != nil {
		return nil, s.fail(connErr("writing request", err))
	}

	list, rawErr, err := proto.RunTurn(s.reader, s.writer, s, &responseBuilder{session: s}, s.transferHandler())
	if err != nil {
		return nil, s.fail(connErr("reading response", err))
	}
	for _, w := range list.Warnings {
		s.addWarning(w)
	}

	combined := rawErr
	if leftoverErr != "" {
		if combined != "" {
			combined = leftoverErr + "\n" + combined
		} else {
			combined = leftoverErr
		}
	}
	if combined != "" {
		return list, newSQLErrors(combined)
	}
	return list, nil
}

// setReplySizeLocked re-negotiates the wire reply size if n differs from
// what is currently in effect; the caller must already hold s.mu. n == 0
// means "no preference", a no-op.
func (s *Session) setReplySizeLocked(n int) error {
	if n == 0 || n == s.replySize {
		return nil
	}
	if err := s.writer.WriteControl(fmt.Sprintf("reply_size %d", n)); err != nil {
		return s.fail(connErr("writing reply_size control command", err))
	}
	if _, _, err := proto.RunTurn(s.reader, s.writer, s, &responseBuilder{session: s}, s.transferHandler()); err != nil {
		return s.fail(connErr("reading reply_size acknowledgement", err))
	}
	s.replySize = n
	return nil
}

// restoreDefaultReplySize re-negotiates the wire reply size back to
// defaultReplySize. PREPARE temporarily raises the reply size to -1 to
// read its descriptor in a single block; spec §4.7/§9 require that raise
// to be restored on every exit path once the descriptor has been read.
func (s *Session) restoreDefaultReplySize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.IsClosed() {
		return nil
	}
	return s.setReplySizeLocked(s.defaultReplySize)
}

// sendControlLocked writes a control command and drains its
// acknowledgement; the caller must already hold s.mu (used during
// NewSession before the session is publicly reachable, and anywhere else
// that already holds the lock).
func (s *Session) sendControlLocked(cmd string) error {
	if err := s.writer.WriteControl(cmd); err != nil {
		return connErr("writing control command", err)
	}
	if _, _, err := proto.RunTurn(s.reader, s.writer, s, &responseBuilder{session: s}, s.transferHandler()); err != nil {
		return connErr("reading control command acknowledgement", err)
	}
	return nil
}

// effectiveReplySize computes spec §4.5 step 2: the block size to
// request for a query's first data block, combining the result's own
// cache size with a user max-rows cap and the session default fetch
// size. maxRows == 0 means unset (use defaultFetchSize); -1 means
// unlimited and always wins outright.
func effectiveReplySize(cacheSize, maxRows, defaultFetchSize int) int {
	limit := maxRows
	if limit == 0 {
		limit = defaultFetchSize
	}
	if limit == -1 {
		return -1
	}
	if defaultFetchSize != -1 && defaultFetchSize < limit {
		limit = defaultFetchSize
	}
	if cacheSize > limit {
		limit = cacheSize
	}
	return limit
}

// parseServerVersion is a small helper used to decide, per spec §5,
// whether to invoke sys.setquerytimeout (recent servers) or
// sys.settimeout (older servers).
func parseServerVersion(raw string) (major, minor int) {
	parts := strings.SplitN(raw, ".", 3)
	if len(parts) > 0 {
		major, _ = strconv.Atoi(parts[0])
	}
	if len(parts) > 1 {
		minor, _ = strconv.Atoi(parts[1])
	}
	return
}

// SetQueryTimeout sets a server-side per-query timeout by invoking the
// appropriate stored procedure (spec §5): `sys.setquerytimeout` on
// servers that support it, `sys.settimeout` otherwise. serverVersion is
// the server's "major.minor[.patch]" version string, supplied by the
// caller; the handshake does not capture one.
func (s *Session) SetQueryTimeout(ctx context.Context, seconds int, serverVersion string) error {
	major, minor := parseServerVersion(serverVersion)
	proc := "sys.settimeout"
	if major > 11 || (major == 11 && minor >= 40) {
		proc = "sys.setquerytimeout"
	}
	stmt := NewStatement(s)
	defer stmt.Close()
	return stmt.Execute(ctx, fmt.Sprintf("call %s(%d)", proc, seconds))
}

// Abort closes the session immediately; any blocked caller returns with a
// *Error wrapping ErrClosed (spec §5 "Timeouts and cancellation").
func (s *Session) Abort() error { return s.Close() }
