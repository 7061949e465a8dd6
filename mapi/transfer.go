package mapi

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/MonetDB/monetdb-go/mapi/internal/proto"
)

// UploadHandler supplies the bytes for a server-initiated upload request
// (`COPY ... FROM 'path' ON CLIENT`), spec §4.10. offset is the 1-based
// line the server asks a text upload to start from (0 and 1 both mean the
// first line); the session itself skips the lines before it on the
// returned reader. offset is always 0 for binary transfers.
type UploadHandler interface {
	Open(ctx context.Context, path string, textMode bool, offset int64) (io.ReadCloser, error)
}

// DownloadHandler receives the bytes of a server-initiated download
// request (`COPY ... TO 'path' ON CLIENT`), spec §4.10.
type DownloadHandler interface {
	Open(ctx context.Context, path string, textMode bool) (io.WriteCloser, error)
}

// sessionTransfer adapts a Session's registered UploadHandler/
// DownloadHandler into proto.TransferHandler, and supplies the spec
// §4.10 canned error reply when no handler is registered.
type sessionTransfer struct {
	session *Session
}

func (s *Session) transferHandler() proto.TransferHandler { return &sessionTransfer{session: s} }

func (t *sessionTransfer) HandleTransfer(lr *proto.LineReader, w *proto.Writer, cmd *proto.TransferCommand) error {
	switch cmd.Kind {
	case proto.TransferUploadText, proto.TransferUploadBinary:
		return t.handleUpload(w, cmd)
	case proto.TransferDownloadText, proto.TransferDownloadBinary:
		return t.handleDownload(lr, w, cmd)
	default:
		return protocolErr("unrecognized file-transfer request", nil)
	}
}

// noUploadHandlerMsg is the fixed reply this driver sends when a server
// upload request arrives with no handler registered (spec §8 scenario
// 6): the server aborts its COPY on this exact text.
const noUploadHandlerMsg = "No file upload handler has been registered with the JDBC driver"

// noDownloadHandlerMsg is the symmetric fixed reply for download requests.
const noDownloadHandlerMsg = "No file download handler has been registered with the JDBC driver"

// declineTransfer writes the error reply spec §4.10 requires when no
// handler is registered, or a handler's Open call fails: the reason as a
// single plain line.
func declineTransfer(w *proto.Writer, reason string) error {
	if err := w.WriteRaw(reason + "\n"); err != nil {
		return connErr("writing transfer decline", err)
	}
	return nil
}

// handleUpload and handleDownload run while the session's turn mutex is
// already held by the caller (Session.runTurn), so they read the
// registered handlers directly rather than locking again.
func (t *sessionTransfer) handleUpload(w *proto.Writer, cmd *proto.TransferCommand) error {
	h := t.session.uploadHandler
	if h == nil {
		return declineTransfer(w, noUploadHandlerMsg)
	}

	textMode := cmd.Kind == proto.TransferUploadText
	rc, err := h.Open(context.Background(), cmd.Path, textMode, cmd.Offset)
	if err != nil {
		return declineTransfer(w, err.Error())
	}
	defer rc.Close()

	var r io.Reader = rc
	if textMode {
		r = transform.NewReader(rc, unicode.UTF8.NewDecoder())
		if cmd.Offset > 1 {
			r, err = skipLines(r, cmd.Offset-1)
			if err != nil {
				return declineTransfer(w, err.Error())
			}
		}
	}

	if _, err := io.Copy(directWriter{w}, r); err != nil {
		return connErr("streaming upload payload", err)
	}
	return w.WriteRaw("\n")
}

// skipLines discards the first n newline-terminated lines of r and
// returns a reader positioned at the remainder, used to resume an
// interrupted text upload at the offset the server reports (spec
// §4.10 "r <offset> <path>").
func skipLines(r io.Reader, n int64) (io.Reader, error) {
	br := bufio.NewReader(r)
	for i := int64(0); i < n; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			return nil, fmt.Errorf("mapi: upload source shorter than resume offset %d: %w", n, err)
		}
	}
	return br, nil
}

// directWriter adapts proto.Writer's raw byte sink for io.Copy.
type directWriter struct{ w *proto.Writer }

func (d directWriter) Write(p []byte) (int, error) {
	if err := d.w.WriteRaw(string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (t *sessionTransfer) handleDownload(lr *proto.LineReader, w *proto.Writer, cmd *proto.TransferCommand) error {
	h := t.session.downloadHandler
	if h == nil {
		if err := declineTransfer(w, noDownloadHandlerMsg); err != nil {
			return err
		}
		return drainDownloadBlock(lr)
	}

	textMode := cmd.Kind == proto.TransferDownloadText
	wc, err := h.Open(context.Background(), cmd.Path, textMode)
	if err != nil {
		if derr := declineTransfer(w, err.Error()); derr != nil {
			return derr
		}
		return drainDownloadBlock(lr)
	}
	defer wc.Close()

	var out io.Writer = wc
	var closer func() error
	if textMode {
		enc := unicode.UTF8.NewEncoder()
		tw := transform.NewWriter(wc, enc)
		out = tw
		closer = tw.Close
	}

	for {
		if err := lr.Advance(); err != nil {
			return connErr("reading download payload", err)
		}
		line := lr.CurrentLine()
		if line == "" {
			break
		}
		if _, err := io.WriteString(out, line+"\n"); err != nil {
			return connErr("writing download payload", err)
		}
	}
	if closer != nil {
		return closer()
	}
	return nil
}

// drainDownloadBlock reads and discards a download payload the session
// has no handler for, so the dispatch loop can resynchronize on the
// prompt that follows.
func drainDownloadBlock(lr *proto.LineReader) error {
	for {
		if err := lr.Advance(); err != nil {
			return connErr("draining undeliverable download payload", err)
		}
		if lr.CurrentLine() == "" {
			return nil
		}
	}
}
