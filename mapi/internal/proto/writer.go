package proto

import (
	"fmt"
	"net"
)

// Template holds the prefix/suffix/separator triple a language mode
// composes outgoing requests with (spec §3 "Query templates").
type Template struct {
	Prefix    string
	Suffix    string
	Separator string
}

// SQLTemplate is the `sql` language template: prefix "s", suffix "\n;".
var SQLTemplate = Template{Prefix: "s", Suffix: "\n;", Separator: "\n"}

// MALTemplate is the `mal` language template: no prefix, suffix ";\n".
var MALTemplate = Template{Prefix: "", Suffix: ";\n", Separator: "\n"}

// controlTemplate is fixed regardless of language mode: prefix "X", empty
// suffix (spec §3).
var controlTemplate = Template{Prefix: "X", Suffix: ""}

// Writer serializes queries and control commands using the session's
// language template (spec §4.2). Writer itself performs no locking;
// callers serialize access with the session mutex.
type Writer struct {
	conn     net.Conn
	template Template
}

// NewWriter returns a Writer for the given query template.
func NewWriter(conn net.Conn, template Template) *Writer {
	return &Writer{conn: conn, template: template}
}

// SetTemplate updates the language template (used when a session's
// language mode is fixed at construction, so normally not needed, but
// kept symmetric with LineReader.SetTimeout for testability).
func (w *Writer) SetTemplate(t Template) { w.template = t }

// WriteQuery wraps text in the language-appropriate query template and
// writes it to the wire.
func (w *Writer) WriteQuery(text string) error {
	_, err := fmt.Fprintf(w.conn, "%s%s%s", w.template.Prefix, text, w.template.Suffix)
	return err
}

// WriteControl wraps text in the control-command template ("X" prefix, no
// suffix) and writes it to the wire.
func (w *Writer) WriteControl(text string) error {
	_, err := fmt.Fprintf(w.conn, "%s%s%s", controlTemplate.Prefix, text, controlTemplate.Suffix)
	return err
}

// WriteRaw writes text to the wire unmodified (used for file-transfer
// payloads and replies, which bypass the templates).
func (w *Writer) WriteRaw(text string) error {
	_, err := w.conn.Write([]byte(text))
	return err
}
