package proto

import "fmt"

// Response is the tagged variant the dispatcher feeds header and row
// lines into (spec §3 "Response", §9 "Heterogeneous Response sequence").
// Schema/Update/AutoCommit responses never want header lines or rows;
// ResultSet/Prepare responses want header lines first, then rows for
// their inline block 0.
type Response interface {
	Header() *Header
	WantsHeaderLine() bool
	AddHeaderLine(*HeaderLine) error
	WantsRow() bool
	AddRow(line string) error
}

// BlockTarget receives the rows of a data block, whether delivered inline
// as a fresh ResultSet's block 0 or routed later via a `&6` continuation
// (spec §4.5: "Data-block continuations ... are routed by id into the
// already-open ResultSet").
type BlockTarget interface {
	OpenBlock(rowcount, offset int64) error
	AddRow(line string) error
	WantsMore() bool
}

// Registry looks up the open result set a `&6` continuation belongs to,
// by id (spec §3 "ResultSet ... id ≥0").
type Registry interface {
	Lookup(id int64) (BlockTarget, bool)
}

// Builder constructs the Response for a freshly seen, non-block
// start-of-header line. Implementations register ResultSet-shaped
// responses into the Registry themselves when appropriate (spec §4.5:
// "register id→response for ResultSet responses whose rowcount <
// tuplecount").
type Builder interface {
	Build(h *Header) (Response, error)
}

// TransferHandler reacts to a server file-transfer request (spec §4.10).
// A session-level implementation always exists, even with no user upload/
// download handler registered, since the spec requires writing a fixed
// error reply in that case. HandleTransfer is given the turn's LineReader
// and Writer directly since upload/download payloads are exchanged
// inline on the same connection, outside the normal response grammar.
type TransferHandler interface {
	HandleTransfer(lr *LineReader, w *Writer, cmd *TransferCommand) error
}

// ResponseList accumulates one server turn's worth of responses plus any
// warnings (info lines) seen along the way (spec §3 "Response", §4.5).
type ResponseList struct {
	Responses []Response
	Warnings  []string
}

// RunTurn drives a single server turn (spec §4.5 algorithm step 4): reads
// lines until a prompt, dispatching start-of-header lines to builder,
// routing `&6` continuations through registry, accumulating info lines as
// warnings, and delegating file-transfer requests to transfer. It returns
// the raw joined text of every `!` error line seen (possibly empty) and,
// separately, any fatal transport error.
func RunTurn(lr *LineReader, w *Writer, registry Registry, builder Builder, transfer TransferHandler) (*ResponseList, string, error) {
	list := &ResponseList{}
	var errLines []string

	if err := lr.Advance(); err != nil {
		return nil, "", err
	}

	for {
		switch lr.CurrentLineType() {
		case LinePrompt:
			var raw string
			if len(errLines) > 0 {
				raw = joinLines(errLines)
			}
			return list, raw, nil

		case LineHeader:
			h, err := ParseStartOfHeader(lr.CurrentLine())
			if err != nil {
				errLines = append(errLines, "protocol: "+err.Error())
				if aerr := lr.Advance(); aerr != nil {
					return nil, "", aerr
				}
				continue
			}
			if h.Tag == TagBlock {
				target, ok := registry.Lookup(h.ID)
				if !ok {
					errLines = append(errLines, fmt.Sprintf("protocol: data block for unknown result id %d", h.ID))
				} else if err := target.OpenBlock(h.RowCount, h.Offset); err != nil {
					return nil, "", err
				}
				if aerr := lr.Advance(); aerr != nil {
					return nil, "", aerr
				}
				for ok && target.WantsMore() && lr.CurrentLineType() == LineRow {
					if err := target.AddRow(lr.CurrentLine()); err != nil {
						return nil, "", err
					}
					if aerr := lr.Advance(); aerr != nil {
						return nil, "", aerr
					}
				}
				continue
			}

			resp, err := builder.Build(h)
			if err != nil {
				return nil, "", err
			}
			if aerr := lr.Advance(); aerr != nil {
				return nil, "", aerr
			}
			for resp.WantsHeaderLine() && lr.CurrentLineType() == LineMeta {
				hl, err := ParseHeaderLine(lr.CurrentLine())
				if err != nil {
					return nil, "", err
				}
				if err := resp.AddHeaderLine(hl); err != nil {
					return nil, "", err
				}
				if aerr := lr.Advance(); aerr != nil {
					return nil, "", aerr
				}
			}
			for resp.WantsRow() && lr.CurrentLineType() == LineRow {
				if err := resp.AddRow(lr.CurrentLine()); err != nil {
					return nil, "", err
				}
				if aerr := lr.Advance(); aerr != nil {
					return nil, "", aerr
				}
			}
			list.Responses = append(list.Responses, resp)
			continue

		case LineInfo:
			list.Warnings = append(list.Warnings, lr.CurrentLine()[1:])
			if aerr := lr.Advance(); aerr != nil {
				return nil, "", aerr
			}
			continue

		case LineError:
			errLines = append(errLines, lr.CurrentLine()[1:])
			if aerr := lr.Advance(); aerr != nil {
				return nil, "", aerr
			}
			continue

		case LineTransfer:
			if aerr := lr.Advance(); aerr != nil {
				return nil, "", aerr
			}
			cmd, err := ParseTransferCommand(lr.CurrentLine())
			if err != nil {
				errLines = append(errLines, "protocol: "+err.Error())
			} else if herr := transfer.HandleTransfer(lr, w, cmd); herr != nil {
				errLines = append(errLines, herr.Error())
			}
			// the server inserts a synthetic prompt after the transfer
			// exchange that is not the real end of turn (spec §4.5: "advance
			// past the fake prompt the reader inserts").
			if aerr := lr.Advance(); aerr != nil {
				return nil, "", aerr
			}
			if lr.CurrentLineType() == LinePrompt {
				if aerr := lr.Advance(); aerr != nil {
					return nil, "", aerr
				}
			}
			continue

		default:
			errLines = append(errLines, "protocol violation: unexpected line "+lr.CurrentLine())
			if aerr := lr.Advance(); aerr != nil {
				return nil, "", aerr
			}
			continue
		}
	}
}

func joinLines(lines []string) string {
	out := lines[0]
	for _, l := range lines[1:] {
		out += "\n" + l
	}
	return out
}
