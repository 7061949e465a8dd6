package mapi

import (
	"fmt"

	"github.com/MonetDB/monetdb-go/mapi/internal/proto"
)

// ColumnMeta describes one result (or, for a PreparedStatement's
// parameter descriptors, one bind slot) as reported by the `%` metadata
// lines following a `&1`/`&5` header (spec §4.4).
type ColumnMeta struct {
	Name      string
	TableName string
	SQLType   string
	Length    int64
	Precision int
	Scale     int

	// Column is the prepared-statement parameter/result-column name; for
	// a plain ResultSet this mirrors Name.
	Column string
}

// dataBlock is one fetched slice of result rows, addressed by its
// position in the result's overall row sequence (spec §4.6 "block
// cache").
type dataBlock struct {
	startRow    int64
	rows        [][]string
	writeCursor int
	forwardOnly bool
}

func newDataBlock(startRow int64, size int64, forwardOnly bool) *dataBlock {
	return &dataBlock{startRow: startRow, rows: make([][]string, size), forwardOnly: forwardOnly}
}

func (b *dataBlock) addRow(fields []string) error {
	if b.writeCursor >= len(b.rows) {
		return protocolErr("data block overflow: server sent more rows than announced", nil)
	}
	b.rows[b.writeCursor] = fields
	b.writeCursor++
	return nil
}

func (b *dataBlock) wantsMore() bool { return b.writeCursor < len(b.rows) }

func (b *dataBlock) contains(row int64) bool {
	return row >= b.startRow && row < b.startRow+int64(len(b.rows))
}

func (b *dataBlock) get(row int64) []string {
	idx := int(row - b.startRow)
	fields := b.rows[idx]
	if b.forwardOnly {
		b.rows[idx] = nil
	}
	return fields
}

// ResultSet is a tabular result (spec §3 "ResultSet", §4.6 "Result-set
// block cache"). It satisfies both proto.Response, for its inline block
//0 delivered during the query's own turn, and proto.BlockTarget, for
// later `&6` continuations fetched by GetRow.
type ResultSet struct {
	session *Session

	header  *proto.Header
	id      int64
	tuples  int64 // total row count the server reports for this result
	columns int64

	cols        []ColumnMeta
	colAttrSeen map[string]bool

	cacheSize   int64 // current block size; grows adaptively on sequential scans
	forwardOnly bool
	blocks      []*dataBlock

	// firstBlockRowCount is the inline block's row count as reported by
	// the opening header, fixed for the life of the result. Close only
	// needs to release server-side state if the result has rows beyond
	// this (spec §4.6 "Close").
	firstBlockRowCount int64

	querySeqAtOpen int64 // session.querySeq when this result was created

	closed bool
}

// current returns the data block still being filled by the dispatcher,
// i.e. the most recently opened one.
func (rs *ResultSet) current() *dataBlock {
	if len(rs.blocks) == 0 {
		return nil
	}
	return rs.blocks[len(rs.blocks)-1]
}

func (s *Session) newResultSet(h *proto.Header, isPrepare bool) (*ResultSet, error) {
	rs := &ResultSet{
		session:            s,
		header:             h,
		id:                 h.ID,
		tuples:             h.Tuples,
		columns:            h.Columns,
		cols:               make([]ColumnMeta, h.Columns),
		colAttrSeen:        make(map[string]bool),
		cacheSize:          h.RowCount,
		firstBlockRowCount: h.RowCount,
		querySeqAtOpen:     s.querySeq,
	}
	if rs.cacheSize <= 0 {
		rs.cacheSize = h.Tuples
	}
	rs.blocks = append(rs.blocks, newDataBlock(0, h.RowCount, rs.forwardOnly))
	// Only a result with more tuples than its first block can have
	// continuation blocks (spec §4.5); others never need routing through
	// the session's open-results map.
	if h.ID > 0 && h.RowCount < h.Tuples {
		s.register(h.ID, rs)
	}
	return rs, nil
}

// --- proto.Response ---------------------------------------------------

func (rs *ResultSet) Header() *proto.Header { return rs.header }

func (rs *ResultSet) WantsHeaderLine() bool { return true }

func (rs *ResultSet) AddHeaderLine(hl *proto.HeaderLine) error {
	rs.colAttrSeen[hl.Attr] = true
	for i := 0; i < len(rs.cols) && i < len(hl.Values); i++ {
		v := hl.Values[i]
		switch hl.Attr {
		case "name":
			rs.cols[i].Name = v
			rs.cols[i].Column = v
		case "table_name":
			rs.cols[i].TableName = v
		case "type":
			rs.cols[i].SQLType = v
		case "length":
			fmt.Sscanf(v, "%d", &rs.cols[i].Length)
		case "typesizes":
			var prec, scale int
			if n, _ := fmt.Sscanf(v, "%d %d", &prec, &scale); n == 2 {
				rs.cols[i].Precision = prec
				rs.cols[i].Scale = scale
			}
		}
	}
	return nil
}

func (rs *ResultSet) WantsRow() bool {
	b := rs.current()
	return b != nil && b.wantsMore()
}

func (rs *ResultSet) AddRow(line string) error {
	fields, err := proto.ParseRowLine(line)
	if err != nil {
		return protocolErr("parsing result row", err)
	}
	b := rs.current()
	if b == nil {
		return protocolErr("result row with no open data block", nil)
	}
	return b.addRow(fields)
}

// --- proto.BlockTarget --------------------------------------------------

func (rs *ResultSet) OpenBlock(rowcount, offset int64) error {
	if rs.forwardOnly {
		// a forward-only cursor never revisits rows before the new block;
		// drop everything already fetched (spec §4.6 "forward-only block
		// discard").
		rs.blocks = rs.blocks[:0]
	}
	rs.blocks = append(rs.blocks, newDataBlock(offset, rowcount, rs.forwardOnly))
	return nil
}

// SetForwardOnly opts this result into forward-only cursor semantics:
// once a row is read it is freed, and blocks preceding the current one
// are discarded as soon as a later block is fetched.
func (rs *ResultSet) SetForwardOnly(on bool) {
	rs.forwardOnly = on
	for _, b := range rs.blocks {
		b.forwardOnly = on
	}
}

func (rs *ResultSet) WantsMore() bool {
	b := rs.current()
	return b != nil && b.wantsMore()
}

// --- public API -----------------------------------------------------

// Columns returns the result's column descriptors.
func (rs *ResultSet) Columns() []ColumnMeta { return rs.cols }

// RowCount returns the total number of rows in the result.
func (rs *ResultSet) RowCount() int64 { return rs.tuples }

func (rs *ResultSet) blockFor(row int64) (*dataBlock, bool) {
	for _, b := range rs.blocks {
		if b.contains(row) {
			return b, true
		}
	}
	return nil, false
}

// GetRow returns the field values of row r (0-based), fetching a new
// data block from the server if needed (spec §4.6 algorithm): on a
// cache miss it issues `export id offset size`, growing the cache size
// tenfold for sequential forward scans so long as no newer query has
// been issued on the session since this result was opened.
func (rs *ResultSet) GetRow(r int64) ([]string, error) {
	if rs.closed {
		return nil, misuseErr("mapi: result set closed")
	}
	if r < 0 || r >= rs.tuples {
		return nil, misuseErr(fmt.Sprintf("mapi: row %d out of range (0..%d)", r, rs.tuples-1))
	}
	if b, ok := rs.blockFor(r); ok {
		return b.get(r), nil
	}
	if err := rs.fetchBlock(r); err != nil {
		return nil, err
	}
	b, ok := rs.blockFor(r)
	if !ok {
		return nil, protocolErr("server did not deliver the requested data block", nil)
	}
	return b.get(r), nil
}

func (rs *ResultSet) fetchBlock(row int64) error {
	if rs.id <= 0 {
		return misuseErr("mapi: result has no server-side id to export further blocks from")
	}
	size := rs.cacheSize
	remaining := rs.tuples - row
	growthCap := int64(rs.session.defaultReplySize) * 10
	if rs.session.querySeq == rs.querySeqAtOpen && remaining > rs.cacheSize &&
		growthCap > 0 && rs.cacheSize < growthCap {
		// no newer query issued, the current cache is too small to cover
		// what's left, and we haven't already hit the plateau: grow the
		// cache aggressively, capped at 10x the session's default (spec
		// §4.6 "adaptive prefetch").
		size *= 10
		if size > growthCap {
			size = growthCap
		}
		rs.cacheSize = size
	}
	if row+size > rs.tuples {
		size = rs.tuples - row
	}
	cmd := fmt.Sprintf("export %d %d %d", rs.id, row, size)
	_, err := rs.session.runTurn(0, func() error { return rs.session.writer.WriteControl(cmd) })
	if err != nil {
		return err
	}
	return nil
}

// Close releases the result set's server-side resources if it still has
// rows the server hasn't fully delivered (spec §4.6 "Close"). Idempotent.
func (rs *ResultSet) Close() error {
	if rs.closed {
		return nil
	}
	rs.closed = true
	rs.session.unregister(rs.id)
	rs.blocks = nil
	if rs.id > 0 && rs.tuples > rs.firstBlockRowCount {
		_, err := rs.session.runTurn(0, func() error {
			return rs.session.writer.WriteControl(fmt.Sprintf("close %d", rs.id))
		})
		return err
	}
	return nil
}
