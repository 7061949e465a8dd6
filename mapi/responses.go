package mapi

import "github.com/MonetDB/monetdb-go/mapi/internal/proto"

// updateResponse is the Response for a `&2` header: an affected-row
// count and, for INSERT against a table with a generated key, the last
// inserted id (spec §4.4 tag table).
type updateResponse struct {
	header       *proto.Header
	affected     int64
	lastInsertID int64
}

func (r *updateResponse) Header() *proto.Header           { return r.header }
func (r *updateResponse) WantsHeaderLine() bool            { return false }
func (r *updateResponse) AddHeaderLine(*proto.HeaderLine) error { return nil }
func (r *updateResponse) WantsRow() bool                   { return false }
func (r *updateResponse) AddRow(string) error              { return nil }

// Affected returns the number of rows the statement touched.
func (r *updateResponse) Affected() int64 { return r.affected }

// LastInsertID returns the generated key of the last inserted row, or 0
// if none.
func (r *updateResponse) LastInsertID() int64 { return r.lastInsertID }

// schemaResponse is the Response for a `&3` header: a bare DDL
// acknowledgement carrying no fields.
type schemaResponse struct {
	header *proto.Header
}

func (r *schemaResponse) Header() *proto.Header           { return r.header }
func (r *schemaResponse) WantsHeaderLine() bool            { return false }
func (r *schemaResponse) AddHeaderLine(*proto.HeaderLine) error { return nil }
func (r *schemaResponse) WantsRow() bool                   { return false }
func (r *schemaResponse) AddRow(string) error              { return nil }

// autoCommitResponse is the Response for a `&4` header: an autocommit
// mode toggle.
type autoCommitResponse struct {
	header     *proto.Header
	autocommit bool
}

func (r *autoCommitResponse) Header() *proto.Header           { return r.header }
func (r *autoCommitResponse) WantsHeaderLine() bool            { return false }
func (r *autoCommitResponse) AddHeaderLine(*proto.HeaderLine) error { return nil }
func (r *autoCommitResponse) WantsRow() bool                   { return false }
func (r *autoCommitResponse) AddRow(string) error              { return nil }

// Autocommit reports the mode the server switched to.
func (r *autoCommitResponse) Autocommit() bool { return r.autocommit }
