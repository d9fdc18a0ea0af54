package errors

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// sqlstateQueryCanceled is raised when statement_timeout cuts a search query.
const sqlstateQueryCanceled = "57014"

// ErrorDump is the log-facing breakdown of a failed read.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	PGCode     string `json:"pg_code,omitempty"`
	PGClass    string `json:"pg_class,omitempty"`
	PGMessage  string `json:"pg_message,omitempty"`
	PGHint     string `json:"pg_hint,omitempty"`
	PGTable    string `json:"pg_table,omitempty"`
	PGColumn   string `json:"pg_column,omitempty"`
	PGPosition int32  `json:"pg_position,omitempty"`

	TimedOut bool `json:"timed_out,omitempty"`
	Canceled bool `json:"canceled,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgxErr):
		d.PGCode = pgxErr.Code
		d.PGMessage = pgxErr.Message
		d.PGHint = pgxErr.Hint
		d.PGTable = pgxErr.TableName
		d.PGColumn = pgxErr.ColumnName
		d.PGPosition = pgxErr.Position
	case errors.As(err, &pqErr):
		d.PGCode = string(pqErr.Code)
		d.PGMessage = pqErr.Message
		d.PGHint = pqErr.Hint
		d.PGTable = pqErr.Table
		d.PGColumn = pqErr.Column
		var pos int32
		if _, scanErr := fmt.Sscan(pqErr.Position, &pos); scanErr == nil {
			d.PGPosition = pos
		}
	}
	if len(d.PGCode) >= 2 {
		d.PGClass = d.PGCode[:2]
	}

	d.TimedOut = d.PGCode == sqlstateQueryCanceled || errors.Is(err, context.DeadlineExceeded)
	d.Canceled = errors.Is(err, context.Canceled)
	return d
}

// Fields flattens the dump into log fields, leaving out what is empty.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{"error": d.TopMessage}
	if d.Code != "" {
		fields["error_code"] = d.Code
	}
	if len(d.Chain) > 0 {
		fields["error_chain"] = d.Chain
	}
	for key, value := range map[string]string{
		"pg_code":    d.PGCode,
		"pg_class":   d.PGClass,
		"pg_message": d.PGMessage,
		"pg_hint":    d.PGHint,
		"pg_table":   d.PGTable,
		"pg_column":  d.PGColumn,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	if d.PGPosition > 0 {
		fields["pg_position"] = d.PGPosition
	}
	if d.TimedOut {
		fields["timed_out"] = true
	}
	if d.Canceled {
		fields["canceled"] = true
	}
	return fields
}
