package ch

import (
	"context"
	"fmt"
	"io"

	"github.com/go-faster/errors"

	"github.com/netgraph-io/chwire/proto"
)

// ErrEmptyResult is returned by ExecuteScalar when the query produced no
// rows.
var ErrEmptyResult = errors.New("empty result")

// ExecuteNonQuery runs body for its side effects and returns the number of
// rows the server reports having processed, per its ProfileInfo.
func (c *Client) ExecuteNonQuery(ctx context.Context, body string) (rowsAffected uint64, err error) {
	err = c.Do(ctx, Query{
		Body: body,
		OnProfile: func(ctx context.Context, p proto.Profile) error {
			rowsAffected = p.Rows
			return nil
		},
	})
	return rowsAffected, err
}

// ExecuteReader runs body, invoking handler once per decoded block. This is
// the native shape of a forward-only reader: the engine is callback-driven
// rather than pull-based, so "lazy iteration" means handler controls
// backpressure by how quickly it returns.
func (c *Client) ExecuteReader(ctx context.Context, body string, result proto.Result, handler func(ctx context.Context, block proto.Block) error) error {
	return c.Do(ctx, Query{
		Body:     body,
		Result:   result,
		OnResult: handler,
	})
}

// ExecuteScalar runs body, which must select exactly one row into dest, and
// reports ErrEmptyResult if the server returned zero rows.
func (c *Client) ExecuteScalar(ctx context.Context, body string, column string, dest proto.ColResult) error {
	var rows int
	err := c.ExecuteReader(ctx, body, proto.Results{{Name: column, Data: dest}}, func(ctx context.Context, b proto.Block) error {
		rows += b.Rows
		return nil
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrEmptyResult
	}
	return nil
}

// QueryRows runs body and invokes mapRow once per returned row, in block
// order, converting the engine's block-at-a-time delivery into a per-row
// mapping callback. A mapRow error is wrapped and aborts iteration.
func QueryRows[T any](ctx context.Context, c *Client, body string, result proto.Result, mapRow func(b proto.Block, row int) (T, error), each func(T) error) error {
	return c.ExecuteReader(ctx, body, result, func(ctx context.Context, b proto.Block) error {
		for row := 0; row < b.Rows; row++ {
			v, err := mapRow(b, row)
			if err != nil {
				return errors.Wrapf(err, "map row %d", row)
			}
			if err := each(v); err != nil {
				return err
			}
		}
		return nil
	})
}

// BulkInsertStream streams rows into table. next is called repeatedly; each
// call is expected to reset and refill columns with up to one batch of
// rows, returning io.EOF once exhausted. This mirrors Query.OnInput's
// contract directly, since an arbitrary proto.Input can't be sliced
// generically without per-column support.
func (c *Client) BulkInsertStream(ctx context.Context, table string, columns proto.Input, next func(ctx context.Context) error) error {
	return c.Do(ctx, Query{
		Body:    fmt.Sprintf("INSERT INTO %s VALUES", table),
		Input:   columns,
		OnInput: next,
	})
}

// BulkInsert sends columns as a single block. Use BulkInsertStream or
// BulkInsertRows when the row count warrants pacing across multiple blocks.
func (c *Client) BulkInsert(ctx context.Context, table string, columns proto.Input) error {
	return c.Do(ctx, Query{
		Body:  fmt.Sprintf("INSERT INTO %s VALUES", table),
		Input: columns,
	})
}

// BulkInsertRows drives BulkInsertStream over an in-memory slice of rows,
// resetting columns and appending up to batchSize rows per block via
// appendRow. A non-positive batchSize sends every row in one block.
func BulkInsertRows[T any](ctx context.Context, c *Client, table string, columns proto.Input, rows []T, batchSize int, appendRow func(row T, columns proto.Input)) error {
	if batchSize <= 0 {
		batchSize = len(rows)
	}
	if batchSize <= 0 {
		batchSize = 1
	}

	pos := 0
	next := func(ctx context.Context) error {
		for _, col := range columns {
			if r, ok := col.Data.(interface{ Reset() }); ok {
				r.Reset()
			}
		}
		if pos >= len(rows) {
			return io.EOF
		}
		end := pos + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		for _, row := range rows[pos:end] {
			appendRow(row, columns)
		}
		pos = end
		return nil
	}
	return c.BulkInsertStream(ctx, table, columns, next)
}
