// Package settle runs independent data fetches concurrently and collects
// every outcome, successful or not, into a uniform result shape.
package settle

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Status values used for synthesized results.
const (
	StatusOK       = 200
	StatusRejected = 500

	StatusTextOK       = "OK"
	StatusTextRejected = "Error"
)

// ErrorInfo is the minimum error shape carried by a Result.
type ErrorInfo struct {
	Message string `json:"message"`
}

// Result holds the outcome of a single fetch.
// On success paths exactly one of Data and Error is set.
type Result[T any] struct {
	Data       *T         `json:"data"`
	Error      *ErrorInfo `json:"error"`
	Count      *int64     `json:"count"`
	Status     int        `json:"status"`
	StatusText string     `json:"statusText"`
}

// OK reports whether the result carries no error.
func (r Result[T]) OK() bool {
	return r.Error == nil
}

// Err returns the error info as a Go error, or nil.
func (r Result[T]) Err() error {
	if r.Error == nil {
		return nil
	}
	return errors.New(r.Error.Message)
}

// Query is one independent fetch. A non-nil error or a panic rejects it.
type Query[T any] func(ctx context.Context) (Result[T], error)

// Rejected builds the replacement result for a rejected query.
func Rejected[T any](reason any) Result[T] {
	return Result[T]{
		Error:      &ErrorInfo{Message: reasonString(reason)},
		Status:     StatusRejected,
		StatusText: StatusTextRejected,
	}
}

// Data wraps a value in a successful result.
func Data[T any](v T) Result[T] {
	return Result[T]{Data: &v, Status: StatusOK, StatusText: StatusTextOK}
}

// From adapts a plain (value, error) fetch into a Query.
func From[T any](fn func(context.Context) (T, error)) Query[T] {
	return func(ctx context.Context) (Result[T], error) {
		v, err := fn(ctx)
		if err != nil {
			return Result[T]{}, err
		}
		return Data(v), nil
	}
}

// FromCounted is From for fetches that also report a total count.
func FromCounted[T any](fn func(context.Context) (T, int64, error)) Query[T] {
	return func(ctx context.Context) (Result[T], error) {
		v, n, err := fn(ctx)
		if err != nil {
			return Result[T]{}, err
		}
		r := Data(v)
		r.Count = &n
		return r, nil
	}
}

// Group joins a set of heterogeneous queries. The zero value is ready to use.
// Unlike errgroup.WithContext, a failing member never cancels the others.
type Group struct {
	eg errgroup.Group
}

// Slot receives the result of one query scheduled on a Group.
type Slot[T any] struct {
	res Result[T]
}

// Result returns the settled result. Only valid after Group.Wait returns.
func (s *Slot[T]) Result() Result[T] {
	return s.res
}

// Go schedules q on g and returns the slot its result will land in.
func Go[T any](g *Group, ctx context.Context, q Query[T]) *Slot[T] {
	s := &Slot[T]{}
	g.eg.Go(func() error {
		s.res = run(ctx, q)
		return nil
	})
	return s
}

// Wait blocks until every scheduled query has settled.
func (g *Group) Wait() {
	_ = g.eg.Wait()
}

// All runs queries concurrently and returns their results in input order
// once every one of them has settled.
func All[T any](ctx context.Context, queries ...Query[T]) []Result[T] {
	out := make([]Result[T], len(queries))
	if len(queries) == 0 {
		return out
	}

	var eg errgroup.Group
	for i, q := range queries {
		eg.Go(func() error {
			out[i] = run(ctx, q)
			return nil
		})
	}
	_ = eg.Wait()
	return out
}

func run[T any](ctx context.Context, q Query[T]) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = Rejected[T](r)
		}
	}()

	if q == nil {
		return Rejected[T]("nil query")
	}
	r, err := q(ctx)
	if err != nil {
		return Rejected[T](err)
	}
	return r
}

// reasonString stringifies any rejection reason without panicking.
func reasonString(reason any) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = fmt.Sprintf("%T", reason)
		}
	}()

	switch v := reason.(type) {
	case nil:
		return "<nil>"
	case error:
		return v.Error()
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%+v", v)
	}
}
