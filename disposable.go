package ioc

import "context"

// Disposable is implemented by shared instances that hold resources. Close
// on the container calls it for every instance the container built.
//
//	type Pool struct{ db *sql.DB }
//
//	func (p *Pool) Close() error { return p.db.Close() }
type Disposable interface {
	Close() error
}

// DisposableWithContext is a Disposable whose cleanup honours the context
// given to Container.Close. It is preferred when a type implements both.
type DisposableWithContext interface {
	Close(ctx context.Context) error
}
