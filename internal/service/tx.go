package service

import "context"

// TxRepositories provides transaction-bound repositories.
type TxRepositories interface {
	Lessons() LessonRepositoryInterface
	Chunks() ChunkRepositoryInterface
}

// TxRunner executes a function within a freshly acquired transaction.
// Background pipeline runs depend on this: the transaction comes from the
// pool, never from the request scope that triggered ingestion.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(repos TxRepositories) error) error
}
