// Package localstore is the durable key-value store of the client: the
// terminal counterpart of the browser's local storage. Values are strings,
// keys are unique, writes are upserts.
//
// SQLiteRepository works over dbx.DBTX, so several writes can share one
// transaction:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    repo := localstore.NewSQLiteRepository(tx)
//	    return repo.Set(ctx, "token", access)
//	})
package localstore
