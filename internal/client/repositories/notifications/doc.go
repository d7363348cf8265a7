// Package notifications keeps a local copy of the user's notification inbox.
//
// The catalog service refreshes it after every successful fetch and updates
// rows only after the server confirmed a change, so the cache never shows a
// state the server has not acknowledged. When the backend is unreachable the
// cached inbox is served instead.
//
// Typical usage:
//
//	repo := notifications.NewSQLiteRepository(db)
//	_ = repo.ReplaceAll(ctx, fetched)
//	list, _ := repo.GetAll(ctx)
//	_ = repo.MarkRead(ctx, id, time.Now())
package notifications
