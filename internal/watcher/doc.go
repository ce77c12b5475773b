// Package watcher delivers change notifications for AppImage bundles in the
// watch directory.
//
// The event-driven source is FsnotifyWatcher, a flat (non-recursive) inotify
// subscription that filters for bundle files and debounces the write bursts a
// large bundle copy produces. Consumers receive coalesced batches:
//
//	w, err := watcher.NewFsnotifyWatcher(watcher.DefaultOptions(), log)
//	if err != nil {
//	    // fall back to interval scanning
//	}
//	defer w.Stop()
//	go w.Start(ctx, cfg.WatchDir)
//
//	for batch := range w.Events() {
//	    for _, ev := range batch {
//	        // dispatch on ev.Operation
//	    }
//	}
//
// Interval scanning needs no driver here: a full-directory diff against the
// previous scan is already the reconciler's batch operation, so the polling
// mode is a ticker around it.
package watcher
