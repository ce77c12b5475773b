// Package preflight validates the environment AppImgMon runs in before
// the monitor starts, and backs the diagnostic report of the debug command.
//
// The package validates:
//   - Managed directories (watch, applications, icon, optional desktop)
//   - Disk space availability (minimum 100MB for icon extraction)
//   - Filesystem notification support (inotify)
//   - systemd user manager availability
//   - Log file presence
//
// Use the Checker type to run all validations:
//
//	checker := preflight.New()
//	results := checker.RunAll(ctx, cfg)
//	if checker.HasCriticalFailures(results) {
//	    // Handle failures
//	}
package preflight
