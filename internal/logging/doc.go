// Package logging provides structured JSON logging with size-based file
// rotation, plus the parsing and filtering used by `appimgmon logs`.
//
// All components log through log/slog. Setup wires a RotatingWriter under
// the user state directory so a long-running monitor cannot fill the disk.
package logging
