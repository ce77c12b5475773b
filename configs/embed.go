// Package configs provides the embedded configuration template for appimgmon.
//
// The template is embedded at build time using Go's //go:embed directive, so
// it is available in every distribution: source builds, binary releases, and
// package-manager installs.
//
// It is used by:
//   - cmd/appimgmon/cmd/config.go → creates user config at ~/.config/appimgmon/config.yaml
//
// Configuration hierarchy (see internal/config/config.go Load()):
//  1. Hardcoded defaults (internal/config/config.go NewConfig())
//  2. User config (~/.config/appimgmon/config.yaml, or $APPIMGMON_CONFIG)
//  3. Environment variables
//
// To modify the template, edit the .yaml file in this directory and rebuild.
package configs

import _ "embed"

// UserConfigTemplate is the template for the user configuration file.
// Created by: `appimgmon config init` at ~/.config/appimgmon/config.yaml
// Every setting ships commented out, documenting the defaults.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string
