// Package configs provides embedded configuration templates for ragkb.
//
// How Configuration Templates Work:
//
// Templates are embedded at build time using Go's //go:embed directive.
// This ensures they are available in ALL distributions:
//   - Source builds (go install)
//   - Binary releases
//
// The templates are used by:
//   - cmd/ragkb config init → creates user config at ~/.config/ragkb/config.yaml
//   - cmd/ragkb init → creates .ragkb.yaml in the current directory
//
// Template files:
//   - project-config.example.yaml: per-deployment settings (chunking, retrieval, confidence weights)
//   - user-config.example.yaml: machine-specific settings (embedding endpoint, server transport)
//
// Configuration Hierarchy (see internal/config/config.go Load()):
//   1. Hardcoded defaults (internal/config/config.go NewConfig())
//   2. User config (~/.config/ragkb/config.yaml)
//   3. Project config (.ragkb.yaml)
//   4. Environment variables (RAGKB_*)
//
// To modify templates, edit the .yaml files in this directory and rebuild.
// Changes will be embedded in the next build.
package configs

import _ "embed"

// UserConfigTemplate is the template for user/machine-level configuration.
// Created by: `ragkb config init` at ~/.config/ragkb/config.yaml
// Contains: machine-specific settings like the embedding endpoint and server transport.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is the template for project-level configuration.
// Created by: `ragkb init` at .ragkb.yaml in the working directory.
// Contains: chunking, retrieval, confidence, and cache tuning for this deployment.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
