// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for skillpack.
//
// This package implements the Cobra command hierarchy for the skillpack CLI,
// including the root command and subcommands for packaging, discovery,
// validation, and project scaffolding.
package cmd
