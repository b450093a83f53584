// Package cmd provides the command-line interface implementation for imgdedup.
//
// This package contains the root command and the utility subcommands of the
// imgdedup CLI tool. It uses the Cobra library for command structure and Fang
// for styled help and error output.
//
// The package is organized into the following commands:
//   - root: Runs the conversion pipeline from --input into --output
//   - scan: Read-only hashing and duplicate report for a directory tree
//   - verify: Artifact naming and decodability checks for an output directory
//   - seed: Test image tree generation
//   - version: Build information
//
// Each command is implemented as a separate file with its own constructor
// function that returns a *cobra.Command. Settings for the root command are
// resolved by the config package and then overridden by any flag the user
// set explicitly.
//
// The package leverages the dedup package for the pipeline itself and the
// util package for hashing, walking and artifact naming.
package cmd
