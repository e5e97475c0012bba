// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the report pipeline (open a source, load
// the configurations, render and write one report each), decoupled from any
// specific entrypoint like a CLI.
package app
