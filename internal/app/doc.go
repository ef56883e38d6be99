// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the annotation pipeline that takes discovered
// inputs and configurations through validation, planning, dispatch and
// merging, decoupled from any specific entrypoint like a CLI.
package app
