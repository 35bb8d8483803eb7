// Package config loads allocator settings from YAML, JSON or TOML files.
//
// A File is decoded over Default, overridden from the environment and then
// validated:
//
//	f, err := config.Load("ctxbudget.yaml")
//	if err != nil {
//	    return err
//	}
//	alloc, err := f.NewAllocator(slog.Default())
//
// Recognized environment variables:
//
//	CTXBUDGET_CEILING    overrides ceiling
//	CTXBUDGET_THRESHOLD  overrides approaching_threshold
//	CTXBUDGET_ENCODING   overrides encoding
//
// Watcher reloads a file when it changes on disk and hands each valid
// revision to a callback. Schema returns the JSON Schema for File.
package config
