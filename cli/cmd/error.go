package cmd

import "github.com/ardnew/scopexpr/lang"

// Command errors. Each wraps the underlying cause and carries the file or
// expression it concerns as log attributes.
var (
	ErrLoadScope   = lang.NewError("load scope")
	ErrLocate      = lang.NewError("locate container")
	ErrWriteConfig = lang.NewError("write configuration file")
	ErrFileExists  = lang.NewError("file exists (use --force to overwrite)")
	ErrFormat      = lang.NewError("format output")
)
