// Package errors provides typed error handling for unsheet operations.
//
// Every error carries a stable code so the CLI can pick an exit status and
// the MCP server can report a machine-readable failure.
//
// Example usage:
//
//	// Creating errors
//	err := errors.UnknownCode("05")
//	err := errors.ZipBombDetected("compression ratio exceeds 100:1")
//
//	// Wrapping errors
//	err := errors.ExtractFailed("sheet01.zip", toolErr)
//
//	// Checking the outermost code
//	if errors.Is(err, errors.CodeExtractFailed) {
//	    // handle failed extraction
//	}
//
//	// Checking anywhere in the chain
//	if errors.Has(err, errors.CodeZipBombDetected) {
//	    // the extraction failed because of a zip bomb
//	}
//
//	// Stdlib compatibility
//	var unsheetErr *errors.Error
//	if errors.As(err, &unsheetErr) {
//	    fmt.Println(unsheetErr.Code, unsheetErr.Message)
//	}
package errors
