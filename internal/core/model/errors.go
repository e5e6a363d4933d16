package model

import "errors"

// ErrEmptyDocument is returned by the navigation extractor when the input
// text is empty or whitespace-only. It is the only condition the pipeline
// raises directly; everything else degrades into result-level issues.
var ErrEmptyDocument = errors.New("document text is empty")
