package analysis

import "github.com/nasa-jpl/sysid-core/analysistype"

// ErrUnknownAnalysisType re-exports analysistype.ErrUnknownAnalysisType so
// callers of this package don't need to import analysistype just to test
// errors.Is against it.
var ErrUnknownAnalysisType = analysistype.ErrUnknownAnalysisType
