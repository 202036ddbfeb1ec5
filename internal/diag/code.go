package diag

// Code names one member of spec.md §7's fatal-error taxonomy, plus the
// non-fatal informational codes the ambient stack reports through the
// same renderer.
type Code uint8

const (
	CodeUnknownName Code = iota
	CodeOverloadFailure
	CodeContractViolation
	CodeUnsupportedConstStmt

	CodeUnionSizing
	CodeCacheHit
	CodeBatchSummary
)

func (c Code) String() string {
	switch c {
	case CodeUnknownName:
		return "unknown-name"
	case CodeOverloadFailure:
		return "overload-failure"
	case CodeContractViolation:
		return "contract-violation"
	case CodeUnsupportedConstStmt:
		return "unsupported-const-stmt"
	case CodeUnionSizing:
		return "union-sizing"
	case CodeCacheHit:
		return "cache-hit"
	case CodeBatchSummary:
		return "batch-summary"
	default:
		return "unknown"
	}
}
