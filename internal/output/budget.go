package output

import (
	"fmt"
	"log"

	"github.com/dustin/go-humanize"
)

// Size policies.
const (
	PolicyWarn = "warn"
	PolicyFail = "fail"
)

// BudgetError reports an output larger than its size budget under the
// "fail" policy.
type BudgetError struct {
	Path  string
	Size  int64
	Limit int64
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("output %s is %s, over the %s budget",
		e.Path, humanize.Bytes(uint64(e.Size)), humanize.Bytes(uint64(e.Limit)))
}

// Budget is a ceiling on the compressed size of one output. A zero Limit
// disables the check. Outputs are never truncated to fit.
type Budget struct {
	Limit  int64
	Policy string
}

// Check reports whether w exceeds the budget. Under PolicyFail an oversized
// output is an error; otherwise it is logged.
func (b Budget) Check(w *Written) (over bool, err error) {
	if b.Limit <= 0 || w.Bytes <= b.Limit {
		return false, nil
	}
	if b.Policy == PolicyFail {
		return true, &BudgetError{Path: w.Path, Size: w.Bytes, Limit: b.Limit}
	}
	log.Printf("WARNING: output %s is %s, over the %s budget",
		w.Path, humanize.Bytes(uint64(w.Bytes)), humanize.Bytes(uint64(b.Limit)))
	return true, nil
}
