package scenario

import (
	"fmt"
	"strings"
)

// Trace is the observable result of a [Run].
type Trace struct {
	Name  string
	Steps []StepTrace
}

// StepTrace holds everything that happened while executing one [Step].
type StepTrace struct {
	Step    string
	Records []Record      // Records are in delivery order.
	Faults  []FaultRecord // Faults are in replay order.
	Err     string        // Err is the contract error returned by the step, if any.
}

// Record is written by a record action.
type Record struct {
	Owner string
	Kind  string
	Event string
}

type FaultRecord struct {
	Owner string
	Event string
	Err   string
}

// Records returns every record in the trace, in order.
func (t *Trace) Records() []Record {
	var records []Record
	for _, step := range t.Steps {
		records = append(records, step.Records...)
	}
	return records
}

func (t *Trace) String() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "scenario %s\n", t.Name)
	for i, step := range t.Steps {
		fmt.Fprintf(&buf, "step %d: %s\n", i+1, step.Step)
		for _, rec := range step.Records {
			fmt.Fprintf(&buf, "  %s[%s] <- %s\n", rec.Owner, rec.Kind, rec.Event)
		}
		for _, fault := range step.Faults {
			fmt.Fprintf(&buf, "  fault %s <- %s: %s\n", fault.Owner, fault.Event, fault.Err)
		}
		if step.Err != "" {
			fmt.Fprintf(&buf, "  error: %s\n", step.Err)
		}
	}
	return buf.String()
}
