package eventbus

import "github.com/saylorsolutions/superbus/assert"

// FaultCollector keeps every [Fault] it observes.
// Register [FaultCollector.Observe] with [Bus.AddFaultObserver].
// Like the [Bus] itself, a FaultCollector is not concurrency safe.
type FaultCollector struct {
	faults *assert.Collector[*Fault]
}

// CollectFaults creates an empty [FaultCollector].
func CollectFaults() *FaultCollector {
	return &FaultCollector{faults: assert.Collect[*Fault]()}
}

// Observe satisfies [FaultObserver].
func (c *FaultCollector) Observe(fault *Fault) error {
	c.faults.Add(fault)
	return nil
}

// Faults returns the observed faults in the order they were replayed.
func (c *FaultCollector) Faults() []*Fault {
	return c.faults.Errors()
}

// Result joins all observed faults into one error, or returns nil if there were none.
// The result works with [errors.Is] and [errors.As] for each underlying handler error.
func (c *FaultCollector) Result() error {
	return c.faults.Result()
}

// Reset forgets all observed faults.
func (c *FaultCollector) Reset() {
	c.faults.Reset()
}
