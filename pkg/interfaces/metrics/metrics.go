package metrics

// Collector lets downstream observers record SDK outcomes.
type Collector interface {
	Record(operation string, labels map[string]string)
}

// Nop drops every observation.
type Nop struct{}

var _ Collector = (*Nop)(nil)

func (n *Nop) Record(operation string, labels map[string]string) {}

// Func adapts a function to the Collector interface.
type Func func(operation string, labels map[string]string)

// Record satisfies the Collector interface.
func (f Func) Record(operation string, labels map[string]string) {
	if f == nil {
		return
	}
	f(operation, labels)
}

// Operation names and label values recorded by the SDK.
const (
	OpResolve  = "resolve"
	OpDeepLink = "deeplink"
	OpInstall  = "install"

	LabelOutcome = "outcome"
)
