// internal/panels/segment-selector/models.go
package segmentselector

type Input struct {
	Requested string `json:"requested,omitempty"`
}

// Output is the segment dropdown state. Selected is empty exactly when
// Options is empty.
type Output struct {
	Label     string   `json:"label"`
	Options   []string `json:"options"`
	Selected  string   `json:"selected,omitempty"`
	FromCache bool     `json:"fromCache"`
}

// HasSelection reports whether any segment is selected.
func (o *Output) HasSelection() bool {
	return o != nil && len(o.Options) > 0
}

// Allows reports whether segment is one of the listed options.
func (o *Output) Allows(segment string) bool {
	if o == nil {
		return false
	}
	for _, opt := range o.Options {
		if opt == segment {
			return true
		}
	}
	return false
}
