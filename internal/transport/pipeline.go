package transport

import "fmt"

// Pipeline is an ordered list of stages.
type Pipeline struct {
	stages []Stage
}

// NewPipeline creates a pipeline. The first stage is closest to the codec.
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: append([]Stage(nil), stages...)}
}

// Outbound runs payload through every stage in order.
func (p *Pipeline) Outbound(payload string) ([]string, error) {
	frames := []string{payload}
	for _, st := range p.stages {
		next := make([]string, 0, len(frames))
		for _, f := range frames {
			out, err := st.Outbound(f)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", st.Name(), err)
			}
			next = append(next, out...)
		}
		frames = next
	}
	return frames, nil
}

// Inbound runs a frame through the stages in reverse order.
func (p *Pipeline) Inbound(frame string) (string, bool) {
	for i := len(p.stages) - 1; i >= 0; i-- {
		var ok bool
		frame, ok = p.stages[i].Inbound(frame)
		if !ok {
			return "", false
		}
	}
	return frame, true
}

// Names lists the stage names in order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for i, st := range p.stages {
		names[i] = st.Name()
	}
	return names
}
