package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/arbor/pkg/pipeline"
)

func TestPipeline_ListenersRunInRegistrationOrder(t *testing.T) {
	p := pipeline.New()

	var order []int
	p.InterceptNodeEvents(func(*pipeline.NodeEvent) { order = append(order, 1) })
	p.InterceptNodeEvents(func(*pipeline.NodeEvent) { order = append(order, 2) })
	p.InterceptNodeEvents(func(*pipeline.NodeEvent) { order = append(order, 3) })

	p.OnNodeEvent(&pipeline.NodeEvent{Kind: pipeline.NodeExecutionStarting})
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestPipeline_ListenersSeeTheSameEventValue(t *testing.T) {
	p := pipeline.New()

	var seen []*pipeline.NodeEvent
	p.InterceptNodeEvents(func(ev *pipeline.NodeEvent) { seen = append(seen, ev) })
	p.InterceptNodeEvents(func(ev *pipeline.NodeEvent) { seen = append(seen, ev) })

	ev := &pipeline.NodeEvent{Kind: pipeline.NodeExecutionCompleted, Node: "work"}
	p.OnNodeEvent(ev)

	assert.Same(t, ev, seen[0])
	assert.Same(t, ev, seen[1])
}

func TestPipeline_RegistrationAfterFreezePanics(t *testing.T) {
	p := pipeline.New()
	p.InterceptAgentEvents(func(*pipeline.AgentEvent) {})
	p.Freeze()

	assert.Panics(t, func() {
		p.InterceptAgentEvents(func(*pipeline.AgentEvent) {})
	})
	assert.Panics(t, func() {
		p.InterceptStreamingEvents(func(*pipeline.StreamingEvent) {})
	})

	// Delivery still works after freezing.
	assert.NotPanics(t, func() {
		p.OnAgentEvent(&pipeline.AgentEvent{Kind: pipeline.AgentStarting})
	})
}

func TestPipeline_EmitWithoutListenersIsNoop(t *testing.T) {
	p := pipeline.New()
	assert.NotPanics(t, func() {
		p.OnToolCallEvent(&pipeline.ToolCallEvent{Kind: pipeline.ToolCallStarting})
	})
}
