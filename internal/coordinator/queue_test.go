package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobQueueFIFO(t *testing.T) {
	q := newJobQueue()

	pos1 := q.append(JobDescriptor{BlendFile: "a.blend"})
	pos2 := q.append(JobDescriptor{BlendFile: "b.blend"})

	assert.Equal(t, 1, pos1)
	assert.Equal(t, 2, pos2)
	assert.Equal(t, 2, q.size())

	head, ok := q.popHead()
	assert.True(t, ok)
	assert.Equal(t, "a.blend", head.BlendFile)
	assert.Equal(t, 1, q.size())
}

func TestJobQueuePopEmpty(t *testing.T) {
	q := newJobQueue()

	_, ok := q.popHead()
	assert.False(t, ok)
}

func TestJobQueueSnapshotIsACopy(t *testing.T) {
	q := newJobQueue()
	q.append(JobDescriptor{BlendFile: "a.blend"})

	snap := q.snapshot()
	snap[0].BlendFile = "mutated"

	assert.Equal(t, "a.blend", q.snapshot()[0].BlendFile)
}
