package supervisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryInsertGetRemove(t *testing.T) {
	reg := NewRegistry()
	assert.Equal(t, 0, reg.Len())
	assert.False(t, reg.Has("alpha.py"))

	rec := &ChildRecord{Name: "alpha.py"}
	reg.insert(rec)

	assert.True(t, reg.Has("alpha.py"))
	assert.Equal(t, rec, reg.Get("alpha.py"))
	assert.Equal(t, 1, reg.Len())

	reg.remove("alpha.py")
	assert.False(t, reg.Has("alpha.py"))
	assert.Nil(t, reg.Get("alpha.py"))
}

func TestRegistryNamesSorted(t *testing.T) {
	reg := NewRegistry()
	reg.insert(&ChildRecord{Name: "zeta.py"})
	reg.insert(&ChildRecord{Name: "alpha.py"})
	reg.insert(&ChildRecord{Name: "mid.py"})

	assert.Equal(t, []ChildName{"alpha.py", "mid.py", "zeta.py"}, reg.Names())
}

func TestChildRecordRunning(t *testing.T) {
	rec := &ChildRecord{Name: "alpha.py"}
	assert.True(t, rec.Running())
	rec.exited = true
	assert.False(t, rec.Running())
}
