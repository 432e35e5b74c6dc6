package scene

import "strings"

// UpdateFlags selects which subsystems Advance, Seek and Update touch.
type UpdateFlags uint32

// Update flags. Unset bits skip their step.
const (
	UpdateModels         UpdateFlags = 0x1
	UpdateRenderEngines  UpdateFlags = 0x2
	UpdateCamera         UpdateFlags = 0x4
	UpdateLight          UpdateFlags = 0x8
	UpdateAll            UpdateFlags = 0xF
	ResetMotionState     UpdateFlags = 0x10
	ForceUpdateAllMorphs UpdateFlags = 0x20
)

var flagNames = []struct {
	flag UpdateFlags
	name string
}{
	{UpdateModels, "models"},
	{UpdateRenderEngines, "render-engines"},
	{UpdateCamera, "camera"},
	{UpdateLight, "light"},
	{ResetMotionState, "reset-motion-state"},
	{ForceUpdateAllMorphs, "force-morphs"},
}

// Has reports whether every bit of other is set.
func (f UpdateFlags) Has(other UpdateFlags) bool {
	return f&other == other
}

func (f UpdateFlags) String() string {
	if f == 0 {
		return "none"
	}
	var b strings.Builder
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			if b.Len() > 0 {
				b.WriteByte('|')
			}
			b.WriteString(fn.name)
		}
	}
	return b.String()
}
