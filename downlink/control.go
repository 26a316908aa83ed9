package downlink

import (
	"github.com/arloliu/telem/codec"
	"github.com/arloliu/telem/field"
)

// Names of the writable fields through which the ground drives flow
// commands. A zero value means no command.
const (
	ToggleFieldName = "downlink.toggle_id"
	Shift1FieldName = "downlink.shift_id1"
	Shift2FieldName = "downlink.shift_id2"
)

// RegisterControlFields registers the flow command fields for flowCount
// flows. Flight and ground must both call it, at the same point of their
// registration sequence, so that uplink indices agree.
func RegisterControlFields(reg *field.Registry, flowCount int) error {
	w := IDWidth(flowCount)
	for _, name := range []string{ToggleFieldName, Shift1FieldName, Shift2FieldName} {
		c, err := codec.NewUint(0, uint64(1)<<w-1, w)
		if err != nil {
			return err
		}
		if err := reg.RegisterWritable(field.NewWritable(name, c)); err != nil {
			return err
		}
	}

	return nil
}

type controlFields struct {
	toggle, shift1, shift2 *field.Field
}

// findControlFields returns nil unless all three command fields exist.
func findControlFields(reg *field.Registry) *controlFields {
	toggle, ok1 := reg.FindWritable(ToggleFieldName)
	shift1, ok2 := reg.FindWritable(Shift1FieldName)
	shift2, ok3 := reg.FindWritable(Shift2FieldName)
	if !ok1 || !ok2 || !ok3 {
		return nil
	}

	return &controlFields{toggle: toggle, shift1: shift1, shift2: shift2}
}
