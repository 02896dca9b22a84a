package gsmem

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// SlotInfo is one row of the allocation table.
type SlotInfo struct {
	Handle    SlotHandle
	Slot      Slot
	Area      AreaHandle
	Bound     bool
	Allocated bool
}

// Allocation returns every slot in creation order.
func (a *Allocator) Allocation() []SlotInfo {
	out := make([]SlotInfo, len(a.slots))
	for i, e := range a.slots {
		out[i] = SlotInfo{
			Handle:    SlotHandle(i),
			Slot:      e.Slot,
			Area:      e.area,
			Bound:     e.bound,
			Allocated: e.allocated,
		}
	}
	return out
}

// Print logs the allocation table at info level.
func (a *Allocator) Print(l log.FieldLogger) {
	l.Infof("GS: memory allocation (%d of %d pages in slots)", a.pool-a.FreePages(), a.pool)
	for _, si := range a.Allocation() {
		state := "free"
		switch {
		case si.Bound:
			ar := a.areas[si.Area]
			state = fmt.Sprintf("area %d %dx%d %s", int(si.Area), ar.Width, ar.Height, ar.Format)
		case si.Allocated:
			state = "allocated"
		}
		lock := ""
		if si.Slot.Locked {
			lock = " locked"
		}
		l.Infof("    > slot %2d: pages %3d-%3d (%3d) %-7s%s, %s",
			int(si.Handle), si.Slot.Offset, si.Slot.End()-1, si.Slot.Pages, si.Slot.Format, lock, state)
	}
}
