package app

import (
	"fmt"
	"strconv"
	"strings"

	"emotion/gsmem"
)

type command struct {
	name string
	help string
	run  func(c *Console, args []string) []string
}

var commands []command

func init() {
	commands = []command{
		{"help", "list commands", cmdHelp},
		{"modules", "firmware modules in load order", cmdModules},
		{"vram", "video memory slots", cmdVRAM},
		{"alloc", "alloc <pages> [psm]: take a texture slot", cmdAlloc},
		{"free", "free <slot>: return a texture slot", cmdFree},
		{"card", "memory card geometry", cmdCard},
		{"time", "seconds since init and frames shown", cmdTime},
		{"keys", "keyboard counters", cmdKeys},
		{"echo", "echo <text>", cmdEcho},
		{"clear", "clear the screen", cmdClear},
		{"exit", "leave the console", cmdExit},
	}
}

func (c *Console) run(line string) []string {
	f := strings.Fields(line)
	for _, cmd := range commands {
		if cmd.name == f[0] {
			return cmd.run(c, f[1:])
		}
	}
	return []string{"unknown command: " + f[0]}
}

func cmdHelp(*Console, []string) []string {
	out := make([]string, 0, len(commands))
	for _, cmd := range commands {
		out = append(out, fmt.Sprintf("%-8s %s", cmd.name, cmd.help))
	}
	return out
}

func cmdModules(c *Console, _ []string) []string {
	mods := c.p.Modules()
	out := make([]string, 0, len(mods))
	for i, m := range mods {
		out = append(out, fmt.Sprintf("%d. %s", i+1, m))
	}
	return out
}

func cmdVRAM(c *Console, _ []string) []string {
	v := c.p.VRAM()
	out := []string{fmt.Sprintf("%d/%d pages in slots", v.PoolPages()-v.FreePages(), v.PoolPages())}
	for _, si := range v.Allocation() {
		state := ""
		switch {
		case si.Bound:
			state = "bound"
		case si.Allocated:
			state = "in use"
		case si.Slot.Locked:
			state = "locked"
		}
		out = append(out, fmt.Sprintf("%2d %3d+%-3d %-7s %s", int(si.Handle), si.Slot.Offset, si.Slot.Pages, si.Slot.Format, state))
	}
	return out
}

func cmdAlloc(c *Console, args []string) []string {
	if len(args) == 0 {
		return []string{"usage: alloc <pages> [psm]"}
	}
	pages, err := strconv.Atoi(args[0])
	if err != nil {
		return []string{"alloc: " + err.Error()}
	}
	format := gsmem.PSMCT32
	if len(args) > 1 {
		if format, err = gsmem.ParsePSM(args[1]); err != nil {
			return []string{"alloc: " + err.Error()}
		}
	}
	h, err := c.p.VRAM().Alloc(pages, format)
	if err != nil {
		return []string{"alloc: " + err.Error()}
	}
	s, _ := c.p.VRAM().Slot(h)
	return []string{fmt.Sprintf("slot %d at page %d (%d pages)", int(h), s.Offset, s.Pages)}
}

func cmdFree(c *Console, args []string) []string {
	if len(args) == 0 {
		return []string{"usage: free <slot>"}
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return []string{"free: " + err.Error()}
	}
	if err := c.p.VRAM().Free(gsmem.SlotHandle(n)); err != nil {
		return []string{"free: " + err.Error()}
	}
	return []string{fmt.Sprintf("slot %d free", n)}
}

func cmdCard(c *Console, _ []string) []string {
	mc := c.p.MemoryCard()
	return []string{fmt.Sprintf("%d KiB, %d byte erase blocks", mc.SizeBytes()/1024, mc.EraseBlockBytes())}
}

func cmdTime(c *Console, _ []string) []string {
	return []string{fmt.Sprintf("%.2fs, %d frames", c.p.Time(), c.p.Core().Time.Counter)}
}

func cmdKeys(c *Console, _ []string) []string {
	return []string{fmt.Sprintf("unmapped scan codes: %d", c.p.Input().Unmapped())}
}

func cmdEcho(_ *Console, args []string) []string {
	return []string{strings.Join(args, " ")}
}

func cmdClear(c *Console, _ []string) []string {
	c.canvas.Clear(background)
	c.term.Configure(termConfig)
	return nil
}

func cmdExit(c *Console, _ []string) []string {
	c.p.RequestClose()
	return []string{"bye"}
}
