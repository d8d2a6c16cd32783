package vm

import "sort"

// Debugger intercepts instruction fetches so a host (the REPL
// collaborator) can cap execution at a breakpoint without the VM itself
// knowing anything about hosts or terminals (spec.md §5: "a host wishing
// to cap execution budget does so by wrapping the loop externally").
type Debugger struct {
	handler     BreakpointHandler
	breakpoints map[uint32]*Breakpoint
}

// BreakpointHandler is notified when execution reaches a breakpoint.
type BreakpointHandler interface {
	OnBreakpoint(v *VM, b *Breakpoint)
}

// Breakpoint is an address that stops execution when the program counter
// reaches it, before the instruction there is fetched.
type Breakpoint struct {
	Address  uint32
	Disabled bool
}

// NewDebugger creates a debugger with no breakpoints set.
func NewDebugger(handler BreakpointHandler) *Debugger {
	return &Debugger{
		handler:     handler,
		breakpoints: make(map[uint32]*Breakpoint),
	}
}

type byAddr []*Breakpoint

func (a byAddr) Len() int           { return len(a) }
func (a byAddr) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byAddr) Less(i, j int) bool { return a[i].Address < a[j].Address }

// GetBreakpoint looks up a breakpoint by address.
func (d *Debugger) GetBreakpoint(addr uint32) *Breakpoint {
	return d.breakpoints[addr]
}

// GetBreakpoints returns all breakpoints, sorted by address.
func (d *Debugger) GetBreakpoints() []*Breakpoint {
	var out []*Breakpoint
	for _, b := range d.breakpoints {
		out = append(out, b)
	}
	sort.Sort(byAddr(out))
	return out
}

// AddBreakpoint sets a breakpoint at addr.
func (d *Debugger) AddBreakpoint(addr uint32) *Breakpoint {
	b := &Breakpoint{Address: addr}
	d.breakpoints[addr] = b
	return b
}

// RemoveBreakpoint removes the breakpoint at addr, if any.
func (d *Debugger) RemoveBreakpoint(addr uint32) {
	delete(d.breakpoints, addr)
}

// onFetch reports whether execution should stop before fetching addr.
func (d *Debugger) onFetch(v *VM, addr uint32) bool {
	b, ok := d.breakpoints[addr]
	if !ok || b.Disabled {
		return false
	}
	if d.handler != nil {
		d.handler.OnBreakpoint(v, b)
	}
	return true
}
