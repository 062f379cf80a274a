package eval

import "github.com/clang/cl/ast"

// ValueSlot is a variable binding: a declared type, whether it has been
// assigned yet, and its current value once it has.
type ValueSlot struct {
	DeclaredType Kind
	Initialized  bool
	Value        Value
}

// Function is a function binding. DefiningFrame is an index into the
// Evaluator's frame arena rather than a direct *Frame pointer, per spec
// §9's explicit guidance, keeping frame ownership acyclic: a frame can
// define a function without that function holding a live reference back
// into the frame that would otherwise need to outlive its natural scope.
type Function struct {
	Name          string
	RetType       Kind
	Params        []ast.Param
	Body          *ast.Block
	DefiningFrame int
}

// Frame is one lexical scope: a set of bindings and a pointer to its
// lexical parent. Frames form a stack; the bottom is the global frame.
// isCallBoundary marks a frame pushed for a function call (as opposed to a
// block/if/while body nested lexically inside the same function): the
// function-crossing value-invisibility rule in spec §4.3 fires only when a
// lookup climbs out of a call-boundary frame, not at every block boundary.
type Frame struct {
	parent         int // index into the arena; unused for the global frame (hasParent is false)
	hasParent      bool
	isCallBoundary bool
	values         map[string]*ValueSlot
	functions      map[string]*Function
}

func newFrame(parent int, hasParent, isCallBoundary bool) *Frame {
	return &Frame{
		parent:         parent,
		hasParent:      hasParent,
		isCallBoundary: isCallBoundary,
		values:         make(map[string]*ValueSlot),
		functions:      make(map[string]*Function),
	}
}

// Arena owns every frame ever pushed during evaluation, addressed by index.
// Frames are never removed from the arena even after their scope exits,
// so every index handed out (including a Function's DefiningFrame) stays
// valid for the evaluator's lifetime. Functions are only declared at the
// top level, so in practice DefiningFrame is always the global frame.
type Arena struct {
	frames []*Frame
}

func NewArena() *Arena {
	return &Arena{}
}

// PushGlobal creates the arena's root frame (index 0) and returns its index.
func (a *Arena) PushGlobal() int {
	a.frames = append(a.frames, newFrame(0, false, false))
	return len(a.frames) - 1
}

// PushChild creates a new block-scoped frame (if/while/{} body) lexically
// parented by parent and returns its index. Block frames are transparent to
// value lookup: they are not a function-crossing boundary.
func (a *Arena) PushChild(parent int) int {
	a.frames = append(a.frames, newFrame(parent, true, false))
	return len(a.frames) - 1
}

// PushCall creates a new frame for a function call body, parented by
// parent (the function's DefiningFrame). Unlike PushChild, this frame is a
// function-crossing boundary: once a value lookup climbs past it, ancestor
// ValueSlots become invisible and only Function bindings remain reachable.
func (a *Arena) PushCall(parent int) int {
	a.frames = append(a.frames, newFrame(parent, true, true))
	return len(a.frames) - 1
}

func (a *Arena) frame(idx int) *Frame {
	return a.frames[idx]
}

// DeclareValue installs a ValueSlot in frame idx, honoring spec §4.3's
// shadowing and conflict rules: declaring over an existing Function in the
// same frame is a NameConflict; declaring over an existing value shadows it.
func (a *Arena) DeclareValue(idx int, name string, slot *ValueSlot) error {
	f := a.frame(idx)
	if _, isFn := f.functions[name]; isFn {
		return &NameConflict{Msg: "'" + name + "' is already declared as a function"}
	}
	f.values[name] = slot
	return nil
}

// DeclareFunction installs a Function binding in frame idx. Function
// bindings are immutable: declaring over an existing function or value of
// the same name in the same frame is a NameConflict.
func (a *Arena) DeclareFunction(idx int, fn *Function) error {
	f := a.frame(idx)
	if _, isFn := f.functions[fn.Name]; isFn {
		return &NameConflict{Msg: "function '" + fn.Name + "' is already declared"}
	}
	if _, isVal := f.values[fn.Name]; isVal {
		return &NameConflict{Msg: "'" + fn.Name + "' is already declared as a value"}
	}
	f.functions[fn.Name] = fn
	return nil
}

// LookupValue resolves name as a value binding, honoring the function-
// crossing rule in spec §4.3: block/if/while frames are transparent, so a
// value declared in a lexically enclosing block or function body is
// visible throughout. The rule only fires at a function-call boundary —
// once the search climbs out of a call-boundary frame, only Function
// bindings remain visible from there on; a ValueSlot belonging to the
// call's defining scope (or any frame further up) is treated as absent.
func (a *Arena) LookupValue(idx int, name string) (*ValueSlot, bool) {
	return a.lookupValue(idx, name, false)
}

func (a *Arena) lookupValue(idx int, name string, restricted bool) (*ValueSlot, bool) {
	f := a.frame(idx)
	if !restricted {
		if slot, ok := f.values[name]; ok {
			return slot, true
		}
	}
	if _, isFn := f.functions[name]; isFn {
		return nil, false // it exists, but as a function, not a value
	}
	if !f.hasParent {
		return nil, false
	}
	return a.lookupValue(f.parent, name, restricted || f.isCallBoundary)
}

// LookupFunction resolves name as a function binding, searching the
// current frame and then every ancestor (functions are visible across the
// function-crossing boundary; only values are restricted).
func (a *Arena) LookupFunction(idx int, name string) (*Function, bool) {
	f := a.frame(idx)
	if fn, ok := f.functions[name]; ok {
		return fn, true
	}
	if !f.hasParent {
		return nil, false
	}
	return a.LookupFunction(f.parent, name)
}

// IsFunctionName reports whether name resolves to a function (as opposed
// to a value or nothing) from frame idx, used to produce NameConflict /
// TypeMismatch diagnostics when a name is used in the wrong position.
func (a *Arena) IsFunctionName(idx int, name string) bool {
	_, ok := a.LookupFunction(idx, name)
	return ok
}

// ExistsInFrame reports whether name is declared (as either kind) directly
// in frame idx, without searching ancestors — used for shadow/redeclare and
// NameConflict checks which are scoped to the current frame only.
func (a *Arena) ExistsInFrame(idx int, name string) (isFunc bool, exists bool) {
	f := a.frame(idx)
	if _, ok := f.functions[name]; ok {
		return true, true
	}
	if _, ok := f.values[name]; ok {
		return false, true
	}
	return false, false
}
