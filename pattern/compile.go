// Package pattern: compilation of patterns into instruction lists.
package pattern

// Compiled is an executable pattern: the instruction list, its effect
// summary and the per-pattern machine-state pool.
type Compiled struct {
	instrs  []Instruction
	effects EffectSummary
	pool    *statePool
}

// Instructions returns the compiled instruction list (read-only).
func (c *Compiled) Instructions() []Instruction { return c.instrs }

// Effects returns the static effect summary.
func (c *Compiled) Effects() EffectSummary { return c.effects }

// Compile flattens p into an instruction list over a register file.
//
// Steps:
//  1. Allocate register 0 for the root and walk the pattern outside-in.
//  2. A node pattern at register r emits BindNode(r, ...), reserves one
//     fresh register per child, then compiles each child at its register.
//  3. A variable's first occurrence emits BindVar; later occurrences emit
//     Compare against the first occurrence's register.
//
// Complexity: O(pattern size)
func Compile(p Pattern) (*Compiled, error) {
	c := &compiler{varRegs: make(map[Var]int), nextReg: 1}
	if err := c.compile(p, 0); err != nil {
		return nil, err
	}
	eff := EffectSummary{
		Registers: c.nextReg,
		Vars:      len(c.varRegs),
		Slots:     len(Slots(p)),
		Nodes:     c.nodeCount,
	}
	out := &Compiled{instrs: c.instrs, effects: eff}
	out.pool = newStatePool(eff)
	return out, nil
}

// MustCompile is Compile, panicking on malformed patterns. For package
// initialization of rule tables.
func MustCompile(p Pattern) *Compiled {
	c, err := Compile(p)
	if err != nil {
		panic(err)
	}
	return c
}

type compiler struct {
	instrs    []Instruction
	varRegs   map[Var]int
	nextReg   int
	nodeCount int
}

func (c *compiler) compile(p Pattern, reg int) error {
	switch t := p.(type) {
	case VarPattern:
		if first, seen := c.varRegs[t.Name]; seen {
			c.instrs = append(c.instrs, Compare{A: reg, B: first})
			return nil
		}
		c.varRegs[t.Name] = reg
		c.instrs = append(c.instrs, BindVar{Reg: reg, Var: t.Name})
		return nil
	case NodePattern:
		c.nodeCount++
		c.instrs = append(c.instrs, BindNode{
			Reg:      reg,
			Op:       t.Op,
			Defs:     t.Defs,
			Uses:     t.Uses,
			ArgCount: len(t.Children),
		})
		base := c.nextReg
		c.nextReg += len(t.Children)
		for i, child := range t.Children {
			if child == nil {
				return ErrNilPattern
			}
			if err := c.compile(child, base+i); err != nil {
				return err
			}
		}
		return nil
	case nil:
		return ErrNilPattern
	default:
		return ErrNilPattern
	}
}
