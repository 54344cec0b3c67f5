// Package core defines the central term and e-graph value types of
// foresight: operators, e-nodes, shapes, e-class references and calls, and
// the ground/mixed term trees clients build.
//
// # E-nodes and slots
//
// An ENode is one operator occurrence. Besides its operator it carries
// three ordered slot-bearing components:
//
//   - Defs: slots introduced locally by the node (binders); invisible to
//     parents.
//   - Uses: slots consumed from the surrounding context.
//   - Args: ordered child e-class calls, each an e-class reference plus a
//     slot map binding the child's parameter slots to slots of this node's
//     context.
//
// Equality is structural over (Op, Defs, Uses, Args).
//
// # Shapes
//
// The Shape of a node is its renaming-normal form: distinct slots are
// replaced by $0, $1, ... in encounter order (Defs, then Uses, then each
// arg's slots in key-sorted order). A ShapeCall pairs the shape with the
// inverse renaming (numeric → original), so that
//
//	sc.Shape.Node().Rename(sc.Renaming)
//
// reconstructs the original node. Shapes are the hash-cons keys of the
// e-graph store: alpha-equivalent nodes share a shape by construction.
//
// # Trees
//
// Tree is a plain ground term; MixedTree additionally admits e-class calls
// at its leaves, for building terms on top of classes already present in a
// graph. Both are added to a graph via egraph.AddTree / egraph.AddMixedTree.
package core
