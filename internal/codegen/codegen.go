// Package codegen renders a compressed DFA as a standalone Go source
// file: plain array literals plus the lookup functions that walk them,
// with no import of this module at all. It is the generator-output
// analogue of the teacher's internal/compiler, which bakes one compiled
// regex program into a matcher function via the same library
// (github.com/dave/jennifer/jen); here a whole compressed automaton's
// tables are baked into a self-contained package instead.
package codegen

import (
	"io"

	"github.com/dave/jennifer/jen"

	"github.com/KromDaniel/lexgen/internal/compress"
	"github.com/KromDaniel/lexgen/internal/mark"
)

// Variable names used in the emitted file.
const (
	topLevelName             = "topLevel"
	classRowsName            = "classRows"
	transitionIndexBeginName = "transitionIndexBegin"
	transitionIndicesName    = "transitionIndices"
	transitionBeginName      = "transitionBegin"
	transitionsName          = "transitions"
	actionIDsName            = "actionIDs"
	finalFlagsName           = "finalFlags"

	cellParam = "cell"
	unitParam = "unit"
	classVar  = "class"
	slotVar   = "slot"

	deadClass = -1
	noAction  = -1
)

// EmitGo writes c to w as Go source in package pkg. The emitted file
// declares BeginCell, Transit, IsFinal, and ActionIDFor functions that
// reproduce compress.CompressedDFA's lookup semantics over plain
// slices and arrays, so the result compiles and runs with no
// dependency on lexgen itself.
func EmitGo(w io.Writer, pkg string, c *compress.CompressedDFA) error {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by lexgen's codegen.EmitGo. DO NOT EDIT.")

	f.Var().Id(topLevelName).Op("=").Index(jen.Lit(256)).Uint8().Values(uint8Values(c.TopLevel)...)
	f.Var().Id(classRowsName).Op("=").Index().Index(jen.Lit(256)).Int16().Values(classRowsValues(c.ClassRows)...)
	f.Var().Id(transitionIndexBeginName).Op("=").Index().Int().Values(intValues(c.TransitionIndexBegin)...)
	f.Var().Id(transitionIndicesName).Op("=").Index().Int16().Values(int16Values(c.TransitionIndices)...)
	f.Var().Id(transitionBeginName).Op("=").Index().Int().Values(intValues(c.TransitionBegin)...)
	f.Var().Id(transitionsName).Op("=").Index().Int().Values(intValues(c.Transitions)...)
	f.Var().Id(actionIDsName).Op("=").Index().Int().Values(intValues(actionIDRow(c.Marks))...)
	f.Var().Id(finalFlagsName).Op("=").Index().Bool().Values(boolValues(c.FinalFlags)...)

	emitFuncs(f)

	return f.Render(w)
}

func emitFuncs(f *jen.File) {
	f.Comment("BeginCell returns the automaton's initial cell.")
	f.Func().Id("BeginCell").Params().Int().Block(
		jen.Return(jen.Lit(0)),
	)

	f.Comment("classOf returns the global character class of unit, or -1 if dead.")
	f.Func().Id("classOf").Params(jen.Id(unitParam).Uint16()).Int().Block(
		jen.Id("row").Op(":=").Id(classRowsName).Index(jen.Id(topLevelName).Index(jen.Id(unitParam).Op(">>").Lit(8))),
		jen.Return(jen.Int().Parens(jen.Id("row").Index(jen.Id(unitParam).Op("&").Lit(0xFF)))),
	)

	f.Comment("Transit returns the cell reached from cell on unit, or -1 if none.")
	f.Func().Id("Transit").Params(jen.Id(cellParam).Int(), jen.Id(unitParam).Uint16()).Int().Block(
		jen.Id(classVar).Op(":=").Id("classOf").Call(jen.Id(unitParam)),
		jen.If(jen.Id(classVar).Op("==").Lit(deadClass)).Block(jen.Return(jen.Lit(-1))),
		jen.Id(slotVar).Op(":=").Id(transitionIndicesName).Index(
			jen.Id(transitionIndexBeginName).Index(jen.Id(cellParam)).Op("+").Id(classVar),
		),
		jen.If(jen.Id(slotVar).Op("<").Lit(0)).Block(jen.Return(jen.Lit(-1))),
		jen.Return(jen.Id(transitionsName).Index(
			jen.Id(transitionBeginName).Index(jen.Id(cellParam)).Op("+").Int().Parens(jen.Id(slotVar)),
		)),
	)

	f.Comment("IsFinal reports whether cell is an accepting cell.")
	f.Func().Id("IsFinal").Params(jen.Id(cellParam).Int()).Bool().Block(
		jen.Return(jen.Id(finalFlagsName).Index(jen.Id(cellParam))),
	)

	f.Comment("ActionIDFor returns the action id produced by taking cell's\ntransition on unit, or -1 if that transition carries no action.")
	f.Func().Id("ActionIDFor").Params(jen.Id(cellParam).Int(), jen.Id(unitParam).Uint16()).Int().Block(
		jen.Id(classVar).Op(":=").Id("classOf").Call(jen.Id(unitParam)),
		jen.If(jen.Id(classVar).Op("==").Lit(deadClass)).Block(jen.Return(jen.Lit(noAction))),
		jen.Id(slotVar).Op(":=").Id(transitionIndicesName).Index(
			jen.Id(transitionIndexBeginName).Index(jen.Id(cellParam)).Op("+").Id(classVar),
		),
		jen.If(jen.Id(slotVar).Op("<").Lit(0)).Block(jen.Return(jen.Lit(noAction))),
		jen.Return(jen.Id(actionIDsName).Index(
			jen.Id(transitionBeginName).Index(jen.Id(cellParam)).Op("+").Int().Parens(jen.Id(slotVar)),
		)),
	)
}

func actionIDRow(marks []*mark.Mark) []int {
	out := make([]int, len(marks))
	for i, m := range marks {
		if m == nil {
			out[i] = noAction
			continue
		}
		out[i] = m.ActionID()
	}
	return out
}

func uint8Values(vs []uint8) []jen.Code {
	out := make([]jen.Code, len(vs))
	for i, v := range vs {
		out[i] = jen.Lit(v)
	}
	return out
}

func intValues(vs []int) []jen.Code {
	out := make([]jen.Code, len(vs))
	for i, v := range vs {
		out[i] = jen.Lit(v)
	}
	return out
}

func int16Values(vs []int16) []jen.Code {
	out := make([]jen.Code, len(vs))
	for i, v := range vs {
		out[i] = jen.Lit(v)
	}
	return out
}

func boolValues(vs []bool) []jen.Code {
	out := make([]jen.Code, len(vs))
	for i, v := range vs {
		out[i] = jen.Lit(v)
	}
	return out
}

func classRowsValues(rows [][256]int16) []jen.Code {
	out := make([]jen.Code, len(rows))
	for i, row := range rows {
		out[i] = jen.Index(jen.Lit(256)).Int16().Values(int16Values(row[:])...)
	}
	return out
}
