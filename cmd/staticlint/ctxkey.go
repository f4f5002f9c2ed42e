package main

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// CtxKeyAnalyzer запрещает ключи context.WithValue встроенных типов.
// Такие ключи могут совпасть с ключами других пакетов.
var CtxKeyAnalyzer = &analysis.Analyzer{
	Name:     "ctxkey",
	Doc:      "reports context.WithValue calls whose key has a built-in type",
	Run:      runCtxKeyCheck,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

func runCtxKeyCheck(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	insp.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(node ast.Node) {
		call := node.(*ast.CallExpr)
		if len(call.Args) != 3 || !isPkgFunc(pass, call, "context", "WithValue") {
			return
		}

		key := call.Args[1]
		t := pass.TypesInfo.TypeOf(key)
		if t == nil {
			return
		}
		if _, ok := t.(*types.Basic); ok {
			pass.Reportf(key.Pos(), "context.WithValue key of built-in type %s, use an unexported key type", t)
		}
	})

	return nil, nil
}
