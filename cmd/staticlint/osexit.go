package main

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"
)

// OsExitAnalyzer запрещает прямой вызов os.Exit в функции main пакета main.
var OsExitAnalyzer = &analysis.Analyzer{
	Name:     "osexit",
	Doc:      "prohibits direct calls to os.Exit in main function of main package",
	Run:      runOsExitCheck,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

func runOsExitCheck(pass *analysis.Pass) (any, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	insp.Preorder([]ast.Node{(*ast.FuncDecl)(nil)}, func(node ast.Node) {
		funcDecl := node.(*ast.FuncDecl)
		if funcDecl.Recv != nil || funcDecl.Name.Name != "main" || funcDecl.Body == nil {
			return
		}

		ast.Inspect(funcDecl.Body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			// Callee видит вызов и при импорте os под другим именем
			if isPkgFunc(pass, call, "os", "Exit") {
				pass.Reportf(call.Pos(), "avoid direct os.Exit call in main function of main package")
			}
			return true
		})
	})

	return nil, nil
}

// isPkgFunc сообщает, вызывает ли call функцию name пакета pkgPath
func isPkgFunc(pass *analysis.Pass, call *ast.CallExpr, pkgPath, name string) bool {
	fn, ok := typeutil.Callee(pass.TypesInfo, call).(*types.Func)
	if !ok || fn.Pkg() == nil {
		return false
	}
	return fn.Pkg().Path() == pkgPath && fn.Name() == name
}
