// Package noexit содержит анализатор, который запрещает завершать процесс
// из функции main пакета main в обход отложенных вызовов: os.Exit, log.Fatal*
// и Fatal логгеров zap.
package noexit

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
)

// Analyzer запрещает os.Exit, log.Fatal* и zap Fatal в функции main.
var Analyzer = &analysis.Analyzer{
	Name: "noexit",
	Doc:  "запрещает использовать os.Exit, log.Fatal и zap Fatal в функции main пакета main",
	Run:  run,
}

// запрещённые функции и сообщения о них
var forbidden = map[string]string{
	"os.Exit":     "вызов os.Exit в функции main запрещён",
	"log.Fatal":   "вызов log.Fatal в функции main запрещён",
	"log.Fatalf":  "вызов log.Fatalf в функции main запрещён",
	"log.Fatalln": "вызов log.Fatalln в функции main запрещён",

	"(*go.uber.org/zap.Logger).Fatal":         "вызов zap.Logger.Fatal в функции main запрещён",
	"(*go.uber.org/zap.SugaredLogger).Fatal":  "вызов zap.SugaredLogger.Fatal в функции main запрещён",
	"(*go.uber.org/zap.SugaredLogger).Fatalf": "вызов zap.SugaredLogger.Fatal в функции main запрещён",
	"(*go.uber.org/zap.SugaredLogger).Fatalw": "вызов zap.SugaredLogger.Fatal в функции main запрещён",
}

// NewAnalyzer возвращает анализатор noexit.
func NewAnalyzer() *analysis.Analyzer {
	return Analyzer
}

func run(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	for _, file := range pass.Files {
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Name.Name != "main" || fn.Recv != nil || fn.Body == nil {
				continue
			}
			ast.Inspect(fn.Body, func(n ast.Node) bool {
				call, ok := n.(*ast.CallExpr)
				if !ok {
					return true
				}
				sel, ok := call.Fun.(*ast.SelectorExpr)
				if !ok {
					return true
				}
				// учитываем только функции пакетов, а не одноимённые методы
				obj, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
				if !ok {
					return true
				}
				if msg, bad := forbidden[obj.FullName()]; bad {
					pass.Reportf(call.Pos(), "%s", msg)
				}
				return true
			})
		}
	}
	return nil, nil
}
