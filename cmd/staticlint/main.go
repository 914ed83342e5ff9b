// Package main запускает multichecker проекта.
//
// Он включает:
// - стандартные анализаторы go/analysis/passes
// - все SA-анализаторы staticcheck
// - S1000 (simple) и U1000 (unused) из staticcheck
// - bodyclose: клиент генератора обязан закрывать тела ответов
// - собственный анализатор noexit (запрещает os.Exit и log.Fatal в main)
//
// Запуск:
//
//	go run ./cmd/staticlint ./...
package main

import (
	"strings"

	"github.com/timakin/bodyclose/passes/bodyclose"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"honnef.co/go/tools/analysis/lint"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/unused"

	"github.com/Totarae/MCPBuilder/cmd/staticlint/noexit"
)

// дополнительные проверки staticcheck вне группы SA
var extraChecks = []string{"S1000", "U1000"}

func main() {
	multichecker.Main(analyzers()...)
}

func analyzers() []*analysis.Analyzer {
	list := []*analysis.Analyzer{
		shadow.Analyzer,
		structtag.Analyzer,
		nilness.Analyzer,
		printf.Analyzer,
		errorsas.Analyzer,
		httpresponse.Analyzer,
		lostcancel.Analyzer,
	}

	for _, a := range staticcheck.Analyzers {
		if strings.HasPrefix(a.Analyzer.Name, "SA") {
			list = append(list, a.Analyzer)
		}
	}
	for _, name := range extraChecks {
		if a := findAnalyzer(name); a != nil {
			list = append(list, a)
		}
	}

	list = append(list, bodyclose.Analyzer, noexit.NewAnalyzer())
	return list
}

func findAnalyzer(name string) *analysis.Analyzer {
	all := append([]*lint.Analyzer{unused.Analyzer}, simple.Analyzers...)
	for _, a := range all {
		if a.Analyzer.Name == name {
			return a.Analyzer
		}
	}
	return nil
}
