// Package main запускает multichecker проекта.
//
// Он включает:
// - набор стандартных анализаторов go/analysis/passes
// - все SA-анализаторы staticcheck
// - не-SA анализаторы S1000 и U1000
// - публичный анализатор bodyclose
// - собственный анализатор noexit (запрещает os.Exit в main)
//
// Запуск:
//
//	go run ./cmd/staticlint ./...
package main

import (
	"github.com/timakin/bodyclose/passes/bodyclose"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"honnef.co/go/tools/staticcheck"

	"github.com/Totarae/ShortLink/cmd/staticlint/noexit"
)

func main() {
	var analyzers []*analysis.Analyzer

	analyzers = append(analyzers,
		shadow.Analyzer,
		structtag.Analyzer,
		nilness.Analyzer,
		copylock.Analyzer,
		lostcancel.Analyzer,
		printf.Analyzer,
	)

	// SA-анализаторы
	for _, a := range staticcheck.Analyzers {
		if a.Analyzer.Name[:2] == "SA" {
			analyzers = append(analyzers, a.Analyzer)
		}
	}

	// не-SA:
	if a := findAnalyzer("S1000"); a != nil {
		analyzers = append(analyzers, a) // упрощения
	}
	if a := findAnalyzer("U1000"); a != nil {
		analyzers = append(analyzers, a) // неиспользуемый код
	}

	// публичный анализатор (не из staticcheck)
	analyzers = append(analyzers, bodyclose.Analyzer)

	// собственный анализатор
	analyzers = append(analyzers, noexit.NewAnalyzer())

	multichecker.Main(analyzers...)
}

func findAnalyzer(name string) *analysis.Analyzer {
	for _, a := range staticcheck.Analyzers {
		if a.Analyzer.Name == name {
			return a.Analyzer
		}
	}
	return nil
}
