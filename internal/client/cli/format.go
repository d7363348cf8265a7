package cli

import (
	"strings"

	"github.com/dmitrijs2005/sanes/internal/client/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Amounts and labels are shown the way the backend's users read them.
var printer = message.NewPrinter(language.Spanish)

func money(v models.Amount) string {
	return printer.Sprintf("%.2f", v.Float64())
}

// label turns a backend state such as "en_curso" into "En Curso".
func label(s string) string {
	if s == "" {
		return "-"
	}
	// a Caser keeps state, so one per call
	return cases.Title(language.Spanish).String(strings.ReplaceAll(s, "_", " "))
}
