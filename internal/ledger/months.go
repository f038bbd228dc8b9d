package ledger

import "golang.org/x/text/language"

// monthNames holds the twelve month names starting at January.
type monthNames [12]string

// Supported month name locales. The first entry is the fallback.
var (
	monthLocales = []language.Tag{
		language.English,
		language.German,
		language.French,
		language.Spanish,
		language.Italian,
		language.Dutch,
		language.Portuguese,
	}
	monthTables = []monthNames{
		{"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December"},
		{"Januar", "Februar", "März", "April", "Mai", "Juni",
			"Juli", "August", "September", "Oktober", "November", "Dezember"},
		{"janvier", "février", "mars", "avril", "mai", "juin",
			"juillet", "août", "septembre", "octobre", "novembre", "décembre"},
		{"enero", "febrero", "marzo", "abril", "mayo", "junio",
			"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
		{"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno",
			"luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre"},
		{"januari", "februari", "maart", "april", "mei", "juni",
			"juli", "augustus", "september", "oktober", "november", "december"},
		{"janeiro", "fevereiro", "março", "abril", "maio", "junho",
			"julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
	}
	monthMatcher = language.NewMatcher(monthLocales)
)

// monthNamesFor picks the closest supported table for tag, falling back to
// English.
func monthNamesFor(tag language.Tag) monthNames {
	_, i, confidence := monthMatcher.Match(tag)
	if confidence == language.No {
		return monthTables[0]
	}
	return monthTables[i]
}
