package importer

import (
	"math"
	"strconv"
	"strings"
)

// ParseLine divide uma linha delimitada respeitando aspas duplas.
// Aspas duplicadas dentro de campo entre aspas viram uma aspa literal;
// o separador só divide fora de aspas; o último campo é sempre emitido,
// mesmo vazio.
func ParseLine(line string, sep rune) []string {
	out := make([]string, 0, 8)
	var sb strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if inQuotes {
			if ch == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					sb.WriteRune('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				sb.WriteRune(ch)
			}
			continue
		}
		switch ch {
		case '"':
			inQuotes = true
		case sep:
			out = append(out, sb.String())
			sb.Reset()
		default:
			sb.WriteRune(ch)
		}
	}
	out = append(out, sb.String())
	return out
}

// ParseDecimal aceita vírgula ou ponto como separador decimal.
// Valor inválido ou não finito vira (0, false) — linha pulada, nunca
// erro fatal.
func ParseDecimal(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
